package core

import (
	"log"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		AppName      string
		Build        string
		Env          string // DEV (local; default), TEST, QA, PROD
		Debug        bool
		TestMode     bool
		SecretKey    string
		RollbarToken string
		WorkDir      string

		Server     ServerConfig
		Database   DatabaseConfig
		Redis      RedisConfig
		Enrollment EnrollmentConfig
		Reviews    ReviewsConfig
		Recompute  RecomputeConfig
	}

	ServerConfig struct {
		Address            string
		Host               string
		DebugHost          string
		ShutdownTimeout    time.Duration
		DisableReqLogs     bool
		JWTIssuer          string
		JWTAudience        string
		JWTExpirationDelta time.Duration
	}

	DatabaseConfig struct {
		Engine        string // postgres | memory
		Host          string
		Port          int
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	RedisConfig struct {
		Address    string // empty: in-process retry queue
		RetryQueue string
	}

	EnrollmentConfig struct {
		// MaxCompleteAttempts bounds the compare-and-swap retries of a lesson completion.
		MaxCompleteAttempts int
	}

	ReviewsConfig struct {
		PageSize          int
		RequireCompletion bool
		RecomputeTimeout  time.Duration
	}

	RecomputeConfig struct {
		MaxAttempts     uint
		InitialInterval time.Duration
		MaxInterval     time.Duration
		QueueSize       int
	}
)

func (c DatabaseConfig) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// NewConfig loads the configuration of the current ENV.
// Values come, in increasing priority, from the defaults below, `config/.env.<env>`
// and the environment variables prefixed by the ENV name (eg. DEV_SECRETKEY).
func NewConfig() *Config {
	v := viper.New()
	setDefaults(v)

	env := strings.ToUpper(os.Getenv("ENV"))
	if env == "" {
		env = "DEV"
	}
	if env == "TEST" {
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	wd := Getwd()
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	return &Config{
		AppName:      v.GetString("appName"),
		Build:        v.GetString("build"),
		Env:          env,
		Debug:        v.GetBool("debug"),
		TestMode:     v.GetBool("testMode"),
		SecretKey:    v.GetString("secretKey"),
		RollbarToken: v.GetString("rollbarToken"),
		WorkDir:      wd,
		Server: ServerConfig{
			Address:            v.GetString("server.address"),
			Host:               v.GetString("server.host"),
			DebugHost:          v.GetString("server.debugHost"),
			ShutdownTimeout:    v.GetDuration("server.shutdownTimeout"),
			DisableReqLogs:     v.GetBool("server.disableReqLogs"),
			JWTIssuer:          v.GetString("server.jwtIssuer"),
			JWTAudience:        v.GetString("server.jwtAudience"),
			JWTExpirationDelta: v.GetDuration("server.jwtExpirationDelta"),
		},
		Database: DatabaseConfig{
			Engine:        v.GetString("database.engine"),
			Host:          v.GetString("database.host"),
			Port:          v.GetInt("database.port"),
			Name:          v.GetString("database.name"),
			User:          v.GetString("database.user"),
			Password:      v.GetString("database.password"),
			AdminUser:     v.GetString("database.adminUser"),
			AdminPassword: v.GetString("database.adminPassword"),
			DisableTLS:    v.GetBool("database.disableTLS"),
		},
		Redis: RedisConfig{
			Address:    v.GetString("redis.address"),
			RetryQueue: v.GetString("redis.retryQueue"),
		},
		Enrollment: EnrollmentConfig{
			MaxCompleteAttempts: v.GetInt("enrollment.maxCompleteAttempts"),
		},
		Reviews: ReviewsConfig{
			PageSize:          v.GetInt("reviews.pageSize"),
			RequireCompletion: v.GetBool("reviews.requireCompletion"),
			RecomputeTimeout:  v.GetDuration("reviews.recomputeTimeout"),
		},
		Recompute: RecomputeConfig{
			MaxAttempts:     v.GetUint("recompute.maxAttempts"),
			InitialInterval: v.GetDuration("recompute.initialInterval"),
			MaxInterval:     v.GetDuration("recompute.maxInterval"),
			QueueSize:       v.GetInt("recompute.queueSize"),
		},
	}
}

func setDefaults(v *viper.Viper) {
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("appName", "Elimu")
	v.SetDefault("build", "develop")
	v.SetDefault("secretKey", "k3v&9z)q!m2w+8u_bx4d#t6e(hy=r0$pj7n%fl1cs5oa*gi")

	v.SetDefault("server.address", ":8000")
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.debugHost", "localhost:4000")
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("server.jwtIssuer", "Elimu")
	v.SetDefault("server.jwtAudience", "Learners")
	v.SetDefault("server.jwtExpirationDelta", 7*24*time.Hour)

	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "elimu")
	v.SetDefault("database.user", "elimu")
	v.SetDefault("database.password", "elimu")
	v.SetDefault("database.disableTLS", true)

	v.SetDefault("redis.retryQueue", "elimu:recompute")

	v.SetDefault("enrollment.maxCompleteAttempts", 10)

	v.SetDefault("reviews.pageSize", 200)
	v.SetDefault("reviews.requireCompletion", false)
	v.SetDefault("reviews.recomputeTimeout", 5*time.Second)

	v.SetDefault("recompute.maxAttempts", 5)
	v.SetDefault("recompute.initialInterval", 500*time.Millisecond)
	v.SetDefault("recompute.maxInterval", 30*time.Second)
	v.SetDefault("recompute.queueSize", 1024)
}
