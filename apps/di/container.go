// Package di builds the dependency graph shared by the api server and the admin CLI.
package di

import (
	"context"
	"fmt"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/dig"

	"github.com/trezcool/elimu/core"
	"github.com/trezcool/elimu/core/auth"
	"github.com/trezcool/elimu/core/course"
	"github.com/trezcool/elimu/core/enrollment"
	"github.com/trezcool/elimu/core/review"
	logsvc "github.com/trezcool/elimu/services/logger"
	metricsvc "github.com/trezcool/elimu/services/metrics"
	"github.com/trezcool/elimu/services/recompute"
	"github.com/trezcool/elimu/storage/database"
	inmemdb "github.com/trezcool/elimu/storage/database/inmem"
	sqlxrepos "github.com/trezcool/elimu/storage/database/sqlx"
)

const (
	EngineMemory   = "memory"
	EnginePostgres = "postgres"
)

// Stores are the repositories of the configured database engine.
type Stores struct {
	dig.Out

	DB          *sqlx.DB // nil for the memory engine
	Pinger      core.Pinger
	Courses     course.Repository
	Enrollments enrollment.Repository
	Reviews     review.Repository
}

// App gathers everything the binaries need.
type App struct {
	dig.In

	Conf          *core.Config
	Logger        *logsvc.RollbarLogger
	DBLogger      *logsvc.RollbarLogger `name:"dbLogger"`
	DB            *sqlx.DB
	Pinger        core.Pinger
	Guard         *auth.Guard
	CourseSvc     *course.Service
	EnrollmentSvc *enrollment.Service
	ReviewSvc     *review.Service
	Worker        *recompute.Worker
	Metrics       *metricsvc.Metrics
	Translator    ut.Translator
}

type dbLoggerParam struct {
	dig.In
	Logger *logsvc.RollbarLogger `name:"dbLogger"`
}

func newLogger(name string) func(conf *core.Config) (*logsvc.RollbarLogger, error) {
	return func(conf *core.Config) (*logsvc.RollbarLogger, error) {
		local, err := logsvc.NewZap(name, conf.Debug)
		if err != nil {
			return nil, errors.Wrap(err, "building zap logger")
		}
		logger := logsvc.NewRollbarLogger(local, conf)
		logger.Enable(!conf.Debug)
		return logger, nil
	}
}

func newStores(conf *core.Config, loggerParam dbLoggerParam) (Stores, error) {
	switch conf.Database.Engine {
	case EngineMemory:
		db := inmemdb.NewDB()
		return Stores{
			Pinger:      db,
			Courses:     inmemdb.NewCourseRepository(db),
			Enrollments: inmemdb.NewEnrollmentRepository(db),
			Reviews:     inmemdb.NewReviewRepository(db),
		}, nil
	case EnginePostgres, "":
		db, err := setUpDB(conf)
		if err != nil {
			loggerParam.Logger.Error(fmt.Sprintf("setting up database: %v", err), err)
			return Stores{}, err
		}
		return Stores{
			DB:          db,
			Pinger:      db,
			Courses:     sqlxrepos.NewCourseRepository(db),
			Enrollments: sqlxrepos.NewEnrollmentRepository(db),
			Reviews:     sqlxrepos.NewReviewRepository(db),
		}, nil
	default:
		return Stores{}, errors.Errorf("unknown database engine %q", conf.Database.Engine)
	}
}

func setUpDB(conf *core.Config) (*sqlx.DB, error) {
	if err := database.CreateIfNotExist(context.Background(), conf); err != nil {
		return nil, errors.Wrap(err, "creating database")
	}
	db, err := database.Open(conf)
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	if err = database.Migrate(db); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "migrating database")
	}
	return db, nil
}

func newValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	review.InitValidators(validate, translator)
	return validate, translator
}

func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return reg
}

func newQueue(conf *core.Config, logger *logsvc.RollbarLogger) (recompute.Queue, error) {
	if conf.Redis.Address == "" {
		return recompute.NewMemoryQueue(conf.Recompute.QueueSize), nil
	}
	rdb, err := recompute.NewRedisClient(context.Background(), conf.Redis.Address)
	if err != nil {
		return nil, errors.Wrap(err, "connecting to redis")
	}
	logger.Info("recompute retries queued on redis", map[string]interface{}{"address": conf.Redis.Address})
	return recompute.NewRedisQueue(rdb, conf.Redis.RetryQueue), nil
}

func newEnrollmentService(repo enrollment.Repository, catalog *course.Service, conf *core.Config, metrics *metricsvc.Metrics) *enrollment.Service {
	return enrollment.NewService(repo, catalog, conf, metrics)
}

func newReviewService(
	repo review.Repository,
	catalog *course.Service,
	eligibility *enrollment.Service,
	queue recompute.Queue,
	logger *logsvc.RollbarLogger,
	metrics *metricsvc.Metrics,
	validate *validator.Validate,
	conf *core.Config,
) *review.Service {
	return review.NewService(review.ServiceDeps{
		Repo:        repo,
		Catalog:     catalog,
		Eligibility: eligibility,
		Queue:       queue,
		Logger:      logger,
		Metrics:     metrics,
		Validate:    validate,
		Conf:        conf,
	})
}

func newWorker(queue recompute.Queue, svc *review.Service, conf *core.Config, logger *logsvc.RollbarLogger, metrics *metricsvc.Metrics) *recompute.Worker {
	return recompute.NewWorker(queue, svc, conf, logger, metrics)
}

// New returns a container providing App for conf.
func New(conf *core.Config) (*dig.Container, error) {
	c := dig.New()

	providers := []struct {
		constructor interface{}
		opts        []dig.ProvideOption
	}{
		{constructor: func() *core.Config { return conf }},
		{constructor: newLogger("API")},
		{constructor: newLogger("DB"), opts: []dig.ProvideOption{dig.Name("dbLogger")}},
		{constructor: newStores},
		{constructor: newValidator},
		{constructor: newRegistry},
		{constructor: metricsvc.New},
		{constructor: newQueue},
		{constructor: auth.NewGuard},
		{constructor: course.NewService},
		{constructor: newEnrollmentService},
		{constructor: newReviewService},
		{constructor: newWorker},
	}
	for _, p := range providers {
		if err := c.Provide(p.constructor, p.opts...); err != nil {
			return nil, errors.Wrap(err, "providing dependency")
		}
	}
	return c, nil
}

// Invoke builds the App of conf and hands it to fn.
func Invoke(conf *core.Config, fn func(app App) error) error {
	c, err := New(conf)
	if err != nil {
		return err
	}
	var fnErr error
	if err = c.Invoke(func(app App) { fnErr = fn(app) }); err != nil {
		return errors.Wrap(dig.RootCause(err), "building app")
	}
	return fnErr
}
