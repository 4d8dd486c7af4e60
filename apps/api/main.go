package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof" // /debug/pprof

	"github.com/pkg/errors"

	echoapi "github.com/trezcool/elimu/apps/api/echo"
	"github.com/trezcool/elimu/apps/di"
	"github.com/trezcool/elimu/core"
	"github.com/trezcool/elimu/core/course"
)

func main() {
	conf := core.NewConfig()
	if err := di.Invoke(conf, run); err != nil {
		log.Fatalf("api: %+v", err)
	}
}

func run(app di.App) error {
	conf, logger := app.Conf, app.Logger
	defer logger.Sync()

	if app.DB != nil {
		defer func() {
			if err := app.DB.Close(); err != nil {
				app.DBLogger.Error("Failed to close", err)
			}
		}()
	}

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// the memory engine starts empty: seed the sample catalog (postgres is seeded by `admin seed`)
	if conf.Database.Engine == di.EngineMemory {
		n, err := app.CourseSvc.Seed(ctx, course.Samples)
		if err != nil {
			return errors.Wrap(err, "seeding catalog")
		}
		logger.Info(fmt.Sprintf("seeded %d courses", n))
	}

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)
	expvar.NewString("dbEngine").Set(conf.Database.Engine)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start Recompute Worker

	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		if err := app.Worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error(fmt.Sprintf("recompute worker stopped: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:          conf,
			Logger:        logger,
			DB:            app.Pinger,
			Guard:         app.Guard,
			CourseSvc:     app.CourseSvc,
			EnrollmentSvc: app.EnrollmentSvc,
			ReviewSvc:     app.ReviewSvc,
			Metrics:       app.Metrics,
			Translator:    app.Translator,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	defer func() {
		cancel()
		<-workerDone
	}()

	select {
	case err := <-server.Errors():
		return errors.Wrap(err, "server error")

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err := server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				return errors.Wrap(err, "could not force stop server")
			}
		}
	}
	return nil
}
