package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/trezcool/elimu/apps/di"
	"github.com/trezcool/elimu/core"
	logsvc "github.com/trezcool/elimu/services/logger"
	"github.com/trezcool/elimu/storage/database"
)

var logger *zap.SugaredLogger

func main() {
	conf := core.NewConfig()

	var err error
	logger, err = logsvc.NewZap("ADMIN", conf.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "building logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err = start(conf, os.Args); err != nil {
		if !errors.Is(err, errHelp) {
			logger.Errorw("command failed", "error", err)
		}
		_ = logger.Sync()
		os.Exit(1)
	}
}

func start(conf *core.Config, args []string) error {
	// migrations run on a bare connection: the app container would migrate up on its own
	if len(args) > 1 && args[1] == "migrate" {
		db, err := database.Open(conf)
		if err != nil {
			return errors.Wrap(err, "opening database")
		}
		defer db.Close()

		cli := commandLine{db: db.DB, out: os.Stdout}
		return cli.run(args)
	}

	return di.Invoke(conf, func(app di.App) error {
		if app.DB != nil {
			defer app.DB.Close()
		}
		cli := commandLine{
			courseSvc: app.CourseSvc,
			reviewSvc: app.ReviewSvc,
			guard:     app.Guard,
			out:       os.Stdout,
		}
		return cli.run(args)
	})
}
