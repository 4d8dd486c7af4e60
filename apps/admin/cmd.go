package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"io"

	"github.com/pkg/errors"

	"github.com/trezcool/elimu/core/auth"
	"github.com/trezcool/elimu/core/course"
	"github.com/trezcool/elimu/core/review"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	db        *sql.DB // migrate only
	courseSvc *course.Service
	reviewSvc *review.Service
	guard     *auth.Guard
	out       io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS] - run a migration command (up, up-to, down, down-to, redo, reset, status, version, create, fix)")
	fmt.Fprintln(cli.out, "  seed - create the sample courses, provided the catalog is empty")
	fmt.Fprintln(cli.out, "  recompute [-course ID|SLUG] - recompute the rating of a course, or of every course")
	fmt.Fprintln(cli.out, "  token -learner ID - print a bearer token for a learner (development)")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}
	ctx := context.Background()

	recomputeCmd := flag.NewFlagSet("recompute", flag.ContinueOnError)
	recomputeCmd.SetOutput(cli.out)
	recomputeCourse := recomputeCmd.String("course", "", "The course ID or slug. Every course when empty.")

	tokenCmd := flag.NewFlagSet("token", flag.ContinueOnError)
	tokenCmd.SetOutput(cli.out)
	tokenLearner := tokenCmd.String("learner", "", "The learner identity.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "seed":
		return cli.seed(ctx)
	case "recompute":
		if err := recomputeCmd.Parse(args[2:]); err != nil {
			return err
		}
		return cli.recompute(ctx, *recomputeCourse)
	case "token":
		if err := tokenCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *tokenLearner == "" {
			tokenCmd.Usage()
			return errHelp
		}
		return cli.token(auth.Identity(*tokenLearner))
	default:
		cli.printUsage()
		return errHelp
	}
}
