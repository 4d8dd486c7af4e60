package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/trezcool/elimu/core/course"
)

func (cli *commandLine) seed(ctx context.Context) error {
	n, err := cli.courseSvc.Seed(ctx, course.Samples)
	if err != nil {
		return errors.Wrap(err, "seeding catalog")
	}
	if n == 0 {
		fmt.Fprintln(cli.out, "catalog not empty, nothing seeded")
		return nil
	}
	fmt.Fprintf(cli.out, "seeded %d courses\n", n)
	return nil
}
