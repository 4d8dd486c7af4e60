package main

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/trezcool/elimu/core/auth"
)

func (cli *commandLine) token(learner auth.Identity) error {
	token, err := cli.guard.Issue(learner)
	if err != nil {
		return errors.Wrap(err, "issuing token")
	}
	fmt.Fprintln(cli.out, token)
	return nil
}
