package main

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/whaaaley/cynthia/internal/testrun"
)

func newTestCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "test <path>",
		Short: "Run a test file with deno",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if !filepath.IsAbs(path) {
				path = filepath.Join(a.cwd, path)
			}

			runner := testrun.NewRunner(a.cfg.Testing.Deno)
			runner.Stdout, runner.Stderr = cmd.OutOrStdout(), cmd.ErrOrStderr()

			code, err := runner.Run(cmd.Context(), path)
			if err != nil {
				return err
			}
			if code != 0 {
				return &exitError{code: code}
			}
			return nil
		},
	}
}
