package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/whaaaley/cynthia/internal/scaffold"
)

func newCreateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: "Create a new test file with boilerplate",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := scaffold.CreateTestFile(a.cwd, args[0])
			if err != nil {
				return err
			}
			for _, p := range res.Created {
				fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", p)
			}
			return nil
		},
	}
}
