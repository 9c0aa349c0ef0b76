package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/whaaaley/cynthia/internal/scaffold"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize a Cynthia project (.cynthia dir + config)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := scaffold.Init(a.cwd)
			for _, p := range res.Created {
				fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", p)
			}
			for _, p := range res.Skipped {
				fmt.Fprintf(cmd.OutOrStdout(), "Exists  %s\n", p)
			}
			return err
		},
	}
}
