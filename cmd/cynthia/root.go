package main

import (
	"github.com/spf13/cobra"

	"github.com/whaaaley/cynthia/core/config"
)

type app struct {
	cfg *config.Config
	cwd string
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "cynthia",
		Short: "Synthesize TypeScript functions from their tests",
		Long: banner + `
Cynthia reads a *.cyn.ts test file, asks a language model for an
implementation, writes it under .cynthia/, and re-runs the test file with
deno until it passes or the retry budget is spent.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetVersionTemplate("Cynthia CLI {{.Version}}\n")

	root.AddCommand(
		newInitCmd(a),
		newCreateCmd(a),
		newGenCmd(a),
		newTestCmd(a),
		newSpecCmd(a),
	)
	return root
}
