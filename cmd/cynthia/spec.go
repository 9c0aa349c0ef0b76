package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/whaaaley/cynthia/internal/spec"
)

func newSpecCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "spec <path>",
		Short: "Print the specification extracted from a test file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format == "" {
				format = a.cfg.Generation.SpecFormat
			}
			f, err := spec.ParseFormat(format)
			if err != nil {
				return err
			}

			path := args[0]
			if !filepath.IsAbs(path) {
				path = filepath.Join(a.cwd, path)
			}

			x := spec.Extractor{SystemUnderTest: a.cfg.Analysis.SystemUnderTest}
			s, err := x.Extract(cmd.Context(), path, f)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), s.Text)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "", "auto, suites, feature or flat (default from config)")
	return cmd
}
