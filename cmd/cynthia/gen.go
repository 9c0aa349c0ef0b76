package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/whaaaley/cynthia/common/llm"
	"github.com/whaaaley/cynthia/internal/confirm"
	"github.com/whaaaley/cynthia/internal/cynerr"
	"github.com/whaaaley/cynthia/internal/pipeline"
	"github.com/whaaaley/cynthia/internal/spec"
	"github.com/whaaaley/cynthia/internal/synth"
	"github.com/whaaaley/cynthia/internal/testrun"
)

func newGenCmd(a *app) *cobra.Command {
	var (
		maxRetries int
		noTest     bool
		yes        bool
		format     string
	)

	cmd := &cobra.Command{
		Use:   "gen <path>",
		Short: "Generate code from a test file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := a.cfg

			if err := cfg.RequireAPIKey(); err != nil {
				return cynerr.Precondition(err)
			}
			client, err := llm.New(llm.Config{
				Provider: cfg.Generation.Provider,
				APIKey:   cfg.APIKey,
				BaseURL:  cfg.OpenAI.BaseURL,
				Model:    cfg.OpenAI.Model,
			})
			if err != nil {
				return fmt.Errorf("creating model client: %w", err)
			}

			synthesizer := synth.New(client, synth.Options{
				Temperature: cfg.OpenAI.Temperature,
				MaxTokens:   cfg.OpenAI.MaxTokens,
				Seed:        cfg.OpenAI.Seed,
			})
			runner := testrun.NewRunner(cfg.Testing.Deno)
			runner.Stdout, runner.Stderr = cmd.OutOrStdout(), cmd.ErrOrStderr()

			opts := pipeline.Options{SkipTests: noTest, AssumeYes: yes}
			if cmd.Flags().Changed("max-retries") {
				opts.MaxRetries = &maxRetries
			}
			if format != "" {
				if opts.Format, err = spec.ParseFormat(format); err != nil {
					return err
				}
			}

			gen := pipeline.NewGenerator(cfg, a.cwd, synthesizer, runner, confirm.NewTerminal())
			outcome, err := gen.Generate(ctx, args[0], opts)
			if err != nil {
				if errors.Is(err, confirm.ErrDeclined) {
					fmt.Fprintln(cmd.OutOrStdout(), "Generation cancelled")
					return nil
				}
				if outcome != nil && outcome.ExitCode > 0 {
					return &exitError{code: outcome.ExitCode, err: err}
				}
				return err
			}

			slog.DebugContext(ctx, "generation outcome", "run_id", outcome.RunID, "sha256", outcome.Artifact.SHA256)
			fmt.Fprintf(cmd.OutOrStdout(), "Generated %s (attempt %d)\n", outcome.Artifact.CodePath, outcome.Attempts)
			fmt.Fprintf(cmd.OutOrStdout(), "Linked %s\n", outcome.ShimPath)
			return nil
		},
	}

	cmd.Flags().IntVar(&maxRetries, "max-retries", 0, "Retries after the first attempt (default from config)")
	cmd.Flags().BoolVar(&noTest, "no-test", false, "Do not run the test file after generation")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	cmd.Flags().StringVar(&format, "format", "", "Specification format: auto, suites, feature or flat (default from config)")
	return cmd
}
