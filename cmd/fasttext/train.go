package main

import (
	"github.com/neurlang/fasttext"
	"github.com/neurlang/fasttext/args"
	"github.com/neurlang/fasttext/internal/logging"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newTrainCmd(model args.ModelName, use, short string) *cobra.Command {
	a := args.New(model)
	var configPath, metricsPath string
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Long: short + `.

Settings are read from, highest precedence first: command line flags,
FASTTEXT_* environment variables (FASTTEXT_EPOCH=10), the YAML file
given with --config, and the defaults of the objective.

The model is saved to <output>.bin. Embedding objectives also write the
word vectors to <output>.vec.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.Overlay(configPath, cmd.Flags()); err != nil {
				return err
			}
			if a.Input == "" || a.Output == "" {
				return errors.New("both --input and --output are required")
			}
			log, err := logging.New(a.Verbose)
			if err != nil {
				return errors.Wrap(err, "build logger")
			}
			defer log.Sync() //nolint:errcheck

			opts := []fasttext.Option{
				fasttext.WithLogger(log),
				fasttext.WithProgressWriter(cmd.ErrOrStderr()),
			}
			if metricsPath != "" {
				opts = append(opts, fasttext.WithMetricsFile(metricsPath))
			}
			return fasttext.New(opts...).Train(a)
		},
	}
	a.BindFlags(cmd.Flags())
	cmd.Flags().StringVar(&configPath, "config", "", "YAML file with training settings")
	cmd.Flags().StringVar(&metricsPath, "metrics", "", "write Prometheus text metrics to this file during training")
	return cmd
}
