package main

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/timeplus-io/processviz/pkg/config"
	"github.com/timeplus-io/processviz/pkg/pipeline"
	"github.com/timeplus-io/processviz/pkg/store"
)

type rootOptions struct {
	configPath string
	quiet      bool
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "processviz",
		Short: "Generate, store and chart synthetic process data",
		Long: "Generates the daily process dataset, replaces the Process table with it,\n" +
			"reads one year back and renders the parameter and regression charts.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts.configPath)
			if err != nil {
				return err
			}
			st, report, err := openAndRun(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer closeStore(st)

			if !opts.quiet {
				report.Render(cmd.OutOrStdout())
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to config file")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "do not print the run report")

	cmd.AddCommand(newServeCommand(opts))
	cmd.AddCommand(newQueryCommand(opts))

	return cmd
}

func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logrus.Infof("Using %s driver, table %s, output %s", cfg.Database.Driver, cfg.Database.Table, cfg.Output.Dir)
	return cfg, nil
}

// openAndRun opens the store and runs the workflow once. On success the
// store is left open for the caller to close.
func openAndRun(ctx context.Context, cfg *config.Config) (*store.Store, *pipeline.Report, error) {
	if err := pipeline.CheckOutputDir(cfg.Output.Dir); err != nil {
		return nil, nil, err
	}

	st, err := store.Open(ctx, &cfg.Database)
	if err != nil {
		return nil, nil, err
	}

	report, err := pipeline.NewRunner(st, cfg).Run(ctx)
	if err != nil {
		closeStore(st)
		return nil, nil, err
	}
	return st, report, nil
}

func closeStore(st *store.Store) {
	if err := st.Close(); err != nil {
		logrus.Warnf("Error closing store: %v", err)
	}
}
