package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/kitchin/config"
	"github.com/Ramsey-B/kitchin/internal/app"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// env is what every subcommand receives once the root command has loaded it.
type env struct {
	cfg    *config.Config
	logger ectologger.Logger
	sync   func()
}

func newRootCommand() *cobra.Command {
	e := &env{}

	root := &cobra.Command{
		Use:           "kitchin",
		Short:         "Household meal planning and shopping lists",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			logger, sync, err := app.NewLogger(cfg)
			if err != nil {
				return err
			}

			e.cfg, e.logger, e.sync = cfg, logger, sync
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if e.sync != nil {
				e.sync()
			}
		},
	}

	root.AddCommand(
		newServeCommand(e),
		newMigrateCommand(e),
		newSeedCommand(e),
		newShoppingCommand(e),
		newMealsCommand(e),
		newWatchCommand(e),
	)
	return root
}

func newServeCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.New(e.cfg, e.logger).Run(cmd.Context())
		},
	}
}

func newMigrateCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.Migrate(cmd.Context(), e.cfg, e.logger)
		},
	}
}

func newSeedCommand(e *env) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the quick-add catalog into the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			count, err := app.Seed(cmd.Context(), e.cfg, e.logger, file)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d common grocery items\n", count)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "catalog YAML file (defaults to the built-in catalog)")
	return cmd
}
