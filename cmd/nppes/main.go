package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/atlashealth/atlas/migrations"
	"github.com/atlashealth/atlas/modules"
	"github.com/atlashealth/atlas/modules/registry/ingest"
	"github.com/atlashealth/atlas/modules/registry/services"
	"github.com/atlashealth/atlas/pkg/application"
	"github.com/atlashealth/atlas/pkg/composables"
	"github.com/atlashealth/atlas/pkg/configuration"
	"github.com/atlashealth/atlas/pkg/eventbus"
	"github.com/atlashealth/atlas/pkg/jobs"
)

func main() {
	root := &cobra.Command{
		Use:          "nppes",
		Short:        "NPPES registry maintenance",
		SilenceUsage: true,
	}
	root.AddCommand(applyCmd(), seedCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func bootstrap(ctx context.Context) (application.Application, *pgxpool.Pool, func(), error) {
	conf := configuration.Use()
	logger := conf.Logger()

	pool, err := pgxpool.New(ctx, conf.Database.Opts)
	if err != nil {
		return nil, nil, nil, err
	}
	cleanup := func() {
		pool.Close()
		conf.Unload()
	}

	if err := migrations.Run(ctx, pool); err != nil {
		cleanup()
		return nil, nil, nil, err
	}

	app := application.New(&application.ApplicationOptions{
		Pool:     pool,
		EventBus: eventbus.NewEventPublisher(logger),
		Logger:   logger,
	})
	if err := modules.Load(app); err != nil {
		cleanup()
		return nil, nil, nil, err
	}
	return app, pool, cleanup, nil
}

func applyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "apply <file>",
		Short: "Apply an NPPES update file to the registry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conf := configuration.Use()

			app, pool, cleanup, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			ctx := composables.WithPool(cmd.Context(), pool)
			svc := app.Service(&services.IngestService{}).(*services.IngestService)

			runner := jobs.NewRunner(jobs.RunnerOptions{
				MaxAttempts: conf.Nppes.MaxAttempts,
				BaseDelay:   conf.Nppes.RetryBaseDelay,
				Logger:      app.Logger().WithField("command", "apply"),
			})

			var report *ingest.Report
			err = runner.Run(ctx, jobs.Func("nppes-apply", func(ctx context.Context) error {
				r, err := svc.ApplyFile(ctx, args[0])
				report = r
				return err
			}))
			if report != nil {
				printReport(cmd, report)
			}
			return err
		},
	}
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Seed reference data (states and taxonomies)",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, pool, cleanup, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			ctx := composables.WithPool(cmd.Context(), pool)
			return app.Seeder().Seed(ctx, app)
		},
	}
}

func printReport(cmd *cobra.Command, report *ingest.Report) {
	cmd.Println(report.Summary())
	for _, c := range report.Corrections {
		cmd.Println("correction:", c)
	}
	for _, f := range report.Failures {
		cmd.Println(fmt.Sprintf("failed row %d (npi %s): %v", f.Row, f.NPI, f.Err))
	}
}
