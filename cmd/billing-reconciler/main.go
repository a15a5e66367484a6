package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	awsclient "github.com/cyphera/billing-reconciler/internal/client/aws"
	"github.com/cyphera/billing-reconciler/internal/config"
	"github.com/cyphera/billing-reconciler/internal/constants"
	"github.com/cyphera/billing-reconciler/internal/db"
	"github.com/cyphera/billing-reconciler/internal/helpers"
	"github.com/cyphera/billing-reconciler/internal/logger"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:           constants.ServiceName,
		Short:         "Reconcile local subscription state against the billing provider",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Inside the Lambda runtime the binary is invoked without arguments.
			if os.Getenv("AWS_LAMBDA_RUNTIME_API") != "" {
				return startLambda(cmd.Context())
			}
			return cmd.Help()
		},
	}

	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(lambdaCmd())
	rootCmd.AddCommand(migrateCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	_ = logger.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one reconciliation and print the run statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := loadRuntime()
			if err != nil {
				logger.Error("Failed to load configuration", zap.Error(err))
				reportSetupFailure(ctx, configFailureNotifier(), constants.TriggerManual, err)
				return err
			}
			applyRunFlags(cmd, cfg)

			app, notifier, err := newApplication(ctx, cfg)
			if err != nil {
				logger.Error("Failed to initialize billing reconciler", zap.Error(err))
				reportSetupFailure(ctx, notifier, constants.TriggerManual, err)
				return err
			}
			defer app.Close()

			stats, runErr := app.LocalHandleRequest(ctx)
			if errors.Is(runErr, errRunInProgress) {
				return runErr
			}

			out, err := json.MarshalIndent(stats, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode run statistics: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return runErr
		},
	}

	cmd.Flags().Bool("dry-run", false, "Compute changes without writing them")
	cmd.Flags().Bool("skip-local", false, "Skip the local-first pass")
	cmd.Flags().Bool("skip-provider", false, "Skip the provider-first pass")

	return cmd
}

// applyRunFlags lets explicit command line flags override the environment.
func applyRunFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("dry-run") {
		cfg.DryRun, _ = cmd.Flags().GetBool("dry-run")
	}
	if cmd.Flags().Changed("skip-local") {
		cfg.SkipLocalPass, _ = cmd.Flags().GetBool("skip-local")
	}
	if cmd.Flags().Changed("skip-provider") {
		cfg.SkipProviderPass, _ = cmd.Flags().GetBool("skip-provider")
	}
}

func lambdaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lambda",
		Short: "Serve scheduled and manual invocations as an AWS Lambda function",
		RunE: func(cmd *cobra.Command, args []string) error {
			return startLambda(cmd.Context())
		},
	}
}

func startLambda(ctx context.Context) error {
	cfg, err := loadRuntime()
	if err != nil {
		logger.Error("Failed to load configuration", zap.Error(err))
		reportSetupFailure(ctx, configFailureNotifier(), constants.TriggerScheduled, err)
		return err
	}

	app, notifier, err := newApplication(ctx, cfg)
	if err != nil {
		logger.Error("Failed to initialize billing reconciler", zap.Error(err))
		reportSetupFailure(ctx, notifier, constants.TriggerScheduled, err)
		return err
	}
	defer app.Close()

	logger.Info("Starting billing reconciler Lambda handler")
	lambda.Start(app.HandleRequest)
	return nil
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the reconciler database schema",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd.Context(), func(m *db.Migrator) error {
				applied, err := m.Up()
				if err != nil {
					return err
				}
				if !applied {
					fmt.Fprintln(cmd.OutOrStdout(), "No pending migrations")
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied")
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd.Context(), func(m *db.Migrator) error {
				if err := m.Down(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Rolled back one migration")
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the applied schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd.Context(), func(m *db.Migrator) error {
				status, err := m.Status()
				if err != nil {
					return err
				}
				if !status.Applied {
					fmt.Fprintln(cmd.OutOrStdout(), "No migrations applied")
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Version: %d\nDirty: %t\n", status.Version, status.Dirty)
				return nil
			})
		},
	})

	return cmd
}

func withMigrator(ctx context.Context, fn func(m *db.Migrator) error) error {
	cfg, err := loadRuntime()
	if err != nil {
		return err
	}

	awsCfg, err := awsclient.LoadConfig(ctx)
	if err != nil {
		return err
	}
	dsn, err := awsclient.NewSecretsManagerClient(awsCfg).DatabaseDSN(ctx, helpers.IsDeployedStage(cfg.Stage))
	if err != nil {
		return fmt.Errorf("failed to resolve database DSN: %w", err)
	}

	m, err := db.NewMigrator(dsn)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := m.Close(); cerr != nil {
			logger.Warn("Failed to close migrator", zap.Error(cerr))
		}
	}()
	return fn(m)
}
