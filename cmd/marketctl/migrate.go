package main

import (
	"context"
	"fmt"
	"time"

	"github.com/cuongbtq/solosphere-be/internal/api/storage"
	"github.com/cuongbtq/solosphere-be/internal/api/storage/mongostore"
	"github.com/cuongbtq/solosphere-be/internal/config"
	workerstorage "github.com/cuongbtq/solosphere-be/internal/worker/storage"
	"github.com/cuongbtq/solosphere-be/shared/mongodb"
	"github.com/cuongbtq/solosphere-be/shared/postgresql"
	"github.com/spf13/cobra"
)

func MigrateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create tables (postgres) or indexes (mongodb) for jobs, bids and the activity log",
		RunE: func(cmd *cobra.Command, args []string) error {
			timeout, _ := cmd.Flags().GetDuration("timeout")
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			db := a.cfg.Database
			switch db.Driver {
			case config.DriverPostgres:
				client, err := postgresql.NewClient(db.PostgreSQL(), a.logger.Logger)
				if err != nil {
					return err
				}
				defer client.Close()

				if err := client.Migrate(ctx, storage.Schema, workerstorage.Schema); err != nil {
					return err
				}
			case config.DriverMongoDB:
				client, err := mongodb.NewClient(db.MongoDB(), a.logger.Logger)
				if err != nil {
					return err
				}
				defer client.Close()

				if err := mongostore.New(client.Database(), a.logger.Logger).EnsureIndexes(ctx); err != nil {
					return err
				}
			default:
				return fmt.Errorf("nothing to migrate for the %q driver", db.Driver)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Migration complete (%s)\n", db.Driver)
			return nil
		},
	}
	cmd.Flags().Duration("timeout", time.Minute, "Maximum time to spend on the migration")
	return cmd
}
