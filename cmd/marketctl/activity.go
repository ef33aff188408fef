package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	workerstorage "github.com/cuongbtq/solosphere-be/internal/worker/storage"
	"github.com/cuongbtq/solosphere-be/shared/postgresql"
	"github.com/spf13/cobra"
)

func ActivityCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Show the newest activity log entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			actor, _ := cmd.Flags().GetString("actor")
			limit, _ := cmd.Flags().GetInt("limit")

			client, err := postgresql.NewClient(a.cfg.Database.PostgreSQL(), a.logger.Logger)
			if err != nil {
				return err
			}
			defer client.Close()

			entries, err := workerstorage.NewStorage(client.GetDB(), a.logger.Logger).
				RecentActivity(cmd.Context(), actor, limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No activity recorded.")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "OCCURRED\tTYPE\tACTOR\tJOB\tBID")
			for _, e := range entries {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					e.OccurredAt.Format(time.RFC3339), e.EventType, e.ActorEmail, e.JobID, e.BidID)
			}
			return w.Flush()
		},
	}
	cmd.Flags().String("actor", "", "Only show entries of this actor email")
	cmd.Flags().Int("limit", 20, "Maximum number of entries")
	return cmd
}
