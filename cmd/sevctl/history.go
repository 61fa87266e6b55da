package main

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"accidentsev/internal/app"

	"github.com/spf13/cobra"
)

func newHistoryCmd(opts *options) *cobra.Command {
	var (
		store  string
		sqlite string
		limit  int
	)
	cmd := &cobra.Command{
		Use:   "history <session-id>",
		Short: "List the recorded predictions of a form session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.config()
			if store != "" {
				cfg.StoreDriver = store
			}
			if sqlite != "" {
				cfg.SQLitePath = sqlite
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()
			repo, closeStore, err := app.OpenRecordStore(ctx, cfg, opts.logger())
			if err != nil {
				return err
			}
			defer closeStore()
			if repo == nil {
				return errors.New("prediction records are disabled (STORE_DRIVER=none)")
			}

			records, err := repo.ListBySession(ctx, args[0], limit)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "CREATED\tSTATUS\tLABEL\tPROBABILITY\tMODEL")
			for _, r := range records {
				label, proba := "-", "-"
				if r.Result != nil {
					label = r.Result.Label
					proba = fmt.Sprintf("%.4f", r.Result.Probability)
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
					r.CreatedAt.Format(time.RFC3339), r.Status, label, proba, r.ModelName)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&store, "store", "", "record store driver: sqlite or mongo (default STORE_DRIVER)")
	cmd.Flags().StringVar(&sqlite, "sqlite", "", "sqlite database path (default SQLITE_PATH)")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum records to list")
	return cmd
}
