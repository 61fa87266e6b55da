package main

import (
	"fmt"

	"accidentsev/internal/catalog"
	"accidentsev/internal/schema"

	"github.com/spf13/cobra"
)

func newCatalogCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect the reference catalog",
	}

	check := &cobra.Command{
		Use:   "check",
		Short: "Validate the reference options file against the field schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.config()
			cat, err := catalog.Load(cfg.RefOptionsPath, schema.Default())
			if err != nil {
				return err
			}
			total := 0
			for _, f := range cat.Fields() {
				o, _ := cat.Options(f)
				total += len(o)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %s (%d fields, %d options)\n", cfg.RefOptionsPath, len(cat.Fields()), total)
			return nil
		},
	}

	var withHelp bool
	list := &cobra.Command{
		Use:   "options <field>",
		Short: "Print the selectable options of a field",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := catalog.Load(opts.config().RefOptionsPath, schema.Default())
			if err != nil {
				return err
			}
			formatted, err := cat.FormattedOptions(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if help, ok := cat.Help(args[0]); ok && withHelp {
				fmt.Fprintln(out, help.Definition)
				fmt.Fprintln(out)
			}
			for _, line := range formatted {
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}
	list.Flags().BoolVar(&withHelp, "help-text", false, "print the field definition first")

	cmd.AddCommand(check, list)
	return cmd
}
