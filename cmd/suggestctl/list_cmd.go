package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/iota-uz/suggestion-admin/pkg/tagcolor"
)

type listOptions struct {
	table  string
	filter string
	json   bool
}

func newListCmd(env *cliEnv) *cobra.Command {
	var opts listOptions

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the rows of a table",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctl, err := openTable(cmd.Context(), env, opts.table)
			if err != nil {
				return err
			}
			rows, err := loadRows(cmd.Context(), ctl, opts.filter)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			header := recordHeader(ctl)

			if opts.json {
				for _, row := range rows {
					rec := rowRecord(ctl, row)
					line := make(map[string]string, len(header))
					for i, name := range header {
						line[name] = rec[i]
					}
					if err := writeJSONLine(out, line); err != nil {
						return err
					}
				}
				return nil
			}

			schema := ctl.Schema()
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, strings.Join(header, "\t"))
			for _, row := range rows {
				rec := rowRecord(ctl, row)
				for i, name := range header[1:] {
					if d, ok := schema.Field(name); ok && d.Tagged && rec[i+1] != "" {
						rec[i+1] = fmt.Sprintf("%s (%s)", rec[i+1], tagcolor.ColorFor(rec[i+1]))
					}
				}
				fmt.Fprintln(tw, strings.Join(rec, "\t"))
			}
			if err := tw.Flush(); err != nil {
				return withCode(exitIO, err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.table, "table", "", "Table name: suggestion-orgs (orgs) or records (required)")
	cmd.Flags().StringVar(&opts.filter, "filter", "", "Categorical filter value")
	cmd.Flags().BoolVar(&opts.json, "json", false, "Print one JSON object per row")
	_ = cmd.MarkFlagRequired("table")
	return cmd
}
