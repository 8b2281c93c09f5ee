package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

type deleteOptions struct {
	table string
	id    string
}

func newDeleteCmd(env *cliEnv) *cobra.Command {
	var opts deleteOptions

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete one saved row by its backend id",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id := strings.TrimSpace(opts.id)
			if id == "" {
				return withCode(exitUsage, fmt.Errorf("--id is required"))
			}
			ctl, err := openTable(ctx, env, opts.table)
			if err != nil {
				return err
			}
			rows, err := loadRows(ctx, ctl, "")
			if err != nil {
				return err
			}
			for _, row := range rows {
				if row.RemoteID != id {
					continue
				}
				if err := ctl.Delete(ctx, row.LocalKey); err != nil {
					return withCode(exitRemote, err)
				}
				return writeJSONLine(cmd.OutOrStdout(), map[string]string{"table": ctl.Schema().Name, "deleted": id})
			}
			return withCode(exitUsage, fmt.Errorf("no row with id %q in %s", id, ctl.Schema().Name))
		},
	}

	cmd.Flags().StringVar(&opts.table, "table", "", "Table name (required)")
	cmd.Flags().StringVar(&opts.id, "id", "", "Backend row id (required)")
	_ = cmd.MarkFlagRequired("table")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}
