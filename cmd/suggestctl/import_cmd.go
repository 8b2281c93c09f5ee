package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iota-uz/suggestion-admin/pkg/fields"
	"github.com/iota-uz/suggestion-admin/pkg/tablectl"
)

type importOptions struct {
	table string
	input string
	apply bool
}

type importSummary struct {
	Table      string             `json:"table"`
	Rows       int                `json:"rows"`
	Skipped    []string           `json:"skipped_columns,omitempty"`
	Violations []fields.Violation `json:"violations,omitempty"`
	Applied    bool               `json:"applied"`
}

func newImportCmd(env *cliEnv) *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Bulk submit rows from a CSV file (dry-run unless --apply)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd.Context(), env, opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.table, "table", "", "Table name (required)")
	cmd.Flags().StringVar(&opts.input, "input", "", "CSV file whose header names the columns (required)")
	cmd.Flags().BoolVar(&opts.apply, "apply", false, "Submit to the backend (default is dry-run)")
	_ = cmd.MarkFlagRequired("table")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func runImport(ctx context.Context, env *cliEnv, opts importOptions, out io.Writer) error {
	ctl, err := openTable(ctx, env, opts.table)
	if err != nil {
		return err
	}
	r, closeFn, err := openCSV(opts.input)
	if err != nil {
		return withCode(exitUsage, fmt.Errorf("open --input: %w", err))
	}
	defer func() { _ = closeFn() }()

	header, err := readHeader(r)
	if err != nil {
		return withCode(exitValidation, fmt.Errorf("%s: %w", opts.input, err))
	}
	summary := importSummary{Table: ctl.Schema().Name}
	columns, skipped, err := importColumns(ctl.Schema(), header)
	if err != nil {
		return withCode(exitValidation, err)
	}
	summary.Skipped = skipped

	line := 1
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return withCode(exitValidation, fmt.Errorf("line %d: %w", line, err))
		}
		if blankRecord(rec) {
			continue
		}
		if err := importRecord(ctl, columns, rec); err != nil {
			return withCode(exitValidation, fmt.Errorf("line %d: %w", line, err))
		}
		summary.Rows++
	}

	result := ctl.Validate(fields.ModeSubmit)
	summary.Violations = result.Violations
	if !result.OK() {
		_ = writeJSONLine(out, summary)
		return withCode(exitValidation, fmt.Errorf("%d violation(s); nothing submitted", len(result.Violations)))
	}
	if opts.apply && summary.Rows > 0 {
		if err := ctl.Submit(ctx); err != nil {
			var verr *tablectl.ValidationError
			if errors.As(err, &verr) {
				return withCode(exitValidation, err)
			}
			return withCode(exitRemote, err)
		}
		summary.Applied = true
	}
	return writeJSONLine(out, summary)
}

type importColumn struct {
	index int
	name  string
	// key columns go through reference selection so derived columns follow.
	key bool
}

// importColumns maps header positions onto writable schema columns. Derived
// columns are skipped; their values come from the reference list.
func importColumns(schema *fields.Schema, header []string) ([]importColumn, []string, error) {
	var (
		cols    []importColumn
		skipped []string
		seen    = map[string]bool{}
	)
	for i, name := range header {
		if name == "" || strings.EqualFold(name, "id") {
			continue
		}
		d, ok := schema.Field(name)
		if !ok {
			return nil, nil, fmt.Errorf("unknown column %q", name)
		}
		if seen[name] {
			return nil, nil, fmt.Errorf("duplicate column %q", name)
		}
		seen[name] = true
		if d.Derived {
			skipped = append(skipped, name)
			continue
		}
		cols = append(cols, importColumn{index: i, name: name, key: name == schema.KeyField})
	}
	if len(cols) == 0 {
		return nil, nil, fmt.Errorf("no writable columns in header")
	}
	return cols, skipped, nil
}

func importRecord(ctl *tablectl.Controller, columns []importColumn, rec []string) error {
	row := ctl.Add()
	for _, col := range columns {
		raw := ""
		if col.index < len(rec) {
			raw = strings.TrimSpace(rec[col.index])
		}
		var err error
		if col.key {
			err = ctl.Select(row.LocalKey, raw)
		} else {
			err = ctl.SetField(row.LocalKey, col.name, raw)
		}
		if err != nil {
			return fmt.Errorf("%s: %w", col.name, err)
		}
	}
	return nil
}

func blankRecord(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
