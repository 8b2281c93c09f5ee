package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/xuri/excelize/v2"

	"github.com/iota-uz/suggestion-admin/pkg/fields"
	"github.com/iota-uz/suggestion-admin/pkg/rowset"
	"github.com/iota-uz/suggestion-admin/pkg/tablectl"
	"github.com/iota-uz/suggestion-admin/pkg/tagcolor"
)

type exportOptions struct {
	table  string
	filter string
	output string
}

// tagFills are light backgrounds matching the tag palette.
var tagFills = map[tagcolor.Color]string{
	tagcolor.Blue:    "#DDEBF7",
	tagcolor.Green:   "#E2EFDA",
	tagcolor.Red:     "#F8D7DA",
	tagcolor.Yellow:  "#FFF2CC",
	tagcolor.Orange:  "#FCE4D6",
	tagcolor.Purple:  "#E4DFEC",
	tagcolor.Cyan:    "#DDF4F7",
	tagcolor.Magenta: "#F9DDF0",
}

func newExportCmd(env *cliEnv) *cobra.Command {
	var opts exportOptions

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a table to an .xlsx or .csv file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd.Context(), env, opts)
		},
	}

	cmd.Flags().StringVar(&opts.table, "table", "", "Table name (required)")
	cmd.Flags().StringVar(&opts.filter, "filter", "", "Categorical filter value")
	cmd.Flags().StringVar(&opts.output, "output", "", "Output file; .xlsx or .csv (required)")
	_ = cmd.MarkFlagRequired("table")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func runExport(ctx context.Context, env *cliEnv, opts exportOptions) error {
	ext := strings.ToLower(filepath.Ext(opts.output))
	if ext != ".xlsx" && ext != ".csv" {
		return withCode(exitUsage, fmt.Errorf("--output must end in .xlsx or .csv"))
	}
	ctl, err := openTable(ctx, env, opts.table)
	if err != nil {
		return err
	}
	rows, err := loadRows(ctx, ctl, opts.filter)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(opts.output); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return withCode(exitIO, fmt.Errorf("mkdir %s: %w", dir, err))
		}
	}
	if ext == ".csv" {
		return exportCSV(opts.output, ctl, rows)
	}
	return exportXLSX(opts.output, ctl, rows)
}

func exportCSV(path string, ctl *tablectl.Controller, rows []rowset.Row) error {
	f, err := os.Create(path)
	if err != nil {
		return withCode(exitIO, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(recordHeader(ctl)); err != nil {
		return withCode(exitIO, err)
	}
	for _, row := range rows {
		if err := w.Write(rowRecord(ctl, row)); err != nil {
			return withCode(exitIO, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return withCode(exitIO, err)
	}
	return nil
}

func exportXLSX(path string, ctl *tablectl.Controller, rows []rowset.Row) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	schema := ctl.Schema()
	sheet := schema.Name
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return withCode(exitIO, err)
	}

	header := make([]interface{}, 0, len(schema.Fields)+1)
	header = append(header, "ID")
	for _, d := range schema.Fields {
		header = append(header, d.Label)
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return withCode(exitIO, err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return withCode(exitIO, err)
	}
	if err := f.SetRowStyle(sheet, 1, 1, bold); err != nil {
		return withCode(exitIO, err)
	}

	fills := map[tagcolor.Color]int{}
	for i, row := range rows {
		excelRow := i + 2
		cells := make([]interface{}, 0, len(schema.Fields)+1)
		cells = append(cells, row.RemoteID)
		for _, d := range schema.Fields {
			cells = append(cells, cellValue(row.Values.Get(d.Name)))
		}
		cell, err := excelize.CoordinatesToCellName(1, excelRow)
		if err != nil {
			return withCode(exitIO, err)
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return withCode(exitIO, err)
		}

		for col, d := range schema.Fields {
			v := row.Values.Get(d.Name)
			if !d.Tagged || !v.Valid || v.String() == "" {
				continue
			}
			color := tagcolor.ColorFor(v.String())
			style, ok := fills[color]
			if !ok {
				style, err = f.NewStyle(&excelize.Style{
					Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{tagFills[color]}},
				})
				if err != nil {
					return withCode(exitIO, err)
				}
				fills[color] = style
			}
			name, err := excelize.CoordinatesToCellName(col+2, excelRow)
			if err != nil {
				return withCode(exitIO, err)
			}
			if err := f.SetCellStyle(sheet, name, name, style); err != nil {
				return withCode(exitIO, err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return withCode(exitIO, fmt.Errorf("save %s: %w", path, err))
	}
	return nil
}

func cellValue(v fields.Value) interface{} {
	if !v.Valid {
		return nil
	}
	return v.Any()
}
