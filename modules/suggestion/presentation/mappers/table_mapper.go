package mappers

import (
	"github.com/iota-uz/suggestion-admin/modules/suggestion/presentation/viewmodels"
	"github.com/iota-uz/suggestion-admin/pkg/fields"
	"github.com/iota-uz/suggestion-admin/pkg/rowset"
	"github.com/iota-uz/suggestion-admin/pkg/tablectl"
	"github.com/iota-uz/suggestion-admin/pkg/tagcolor"
)

func SchemaToColumns(s *fields.Schema) []viewmodels.Column {
	out := make([]viewmodels.Column, 0, len(s.Fields))
	for _, d := range s.Fields {
		out = append(out, viewmodels.Column{
			Name:     d.Name,
			Label:    d.Label,
			Kind:     d.Kind.String(),
			Rule:     string(d.Rule),
			SaveRule: string(d.SaveRule),
			Options:  d.Options,
			Derived:  d.Derived,
			Tagged:   d.Tagged,
		})
	}
	return out
}

// RowToViewModel renders tagged cells with their palette color.
func RowToViewModel(s *fields.Schema, r rowset.Row) viewmodels.Row {
	cells := make(map[string]viewmodels.Cell, len(s.Fields))
	for _, d := range s.Fields {
		v := r.Values.Get(d.Name)
		cell := viewmodels.Cell{Value: v.Any()}
		if d.Tagged && v.Valid {
			cell.Color = string(tagcolor.ColorFor(v.String()))
		}
		cells[d.Name] = cell
	}
	return viewmodels.Row{
		Key:       r.LocalKey,
		ID:        r.RemoteID,
		Cells:     cells,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func SnapshotToTable(s *fields.Schema, snap tablectl.Snapshot) *viewmodels.Table {
	rows := make([]viewmodels.Row, 0, len(snap.Rows))
	for _, r := range snap.Rows {
		vm := RowToViewModel(s, r)
		vm.Editing = snap.EditingID != "" && r.RemoteID == snap.EditingID
		if op, ok := snap.InFlight[r.RemoteID]; ok && r.RemoteID != "" {
			vm.Pending = string(op)
		}
		rows = append(rows, vm)
	}
	table := &viewmodels.Table{
		Name:          snap.Table,
		Columns:       SchemaToColumns(s),
		KeyField:      s.KeyField,
		FilterField:   s.FilterField,
		Filter:        snap.Filter,
		State:         snap.State.String(),
		Rows:          rows,
		Busy:          snap.Busy,
		Notices:       NoticesToViewModels(snap.Notices),
		ReferenceKeys: snap.ReferenceKeys,
	}
	if snap.Working != nil {
		w := RowToViewModel(s, *snap.Working)
		w.Editing = true
		table.Working = &w
	}
	return table
}

func NoticesToViewModels(notices []tablectl.Notice) []viewmodels.Notice {
	out := make([]viewmodels.Notice, 0, len(notices))
	for _, n := range notices {
		out = append(out, viewmodels.Notice{
			Level:   string(n.Level),
			Op:      string(n.Op),
			Message: n.Message,
			At:      n.At,
		})
	}
	return out
}

func ViolationsToViewModels(result fields.Result) []viewmodels.Violation {
	out := make([]viewmodels.Violation, 0, len(result.Violations))
	for _, v := range result.Violations {
		out = append(out, viewmodels.Violation{
			Key:     v.RowKey,
			Field:   v.Field,
			Rule:    v.Tag,
			Message: v.Message,
		})
	}
	return out
}

func SyncEventToViewModel(e *tablectl.SyncEvent) viewmodels.SyncEvent {
	vm := viewmodels.SyncEvent{
		Table:      e.Table,
		Op:         string(e.Op),
		ID:         e.RemoteID,
		Rows:       e.Rows,
		DurationMS: e.Duration.Milliseconds(),
	}
	if e.Err != nil {
		vm.Error = e.Err.Error()
	}
	return vm
}
