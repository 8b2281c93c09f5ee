// Package editstate tracks the single row open for inline editing.
package editstate

import (
	"github.com/go-faster/errors"

	"github.com/iota-uz/suggestion-admin/pkg/fields"
	"github.com/iota-uz/suggestion-admin/pkg/rowset"
	"github.com/iota-uz/suggestion-admin/pkg/serrors"
)

type State int

const (
	Viewing State = iota
	Editing
)

func (s State) String() string {
	if s == Editing {
		return "editing"
	}
	return "viewing"
}

var (
	ErrAlreadyEditing = serrors.NewError("EDIT_CONFLICT", "another row is already being edited", "Edit.Errors.Conflict")
	ErrNotPersisted   = serrors.NewError("EDIT_NOT_PERSISTED", "only saved rows can be edited", "Edit.Errors.NotPersisted")
	ErrNotEditing     = serrors.NewError("EDIT_NOT_OPEN", "no row is being edited", "Edit.Errors.NotOpen")
)

// Machine is the edit cursor plus the working copy it owns. Edits land on
// the working copy; the collection sees them only after a successful save.
type Machine struct {
	schema   *fields.Schema
	state    State
	original rowset.Row
	working  rowset.Row
}

func New(schema *fields.Schema) *Machine {
	return &Machine{schema: schema}
}

func (m *Machine) State() State {
	return m.state
}

// Cursor returns the remote id being edited.
func (m *Machine) Cursor() (string, bool) {
	if m.state != Editing {
		return "", false
	}
	return m.original.RemoteID, true
}

func (m *Machine) IsEditing(remoteID string) bool {
	id, ok := m.Cursor()
	return ok && remoteID != "" && id == remoteID
}

// Begin opens row for editing. Re-opening the row already being edited is a no-op.
func (m *Machine) Begin(row rowset.Row) error {
	if !row.Persisted() {
		return errors.Wrapf(ErrNotPersisted, "key %d", row.LocalKey)
	}
	if m.state == Editing {
		if m.original.RemoteID == row.RemoteID {
			return nil
		}
		return errors.Wrapf(ErrAlreadyEditing, "editing %s", m.original.RemoteID)
	}
	m.state = Editing
	m.original = row.Clone()
	m.working = row.Clone()
	return nil
}

func (m *Machine) SetField(name string, v fields.Value) error {
	if m.state != Editing {
		return ErrNotEditing
	}
	if err := m.schema.CheckWritable(name, v); err != nil {
		return err
	}
	m.working.Values[name] = v
	return nil
}

func (m *Machine) ApplyDerivation(derived fields.Values) error {
	if m.state != Editing {
		return ErrNotEditing
	}
	rowset.ApplyDerivedTo(m.schema, &m.working, derived)
	return nil
}

// Working returns a copy of the working row.
func (m *Machine) Working() (rowset.Row, bool) {
	if m.state != Editing {
		return rowset.Row{}, false
	}
	return m.working.Clone(), true
}

// Dirty reports the columns whose working value differs from the last synced one.
func (m *Machine) Dirty() []string {
	if m.state != Editing {
		return nil
	}
	var out []string
	for _, d := range m.schema.Fields {
		if !m.working.Values.Get(d.Name).Equal(m.original.Values.Get(d.Name)) {
			out = append(out, d.Name)
		}
	}
	return out
}

// Cancel drops the working copy and returns the last synced row.
func (m *Machine) Cancel() (rowset.Row, bool) {
	if m.state != Editing {
		return rowset.Row{}, false
	}
	original := m.original.Clone()
	m.Reset()
	return original, true
}

// Commit closes the edit after a successful save.
func (m *Machine) Commit() error {
	if m.state != Editing {
		return ErrNotEditing
	}
	m.Reset()
	return nil
}

// Reset returns to Viewing without touching any row.
func (m *Machine) Reset() {
	m.state = Viewing
	m.original = rowset.Row{}
	m.working = rowset.Row{}
}
