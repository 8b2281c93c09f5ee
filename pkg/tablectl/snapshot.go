package tablectl

import (
	"github.com/iota-uz/suggestion-admin/pkg/editstate"
	"github.com/iota-uz/suggestion-admin/pkg/rowset"
)

// Snapshot is a consistent copy of the controller state for rendering.
type Snapshot struct {
	Table     string
	Rows      []rowset.Row
	State     editstate.State
	EditingID string
	// Working is the edited row's working copy, present while editing.
	Working       *rowset.Row
	Filter        string
	Notices       []Notice
	Busy          bool
	InFlight      map[string]Op
	ReferenceKeys []string
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := Snapshot{
		Table:         c.schema.Name,
		Rows:          c.rows.Rows(),
		State:         c.edit.State(),
		Filter:        c.filter,
		Notices:       append([]Notice(nil), c.notices...),
		Busy:          c.busy.IsSet(),
		InFlight:      make(map[string]Op, len(c.inflight)),
		ReferenceKeys: c.catalog.Keys(),
	}
	for id, op := range c.inflight {
		s.InFlight[id] = op
	}
	if id, ok := c.edit.Cursor(); ok {
		s.EditingID = id
		if w, ok := c.edit.Working(); ok {
			s.Working = &w
		}
	}
	return s
}
