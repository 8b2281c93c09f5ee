package viewmodels

import "time"

type Column struct {
	Name     string   `json:"name"`
	Label    string   `json:"label"`
	Kind     string   `json:"kind"`
	Rule     string   `json:"rule,omitempty"`
	SaveRule string   `json:"saveRule,omitempty"`
	Options  []string `json:"options,omitempty"`
	Derived  bool     `json:"derived,omitempty"`
	Tagged   bool     `json:"tagged,omitempty"`
}

type Cell struct {
	Value any    `json:"value"`
	Color string `json:"color,omitempty"`
}

type Row struct {
	Key       int             `json:"key"`
	ID        string          `json:"id,omitempty"`
	Cells     map[string]Cell `json:"cells"`
	Editing   bool            `json:"editing,omitempty"`
	Pending   string          `json:"pending,omitempty"`
	CreatedAt string          `json:"createdAt,omitempty"`
	UpdatedAt string          `json:"updatedAt,omitempty"`
}

type Notice struct {
	Level   string    `json:"level"`
	Op      string    `json:"op"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

type Table struct {
	Name          string   `json:"name"`
	Columns       []Column `json:"columns"`
	KeyField      string   `json:"keyField,omitempty"`
	FilterField   string   `json:"filterField,omitempty"`
	Filter        string   `json:"filter,omitempty"`
	State         string   `json:"state"`
	Rows          []Row    `json:"rows"`
	Working       *Row     `json:"working,omitempty"`
	Busy          bool     `json:"busy"`
	Notices       []Notice `json:"notices"`
	ReferenceKeys []string `json:"referenceKeys,omitempty"`
}

type Violation struct {
	Key     int    `json:"key"`
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

type SyncEvent struct {
	Table      string `json:"table"`
	Op         string `json:"op"`
	ID         string `json:"id,omitempty"`
	Rows       int    `json:"rows"`
	Error      string `json:"error,omitempty"`
	DurationMS int64  `json:"durationMs"`
}

type Tag struct {
	Label string `json:"label"`
	Color string `json:"color"`
}
