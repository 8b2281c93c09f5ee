package tablectl

import "time"

type Op string

const (
	OpSubmit    Op = "submit"
	OpSave      Op = "save"
	OpDelete    Op = "delete"
	OpReload    Op = "reload"
	OpReference Op = "reference"
)

// SyncEvent is published after every backend call.
type SyncEvent struct {
	Table    string
	Op       Op
	RemoteID string
	Rows     int
	Err      error
	Duration time.Duration
}

type NoticeLevel string

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeError   NoticeLevel = "error"
)

// Notice is a user-facing outcome message.
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Op      Op          `json:"op"`
	Message string      `json:"message"`
	At      time.Time   `json:"at"`
}

const maxNotices = 20
