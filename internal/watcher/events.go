package watcher

import "time"

// EventType is the kind of file system change.
type EventType int

const (
	EventCreate EventType = iota
	EventModify
	EventDelete
	EventRename
)

func (e EventType) String() string {
	switch e {
	case EventCreate:
		return "create"
	case EventModify:
		return "modify"
	case EventDelete:
		return "delete"
	case EventRename:
		return "rename"
	default:
		return "unknown"
	}
}

// FileEvent is a change to a single note file, identified by file name.
type FileEvent struct {
	Filename  string
	Type      EventType
	Timestamp time.Time
}
