package domain

// EventKind is the type of a decoded streaming event.
type EventKind int

const (
	EventUnknown EventKind = iota
	EventNewStatus
	EventStatusDeleted
	EventStatusUpdated
	EventConnected
	EventDisconnected
)

func (k EventKind) String() string {
	switch k {
	case EventNewStatus:
		return "new-status"
	case EventStatusDeleted:
		return "status-deleted"
	case EventStatusUpdated:
		return "status-updated"
	case EventConnected:
		return "connected"
	case EventDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// StreamEvent is one item of a live subscription. Status is set for
// EventNewStatus and EventStatusUpdated, StatusID for EventStatusDeleted.
// Connection events carry Err (the cause of a drop) and Final, which is true
// when the transport has given up and the sequence ends.
type StreamEvent struct {
	Kind     EventKind
	Status   *Status
	StatusID string
	Err      error
	Final    bool
}
