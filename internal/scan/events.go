package scan

import "time"

// Event is one item of the ordered stream a scan produces.
type Event interface {
	isEvent()
}

// LogKind classifies a LogEvent.
type LogKind int

const (
	LogInfo LogKind = iota
	LogCandidate
	LogConfirmed
	LogSkipNotFound
	LogSkipPermission
	LogError
)

func (k LogKind) String() string {
	switch k {
	case LogCandidate:
		return "candidate"
	case LogConfirmed:
		return "confirmed"
	case LogSkipNotFound:
		return "skip-not-found"
	case LogSkipPermission:
		return "skip-permission"
	case LogError:
		return "error"
	default:
		return "info"
	}
}

// ParseLogKind is the inverse of LogKind.String.
func ParseLogKind(s string) LogKind {
	for k := LogInfo; k <= LogError; k++ {
		if k.String() == s {
			return k
		}
	}
	return LogInfo
}

// IsSkip reports whether the entry named by the log was skipped.
func (k LogKind) IsSkip() bool {
	return k == LogSkipNotFound || k == LogSkipPermission
}

// LogEvent is an informational or diagnostic line.
type LogEvent struct {
	Kind    LogKind
	Path    string
	Message string
	Err     error
}

func (LogEvent) isEvent() {}

// FoundEvent reports a directory that passed both the time and size checks.
// When Truncated is set, Size is a lower bound: summation stopped as soon as
// the threshold was exceeded.
type FoundEvent struct {
	Path      string
	Timestamp time.Time
	Size      uint64
	Truncated bool
}

func (FoundEvent) isEvent() {}

// StatusEvent names the directory currently being inspected. Consumers may
// coalesce or drop these.
type StatusEvent struct {
	Path string
}

func (StatusEvent) isEvent() {}

// State is the terminal state of a scan.
type State int

const (
	StateCompleted State = iota
	StateStopped
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateCompleted:
		return "completed"
	case StateStopped:
		return "stopped"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ParseState is the inverse of State.String.
func ParseState(s string) State {
	switch s {
	case "stopped":
		return StateStopped
	case "failed":
		return StateFailed
	default:
		return StateCompleted
	}
}

// FinishedEvent is always the last event of a scan. Err carries the
// configuration error when State is StateFailed.
type FinishedEvent struct {
	State State
	Err   error
}

func (FinishedEvent) isEvent() {}

// Stopped reports whether the scan ended because it was cancelled.
func (e FinishedEvent) Stopped() bool {
	return e.State == StateStopped
}
