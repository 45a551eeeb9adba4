// Package entry holds the records a scan persists and reports on.
package entry

import (
	"time"

	"github.com/michaelscutari/foldercap/internal/scan"
)

// Found is a directory that passed both the time and size checks.
type Found struct {
	Seq       int64
	Path      string
	Timestamp time.Time
	Size      uint64 // Lower bound when Truncated
	Truncated bool
}

// FoundFromEvent converts a scan result into a record.
func FoundFromEvent(seq int64, ev scan.FoundEvent) Found {
	return Found{
		Seq:       seq,
		Path:      ev.Path,
		Timestamp: ev.Timestamp,
		Size:      ev.Size,
		Truncated: ev.Truncated,
	}
}

// LogLine is a persisted scan log message.
type LogLine struct {
	Seq     int64
	Kind    scan.LogKind
	Path    string
	Message string
}

// LogFromEvent converts a scan log event into a record.
func LogFromEvent(seq int64, ev scan.LogEvent) LogLine {
	return LogLine{
		Seq:     seq,
		Kind:    ev.Kind,
		Path:    ev.Path,
		Message: ev.Message,
	}
}

// ScanMeta holds metadata about a scan.
type ScanMeta struct {
	RootPath       string
	Mode           scan.Mode
	ReferenceDate  string // dd-mm-yyyy
	Horizon        string // preset key, or "custom"
	SizeMB         int
	ThresholdBytes uint64
	StartTime      time.Time
	EndTime        time.Time
	State          scan.State
	FoundCount     int64
	SkipCount      int64
	ErrorCount     int64
}
