package scan

import (
	"fmt"
	"strings"
	"time"
)

// Mode selects which timestamp is compared and in which direction.
type Mode int

const (
	// ModeDormant matches directories last modified before the reference.
	ModeDormant Mode = iota
	// ModeRecent matches directories created after the reference.
	ModeRecent
)

func (m Mode) String() string {
	switch m {
	case ModeDormant:
		return "dormant"
	case ModeRecent:
		return "recent"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode accepts "dormant"/"old" and "recent"/"new".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "dormant", "old":
		return ModeDormant, nil
	case "recent", "new":
		return ModeRecent, nil
	default:
		return 0, fmt.Errorf("unknown mode %q (expected dormant or recent)", s)
	}
}

func (m Mode) valid() bool {
	return m == ModeDormant || m == ModeRecent
}

// TimestampLabel names the timestamp the mode compares.
func (m Mode) TimestampLabel() string {
	if m == ModeRecent {
		return "Created"
	}
	return "Modified"
}

// Timestamp returns the instant of meta that m compares.
func (m Mode) Timestamp(meta Meta) time.Time {
	if m == ModeRecent {
		return meta.CreateTime
	}
	return meta.ModTime
}

// Meta is the subset of directory metadata the matcher needs.
type Meta struct {
	ModTime    time.Time
	CreateTime time.Time
}

// Matches reports whether a directory with the given metadata passes the
// time filter. Dormant requires a modification instant strictly before ref,
// Recent a creation instant strictly after it.
func Matches(mode Mode, meta Meta, ref time.Time) bool {
	switch mode {
	case ModeDormant:
		return meta.ModTime.Before(ref)
	case ModeRecent:
		return meta.CreateTime.After(ref)
	default:
		return false
	}
}
