// Package units converts between the date and size representations used by
// scan configuration, reports and the terminal front-ends.
package units

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the dd-mm-yyyy layout used for reference dates and reports.
const DateLayout = "02-01-2006"

// parseLayout accepts single-digit day and month as well.
const parseLayout = "2-1-2006"

const (
	B  = 1
	KB = 1024 * B
	MB = 1024 * KB
	GB = 1024 * MB
)

// MaxSizeMB is the largest size in MB whose byte count fits in a uint64.
const MaxSizeMB = math.MaxUint64 / MB

// ParseDate parses a dd-mm-yyyy date as midnight in the local time zone.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(parseLayout, strings.TrimSpace(s), time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected dd-mm-yyyy): %w", s, err)
	}
	return t, nil
}

// FormatDate renders t in local time as dd-mm-yyyy.
func FormatDate(t time.Time) string {
	return t.In(time.Local).Format(DateLayout)
}

// MBToBytes converts binary megabytes to bytes, saturating at
// math.MaxUint64.
func MBToBytes(mb uint64) uint64 {
	if mb > MaxSizeMB {
		return math.MaxUint64
	}
	return mb * MB
}

// BytesToMB converts bytes to binary megabytes.
func BytesToMB(b uint64) float64 {
	return float64(b) / MB
}

// ParseSizeMB parses a positive whole number of megabytes.
func ParseSizeMB(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", s, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("invalid size %q: must be a positive number of MB", s)
	}
	if uint64(n) > MaxSizeMB {
		return 0, fmt.Errorf("invalid size %q: too large (max %d MB)", s, uint64(MaxSizeMB))
	}
	return n, nil
}

// SizeLabel renders a measured size for reports. A truncated measurement is
// shown as exceeding the limit rather than as an exact figure.
func SizeLabel(size uint64, truncated bool, limitMB int) string {
	if truncated {
		return fmt.Sprintf("> %d MB (Limit Reached)", limitMB)
	}
	return fmt.Sprintf("%.2f MB", BytesToMB(size))
}
