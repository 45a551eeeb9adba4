package units

import (
	"fmt"
	"strings"
	"time"
)

// Horizon is a preset look-back period used to derive a reference date.
type Horizon struct {
	Key   string
	Label string
	Count int
	Unit  HorizonUnit
}

// HorizonUnit is the granularity of a Horizon.
type HorizonUnit int

const (
	Custom HorizonUnit = iota
	Weeks
	Months
	Years
)

// CustomHorizon marks a reference date that was entered directly.
var CustomHorizon = Horizon{Key: "custom", Label: "Custom"}

// Horizons lists the presets in menu order.
var Horizons = []Horizon{
	{Key: "1w", Label: "1 Week", Count: 1, Unit: Weeks},
	{Key: "2w", Label: "2 Weeks", Count: 2, Unit: Weeks},
	{Key: "1m", Label: "1 Month", Count: 1, Unit: Months},
	{Key: "3m", Label: "3 Months", Count: 3, Unit: Months},
	{Key: "6m", Label: "6 Months", Count: 6, Unit: Months},
	{Key: "1y", Label: "1 Year", Count: 1, Unit: Years},
	{Key: "2y", Label: "2 Years", Count: 2, Unit: Years},
	{Key: "3y", Label: "3 Years", Count: 3, Unit: Years},
	{Key: "5y", Label: "5 Years", Count: 5, Unit: Years},
}

// ParseHorizon looks up a preset by key ("1y") or label ("1 Year").
func ParseHorizon(s string) (Horizon, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, CustomHorizon.Key) {
		return CustomHorizon, nil
	}
	for _, h := range Horizons {
		if strings.EqualFold(s, h.Key) || strings.EqualFold(s, h.Label) {
			return h, nil
		}
	}
	return Horizon{}, fmt.Errorf("unknown horizon %q", s)
}

// Days returns the look-back length in days. Months count as 30 days and
// years as 365.
func (h Horizon) Days() int {
	switch h.Unit {
	case Weeks:
		return h.Count * 7
	case Months:
		return h.Count * 30
	case Years:
		return h.Count * 365
	default:
		return 0
	}
}

// ReferenceDate returns the dd-mm-yyyy date h before now.
func (h Horizon) ReferenceDate(now time.Time) string {
	return FormatDate(now.AddDate(0, 0, -h.Days()))
}

// FilenamePart renders h for report file names, e.g. "1_yr" or "3_mths".
func (h Horizon) FilenamePart() string {
	var unit string
	switch h.Unit {
	case Weeks:
		unit = "wk"
	case Months:
		unit = "mth"
	case Years:
		unit = "yr"
	default:
		return "custom_date"
	}
	part := fmt.Sprintf("%d_%s", h.Count, unit)
	if h.Count > 1 {
		part += "s"
	}
	return part
}

// SizePreset is a named minimum-size choice.
type SizePreset struct {
	Label string
	MB    int
}

// SizePresets lists the size choices offered by front-ends.
var SizePresets = []SizePreset{
	{"100 MB", 100},
	{"250 MB", 250},
	{"500 MB", 500},
	{"1 GB", 1024},
	{"2 GB", 2 * 1024},
	{"5 GB", 5 * 1024},
	{"10 GB", 10 * 1024},
	{"20 GB", 20 * 1024},
}
