// Package report renders found directories as text, HTML, JSON or YAML.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/maruel/natural"
	"github.com/samber/lo"

	"github.com/michaelscutari/foldercap/internal/entry"
	"github.com/michaelscutari/foldercap/internal/scan"
	"github.com/michaelscutari/foldercap/internal/units"
)

// Format represents the output format type
type Format string

const (
	FormatText Format = "text"
	FormatHTML Format = "html"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts a format name or a file extension.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "text", "txt":
		return FormatText, nil
	case "html", "htm":
		return FormatHTML, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported format: %s", s)
	}
}

// Ext returns the file extension used for f.
func (f Format) Ext() string {
	switch f {
	case FormatText:
		return "txt"
	default:
		return string(f)
	}
}

// Header describes the scan a report covers.
type Header struct {
	Generated     time.Time
	Root          string
	Mode          scan.Mode
	Horizon       units.Horizon
	ReferenceDate string
	SizeMB        int
	State         scan.State
}

// HeaderFromMeta builds a header from a stored snapshot.
func HeaderFromMeta(m *entry.ScanMeta, generated time.Time) Header {
	h, err := units.ParseHorizon(m.Horizon)
	if err != nil {
		h = units.CustomHorizon
	}
	return Header{
		Generated:     generated,
		Root:          m.RootPath,
		Mode:          m.Mode,
		Horizon:       h,
		ReferenceDate: m.ReferenceDate,
		SizeMB:        m.SizeMB,
		State:         m.State,
	}
}

// Row is one found directory as it appears in a report.
type Row struct {
	Path           string `json:"path" yaml:"path"`
	TimestampLabel string `json:"timestamp_label" yaml:"timestamp_label"`
	Date           string `json:"date" yaml:"date"`
	SizeLabel      string `json:"size_label" yaml:"size_label"`
	Size           uint64 `json:"size" yaml:"size"`
	Truncated      bool   `json:"truncated" yaml:"truncated"`
}

// NewRow formats a found directory.
func NewRow(mode scan.Mode, sizeMB int, f entry.Found) Row {
	return Row{
		Path:           f.Path,
		TimestampLabel: mode.TimestampLabel(),
		Date:           units.FormatDate(f.Timestamp),
		SizeLabel:      units.SizeLabel(f.Size, f.Truncated, sizeMB),
		Size:           f.Size,
		Truncated:      f.Truncated,
	}
}

// Line renders r the way it is shown while scanning.
func (r Row) Line() string {
	return fmt.Sprintf("FOUND! %s | %s: %s | Size: %s", r.Path, r.TimestampLabel, r.Date, r.SizeLabel)
}

// Report is a header plus its rows.
type Report struct {
	Header Header
	Rows   []Row
}

// New builds a report from found records.
func New(h Header, found []entry.Found) *Report {
	return &Report{
		Header: h,
		Rows: lo.Map(found, func(f entry.Found, _ int) Row {
			return NewRow(h.Mode, h.SizeMB, f)
		}),
	}
}

// Add appends a live scan result.
func (r *Report) Add(ev scan.FoundEvent) Row {
	row := NewRow(r.Header.Mode, r.Header.SizeMB, entry.FoundFromEvent(0, ev))
	r.Rows = append(r.Rows, row)
	return row
}

// Sort orders rows by "path" (natural order) or "size" (largest first).
// Any other key keeps scan order.
func (r *Report) Sort(by string) {
	switch by {
	case "path":
		sort.SliceStable(r.Rows, func(i, j int) bool {
			return natural.Less(r.Rows[i].Path, r.Rows[j].Path)
		})
	case "size":
		sort.SliceStable(r.Rows, func(i, j int) bool {
			return r.Rows[i].Size > r.Rows[j].Size
		})
	}
}

// TotalSize sums the reported sizes. Truncated rows contribute their lower
// bound.
func (r *Report) TotalSize() uint64 {
	return lo.SumBy(r.Rows, func(row Row) uint64 { return row.Size })
}

// TruncatedCount counts rows whose size is a lower bound.
func (r *Report) TruncatedCount() int {
	return lo.CountBy(r.Rows, func(row Row) bool { return row.Truncated })
}

// Filename returns the suggested report file name, e.g.
// "1_yr_old_1000mb_folders_from_05_03_2024.html".
func Filename(h Header, f Format) string {
	modePart := "old"
	if h.Mode == scan.ModeRecent {
		modePart = "recent"
	}
	return fmt.Sprintf("%s_%s_%dmb_folders_from_%s.%s",
		h.Horizon.FilenamePart(), modePart, h.SizeMB, h.Generated.Format("02_01_2006"), f.Ext())
}

func horizonLabel(h units.Horizon) string {
	if h.Label == "" {
		return units.CustomHorizon.Label
	}
	return h.Label
}
