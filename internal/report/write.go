package report

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Write renders r to w in format f.
func (r *Report) Write(w io.Writer, f Format) error {
	switch f {
	case FormatText:
		return r.writeText(w)
	case FormatHTML:
		return r.writeHTML(w)
	case FormatJSON:
		return r.writeJSON(w)
	case FormatYAML:
		return r.writeYAML(w)
	default:
		return fmt.Errorf("unsupported format: %s", f)
	}
}

// Save writes r to path on fsys, creating parent directories.
func Save(fsys afero.Fs, path string, r *Report, f Format) error {
	if err := fsys.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create report directory: %w", err)
	}
	file, err := fsys.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	if err := r.Write(file, f); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func (r *Report) writeText(w io.Writer) error {
	h := r.Header
	var b strings.Builder
	fmt.Fprintf(&b, "Folder Capacity Report - %s\n", h.Generated.Format("02-01-2006 15:04"))
	fmt.Fprintf(&b, "Scan Mode: %s\n", strings.ToUpper(h.Mode.String()))
	fmt.Fprintf(&b, "Time Horizon: %s (Reference Date: %s)\n", horizonLabel(h.Horizon), h.ReferenceDate)
	fmt.Fprintf(&b, "Minimum Size: %d MB\n", h.SizeMB)
	b.WriteString(strings.Repeat("-", 50) + "\n")
	for _, row := range r.Rows {
		b.WriteString(row.Line() + "\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

type document struct {
	Generated     string `json:"generated" yaml:"generated"`
	Root          string `json:"root,omitempty" yaml:"root,omitempty"`
	Mode          string `json:"mode" yaml:"mode"`
	Horizon       string `json:"horizon" yaml:"horizon"`
	ReferenceDate string `json:"reference_date" yaml:"reference_date"`
	MinSizeMB     int    `json:"min_size_mb" yaml:"min_size_mb"`
	State         string `json:"state" yaml:"state"`
	Count         int    `json:"count" yaml:"count"`
	Truncated     int    `json:"truncated" yaml:"truncated"`
	TotalSize     uint64 `json:"total_size" yaml:"total_size"`
	Folders       []Row  `json:"folders" yaml:"folders"`
}

func (r *Report) document() document {
	h := r.Header
	rows := r.Rows
	if rows == nil {
		rows = []Row{}
	}
	return document{
		Generated:     h.Generated.Format(time.RFC3339),
		Root:          h.Root,
		Mode:          h.Mode.String(),
		Horizon:       horizonLabel(h.Horizon),
		ReferenceDate: h.ReferenceDate,
		MinSizeMB:     h.SizeMB,
		State:         h.State.String(),
		Count:         len(rows),
		Truncated:     r.TruncatedCount(),
		TotalSize:     r.TotalSize(),
		Folders:       rows,
	}
}

func (r *Report) writeJSON(w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(r.document())
}

func (r *Report) writeYAML(w io.Writer) error {
	encoder := yaml.NewEncoder(w)
	defer encoder.Close()
	return encoder.Encode(r.document())
}
