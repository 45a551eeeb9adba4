package scan

import (
	"errors"
	"os"
	"regexp"
	"time"

	"github.com/michaelscutari/foldercap/internal/pathutil"
	"github.com/michaelscutari/foldercap/internal/units"
)

// DefaultExcludePatterns are always applied. NFS snapshot directories mirror
// the live tree and would be reported twice.
var DefaultExcludePatterns = []string{`/\.snapshot(/|$)`}

// Params holds scan inputs as entered by a front-end, before validation.
type Params struct {
	// Root is the directory to audit. "~" is expanded.
	Root string

	// Mode selects dormant (old) or recent (new) directories.
	Mode Mode

	// Date is the reference date in dd-mm-yyyy form.
	Date string

	// SizeMB is the minimum folder size in megabytes.
	SizeMB string

	// Exclude holds extra regular expressions for directory paths to skip.
	Exclude []string
}

// Config is a validated, read-only scan configuration.
type Config struct {
	Root           string
	Mode           Mode
	Reference      time.Time
	SizeMB         int
	ThresholdBytes uint64

	// ExcludePatterns are regular expressions for paths to skip.
	ExcludePatterns []*regexp.Regexp
}

// Config validates p. The root must be an existing directory, the date must
// parse and the size must be a positive whole number of megabytes.
func (p Params) Config() (*Config, error) {
	root, err := pathutil.Resolve(p.Root)
	if err != nil || p.Root == "" {
		if err == nil {
			err = errors.New("no folder given")
		}
		return nil, &ConfigError{Field: "root", Value: p.Root, Err: err}
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, &ConfigError{Field: "root", Value: p.Root, Err: err}
	}
	if !info.IsDir() {
		return nil, &ConfigError{Field: "root", Value: p.Root, Err: errors.New("not a directory")}
	}

	if !p.Mode.valid() {
		return nil, &ConfigError{Field: "mode", Value: p.Mode.String(), Err: errors.New("unknown mode")}
	}

	ref, err := units.ParseDate(p.Date)
	if err != nil {
		return nil, &ConfigError{Field: "date", Value: p.Date, Err: err}
	}

	sizeMB, err := units.ParseSizeMB(p.SizeMB)
	if err != nil {
		return nil, &ConfigError{Field: "size", Value: p.SizeMB, Err: err}
	}

	cfg := &Config{
		Root:           root,
		Mode:           p.Mode,
		Reference:      ref,
		SizeMB:         sizeMB,
		ThresholdBytes: units.MBToBytes(uint64(sizeMB)),
	}
	for _, pattern := range append(append([]string(nil), DefaultExcludePatterns...), p.Exclude...) {
		if err := cfg.AddExcludePattern(pattern); err != nil {
			return nil, &ConfigError{Field: "exclude", Value: pattern, Err: err}
		}
	}
	return cfg, nil
}

// AddExcludePattern adds a pattern to exclude.
func (c *Config) AddExcludePattern(pattern string) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return err
	}
	c.ExcludePatterns = append(c.ExcludePatterns, re)
	return nil
}

// ShouldExclude checks if a path matches any exclude pattern.
func (c *Config) ShouldExclude(path string) bool {
	for _, re := range c.ExcludePatterns {
		if re.MatchString(path) {
			return true
		}
	}
	return false
}
