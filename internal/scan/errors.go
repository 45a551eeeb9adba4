package scan

import (
	"errors"
	"fmt"
	"io/fs"
)

// ErrBusy is returned when an engine is asked to start a second scan while
// one is still running.
var ErrBusy = errors.New("a scan is already in progress")

// ConfigError reports an invalid scan parameter. A scan with a configuration
// error never starts walking.
type ConfigError struct {
	Field string
	Value string
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Classify maps a per-entry filesystem error to the log kind used to report
// it. Vanished entries and permission failures are routine skips; anything
// else is reported as an error. None of them stop the scan.
func Classify(err error) LogKind {
	switch {
	case err == nil:
		return LogInfo
	case errors.Is(err, fs.ErrNotExist):
		return LogSkipNotFound
	case errors.Is(err, fs.ErrPermission):
		return LogSkipPermission
	default:
		return LogError
	}
}

func skipEvent(path string, err error) LogEvent {
	kind := Classify(err)
	var msg string
	switch kind {
	case LogSkipNotFound:
		msg = "Skipped (Not Found): " + path
	case LogSkipPermission:
		msg = "Skipped (Permission): " + path
	default:
		msg = fmt.Sprintf("Error: %s: %v", path, err)
	}
	return LogEvent{Kind: kind, Path: path, Message: msg, Err: err}
}
