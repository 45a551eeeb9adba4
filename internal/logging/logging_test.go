package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConsoleLevels(t *testing.T) {
	var buf bytes.Buffer
	log, err := InitWriter(&buf, "", false)
	if err != nil {
		t.Fatalf("InitWriter: %v", err)
	}
	log.Info("quiet")
	log.Warn("loud")

	out := buf.String()
	if strings.Contains(out, "quiet") {
		t.Fatalf("info record reached console: %q", out)
	}
	if !strings.Contains(out, "loud") {
		t.Fatalf("warn record missing: %q", out)
	}

	buf.Reset()
	log, err = InitWriter(&buf, "", true)
	if err != nil {
		t.Fatalf("InitWriter: %v", err)
	}
	log.Debug("details")
	if !strings.Contains(buf.String(), "details") {
		t.Fatalf("verbose console missing debug record: %q", buf.String())
	}
}

func TestFileOutput(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	var buf bytes.Buffer
	if _, err := InitWriter(&buf, dir, false); err != nil {
		t.Fatalf("InitWriter: %v", err)
	}
	Sub("scan").Info("scan started", "root", "/data")

	data, err := os.ReadFile(filepath.Join(dir, FileName))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "comp=scan") || !strings.Contains(string(data), "root=/data") {
		t.Fatalf("log file = %q", data)
	}
	if buf.Len() != 0 {
		t.Fatalf("info record reached console: %q", buf.String())
	}
}
