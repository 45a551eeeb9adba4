package scan

import (
	"testing"
	"time"
)

func TestMatches(t *testing.T) {
	ref := time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local)
	before := ref.Add(-time.Hour)
	after := ref.Add(time.Hour)

	tests := []struct {
		name string
		mode Mode
		meta Meta
		want bool
	}{
		{"dormant old", ModeDormant, Meta{ModTime: before, CreateTime: after}, true},
		{"dormant new", ModeDormant, Meta{ModTime: after, CreateTime: before}, false},
		{"dormant equal", ModeDormant, Meta{ModTime: ref}, false},
		{"recent new", ModeRecent, Meta{ModTime: before, CreateTime: after}, true},
		{"recent old", ModeRecent, Meta{ModTime: after, CreateTime: before}, false},
		{"recent equal", ModeRecent, Meta{CreateTime: ref}, false},
		{"unknown mode", Mode(9), Meta{ModTime: before, CreateTime: after}, false},
	}

	for _, tt := range tests {
		if got := Matches(tt.mode, tt.meta, ref); got != tt.want {
			t.Errorf("%s: Matches = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{
		"dormant": ModeDormant,
		"OLD":     ModeDormant,
		"recent":  ModeRecent,
		" new ":   ModeRecent,
	} {
		got, err := ParseMode(in)
		if err != nil {
			t.Fatalf("ParseMode(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseMode(%q) = %v, want %v", in, got, want)
		}
	}
	if _, err := ParseMode("sideways"); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}

func TestModeTimestamp(t *testing.T) {
	m := Meta{ModTime: time.Unix(100, 0), CreateTime: time.Unix(200, 0)}
	if !ModeDormant.Timestamp(m).Equal(m.ModTime) || ModeDormant.TimestampLabel() != "Modified" {
		t.Fatal("dormant mode should use the modification time")
	}
	if !ModeRecent.Timestamp(m).Equal(m.CreateTime) || ModeRecent.TimestampLabel() != "Created" {
		t.Fatal("recent mode should use the creation time")
	}
}
