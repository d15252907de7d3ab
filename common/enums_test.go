package common

import (
	"errors"
	"testing"
)

func TestParseMode(t *testing.T) {
	for _, name := range ModeNames() {
		m, err := ParseMode(name)
		if err != nil {
			t.Errorf("ParseMode(%q) error = %v", name, err)
		}
		if m.String() != name || !m.IsValid() {
			t.Errorf("ParseMode(%q) = %v", name, m)
		}
	}

	if _, err := ParseMode("embed"); !errors.Is(err, ErrInvalidMode) {
		t.Errorf("ParseMode(embed) error = %v, want ErrInvalidMode", err)
	}
	if Mode(42).IsValid() {
		t.Error("Mode(42) must not be valid")
	}
}

func TestMode_NeedsDestination(t *testing.T) {
	if !ModeCopy.NeedsDestination() {
		t.Error("copy needs destination")
	}
	if ModeRebase.NeedsDestination() || ModeInline.NeedsDestination() {
		t.Error("rebase and inline work in place")
	}
}
