package domain

import (
	"strings"
	"testing"
)

func TestMediaItem_DisplayTitle(t *testing.T) {
	short := MediaItem{Title: "Short title"}
	if got := short.DisplayTitle(); got != "Short title" {
		t.Errorf("expected short title unchanged, got %q", got)
	}

	long := MediaItem{Title: strings.Repeat("x", 80)}
	got := long.DisplayTitle()
	if got != strings.Repeat("x", 50)+"..." {
		t.Errorf("expected 50 chars + ellipsis, got %q (len %d)", got, len(got))
	}
}

func TestMediaItem_DurationString(t *testing.T) {
	tests := []struct {
		seconds  int
		expected string
	}{
		{0, "0:00"},
		{42, "0:42"},
		{61, "1:01"},
		{754, "12:34"},
		{3600, "1:00:00"},
		{3725, "1:02:05"},
	}

	for _, test := range tests {
		item := MediaItem{DurationSec: test.seconds}
		if got := item.DurationString(); got != test.expected {
			t.Errorf("DurationString() with %ds = %q, expected %q", test.seconds, got, test.expected)
		}
	}
}
