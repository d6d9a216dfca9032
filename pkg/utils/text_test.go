package utils

import (
	"testing"
	"unicode/utf8"
)

func TestTruncate(t *testing.T) {
	if Truncate("hello", 10) != "hello" {
		t.Error("short string unchanged")
	}
	if Truncate("hello world", 5) != "hello..." {
		t.Errorf("got %s", Truncate("hello world", 5))
	}
	if Truncate("x", 0) != "x" {
		t.Error("maxLen 0 returns as-is")
	}
}

func TestTruncateRuneBoundary(t *testing.T) {
	// "cd/m²" is 6 bytes; a cut at byte 5 lands inside the two-byte "²".
	if got := Truncate("cd/m²", 5); got != "cd/m..." {
		t.Errorf("got %q", got)
	}
	long := "Leuchtdichte ≥ 1000 cd/m² bei 25°C"
	for max := 1; max < len(long); max++ {
		if got := Truncate(long, max); !utf8.ValidString(got) {
			t.Errorf("Truncate(%q, %d) = %q is not valid UTF-8", long, max, got)
		}
	}
}

func TestTruncateIndex(t *testing.T) {
	if got := TruncateIndex("²²", 1); got != 0 {
		t.Errorf("TruncateIndex mid-rune = %d, want 0", got)
	}
	if got := TruncateIndex("abc", 10); got != 3 {
		t.Errorf("TruncateIndex beyond length = %d, want 3", got)
	}
	if got := TruncateIndex("ab²", 2); got != 2 {
		t.Errorf("TruncateIndex on boundary = %d, want 2", got)
	}
}
