package language

import "testing"

func newTestDetector() *Detector {
	return NewDetector("en", []string{"en", "de", "fr"}, 20)
}

func TestDetector_german(t *testing.T) {
	d := newTestDetector()
	text := "Die Leuchtdichte des Displays beträgt mindestens eintausend Candela pro Quadratmeter bei fünfundzwanzig Grad."
	if got := d.Detect(text); got != "de" {
		t.Errorf("Detect() = %q, want de", got)
	}
}

func TestDetector_english(t *testing.T) {
	d := newTestDetector()
	text := "The display luminance shall be at least one thousand candela per square meter at room temperature."
	if got := d.Detect(text); got != "en" {
		t.Errorf("Detect() = %q, want en", got)
	}
}

func TestDetector_shortTextDefaultsToWorking(t *testing.T) {
	d := newTestDetector()
	if got := d.Detect("1500:1"); got != "en" {
		t.Errorf("Detect() = %q, short text should default to working language", got)
	}
}

func TestName(t *testing.T) {
	if Name("de") != "German" {
		t.Errorf("Name(de) = %q", Name("de"))
	}
	if Name("xx") != "Unknown (xx)" {
		t.Errorf("Name(xx) = %q", Name("xx"))
	}
}
