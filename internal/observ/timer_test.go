package observ

import (
	"strings"
	"testing"
)

func TestTimerPhases(t *testing.T) {
	timer := NewTimer()
	a := timer.Begin("emit")
	timer.End(a, "8 programs")
	b := timer.Begin("write")
	timer.End(b, "")

	report := timer.Report()
	if len(report.Phases) != 2 {
		t.Fatalf("got %d phases, want 2", len(report.Phases))
	}
	if report.Phases[0].Name != "emit" || report.Phases[0].Note != "8 programs" {
		t.Fatalf("first phase = %+v", report.Phases[0])
	}
	if report.Phases[1].Name != "write" {
		t.Fatalf("second phase = %+v", report.Phases[1])
	}

	summary := timer.Summary()
	for _, want := range []string{"emit", "write", "total", "8 programs"} {
		if !strings.Contains(summary, want) {
			t.Fatalf("summary missing %q:\n%s", want, summary)
		}
	}
}

func TestTimerEndOutOfRange(t *testing.T) {
	timer := NewTimer()
	timer.End(0, "nothing started")
	timer.End(-1, "negative")
	if got := timer.Report(); len(got.Phases) != 0 {
		t.Fatalf("phantom phases recorded: %+v", got)
	}
}
