package slots

import (
	"testing"
	"time"
)

func TestParseWindows(t *testing.T) {
	windows, err := ParseWindows("08:00-12:00, 14:00-18:00")
	if err != nil {
		t.Fatalf("ParseWindows failed: %v", err)
	}
	if len(windows) != 2 {
		t.Fatalf("expected 2 windows, got %d", len(windows))
	}
	if windows[0].StartMinute != 8*60 || windows[0].EndMinute != 12*60 {
		t.Fatalf("unexpected first window: %+v", windows[0])
	}

	if _, err := ParseWindows("12:00-08:00"); err == nil {
		t.Fatal("expected inverted window to fail")
	}
	if _, err := ParseWindows("8am-noon"); err == nil {
		t.Fatal("expected unparseable window to fail")
	}
}

func TestOpenSlots_Basic(t *testing.T) {
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	windows := []Window{{StartMinute: 9 * 60, EndMinute: 11 * 60}}

	got := OpenSlots(day, windows, time.Hour, nil, day)
	if len(got) != 2 {
		t.Fatalf("expected 2 slots, got %d", len(got))
	}
	if !got[0].Equal(day.Add(9 * time.Hour)) {
		t.Fatalf("expected first slot 09:00, got %s", got[0].Format(time.RFC3339))
	}
	if !got[1].Equal(day.Add(10 * time.Hour)) {
		t.Fatalf("expected second slot 10:00, got %s", got[1].Format(time.RFC3339))
	}
}

func TestOpenSlots_SkipsTakenAndPast(t *testing.T) {
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	windows := []Window{{StartMinute: 9 * 60, EndMinute: 12 * 60}}
	taken := []time.Time{day.Add(10 * time.Hour)}
	now := day.Add(9*time.Hour + 30*time.Minute)

	got := OpenSlots(day, windows, time.Hour, taken, now)
	// 09:00 is past, 10:00 is taken; only 11:00 remains.
	if len(got) != 1 {
		t.Fatalf("expected 1 slot, got %d", len(got))
	}
	if !got[0].Equal(day.Add(11 * time.Hour)) {
		t.Fatalf("expected slot 11:00, got %s", got[0].Format(time.RFC3339))
	}
}

func TestOpenSlots_StepMustFitWindow(t *testing.T) {
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	windows := []Window{{StartMinute: 9 * 60, EndMinute: 9*60 + 30}}

	if got := OpenSlots(day, windows, time.Hour, nil, day); len(got) != 0 {
		t.Fatalf("expected no slots in a window shorter than the step, got %d", len(got))
	}
}
