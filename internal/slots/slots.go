package slots

import (
	"fmt"
	"strings"
	"time"
)

// Window is a clock-time range within a single day, e.g. 08:00-12:00.
type Window struct {
	StartMinute int
	EndMinute   int
}

// ParseWindows parses "08:00-12:00,14:00-18:00" into day windows.
func ParseWindows(raw string) ([]Window, error) {
	var windows []Window
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		bounds := strings.SplitN(part, "-", 2)
		if len(bounds) != 2 {
			return nil, fmt.Errorf("invalid window %q", part)
		}
		start, err := parseClock(bounds[0])
		if err != nil {
			return nil, fmt.Errorf("invalid window %q: %w", part, err)
		}
		end, err := parseClock(bounds[1])
		if err != nil {
			return nil, fmt.Errorf("invalid window %q: %w", part, err)
		}
		if end <= start {
			return nil, fmt.Errorf("invalid window %q: end before start", part)
		}
		windows = append(windows, Window{StartMinute: start, EndMinute: end})
	}
	return windows, nil
}

// OpenSlots lists the slot start instants for a day: every step within the
// configured windows, minus instants already taken and anything in the past.
// This feeds the booking form's time picker only; intake never enforces it.
func OpenSlots(day time.Time, windows []Window, step time.Duration, taken []time.Time, now time.Time) []time.Time {
	if step <= 0 {
		return nil
	}

	takenSet := make(map[int64]struct{}, len(taken))
	for _, t := range taken {
		takenSet[t.Unix()] = struct{}{}
	}

	midnight := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	var out []time.Time
	for _, w := range windows {
		start := midnight.Add(time.Duration(w.StartMinute) * time.Minute)
		end := midnight.Add(time.Duration(w.EndMinute) * time.Minute)
		for t := start; !t.Add(step).After(end); t = t.Add(step) {
			if t.Before(now) {
				continue
			}
			if _, ok := takenSet[t.Unix()]; ok {
				continue
			}
			out = append(out, t)
		}
	}
	return out
}

func parseClock(s string) (int, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}
