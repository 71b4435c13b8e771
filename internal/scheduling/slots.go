package scheduling

import (
	"fmt"
)

// SlotIntervalMinutes is the booking cadence.
const SlotIntervalMinutes = 30

const minutesPerDay = 24 * 60

// Slot is one bookable time-of-day: Value in 24-hour "HH:MM",
// Label in 12-hour "h:MM AM/PM" for display.
type Slot struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// DefaultSlots returns the full-day cadence: 48 slots from 00:00 to 23:30.
// Used when no doctor/date context exists and when a doctor has no
// configured working window.
func DefaultSlots() []Slot {
	return slotsBetween(0, minutesPerDay)
}

// SlotsInWindow returns the cadence within [start, end), both 24-hour "HH:MM".
// An unparseable or inverted window falls back to the full-day default.
func SlotsInWindow(start, end string) []Slot {
	startMin, err1 := ParseTimeOfDay(start)
	endMin, err2 := ParseTimeOfDay(end)
	if err1 != nil || err2 != nil || startMin >= endMin {
		return DefaultSlots()
	}
	return slotsBetween(startMin, endMin)
}

// ExcludeBooked removes slots whose value is present in the booked set.
func ExcludeBooked(slots []Slot, booked map[string]struct{}) []Slot {
	if len(booked) == 0 {
		return slots
	}
	out := make([]Slot, 0, len(slots))
	for _, s := range slots {
		if _, taken := booked[s.Value]; !taken {
			out = append(out, s)
		}
	}
	return out
}

// ParseTimeOfDay parses a 24-hour "HH:MM" value into minutes since midnight.
func ParseTimeOfDay(v string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(v, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("invalid time of day %q: %w", v, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("time of day %q out of range", v)
	}
	return h*60 + m, nil
}

func slotsBetween(startMin, endMin int) []Slot {
	slots := make([]Slot, 0, (endMin-startMin)/SlotIntervalMinutes)
	for t := startMin; t < endMin; t += SlotIntervalMinutes {
		h, m := t/60, t%60
		slots = append(slots, Slot{
			Value: fmt.Sprintf("%02d:%02d", h, m),
			Label: displayLabel(h, m),
		})
	}
	return slots
}

// displayLabel converts 24-hour clock values to 12-hour display labels.
// 00:00 -> "12:00 AM", 12:00 -> "12:00 PM", 13:30 -> "1:30 PM".
func displayLabel(h, m int) string {
	period := "AM"
	if h >= 12 {
		period = "PM"
	}
	display := h % 12
	if display == 0 {
		display = 12
	}
	return fmt.Sprintf("%d:%02d %s", display, m, period)
}
