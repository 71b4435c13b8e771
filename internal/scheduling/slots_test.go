package scheduling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSlots(t *testing.T) {
	slots := DefaultSlots()
	require.Len(t, slots, 48)

	assert.Equal(t, "00:00", slots[0].Value)
	assert.Equal(t, "12:00 AM", slots[0].Label)
	assert.Equal(t, "23:30", slots[47].Value)
	assert.Equal(t, "11:30 PM", slots[47].Label)

	// Values are strictly ascending with a 30-minute cadence.
	for i := 1; i < len(slots); i++ {
		prev, err := ParseTimeOfDay(slots[i-1].Value)
		require.NoError(t, err)
		cur, err := ParseTimeOfDay(slots[i].Value)
		require.NoError(t, err)
		assert.Equal(t, SlotIntervalMinutes, cur-prev)
	}
}

func TestDisplayLabels(t *testing.T) {
	tests := []struct {
		value string
		label string
	}{
		{"00:00", "12:00 AM"},
		{"00:30", "12:30 AM"},
		{"09:00", "9:00 AM"},
		{"11:30", "11:30 AM"},
		{"12:00", "12:00 PM"},
		{"12:30", "12:30 PM"},
		{"13:30", "1:30 PM"},
		{"23:30", "11:30 PM"},
	}

	byValue := make(map[string]string)
	for _, s := range DefaultSlots() {
		byValue[s.Value] = s.Label
	}
	for _, tc := range tests {
		assert.Equal(t, tc.label, byValue[tc.value], "label for %s", tc.value)
	}
}

func TestSlotsInWindow(t *testing.T) {
	slots := SlotsInWindow("09:00", "17:00")
	require.Len(t, slots, 16)
	assert.Equal(t, "09:00", slots[0].Value)
	assert.Equal(t, "16:30", slots[15].Value)
}

func TestSlotsInWindowEndExclusive(t *testing.T) {
	slots := SlotsInWindow("09:00", "10:00")
	require.Len(t, slots, 2)
	assert.Equal(t, "09:00", slots[0].Value)
	assert.Equal(t, "09:30", slots[1].Value)
}

func TestSlotsInWindowFallsBackToDefault(t *testing.T) {
	// Inverted and unparseable windows fall back to the full-day cadence.
	assert.Len(t, SlotsInWindow("17:00", "09:00"), 48)
	assert.Len(t, SlotsInWindow("bogus", "17:00"), 48)
	assert.Len(t, SlotsInWindow("", ""), 48)
}

func TestExcludeBooked(t *testing.T) {
	slots := SlotsInWindow("09:00", "11:00")
	booked := map[string]struct{}{
		"09:30": {},
		"10:00": {},
	}

	free := ExcludeBooked(slots, booked)
	require.Len(t, free, 2)
	assert.Equal(t, "09:00", free[0].Value)
	assert.Equal(t, "10:30", free[1].Value)
}

func TestExcludeBookedEmptySet(t *testing.T) {
	slots := DefaultSlots()
	assert.Len(t, ExcludeBooked(slots, nil), 48)
}

func TestParseTimeOfDay(t *testing.T) {
	min, err := ParseTimeOfDay("13:30")
	require.NoError(t, err)
	assert.Equal(t, 13*60+30, min)

	min, err = ParseTimeOfDay("00:00")
	require.NoError(t, err)
	assert.Equal(t, 0, min)

	for _, bad := range []string{"24:00", "12:60", "-1:00", "noon", ""} {
		_, err := ParseTimeOfDay(bad)
		assert.Error(t, err, "expected error for %q", bad)
	}
}
