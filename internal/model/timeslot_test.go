package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimeslotOverlaps(t *testing.T) {
	start := time.Date(2026, time.June, 1, 9, 0, 0, 0, time.UTC)
	slot := Timeslot{StartTime: start, EndTime: start.Add(SlotDuration)}

	// Half-open intervals: sharing an endpoint is not an overlap.
	assert.False(t, slot.Overlaps(start.Add(-SlotDuration), start))
	assert.False(t, slot.Overlaps(slot.EndTime, slot.EndTime.Add(SlotDuration)))

	assert.True(t, slot.Overlaps(start, start.Add(SlotDuration)))
	assert.True(t, slot.Overlaps(start.Add(5*time.Minute), start.Add(20*time.Minute)))
	assert.True(t, slot.Overlaps(start.Add(-5*time.Minute), start.Add(5*time.Minute)))
}

func TestTimeslotFull(t *testing.T) {
	assert.False(t, Timeslot{CurrentCount: 2, MaxCapacity: 3}.Full())
	assert.True(t, Timeslot{CurrentCount: 3, MaxCapacity: 3}.Full())
}

func TestConferenceDays(t *testing.T) {
	c := Conference{
		StartDate: time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, time.June, 3, 0, 0, 0, 0, time.UTC),
	}
	assert.Equal(t, 3, c.Days())

	c.EndDate = c.StartDate
	assert.Equal(t, 1, c.Days())
}

func TestEffectiveCapacity(t *testing.T) {
	override := uint32(5)
	assert.Equal(t, uint32(5), Enrollment{MaxVolunteers: &override}.EffectiveCapacity(3))
	assert.Equal(t, uint32(3), Enrollment{}.EffectiveCapacity(3))
}
