package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/conference-volunteer-shifts/internal/model"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func oneDayConference() model.Conference {
	return model.Conference{
		ID:        1,
		StartDate: date(2026, time.June, 1),
		EndDate:   date(2026, time.June, 1),
		Timezone:  "UTC",
	}
}

func TestBuildTimeslots_ThirtyMinuteWindow(t *testing.T) {
	conf := oneDayConference()
	enr := model.Enrollment{
		ID: 7,
		DaySchedule: model.DaySchedule{
			"0": {Enabled: true, Start: "09:00", End: "09:30"},
		},
	}

	slots, err := BuildTimeslots(conf, enr, 3, time.UTC)
	require.NoError(t, err)
	require.Len(t, slots, 2)

	assert.Equal(t, time.Date(2026, time.June, 1, 9, 0, 0, 0, time.UTC), slots[0].StartTime)
	assert.Equal(t, time.Date(2026, time.June, 1, 9, 15, 0, 0, time.UTC), slots[0].EndTime)
	assert.Equal(t, time.Date(2026, time.June, 1, 9, 15, 0, 0, time.UTC), slots[1].StartTime)
	assert.Equal(t, time.Date(2026, time.June, 1, 9, 30, 0, 0, time.UTC), slots[1].EndTime)
	for _, s := range slots {
		assert.Equal(t, uint64(7), s.EnrollmentID)
		assert.Equal(t, uint32(3), s.MaxCapacity)
		assert.Equal(t, uint32(0), s.CurrentCount)
	}
}

func TestBuildTimeslots_Deterministic(t *testing.T) {
	conf := model.Conference{
		StartDate: date(2026, time.June, 1),
		EndDate:   date(2026, time.June, 3),
		Timezone:  "UTC",
	}
	enr := model.Enrollment{
		DaySchedule: model.DaySchedule{
			"0": {Enabled: true, Start: "09:00", End: "12:00"},
			"2": {Enabled: true, Start: "13:00", End: "17:00"},
		},
	}

	first, err := BuildTimeslots(conf, enr, 2, time.UTC)
	require.NoError(t, err)
	second, err := BuildTimeslots(conf, enr, 2, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Len(t, first, 12+16)
}

func TestBuildTimeslots_DropsPartialTrailingSlot(t *testing.T) {
	conf := oneDayConference()
	enr := model.Enrollment{
		DaySchedule: model.DaySchedule{
			"0": {Enabled: true, Start: "09:00", End: "09:20"},
		},
	}

	slots, err := BuildTimeslots(conf, enr, 1, time.UTC)
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, time.Date(2026, time.June, 1, 9, 15, 0, 0, time.UTC), slots[0].EndTime)
}

func TestBuildTimeslots_WindowShorterThanGrain(t *testing.T) {
	conf := oneDayConference()
	enr := model.Enrollment{
		DaySchedule: model.DaySchedule{
			"0": {Enabled: true, Start: "09:00", End: "09:10"},
		},
	}

	slots, err := BuildTimeslots(conf, enr, 1, time.UTC)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestBuildTimeslots_SkipsDisabledAndAbsentDays(t *testing.T) {
	conf := model.Conference{
		StartDate: date(2026, time.June, 1),
		EndDate:   date(2026, time.June, 3),
		Timezone:  "UTC",
	}
	enr := model.Enrollment{
		DaySchedule: model.DaySchedule{
			"0": {Enabled: false, Start: "09:00", End: "17:00"},
			"1": {Enabled: true, Start: "09:00", End: "10:00"},
			// day 2 has no entry at all
		},
	}

	slots, err := BuildTimeslots(conf, enr, 1, time.UTC)
	require.NoError(t, err)
	require.Len(t, slots, 4)
	for _, s := range slots {
		assert.Equal(t, 2, s.StartTime.Day())
	}
}

func TestBuildTimeslots_FallsBackToConferenceHoursPerBound(t *testing.T) {
	conf := oneDayConference()
	conf.HoursStart = "08:00"
	conf.HoursEnd = "18:00"
	enr := model.Enrollment{
		DaySchedule: model.DaySchedule{
			"0": {Enabled: true, End: "08:30"}, // start falls back to 08:00
		},
	}

	slots, err := BuildTimeslots(conf, enr, 1, time.UTC)
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, time.Date(2026, time.June, 1, 8, 0, 0, 0, time.UTC), slots[0].StartTime)
}

func TestBuildTimeslots_SilentlySkipsUnresolvableWindow(t *testing.T) {
	conf := oneDayConference() // no default hours
	enr := model.Enrollment{
		DaySchedule: model.DaySchedule{
			"0": {Enabled: true}, // no bounds anywhere
		},
	}

	slots, err := BuildTimeslots(conf, enr, 1, time.UTC)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestBuildTimeslots_MalformedTimeFailsWholeBuild(t *testing.T) {
	conf := model.Conference{
		StartDate: date(2026, time.June, 1),
		EndDate:   date(2026, time.June, 2),
		Timezone:  "UTC",
	}
	enr := model.Enrollment{
		DaySchedule: model.DaySchedule{
			"0": {Enabled: true, Start: "09:00", End: "12:00"},
			"1": {Enabled: true, Start: "9 o'clock", End: "12:00"},
		},
	}

	slots, err := BuildTimeslots(conf, enr, 1, time.UTC)
	assert.ErrorIs(t, err, ErrBadDaySchedule)
	assert.Nil(t, slots)
}

func TestBuildTimeslots_RejectsZeroCapacity(t *testing.T) {
	conf := oneDayConference()
	enr := model.Enrollment{
		DaySchedule: model.DaySchedule{"0": {Enabled: true, Start: "09:00", End: "10:00"}},
	}

	_, err := BuildTimeslots(conf, enr, 0, time.UTC)
	assert.ErrorIs(t, err, ErrInvalidCapacity)
}

func TestBuildTimeslots_ResolvesWallClockInConferenceZone(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	conf := oneDayConference()
	enr := model.Enrollment{
		DaySchedule: model.DaySchedule{
			"0": {Enabled: true, Start: "09:00", End: "09:15"},
		},
	}

	slots, err := BuildTimeslots(conf, enr, 1, loc)
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, time.Date(2026, time.June, 1, 14, 0, 0, 0, time.UTC), slots[0].StartTime)
	assert.Equal(t, time.UTC, slots[0].StartTime.Location())
}
