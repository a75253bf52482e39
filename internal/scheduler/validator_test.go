package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/conference-volunteer-shifts/internal/model"
)

func slotAt(h, m int, count, capacity uint32) *model.Timeslot {
	start := time.Date(2026, time.June, 1, h, m, 0, 0, time.UTC)
	return &model.Timeslot{
		ID:           1,
		StartTime:    start,
		EndTime:      start.Add(model.SlotDuration),
		MaxCapacity:  capacity,
		CurrentCount: count,
	}
}

func TestEvaluateSignup_Allows(t *testing.T) {
	rej := EvaluateSignup(slotAt(9, 0, 1, 3), nil, nil, nil, false)
	assert.Nil(t, rej)
}

func TestEvaluateSignup_FullSlot(t *testing.T) {
	rej := EvaluateSignup(slotAt(9, 0, 3, 3), nil, nil, nil, false)
	require.NotNil(t, rej)
	assert.Equal(t, ShiftFull, rej.Reason)
}

func TestEvaluateSignup_FullWinsOverLaterChecks(t *testing.T) {
	// A full slot reports SHIFT_FULL even when the volunteer also lacks a
	// qualification and already holds the slot; the check order is fixed.
	rej := EvaluateSignup(slotAt(9, 0, 3, 3), nil, []string{"first-aid"}, nil, true)
	require.NotNil(t, rej)
	assert.Equal(t, ShiftFull, rej.Reason)
}

func TestEvaluateSignup_OverlappingShift(t *testing.T) {
	slot := slotAt(9, 0, 0, 3)
	other := *slotAt(9, 10, 1, 3) // 09:10–09:25 intersects 09:00–09:15
	other.ID = 2

	rej := EvaluateSignup(slot, []model.Timeslot{other}, nil, nil, false)
	require.NotNil(t, rej)
	assert.Equal(t, OverlappingShift, rej.Reason)
}

func TestEvaluateSignup_TouchingSlotsDoNotOverlap(t *testing.T) {
	slot := slotAt(9, 0, 0, 3)
	before := *slotAt(8, 45, 1, 3) // ends exactly at 09:00
	after := *slotAt(9, 15, 1, 3)  // starts exactly at 09:15

	rej := EvaluateSignup(slot, []model.Timeslot{before, after}, nil, nil, false)
	assert.Nil(t, rej)
}

func TestEvaluateSignup_MissingQualificationsNamesAll(t *testing.T) {
	required := []string{"first-aid", "forklift", "crowd-control"}
	held := []string{"forklift"}

	rej := EvaluateSignup(slotAt(9, 0, 0, 3), nil, required, held, false)
	require.NotNil(t, rej)
	assert.Equal(t, MissingQualifications, rej.Reason)
	assert.Equal(t, []string{"first-aid", "crowd-control"}, rej.Missing)
	assert.Contains(t, rej.Message(), "first-aid, crowd-control")
}

func TestEvaluateSignup_AllQualificationsHeld(t *testing.T) {
	required := []string{"first-aid"}
	held := []string{"first-aid", "forklift"}

	rej := EvaluateSignup(slotAt(9, 0, 0, 3), nil, required, held, false)
	assert.Nil(t, rej)
}

func TestEvaluateSignup_AlreadySignedUp(t *testing.T) {
	rej := EvaluateSignup(slotAt(9, 0, 1, 3), nil, nil, nil, true)
	require.NotNil(t, rej)
	assert.Equal(t, AlreadySignedUp, rej.Reason)
}
