package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/conference-volunteer-shifts/internal/model"
)

type fakeRegenStore struct {
	destroyed int64
	calls     []uint64
	received  [][]model.Timeslot
}

func (s *fakeRegenStore) ReplaceTimeslots(_ context.Context, enrollmentID uint64, slots []model.Timeslot) (int64, error) {
	s.calls = append(s.calls, enrollmentID)
	s.received = append(s.received, slots)
	return s.destroyed, nil
}

type fakeLister struct {
	ids []uint64
}

func (l fakeLister) IDsByConference(context.Context, uint64) ([]uint64, error) {
	return l.ids, nil
}

func TestRegenerateEnrollment_DestroysThenRecreates(t *testing.T) {
	fresh := []model.Timeslot{{EnrollmentID: 7}, {EnrollmentID: 7}}
	build := func(context.Context, uint64) ([]model.Timeslot, error) { return fresh, nil }
	store := &fakeRegenStore{destroyed: 5}

	r := NewReconciler(build, store, fakeLister{})
	destroyed, created, err := r.RegenerateEnrollment(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(5), destroyed)
	assert.Equal(t, 2, created)
	require.Len(t, store.calls, 1)
	assert.Equal(t, uint64(7), store.calls[0])
	assert.Equal(t, fresh, store.received[0])
}

func TestRegenerateEnrollment_BuildFailureDestroysNothing(t *testing.T) {
	build := func(context.Context, uint64) ([]model.Timeslot, error) {
		return nil, ErrBadDaySchedule
	}
	store := &fakeRegenStore{}

	r := NewReconciler(build, store, fakeLister{})
	_, _, err := r.RegenerateEnrollment(context.Background(), 7)
	assert.ErrorIs(t, err, ErrBadDaySchedule)
	assert.Empty(t, store.calls)
}

func TestRegenerateEnrollment_EmptyScheduleStillReplaces(t *testing.T) {
	// A schedule that resolves to zero slots is a valid outcome: the old
	// set is destroyed and nothing takes its place.
	build := func(context.Context, uint64) ([]model.Timeslot, error) { return nil, nil }
	store := &fakeRegenStore{destroyed: 8}

	r := NewReconciler(build, store, fakeLister{})
	destroyed, created, err := r.RegenerateEnrollment(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(8), destroyed)
	assert.Zero(t, created)
	require.Len(t, store.calls, 1)
}

func TestRegenerateConference_VisitsEveryEnrollment(t *testing.T) {
	build := func(_ context.Context, id uint64) ([]model.Timeslot, error) {
		return []model.Timeslot{{EnrollmentID: id}}, nil
	}
	store := &fakeRegenStore{destroyed: 2}

	r := NewReconciler(build, store, fakeLister{ids: []uint64{3, 4, 5}})
	destroyed, created, err := r.RegenerateConference(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(6), destroyed)
	assert.Equal(t, 3, created)
	assert.Equal(t, []uint64{3, 4, 5}, store.calls)
}

func TestRegenerateConference_StopsAtFirstFailure(t *testing.T) {
	boom := errors.New("storage down")
	build := func(_ context.Context, id uint64) ([]model.Timeslot, error) {
		if id == 4 {
			return nil, boom
		}
		return []model.Timeslot{{EnrollmentID: id}}, nil
	}
	store := &fakeRegenStore{destroyed: 1}

	r := NewReconciler(build, store, fakeLister{ids: []uint64{3, 4, 5}})
	destroyed, created, err := r.RegenerateConference(context.Background(), 1)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, int64(1), destroyed)
	assert.Equal(t, 1, created)
	assert.Equal(t, []uint64{3}, store.calls)
}
