package scheduler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/conference-volunteer-shifts/internal/repository"
)

type fakeProbe struct {
	exists bool
}

func (p fakeProbe) Exists(context.Context, uint64) (bool, error) { return p.exists, nil }

type fakeSlotStore struct {
	occupancy []repository.SlotOccupancy
	caps      map[uint64]uint32
	writes    int
	onWrite   func() // optional hook fired before each SetCapacity
}

func (s *fakeSlotStore) ListOccupancy(context.Context, uint64) ([]repository.SlotOccupancy, error) {
	return s.occupancy, nil
}

func (s *fakeSlotStore) SetCapacity(_ context.Context, id uint64, capacity uint32) (bool, error) {
	if s.onWrite != nil {
		s.onWrite()
	}
	s.writes++
	for _, o := range s.occupancy {
		if o.ID == id && o.CurrentCount > capacity {
			return false, nil
		}
	}
	if s.caps == nil {
		s.caps = map[uint64]uint32{}
	}
	s.caps[id] = capacity
	return true, nil
}

func TestCascade_SkipsOverOccupiedSlots(t *testing.T) {
	store := &fakeSlotStore{occupancy: []repository.SlotOccupancy{
		{ID: 1, CurrentCount: 2},
		{ID: 2, CurrentCount: 5},
		{ID: 3, CurrentCount: 4},
	}}
	u := NewCascadeUpdater(fakeProbe{exists: true}, store)

	res, err := u.Apply(context.Background(), 10, 3)
	require.NoError(t, err)
	assert.Equal(t, CascadeResult{Updated: 1, Skipped: 2}, res)
	assert.Equal(t, uint32(3), store.caps[1])
	assert.NotContains(t, store.caps, uint64(2))
	assert.NotContains(t, store.caps, uint64(3))
}

func TestCascade_Idempotent(t *testing.T) {
	store := &fakeSlotStore{occupancy: []repository.SlotOccupancy{
		{ID: 1, CurrentCount: 0},
		{ID: 2, CurrentCount: 6},
	}}
	u := NewCascadeUpdater(fakeProbe{exists: true}, store)

	first, err := u.Apply(context.Background(), 10, 5)
	require.NoError(t, err)
	second, err := u.Apply(context.Background(), 10, 5)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, CascadeResult{Updated: 1, Skipped: 1}, second)
}

func TestCascade_VanishedEnrollmentIsNoOp(t *testing.T) {
	store := &fakeSlotStore{occupancy: []repository.SlotOccupancy{{ID: 1}}}
	u := NewCascadeUpdater(fakeProbe{exists: false}, store)

	res, err := u.Apply(context.Background(), 404, 5)
	require.NoError(t, err)
	assert.Equal(t, CascadeResult{}, res)
	assert.Zero(t, store.writes)
}

func TestCascade_RejectsZeroCapacity(t *testing.T) {
	u := NewCascadeUpdater(fakeProbe{exists: true}, &fakeSlotStore{})

	_, err := u.Apply(context.Background(), 10, 0)
	assert.ErrorIs(t, err, ErrInvalidCapacity)
}

func TestCascade_StopsBetweenRowsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	store := &fakeSlotStore{occupancy: []repository.SlotOccupancy{
		{ID: 1, CurrentCount: 0},
		{ID: 2, CurrentCount: 0},
		{ID: 3, CurrentCount: 0},
	}}
	store.onWrite = cancel // cancel fires during the first row's write

	u := NewCascadeUpdater(fakeProbe{exists: true}, store)
	res, err := u.Apply(ctx, 10, 5)
	assert.ErrorIs(t, err, context.Canceled)
	// The first row committed before the cancellation was observed; the
	// rest were never touched.
	assert.Equal(t, 1, store.writes)
	assert.Equal(t, CascadeResult{Updated: 1}, res)
}
