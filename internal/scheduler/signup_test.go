package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/conference-volunteer-shifts/internal/model"
	"github.com/iliyamo/conference-volunteer-shifts/internal/repository"
)

// memSignupStore emulates the database's row-lock discipline in memory:
// LockTimeslot takes a per-slot mutex that is held until Commit or
// Rollback, so transactions on the same slot serialize exactly as they
// would queue on SELECT ... FOR UPDATE.
type memSignupStore struct {
	mu        sync.Mutex
	slots     map[uint64]model.Timeslot
	slotLocks map[uint64]*sync.Mutex
	signups   map[uint64]model.Signup
	nextID    uint64
	programs  map[uint64]uint64   // enrollment ID -> program ID
	required  map[uint64][]string // program ID -> qualification names
	held      map[uint64][]string // user ID -> qualification names
}

func newMemSignupStore() *memSignupStore {
	return &memSignupStore{
		slots:     map[uint64]model.Timeslot{},
		slotLocks: map[uint64]*sync.Mutex{},
		signups:   map[uint64]model.Signup{},
		programs:  map[uint64]uint64{},
		required:  map[uint64][]string{},
		held:      map[uint64][]string{},
	}
}

func (st *memSignupStore) addSlot(s model.Timeslot) {
	st.slots[s.ID] = s
	st.slotLocks[s.ID] = &sync.Mutex{}
	if _, ok := st.programs[s.EnrollmentID]; !ok {
		st.programs[s.EnrollmentID] = s.EnrollmentID
	}
}

func (st *memSignupStore) Begin(ctx context.Context) (signupTx, error) {
	return &memSignupTx{st: st}, nil
}

func (st *memSignupStore) SignupByID(ctx context.Context, id uint64) (*model.Signup, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.signups[id]
	if !ok {
		return nil, repository.ErrSignupNotFound
	}
	return &s, nil
}

func (st *memSignupStore) slot(id uint64) model.Timeslot {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.slots[id]
}

func (st *memSignupStore) signupRows(timeslotID uint64) int {
	st.mu.Lock()
	defer st.mu.Unlock()
	n := 0
	for _, s := range st.signups {
		if s.TimeslotID == timeslotID {
			n++
		}
	}
	return n
}

type memSignupTx struct {
	st     *memSignupStore
	locked []*sync.Mutex
	undo   []func()
}

func (t *memSignupTx) LockTimeslot(ctx context.Context, id uint64) (*model.Timeslot, error) {
	t.st.mu.Lock()
	lock, ok := t.st.slotLocks[id]
	t.st.mu.Unlock()
	if !ok {
		return nil, repository.ErrTimeslotNotFound
	}
	lock.Lock()
	t.locked = append(t.locked, lock)

	t.st.mu.Lock()
	defer t.st.mu.Unlock()
	s := t.st.slots[id]
	return &s, nil
}

func (t *memSignupTx) OverlappingSignups(ctx context.Context, userID uint64, start, end time.Time, excludeSlotID uint64) ([]model.Timeslot, error) {
	t.st.mu.Lock()
	defer t.st.mu.Unlock()
	var out []model.Timeslot
	for _, s := range t.st.signups {
		if s.UserID != userID || s.TimeslotID == excludeSlotID {
			continue
		}
		if slot := t.st.slots[s.TimeslotID]; slot.Overlaps(start, end) {
			out = append(out, slot)
		}
	}
	return out, nil
}

func (t *memSignupTx) ProgramID(ctx context.Context, enrollmentID uint64) (uint64, error) {
	t.st.mu.Lock()
	defer t.st.mu.Unlock()
	return t.st.programs[enrollmentID], nil
}

func (t *memSignupTx) RequiredQualifications(ctx context.Context, programID uint64) ([]string, error) {
	t.st.mu.Lock()
	defer t.st.mu.Unlock()
	return t.st.required[programID], nil
}

func (t *memSignupTx) HeldQualifications(ctx context.Context, userID uint64) ([]string, error) {
	t.st.mu.Lock()
	defer t.st.mu.Unlock()
	return t.st.held[userID], nil
}

func (t *memSignupTx) SignupExists(ctx context.Context, userID, timeslotID uint64) (bool, error) {
	t.st.mu.Lock()
	defer t.st.mu.Unlock()
	for _, s := range t.st.signups {
		if s.UserID == userID && s.TimeslotID == timeslotID {
			return true, nil
		}
	}
	return false, nil
}

func (t *memSignupTx) InsertSignup(ctx context.Context, s *model.Signup) error {
	t.st.mu.Lock()
	defer t.st.mu.Unlock()
	for _, prev := range t.st.signups {
		if prev.UserID == s.UserID && prev.TimeslotID == s.TimeslotID {
			return repository.ErrConflict
		}
	}
	t.st.nextID++
	s.ID = t.st.nextID
	t.st.signups[s.ID] = *s
	id := s.ID
	t.undo = append(t.undo, func() { delete(t.st.signups, id) })
	return nil
}

func (t *memSignupTx) DeleteSignup(ctx context.Context, signupID uint64) error {
	t.st.mu.Lock()
	defer t.st.mu.Unlock()
	prev, ok := t.st.signups[signupID]
	if !ok {
		return repository.ErrSignupNotFound
	}
	delete(t.st.signups, signupID)
	t.undo = append(t.undo, func() { t.st.signups[signupID] = prev })
	return nil
}

func (t *memSignupTx) IncrementCount(ctx context.Context, timeslotID uint64) error {
	return t.bump(timeslotID, 1)
}

func (t *memSignupTx) DecrementCount(ctx context.Context, timeslotID uint64) error {
	return t.bump(timeslotID, -1)
}

func (t *memSignupTx) bump(timeslotID uint64, delta int32) error {
	t.st.mu.Lock()
	defer t.st.mu.Unlock()
	s, ok := t.st.slots[timeslotID]
	if !ok {
		return repository.ErrTimeslotNotFound
	}
	s.CurrentCount = uint32(int32(s.CurrentCount) + delta)
	t.st.slots[timeslotID] = s
	t.undo = append(t.undo, func() {
		s := t.st.slots[timeslotID]
		s.CurrentCount = uint32(int32(s.CurrentCount) - delta)
		t.st.slots[timeslotID] = s
	})
	return nil
}

func (t *memSignupTx) Commit() error {
	t.undo = nil
	t.release()
	return nil
}

func (t *memSignupTx) Rollback() error {
	t.st.mu.Lock()
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.undo = nil
	t.st.mu.Unlock()
	t.release()
	return nil
}

func (t *memSignupTx) release() {
	for _, l := range t.locked {
		l.Unlock()
	}
	t.locked = nil
}

func signupSlot(id uint64, capacity, count uint32) model.Timeslot {
	start := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	return model.Timeslot{
		ID:           id,
		EnrollmentID: id,
		StartTime:    start,
		EndTime:      start.Add(model.SlotDuration),
		MaxCapacity:  capacity,
		CurrentCount: count,
	}
}

func TestCreateSignupPersistsAndCounts(t *testing.T) {
	st := newMemSignupStore()
	st.addSlot(signupSlot(1, 3, 0))
	eng := newSignupEngine(st)

	s, rej, err := eng.CreateSignup(context.Background(), 7, 1)
	require.NoError(t, err)
	require.Nil(t, rej)
	require.NotNil(t, s)

	assert.Equal(t, uint32(1), st.slot(1).CurrentCount)
	assert.Equal(t, 1, st.signupRows(1))
}

func TestCreateSignupRejectionLeavesNoTrace(t *testing.T) {
	st := newMemSignupStore()
	st.addSlot(signupSlot(1, 2, 2))
	eng := newSignupEngine(st)

	s, rej, err := eng.CreateSignup(context.Background(), 7, 1)
	require.NoError(t, err)
	assert.Nil(t, s)
	require.NotNil(t, rej)
	assert.Equal(t, ShiftFull, rej.Reason)

	assert.Equal(t, uint32(2), st.slot(1).CurrentCount)
	assert.Equal(t, 0, st.signupRows(1))
}

func TestConcurrentSignupsLastPlaceGoesToOne(t *testing.T) {
	// Ten volunteers race for a capacity-1 slot; the row lock serializes
	// them, so exactly one wins and the other nine read the slot as full.
	st := newMemSignupStore()
	st.addSlot(signupSlot(1, 1, 0))
	eng := newSignupEngine(st)

	const attempts = 10
	var wg sync.WaitGroup
	results := make([]*Rejection, attempts)
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, rej, err := eng.CreateSignup(context.Background(), uint64(100+i), 1)
			results[i] = rej
			errs[i] = err
		}(i)
	}
	wg.Wait()

	wins := 0
	for i := 0; i < attempts; i++ {
		require.NoError(t, errs[i])
		if results[i] == nil {
			wins++
		} else {
			assert.Equal(t, ShiftFull, results[i].Reason)
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, uint32(1), st.slot(1).CurrentCount)
	assert.Equal(t, 1, st.signupRows(1))
}

func TestCounterMatchesCreatesMinusDestroys(t *testing.T) {
	// N creates and M cancels, interleaved across goroutines; the reread
	// counter must land on N - M and agree with the live signup rows.
	st := newMemSignupStore()
	st.addSlot(signupSlot(1, 100, 0))
	eng := newSignupEngine(st)

	const creates = 8
	ids := make([]uint64, creates)
	for i := 0; i < creates; i++ {
		s, rej, err := eng.CreateSignup(context.Background(), uint64(200+i), 1)
		require.NoError(t, err)
		require.Nil(t, rej)
		ids[i] = s.ID
	}

	const cancels = 3
	var wg sync.WaitGroup
	for i := 0; i < cancels; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, eng.CancelSignup(context.Background(), ids[i], uint64(200+i), false))
		}(i)
	}
	wg.Wait()

	assert.Equal(t, uint32(creates-cancels), st.slot(1).CurrentCount)
	assert.Equal(t, creates-cancels, st.signupRows(1))
}

func TestCancelSignupForbiddenForOtherVolunteer(t *testing.T) {
	st := newMemSignupStore()
	st.addSlot(signupSlot(1, 2, 0))
	eng := newSignupEngine(st)

	s, rej, err := eng.CreateSignup(context.Background(), 7, 1)
	require.NoError(t, err)
	require.Nil(t, rej)

	err = eng.CancelSignup(context.Background(), s.ID, 8, false)
	assert.ErrorIs(t, err, repository.ErrForbidden)

	// An admin may cancel anyone's.
	require.NoError(t, eng.CancelSignup(context.Background(), s.ID, 8, true))
	assert.Equal(t, uint32(0), st.slot(1).CurrentCount)
}

func TestCreateSignupRejectsOverlapAcrossSlots(t *testing.T) {
	st := newMemSignupStore()
	st.addSlot(signupSlot(1, 5, 0))
	other := signupSlot(2, 5, 0) // same window, different enrollment
	st.addSlot(other)
	eng := newSignupEngine(st)

	_, rej, err := eng.CreateSignup(context.Background(), 7, 1)
	require.NoError(t, err)
	require.Nil(t, rej)

	_, rej, err = eng.CreateSignup(context.Background(), 7, 2)
	require.NoError(t, err)
	require.NotNil(t, rej)
	assert.Equal(t, OverlappingShift, rej.Reason)
}

func TestCreateSignupMissingQualifications(t *testing.T) {
	st := newMemSignupStore()
	slot := signupSlot(1, 5, 0)
	st.addSlot(slot)
	st.required[st.programs[slot.EnrollmentID]] = []string{"first-aid", "crowd-control"}
	st.held[7] = []string{"first-aid"}
	eng := newSignupEngine(st)

	_, rej, err := eng.CreateSignup(context.Background(), 7, 1)
	require.NoError(t, err)
	require.NotNil(t, rej)
	assert.Equal(t, MissingQualifications, rej.Reason)
	assert.Equal(t, []string{"crowd-control"}, rej.Missing)
	assert.Equal(t, 0, st.signupRows(1))
}
