package scheduler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/conference-volunteer-shifts/internal/model"
	"github.com/iliyamo/conference-volunteer-shifts/internal/repository"
)

// signupTx is one transactional unit of the signup write path.  Lock
// acquires the slot row for the transaction's lifetime; every later read
// and write happens under that lock until Commit or Rollback releases it.
type signupTx interface {
	LockTimeslot(ctx context.Context, id uint64) (*model.Timeslot, error)
	OverlappingSignups(ctx context.Context, userID uint64, start, end time.Time, excludeSlotID uint64) ([]model.Timeslot, error)
	ProgramID(ctx context.Context, enrollmentID uint64) (uint64, error)
	RequiredQualifications(ctx context.Context, programID uint64) ([]string, error)
	HeldQualifications(ctx context.Context, userID uint64) ([]string, error)
	SignupExists(ctx context.Context, userID, timeslotID uint64) (bool, error)
	InsertSignup(ctx context.Context, s *model.Signup) error
	DeleteSignup(ctx context.Context, signupID uint64) error
	IncrementCount(ctx context.Context, timeslotID uint64) error
	DecrementCount(ctx context.Context, timeslotID uint64) error
	Commit() error
	Rollback() error
}

type signupStore interface {
	Begin(ctx context.Context) (signupTx, error)
	SignupByID(ctx context.Context, id uint64) (*model.Signup, error)
}

// sqlSignupStore backs signupTx with a database transaction; LockTimeslot
// maps to SELECT ... FOR UPDATE so concurrent attempts on one slot queue
// on the row lock.
type sqlSignupStore struct {
	db             *sql.DB
	timeslots      *repository.TimeslotRepo
	signups        *repository.SignupRepo
	enrollments    *repository.EnrollmentRepo
	qualifications *repository.QualificationRepo
}

func (s *sqlSignupStore) Begin(ctx context.Context) (signupTx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &sqlSignupTx{tx: tx, store: s}, nil
}

func (s *sqlSignupStore) SignupByID(ctx context.Context, id uint64) (*model.Signup, error) {
	return s.signups.GetByID(ctx, id)
}

type sqlSignupTx struct {
	tx    *sql.Tx
	store *sqlSignupStore
}

func (t *sqlSignupTx) LockTimeslot(ctx context.Context, id uint64) (*model.Timeslot, error) {
	return t.store.timeslots.GetForUpdateTx(ctx, t.tx, id)
}

func (t *sqlSignupTx) OverlappingSignups(ctx context.Context, userID uint64, start, end time.Time, excludeSlotID uint64) ([]model.Timeslot, error) {
	return t.store.signups.ListOverlappingTx(ctx, t.tx, userID, start, end, excludeSlotID)
}

func (t *sqlSignupTx) ProgramID(ctx context.Context, enrollmentID uint64) (uint64, error) {
	return t.store.enrollments.ProgramIDTx(ctx, t.tx, enrollmentID)
}

func (t *sqlSignupTx) RequiredQualifications(ctx context.Context, programID uint64) ([]string, error) {
	return t.store.qualifications.NamesRequiredByProgramTx(ctx, t.tx, programID)
}

func (t *sqlSignupTx) HeldQualifications(ctx context.Context, userID uint64) ([]string, error) {
	return t.store.qualifications.NamesHeldByUserTx(ctx, t.tx, userID)
}

func (t *sqlSignupTx) SignupExists(ctx context.Context, userID, timeslotID uint64) (bool, error) {
	return t.store.signups.ExistsTx(ctx, t.tx, userID, timeslotID)
}

func (t *sqlSignupTx) InsertSignup(ctx context.Context, s *model.Signup) error {
	return t.store.signups.CreateTx(ctx, t.tx, s)
}

func (t *sqlSignupTx) DeleteSignup(ctx context.Context, signupID uint64) error {
	return t.store.signups.DeleteTx(ctx, t.tx, signupID)
}

func (t *sqlSignupTx) IncrementCount(ctx context.Context, timeslotID uint64) error {
	return t.store.timeslots.IncrementCountTx(ctx, t.tx, timeslotID)
}

func (t *sqlSignupTx) DecrementCount(ctx context.Context, timeslotID uint64) error {
	return t.store.timeslots.DecrementCountTx(ctx, t.tx, timeslotID)
}

func (t *sqlSignupTx) Commit() error   { return t.tx.Commit() }
func (t *sqlSignupTx) Rollback() error { return t.tx.Rollback() }

// SignupEngine owns the write path for signups.  Every create and cancel
// runs inside a single transaction that first locks the timeslot row, so
// for any one slot the capacity check, the signup write and the counter
// update are serialized; concurrent attempts queue on the row lock and
// each sees the count left by the previous one.
type SignupEngine struct {
	store signupStore
}

// NewSignupEngine constructs a SignupEngine over the shared database
// handle and repositories.
func NewSignupEngine(db *sql.DB, timeslots *repository.TimeslotRepo, signups *repository.SignupRepo, enrollments *repository.EnrollmentRepo, qualifications *repository.QualificationRepo) *SignupEngine {
	if db == nil || timeslots == nil || signups == nil || enrollments == nil || qualifications == nil {
		panic("nil dependency passed to NewSignupEngine")
	}
	return &SignupEngine{store: &sqlSignupStore{
		db:             db,
		timeslots:      timeslots,
		signups:        signups,
		enrollments:    enrollments,
		qualifications: qualifications,
	}}
}

func newSignupEngine(store signupStore) *SignupEngine {
	return &SignupEngine{store: store}
}

// CreateSignup attempts to sign userID up for the given timeslot.  On
// success it returns the created signup; when an eligibility check fails
// it returns a Rejection instead, with a nil error — rejections are
// outcomes, not failures.  The error return covers infrastructure only:
// unknown timeslot, transaction trouble, and the like.
//
// The whole attempt runs in one transaction.  The slot row is locked
// before anything is read, then overlap, qualification and duplicate
// facts are gathered under that same transaction, evaluated, and on a
// pass the signup insert and counter increment commit together.
func (e *SignupEngine) CreateSignup(ctx context.Context, userID, timeslotID uint64) (*model.Signup, *Rejection, error) {
	tx, err := e.store.Begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("begin signup tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	slot, err := tx.LockTimeslot(ctx, timeslotID)
	if err != nil {
		return nil, nil, err
	}

	overlapping, err := tx.OverlappingSignups(ctx, userID, slot.StartTime, slot.EndTime, slot.ID)
	if err != nil {
		return nil, nil, err
	}

	programID, err := tx.ProgramID(ctx, slot.EnrollmentID)
	if err != nil {
		return nil, nil, err
	}
	required, err := tx.RequiredQualifications(ctx, programID)
	if err != nil {
		return nil, nil, err
	}
	var held []string
	if len(required) > 0 {
		held, err = tx.HeldQualifications(ctx, userID)
		if err != nil {
			return nil, nil, err
		}
	}

	dup, err := tx.SignupExists(ctx, userID, timeslotID)
	if err != nil {
		return nil, nil, err
	}

	if rej := EvaluateSignup(slot, overlapping, required, held, dup); rej != nil {
		return nil, rej, nil
	}

	s := &model.Signup{UserID: userID, TimeslotID: timeslotID}
	if err := tx.InsertSignup(ctx, s); err != nil {
		// The unique (user_id, timeslot_id) key closes the race where the
		// same user submits twice; the loser reads as a duplicate.
		if errors.Is(err, repository.ErrConflict) {
			return nil, &Rejection{Reason: AlreadySignedUp}, nil
		}
		return nil, nil, err
	}
	if err := tx.IncrementCount(ctx, timeslotID); err != nil {
		return nil, nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("commit signup tx: %w", err)
	}
	committed = true
	return s, nil, nil
}

// CancelSignup removes a signup and decrements the slot counter in the
// same transaction.  Volunteers may cancel only their own signups; an
// admin may cancel anyone's.  A wrong owner yields ErrForbidden.
func (e *SignupEngine) CancelSignup(ctx context.Context, signupID, actorID uint64, actorIsAdmin bool) error {
	s, err := e.store.SignupByID(ctx, signupID)
	if err != nil {
		return err
	}
	if s.UserID != actorID && !actorIsAdmin {
		return repository.ErrForbidden
	}

	tx, err := e.store.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin cancel tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// Lock the slot row so the decrement serializes with concurrent
	// creates on the same slot.
	if _, err := tx.LockTimeslot(ctx, s.TimeslotID); err != nil {
		return err
	}
	if err := tx.DeleteSignup(ctx, signupID); err != nil {
		return err
	}
	if err := tx.DecrementCount(ctx, s.TimeslotID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit cancel tx: %w", err)
	}
	committed = true
	return nil
}
