package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/conference-volunteer-shifts/internal/model"
)

// ErrTimeslotNotFound indicates that a timeslot was not located in the DB.
var ErrTimeslotNotFound = errors.New("timeslot not found")

// TimeslotRepo manages persistence for timeslots.  The current_count
// column is written only by the signup create/cancel transactions and by
// nothing else; capacity mutations go through SetCapacity (cascade) or
// UpdateCapacityGuarded (single slot).  All timestamps are stored in UTC.
type TimeslotRepo struct {
	db *sql.DB
}

// NewTimeslotRepo returns a new TimeslotRepo bound to the given database.
func NewTimeslotRepo(db *sql.DB) *TimeslotRepo { return &TimeslotRepo{db: db} }

// DB exposes the underlying sql.DB for callers that need to begin
// transactions spanning multiple repositories.
func (r *TimeslotRepo) DB() *sql.DB { return r.db }

const dbTime = "2006-01-02 15:04:05"

const timeslotCols = `id, enrollment_id, start_time, end_time, max_capacity, current_count, created_at, updated_at`

func scanTimeslot(row interface{ Scan(...any) error }, t *model.Timeslot) error {
	return row.Scan(&t.ID, &t.EnrollmentID, &t.StartTime, &t.EndTime,
		&t.MaxCapacity, &t.CurrentCount, &t.CreatedAt, &t.UpdatedAt)
}

// CreateBulkTx inserts the given timeslots in a single statement within the
// provided transaction.  Generation is all-or-nothing per enrollment, so
// the caller wraps this together with any preceding delete in one
// transaction and commits or rolls back as a unit.  Passing an empty slice
// has no effect and returns nil.
func (r *TimeslotRepo) CreateBulkTx(ctx context.Context, tx *sql.Tx, slots []model.Timeslot) error {
	if len(slots) == 0 {
		return nil
	}
	query := `INSERT INTO timeslots (enrollment_id, start_time, end_time, max_capacity, current_count) VALUES `
	args := make([]interface{}, 0, len(slots)*5)
	for i, s := range slots {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?, 0)"
		args = append(args, s.EnrollmentID,
			s.StartTime.UTC().Format(dbTime), s.EndTime.UTC().Format(dbTime),
			s.MaxCapacity)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// DeleteByEnrollmentTx removes every timeslot of an enrollment within the
// provided transaction.  Signups on those slots cascade away via the
// foreign key.  It returns the number of deleted rows.
func (r *TimeslotRepo) DeleteByEnrollmentTx(ctx context.Context, tx *sql.Tx, enrollmentID uint64) (int64, error) {
	res, err := tx.ExecContext(ctx, `DELETE FROM timeslots WHERE enrollment_id = ?`, enrollmentID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ReplaceTimeslots swaps an enrollment's full timeslot set in one
// transaction: delete everything, then bulk-insert the replacement.
// Existing signups are destroyed with their slots.  It returns the number
// of rows removed.
func (r *TimeslotRepo) ReplaceTimeslots(ctx context.Context, enrollmentID uint64, slots []model.Timeslot) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	removed, err := r.DeleteByEnrollmentTx(ctx, tx, enrollmentID)
	if err != nil {
		return 0, err
	}
	if err := r.CreateBulkTx(ctx, tx, slots); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	committed = true
	return removed, nil
}

// GetByID returns a single timeslot or ErrTimeslotNotFound.
func (r *TimeslotRepo) GetByID(ctx context.Context, id uint64) (*model.Timeslot, error) {
	var t model.Timeslot
	err := scanTimeslot(r.db.QueryRowContext(ctx,
		`SELECT `+timeslotCols+` FROM timeslots WHERE id = ?`, id), &t)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTimeslotNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// GetForUpdateTx loads a timeslot under SELECT ... FOR UPDATE so the
// capacity check, signup insert and counter increment that follow are
// serialized against every concurrent signup attempt on the same slot.
// Attempts on different slots lock different rows and proceed in parallel.
func (r *TimeslotRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Timeslot, error) {
	var t model.Timeslot
	err := scanTimeslot(tx.QueryRowContext(ctx,
		`SELECT `+timeslotCols+` FROM timeslots WHERE id = ? FOR UPDATE`, id), &t)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTimeslotNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// IncrementCountTx adds one to the slot's occupancy counter inside the
// caller's transaction.  The guard clause cannot fire when the row is held
// FOR UPDATE and the capacity was just checked, but it keeps the counter
// inside its bounds even if a future caller misuses the method.
func (r *TimeslotRepo) IncrementCountTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE timeslots SET current_count = current_count + 1 WHERE id = ? AND current_count < max_capacity`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrConflict
	}
	return nil
}

// DecrementCountTx subtracts one from the slot's occupancy counter inside
// the caller's transaction.
func (r *TimeslotRepo) DecrementCountTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE timeslots SET current_count = current_count - 1 WHERE id = ? AND current_count > 0`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrConflict
	}
	return nil
}

// ListByEnrollment returns all timeslots of an enrollment ordered by start
// time.
func (r *TimeslotRepo) ListByEnrollment(ctx context.Context, enrollmentID uint64) ([]model.Timeslot, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+timeslotCols+` FROM timeslots WHERE enrollment_id = ? ORDER BY start_time`, enrollmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Timeslot, 0)
	for rows.Next() {
		var t model.Timeslot
		if err := scanTimeslot(rows, &t); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// BoardSlot is one timeslot row on a conference schedule board, joined
// with its program for display.
type BoardSlot struct {
	ID           uint64    `json:"id"`
	EnrollmentID uint64    `json:"enrollment_id"`
	ProgramID    uint64    `json:"program_id"`
	ProgramName  string    `json:"program_name"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
	MaxCapacity  uint32    `json:"max_capacity"`
	CurrentCount uint32    `json:"current_count"`
}

// ListBoardByConference returns every timeslot of a conference joined with
// its program, ordered by start time then program name.  The ordering is
// deterministic so cached board responses are stable.
func (r *TimeslotRepo) ListBoardByConference(ctx context.Context, conferenceID uint64) ([]BoardSlot, error) {
	const q = `SELECT t.id, t.enrollment_id, p.id, p.name, t.start_time, t.end_time, t.max_capacity, t.current_count
	           FROM timeslots t
	           JOIN enrollments e ON e.id = t.enrollment_id
	           JOIN programs p ON p.id = e.program_id
	           WHERE e.conference_id = ?
	           ORDER BY t.start_time, p.name, t.id`
	rows, err := r.db.QueryContext(ctx, q, conferenceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]BoardSlot, 0)
	for rows.Next() {
		var b BoardSlot
		if err := rows.Scan(&b.ID, &b.EnrollmentID, &b.ProgramID, &b.ProgramName,
			&b.StartTime, &b.EndTime, &b.MaxCapacity, &b.CurrentCount); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// SlotOccupancy is the minimal projection the capacity cascade iterates
// over: one row per timeslot with its live occupancy.
type SlotOccupancy struct {
	ID           uint64
	CurrentCount uint32
}

// ListOccupancy returns (id, current_count) for every timeslot of an
// enrollment ordered by id.  The cascade walks this list row by row rather
// than scanning inside one long transaction.
func (r *TimeslotRepo) ListOccupancy(ctx context.Context, enrollmentID uint64) ([]SlotOccupancy, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, current_count FROM timeslots WHERE enrollment_id = ? ORDER BY id`, enrollmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []SlotOccupancy
	for rows.Next() {
		var s SlotOccupancy
		if err := rows.Scan(&s.ID, &s.CurrentCount); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// SetCapacity writes a new max_capacity on one timeslot, refusing to go
// below the row's occupancy at write time.  The guard repeats the cascade's
// in-memory comparison inside the UPDATE so a signup landing between the
// read and the write cannot push current_count above the new ceiling; a
// guarded-away row surfaces as updated=false, which the cascade counts as
// skipped.  The connection's clientFoundRows option makes same-value
// updates report as applied, which is what keeps cascade re-runs producing
// identical tallies.
func (r *TimeslotRepo) SetCapacity(ctx context.Context, id uint64, capacity uint32) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE timeslots SET max_capacity = ? WHERE id = ? AND current_count <= ?`,
		capacity, id, capacity)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// UpdateCapacityGuarded changes one slot's capacity from the admin detail
// view.  Unlike the cascade it treats an occupancy conflict as an error the
// caller must surface: ErrConflict when current_count exceeds the proposed
// value, ErrTimeslotNotFound when the slot is gone.
func (r *TimeslotRepo) UpdateCapacityGuarded(ctx context.Context, id uint64, capacity uint32) error {
	ok, err := r.SetCapacity(ctx, id, capacity)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return ErrConflict
}
