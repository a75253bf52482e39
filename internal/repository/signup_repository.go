package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/conference-volunteer-shifts/internal/model"
)

// ErrSignupNotFound indicates that a signup was not located in the DB.
var ErrSignupNotFound = errors.New("signup not found")

// SignupRepo provides data access to the signups table.  Creation and
// deletion always run inside the caller's transaction because each must be
// atomic with the matching occupancy counter adjustment on the owning
// timeslot.
type SignupRepo struct {
	db *sql.DB
}

// NewSignupRepo returns a new SignupRepo bound to the given database.
func NewSignupRepo(db *sql.DB) *SignupRepo { return &SignupRepo{db: db} }

// CreateTx inserts a new signup within the provided transaction and
// populates the generated ID on the record.  The caller must commit or
// roll back together with the counter increment.
func (r *SignupRepo) CreateTx(ctx context.Context, tx *sql.Tx, s *model.Signup) error {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO signups (user_id, timeslot_id) VALUES (?, ?)`, s.UserID, s.TimeslotID)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrConflict
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	return tx.QueryRowContext(ctx,
		`SELECT created_at FROM signups WHERE id = ?`, s.ID).Scan(&s.CreatedAt)
}

// DeleteTx removes a signup within the provided transaction.  It returns
// ErrSignupNotFound when no row was deleted, which callers treat as a
// structural error aborting the transaction.
func (r *SignupRepo) DeleteTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	res, err := tx.ExecContext(ctx, `DELETE FROM signups WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrSignupNotFound
	}
	return nil
}

// GetByID returns a single signup or ErrSignupNotFound.
func (r *SignupRepo) GetByID(ctx context.Context, id uint64) (*model.Signup, error) {
	var s model.Signup
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, timeslot_id, created_at FROM signups WHERE id = ?`, id).
		Scan(&s.ID, &s.UserID, &s.TimeslotID, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSignupNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ExistsTx reports whether the user already holds a signup for this exact
// timeslot, read inside the caller's transaction so the duplicate check is
// consistent with the insert that may follow.
func (r *SignupRepo) ExistsTx(ctx context.Context, tx *sql.Tx, userID, timeslotID uint64) (bool, error) {
	var one int
	err := tx.QueryRowContext(ctx,
		`SELECT 1 FROM signups WHERE user_id = ? AND timeslot_id = ? LIMIT 1`,
		userID, timeslotID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ListOverlappingTx returns the timeslots of every active signup the user
// holds whose half-open interval intersects [start, end), excluding the
// given timeslot itself.  The query deliberately spans all enrollments and
// conferences: the overlap rule is a global constraint on the user's time,
// not scoped to one program.  It runs inside the caller's transaction so
// the overlap check and the subsequent insert form one atomic unit per
// user.
func (r *SignupRepo) ListOverlappingTx(ctx context.Context, tx *sql.Tx, userID uint64, start, end time.Time, excludeTimeslotID uint64) ([]model.Timeslot, error) {
	const q = `SELECT t.id, t.enrollment_id, t.start_time, t.end_time, t.max_capacity, t.current_count, t.created_at, t.updated_at
	           FROM signups s
	           JOIN timeslots t ON t.id = s.timeslot_id
	           WHERE s.user_id = ?
	             AND t.id <> ?
	             AND t.start_time < ?
	             AND t.end_time > ?
	           ORDER BY t.start_time`
	rows, err := tx.QueryContext(ctx, q, userID, excludeTimeslotID,
		end.UTC().Format(dbTime), start.UTC().Format(dbTime))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Timeslot
	for rows.Next() {
		var t model.Timeslot
		if err := scanTimeslot(rows, &t); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// CountByTimeslot returns the number of live signup rows for a timeslot.
// It exists so callers (and tests) can verify the occupancy counter against
// the ground truth.
func (r *SignupRepo) CountByTimeslot(ctx context.Context, timeslotID uint64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM signups WHERE timeslot_id = ?`, timeslotID).Scan(&n)
	return n, err
}

// SignupDetail is one row of a volunteer's "my shifts" listing, joined
// with the timeslot and program for display.
type SignupDetail struct {
	ID             uint64    `json:"id"`
	TimeslotID     uint64    `json:"timeslot_id"`
	StartTime      time.Time `json:"start_time"`
	EndTime        time.Time `json:"end_time"`
	ProgramID      uint64    `json:"program_id"`
	ProgramName    string    `json:"program_name"`
	ConferenceID   uint64    `json:"conference_id"`
	ConferenceName string    `json:"conference_name"`
}

// ListByUser returns the user's signups joined with timeslot, program and
// conference details, ordered by shift start time.  When conferenceID is
// non-zero, results are restricted to that conference.
func (r *SignupRepo) ListByUser(ctx context.Context, userID, conferenceID uint64) ([]SignupDetail, error) {
	q := `SELECT s.id, t.id, t.start_time, t.end_time, p.id, p.name, c.id, c.name
	      FROM signups s
	      JOIN timeslots t ON t.id = s.timeslot_id
	      JOIN enrollments e ON e.id = t.enrollment_id
	      JOIN programs p ON p.id = e.program_id
	      JOIN conferences c ON c.id = e.conference_id
	      WHERE s.user_id = ?`
	args := []interface{}{userID}
	if conferenceID != 0 {
		q += ` AND c.id = ?`
		args = append(args, conferenceID)
	}
	q += ` ORDER BY t.start_time`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]SignupDetail, 0)
	for rows.Next() {
		var d SignupDetail
		if err := rows.Scan(&d.ID, &d.TimeslotID, &d.StartTime, &d.EndTime,
			&d.ProgramID, &d.ProgramName, &d.ConferenceID, &d.ConferenceName); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// RosterEntry names one volunteer on a timeslot's roster.
type RosterEntry struct {
	SignupID uint64 `json:"signup_id"`
	UserID   uint64 `json:"user_id"`
	Email    string `json:"email"`
}

// ListRosterByTimeslot returns the volunteers signed up for a timeslot,
// ordered by email for a deterministic roster.
func (r *SignupRepo) ListRosterByTimeslot(ctx context.Context, timeslotID uint64) ([]RosterEntry, error) {
	const q = `SELECT s.id, u.id, u.email
	           FROM signups s
	           JOIN users u ON u.id = s.user_id
	           WHERE s.timeslot_id = ?
	           ORDER BY u.email`
	rows, err := r.db.QueryContext(ctx, q, timeslotID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]RosterEntry, 0)
	for rows.Next() {
		var e RosterEntry
		if err := rows.Scan(&e.SignupID, &e.UserID, &e.Email); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
