package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"github.com/iliyamo/conference-volunteer-shifts/internal/model"
)

// ErrEnrollmentNotFound indicates that an enrollment was not located in the DB.
var ErrEnrollmentNotFound = errors.New("enrollment not found")

// ErrEnrollmentExists indicates the (conference, program) pair is already
// enrolled.
var ErrEnrollmentExists = errors.New("program already enrolled for this conference")

// EnrollmentRepo manages persistence for conference-program enrollments.
// The day_schedule column is stored as JSON and round-tripped through
// model.DaySchedule.
type EnrollmentRepo struct {
	db *sql.DB
}

// NewEnrollmentRepo returns a new EnrollmentRepo bound to the given database.
func NewEnrollmentRepo(db *sql.DB) *EnrollmentRepo { return &EnrollmentRepo{db: db} }

// marshalDaySchedule encodes the schedule map, mapping an empty map to SQL
// NULL so absent schedules stay distinguishable in the column.
func marshalDaySchedule(ds model.DaySchedule) (any, error) {
	if len(ds) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(ds)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func unmarshalDaySchedule(raw sql.NullString) (model.DaySchedule, error) {
	if !raw.Valid || strings.TrimSpace(raw.String) == "" {
		return model.DaySchedule{}, nil
	}
	var ds model.DaySchedule
	if err := json.Unmarshal([]byte(raw.String), &ds); err != nil {
		return nil, err
	}
	return ds, nil
}

const enrollmentCols = `id, conference_id, program_id, day_schedule, max_volunteers,
	COALESCE(public_description, ''), created_at, updated_at`

func scanEnrollment(row interface{ Scan(...any) error }) (*model.Enrollment, error) {
	var (
		e     model.Enrollment
		rawDS sql.NullString
		capN  sql.NullInt64
	)
	err := row.Scan(&e.ID, &e.ConferenceID, &e.ProgramID, &rawDS, &capN,
		&e.PublicDescription, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if e.DaySchedule, err = unmarshalDaySchedule(rawDS); err != nil {
		return nil, err
	}
	if capN.Valid {
		v := uint32(capN.Int64)
		e.MaxVolunteers = &v
	}
	return &e, nil
}

// Create inserts a new enrollment.  The unique (conference_id, program_id)
// key turns duplicate pairs into ErrEnrollmentExists.
func (r *EnrollmentRepo) Create(ctx context.Context, e *model.Enrollment) error {
	ds, err := marshalDaySchedule(e.DaySchedule)
	if err != nil {
		return err
	}
	var capV any
	if e.MaxVolunteers != nil {
		capV = *e.MaxVolunteers
	}
	const q = `INSERT INTO enrollments (conference_id, program_id, day_schedule, max_volunteers, public_description)
	           VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, e.ConferenceID, e.ProgramID, ds, capV, e.PublicDescription)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrEnrollmentExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = uint64(id)
	got, err := r.GetByID(ctx, e.ID)
	if err != nil {
		return err
	}
	*e = *got
	return nil
}

// GetByID returns a single enrollment or ErrEnrollmentNotFound.
func (r *EnrollmentRepo) GetByID(ctx context.Context, id uint64) (*model.Enrollment, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+enrollmentCols+` FROM enrollments WHERE id = ?`, id)
	e, err := scanEnrollment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEnrollmentNotFound
	}
	return e, err
}

// ListByConference returns all enrollments of a conference ordered by the
// enrolled program's name.
func (r *EnrollmentRepo) ListByConference(ctx context.Context, conferenceID uint64) ([]model.Enrollment, error) {
	const q = `SELECT e.id, e.conference_id, e.program_id, e.day_schedule, e.max_volunteers,
	                  COALESCE(e.public_description, ''), e.created_at, e.updated_at
	           FROM enrollments e
	           JOIN programs p ON p.id = e.program_id
	           WHERE e.conference_id = ?
	           ORDER BY p.name`
	rows, err := r.db.QueryContext(ctx, q, conferenceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Enrollment, 0)
	for rows.Next() {
		e, err := scanEnrollment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

// IDsByConference returns just the enrollment IDs of a conference, the
// form the reconciler needs when a conference-level schedule field changes.
func (r *EnrollmentRepo) IDsByConference(ctx context.Context, conferenceID uint64) ([]uint64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id FROM enrollments WHERE conference_id = ? ORDER BY id`, conferenceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Update rewrites the mutable columns of an enrollment.  Callers must
// regenerate timeslots afterwards when the day schedule changed.
func (r *EnrollmentRepo) Update(ctx context.Context, e *model.Enrollment) error {
	ds, err := marshalDaySchedule(e.DaySchedule)
	if err != nil {
		return err
	}
	var capV any
	if e.MaxVolunteers != nil {
		capV = *e.MaxVolunteers
	}
	const q = `UPDATE enrollments SET day_schedule = ?, max_volunteers = ?, public_description = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, ds, capV, e.PublicDescription, e.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, getErr := r.GetByID(ctx, e.ID); getErr != nil {
			return getErr
		}
	}
	return nil
}

// Delete removes an enrollment; its timeslots and their signups cascade.
func (r *EnrollmentRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM enrollments WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrEnrollmentNotFound
	}
	return nil
}

// ProgramIDTx returns the program an enrollment belongs to, read inside
// the caller's transaction.  The signup path uses it to resolve the
// required-qualification set for a locked timeslot.
func (r *EnrollmentRepo) ProgramIDTx(ctx context.Context, tx *sql.Tx, enrollmentID uint64) (uint64, error) {
	var programID uint64
	err := tx.QueryRowContext(ctx,
		`SELECT program_id FROM enrollments WHERE id = ?`, enrollmentID).Scan(&programID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrEnrollmentNotFound
	}
	return programID, err
}

// Exists reports whether the enrollment row is still present.  The capacity
// cascade uses it so a job racing a deletion degrades to a no-op instead of
// an error.
func (r *EnrollmentRepo) Exists(ctx context.Context, id uint64) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM enrollments WHERE id = ? LIMIT 1`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
