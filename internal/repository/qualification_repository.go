package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/conference-volunteer-shifts/internal/model"
)

// ErrQualificationNotFound indicates that a qualification was not located
// in the DB.
var ErrQualificationNotFound = errors.New("qualification not found")

// QualificationRepo manages qualifications and their links to programs and
// users.  The scheduling engine only ever consumes qualification names as
// opaque tokens; everything richer stays in this layer.
type QualificationRepo struct {
	db *sql.DB
}

// NewQualificationRepo returns a new QualificationRepo bound to the given
// database.
func NewQualificationRepo(db *sql.DB) *QualificationRepo { return &QualificationRepo{db: db} }

// Create inserts a new qualification.
func (r *QualificationRepo) Create(ctx context.Context, q *model.Qualification) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO qualifications (name, description) VALUES (?, ?)`, q.Name, q.Description)
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
	q.ID = uint64(id)
	return r.db.QueryRowContext(ctx,
		`SELECT created_at FROM qualifications WHERE id = ?`, q.ID).Scan(&q.CreatedAt)
}

// List returns all qualifications ordered by name.
func (r *QualificationRepo) List(ctx context.Context) ([]model.Qualification, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, COALESCE(description, ''), created_at FROM qualifications ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Qualification, 0)
	for rows.Next() {
		var q model.Qualification
		if err := rows.Scan(&q.ID, &q.Name, &q.Description, &q.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

// Delete removes a qualification; program and user links cascade away.
func (r *QualificationRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM qualifications WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrQualificationNotFound
	}
	return nil
}

// AttachToProgram marks a qualification as required by a program.
// Attaching twice is a no-op.
func (r *QualificationRepo) AttachToProgram(ctx context.Context, programID, qualificationID uint64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT IGNORE INTO program_qualifications (program_id, qualification_id) VALUES (?, ?)`,
		programID, qualificationID)
	return err
}

// DetachFromProgram removes a required qualification from a program.
func (r *QualificationRepo) DetachFromProgram(ctx context.Context, programID, qualificationID uint64) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM program_qualifications WHERE program_id = ? AND qualification_id = ?`,
		programID, qualificationID)
	return err
}

// GrantToUser records that a user holds a qualification.  Granting twice
// is a no-op.
func (r *QualificationRepo) GrantToUser(ctx context.Context, userID, qualificationID uint64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT IGNORE INTO user_qualifications (user_id, qualification_id) VALUES (?, ?)`,
		userID, qualificationID)
	return err
}

// RevokeFromUser removes a qualification from a user.
func (r *QualificationRepo) RevokeFromUser(ctx context.Context, userID, qualificationID uint64) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM user_qualifications WHERE user_id = ? AND qualification_id = ?`,
		userID, qualificationID)
	return err
}

// NamesRequiredByProgramTx returns the qualification tokens a program
// requires, sorted by name, read inside the caller's transaction so the
// eligibility check sees the same requirement set the insert commits
// against.
func (r *QualificationRepo) NamesRequiredByProgramTx(ctx context.Context, tx *sql.Tx, programID uint64) ([]string, error) {
	const q = `SELECT q.name FROM program_qualifications pq
	           JOIN qualifications q ON q.id = pq.qualification_id
	           WHERE pq.program_id = ? ORDER BY q.name`
	return scanNames(tx.QueryContext(ctx, q, programID))
}

// NamesHeldByUserTx returns the qualification tokens a user holds, sorted
// by name, read inside the caller's transaction.
func (r *QualificationRepo) NamesHeldByUserTx(ctx context.Context, tx *sql.Tx, userID uint64) ([]string, error) {
	const q = `SELECT q.name FROM user_qualifications uq
	           JOIN qualifications q ON q.id = uq.qualification_id
	           WHERE uq.user_id = ? ORDER BY q.name`
	return scanNames(tx.QueryContext(ctx, q, userID))
}

// NamesRequiredByProgram is the non-transactional variant used for display.
func (r *QualificationRepo) NamesRequiredByProgram(ctx context.Context, programID uint64) ([]string, error) {
	const q = `SELECT q.name FROM program_qualifications pq
	           JOIN qualifications q ON q.id = pq.qualification_id
	           WHERE pq.program_id = ? ORDER BY q.name`
	return scanNames(r.db.QueryContext(ctx, q, programID))
}

func scanNames(rows *sql.Rows, err error) ([]string, error) {
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]string, 0)
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}
