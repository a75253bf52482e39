package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/conference-volunteer-shifts/internal/model"
)

// ErrProgramNotFound indicates that a program was not located in the DB.
var ErrProgramNotFound = errors.New("program not found")

// ErrProgramNameExists indicates a unique-name violation on insert/update.
var ErrProgramNameExists = errors.New("program name already exists")

// ProgramRepo manages persistence for programs.  A program carries the
// default per-shift volunteer capacity that enrollments may override.
type ProgramRepo struct {
	db *sql.DB
}

// NewProgramRepo returns a new ProgramRepo bound to the given database.
func NewProgramRepo(db *sql.DB) *ProgramRepo { return &ProgramRepo{db: db} }

// Create inserts a new program and populates the generated ID and
// timestamps on the provided struct.
func (r *ProgramRepo) Create(ctx context.Context, p *model.Program) error {
	const q = `INSERT INTO programs (name, description, max_volunteers) VALUES (?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, p.Name, p.Description, p.MaxVolunteers)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrProgramNameExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	const sel = `SELECT id, name, COALESCE(description, ''), max_volunteers, created_at, updated_at
	             FROM programs WHERE id = ?`
	return r.db.QueryRowContext(ctx, sel, p.ID).Scan(
		&p.ID, &p.Name, &p.Description, &p.MaxVolunteers, &p.CreatedAt, &p.UpdatedAt)
}

// GetByID returns a single program or ErrProgramNotFound.
func (r *ProgramRepo) GetByID(ctx context.Context, id uint64) (*model.Program, error) {
	const q = `SELECT id, name, COALESCE(description, ''), max_volunteers, created_at, updated_at
	           FROM programs WHERE id = ?`
	var p model.Program
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&p.ID, &p.Name, &p.Description, &p.MaxVolunteers, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProgramNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns all programs ordered by name.
func (r *ProgramRepo) List(ctx context.Context) ([]model.Program, error) {
	const q = `SELECT id, name, COALESCE(description, ''), max_volunteers, created_at, updated_at
	           FROM programs ORDER BY name`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Program, 0)
	for rows.Next() {
		var p model.Program
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.MaxVolunteers, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Update rewrites the mutable columns of a program.  Changing
// max_volunteers here never touches already-generated timeslots; that is
// the cascade updater's job.
func (r *ProgramRepo) Update(ctx context.Context, p *model.Program) error {
	const q = `UPDATE programs SET name = ?, description = ?, max_volunteers = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, p.Name, p.Description, p.MaxVolunteers, p.ID)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrProgramNameExists
		}
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, getErr := r.GetByID(ctx, p.ID); getErr != nil {
			return getErr
		}
	}
	return nil
}

// Delete removes a program.  Enrollments referencing it cascade away along
// with their timeslots and signups.
func (r *ProgramRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM programs WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrProgramNotFound
	}
	return nil
}
