// Package repository contains data access logic for the scheduling domain.
// This file defines persistence for conferences. A Conference owns the
// program enrollments whose timeslots the engine generates; deleting one
// cascades through enrollments, timeslots and signups via foreign keys.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/conference-volunteer-shifts/internal/model"
)

// ErrConferenceNotFound indicates that a conference was not located in the DB.
var ErrConferenceNotFound = errors.New("conference not found")

// ConferenceRepo manages persistence for conferences.
type ConferenceRepo struct {
	db *sql.DB
}

// NewConferenceRepo returns a new ConferenceRepo bound to the given database.
func NewConferenceRepo(db *sql.DB) *ConferenceRepo { return &ConferenceRepo{db: db} }

// DB exposes the underlying sql.DB.  It allows callers to begin
// transactions spanning multiple repositories.  Use this method to obtain
// a *sql.DB when you need fine-grained transaction control.
func (r *ConferenceRepo) DB() *sql.DB { return r.db }

const conferenceCols = `id, name, location, start_date, end_date,
	COALESCE(hours_start, ''), COALESCE(hours_end, ''), timezone, archived,
	created_at, updated_at`

func scanConference(row interface{ Scan(...any) error }, c *model.Conference) error {
	return row.Scan(&c.ID, &c.Name, &c.Location, &c.StartDate, &c.EndDate,
		&c.HoursStart, &c.HoursEnd, &c.Timezone, &c.Archived,
		&c.CreatedAt, &c.UpdatedAt)
}

// nullStr maps "" to NULL so the hours columns stay NULL when a conference
// has no default operating window.
func nullStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// Create inserts a new conference and reads the row back to populate
// timestamps and defaults on the provided struct.
func (r *ConferenceRepo) Create(ctx context.Context, c *model.Conference) error {
	const q = `INSERT INTO conferences (name, location, start_date, end_date, hours_start, hours_end, timezone)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	tz := c.Timezone
	if tz == "" {
		tz = "UTC"
	}
	res, err := r.db.ExecContext(ctx, q, c.Name, c.Location,
		c.StartDate.Format("2006-01-02"), c.EndDate.Format("2006-01-02"),
		nullStr(c.HoursStart), nullStr(c.HoursEnd), tz)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	return scanConference(r.db.QueryRowContext(ctx,
		`SELECT `+conferenceCols+` FROM conferences WHERE id = ?`, c.ID), c)
}

// GetByID returns a single conference or ErrConferenceNotFound.
func (r *ConferenceRepo) GetByID(ctx context.Context, id uint64) (*model.Conference, error) {
	var c model.Conference
	err := scanConference(r.db.QueryRowContext(ctx,
		`SELECT `+conferenceCols+` FROM conferences WHERE id = ?`, id), &c)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrConferenceNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns conferences ordered by start date descending.  Archived
// conferences are excluded unless includeArchived is set, matching the
// default-listing behavior of the admin UI.
func (r *ConferenceRepo) List(ctx context.Context, includeArchived bool) ([]model.Conference, error) {
	q := `SELECT ` + conferenceCols + ` FROM conferences`
	if !includeArchived {
		q += ` WHERE archived = 0`
	}
	q += ` ORDER BY start_date DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Conference, 0)
	for rows.Next() {
		var c model.Conference
		if err := scanConference(rows, &c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Update rewrites the mutable columns of a conference.  Callers are
// responsible for triggering schedule regeneration when the date range,
// operating hours or timezone changed.
func (r *ConferenceRepo) Update(ctx context.Context, c *model.Conference) error {
	const q = `UPDATE conferences
	           SET name = ?, location = ?, start_date = ?, end_date = ?,
	               hours_start = ?, hours_end = ?, timezone = ?
	           WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, c.Name, c.Location,
		c.StartDate.Format("2006-01-02"), c.EndDate.Format("2006-01-02"),
		nullStr(c.HoursStart), nullStr(c.HoursEnd), c.Timezone, c.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// RowsAffected is 0 both for a missing row and for a no-change
		// update; distinguish by probing for existence.
		if _, getErr := r.GetByID(ctx, c.ID); getErr != nil {
			return getErr
		}
	}
	return nil
}

// Archive sets the archived flag on a conference.  Archiving changes no
// scheduling semantics; it only hides the conference from default listings.
func (r *ConferenceRepo) Archive(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE conferences SET archived = 1 WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return getErr
		}
	}
	return nil
}

// ArchivePast archives every conference whose end date precedes the given
// day.  It returns the number of rows flipped and is invoked by the nightly
// sweep.
func (r *ConferenceRepo) ArchivePast(ctx context.Context, today time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE conferences SET archived = 1 WHERE archived = 0 AND end_date < ?`,
		today.Format("2006-01-02"))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Delete removes a conference.  Enrollments, timeslots and signups are
// removed transitively by the foreign key cascade.
func (r *ConferenceRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM conferences WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrConferenceNotFound
	}
	return nil
}
