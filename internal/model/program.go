package model

import "time"

// Program is a volunteer-staffed activity that can be enabled for one or
// more conferences via an Enrollment.  MaxVolunteers is the default
// per-shift capacity applied when an enrollment does not override it.
//
// Fields:
//
//	ID            – primary key identifier.
//	Name          – unique program name.
//	Description   – free-text description shown to volunteers.
//	MaxVolunteers – default shift capacity, always positive.
//	CreatedAt     – creation timestamp.
//	UpdatedAt     – last update timestamp.
type Program struct {
	ID            uint64    // programs.id
	Name          string    // programs.name
	Description   string    // programs.description
	MaxVolunteers uint32    // programs.max_volunteers
	CreatedAt     time.Time // programs.created_at
	UpdatedAt     time.Time // programs.updated_at
}
