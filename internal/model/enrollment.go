package model

import "time"

// DayWindow describes whether and when an enrollment operates on one
// conference day.  Start and End are wall-clock "HH:MM" strings in the
// conference's timezone; when either is empty the conference's default
// operating hours fill the gap for that bound.
type DayWindow struct {
	Enabled bool   `json:"enabled"`
	Start   string `json:"start,omitempty"`
	End     string `json:"end,omitempty"`
}

// DaySchedule maps zero-based day offsets from the conference start date
// (encoded as decimal strings, matching the stored JSON) to that day's
// window.  Days without an entry, or with Enabled false, produce no
// timeslots.
type DaySchedule map[string]DayWindow

// Enrollment pairs one program with one conference.  It owns the
// day-schedule that drives timeslot generation and may override the
// program's default shift capacity.  The (ConferenceID, ProgramID) pair is
// unique.
//
// Fields:
//
//	ID                – primary key identifier.
//	ConferenceID      – owning conference.
//	ProgramID         – enrolled program.
//	DaySchedule       – per-day operating windows; may be empty.
//	MaxVolunteers     – optional capacity override; nil means "use the
//	                    program default", non-nil values are positive.
//	PublicDescription – conference-specific blurb for this program.
//	CreatedAt         – creation timestamp.
//	UpdatedAt         – last update timestamp.
type Enrollment struct {
	ID                uint64      // enrollments.id
	ConferenceID      uint64      // enrollments.conference_id
	ProgramID         uint64      // enrollments.program_id
	DaySchedule       DaySchedule // enrollments.day_schedule (JSON)
	MaxVolunteers     *uint32     // enrollments.max_volunteers (nullable override)
	PublicDescription string      // enrollments.public_description
	CreatedAt         time.Time   // enrollments.created_at
	UpdatedAt         time.Time   // enrollments.updated_at
}

// EffectiveCapacity resolves the shift capacity used when generating
// timeslots: the enrollment's override when set, otherwise the program
// default.
func (e Enrollment) EffectiveCapacity(programDefault uint32) uint32 {
	if e.MaxVolunteers != nil && *e.MaxVolunteers > 0 {
		return *e.MaxVolunteers
	}
	return programDefault
}
