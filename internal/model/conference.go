package model

import "time"

// Conference is a multi-day event whose programs are staffed by
// volunteers.  It carries the inclusive date range the schedule spans and
// the default daily operating window used for days whose enrollment
// day-schedule does not override it.
//
// Fields:
//
//	ID         – primary key identifier.
//	Name       – display name of the conference.
//	Location   – free-text venue description.
//	StartDate  – first day of the conference (date only).
//	EndDate    – last day of the conference, inclusive; never before StartDate.
//	HoursStart – default daily opening time as "HH:MM", empty when unset.
//	HoursEnd   – default daily closing time as "HH:MM", empty when unset.
//	Timezone   – IANA zone name all day-schedule times resolve against.
//	Archived   – excludes the conference from default listings once its
//	             end date has passed; scheduling semantics are unchanged.
//	CreatedAt  – creation timestamp.
//	UpdatedAt  – last update timestamp.
type Conference struct {
	ID         uint64    // conferences.id
	Name       string    // conferences.name
	Location   string    // conferences.location
	StartDate  time.Time // conferences.start_date
	EndDate    time.Time // conferences.end_date
	HoursStart string    // conferences.hours_start ("HH:MM", "" when NULL)
	HoursEnd   string    // conferences.hours_end ("HH:MM", "" when NULL)
	Timezone   string    // conferences.timezone
	Archived   bool      // conferences.archived
	CreatedAt  time.Time // conferences.created_at
	UpdatedAt  time.Time // conferences.updated_at
}

// Days returns the number of calendar days the conference spans, inclusive
// of both endpoints.
func (c Conference) Days() int {
	return int(c.EndDate.Sub(c.StartDate).Hours()/24) + 1
}
