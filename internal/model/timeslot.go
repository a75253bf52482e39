package model

import "time"

// SlotDuration is the atomic scheduling grain.  Every timeslot is exactly
// this long; the duration is not configurable.
const SlotDuration = 15 * time.Minute

// Timeslot is one fixed 15-minute schedulable unit belonging to an
// enrollment.  MaxCapacity is snapshotted from the enrollment (or program
// default) at generation time; later capacity changes reach existing rows
// only through the cascade updater.  CurrentCount always equals the number
// of live signups referencing the slot and is written by the signup
// create/cancel paths alone.
//
// Fields:
//
//	ID           – primary key identifier.
//	EnrollmentID – owning enrollment; (EnrollmentID, StartTime) is unique.
//	StartTime    – absolute start instant (UTC in the database).
//	EndTime      – StartTime + SlotDuration.
//	MaxCapacity  – positive volunteer capacity for this shift.
//	CurrentCount – live signup count; 0 <= CurrentCount <= MaxCapacity.
//	CreatedAt    – creation timestamp.
//	UpdatedAt    – last update timestamp.
type Timeslot struct {
	ID           uint64    // timeslots.id
	EnrollmentID uint64    // timeslots.enrollment_id
	StartTime    time.Time // timeslots.start_time
	EndTime      time.Time // timeslots.end_time
	MaxCapacity  uint32    // timeslots.max_capacity
	CurrentCount uint32    // timeslots.current_count
	CreatedAt    time.Time // timeslots.created_at
	UpdatedAt    time.Time // timeslots.updated_at
}

// Full reports whether the slot has reached its capacity.
func (t Timeslot) Full() bool {
	return t.CurrentCount >= t.MaxCapacity
}

// Overlaps tests the half-open intervals [t.StartTime, t.EndTime) and
// [start, end) for a shared instant.  Touching endpoints do not overlap.
func (t Timeslot) Overlaps(start, end time.Time) bool {
	return t.StartTime.Before(end) && t.EndTime.After(start)
}
