package model

import "time"

// Signup is one user's claim on one timeslot.  A user holds at most one
// signup per timeslot.  Creating a signup increments the owning timeslot's
// occupancy counter by exactly one and destroying it decrements by exactly
// one; both happen atomically with the row write.
//
// Fields:
//
//	ID         – primary key identifier.
//	UserID     – the volunteer holding the shift.
//	TimeslotID – the claimed timeslot.
//	CreatedAt  – creation timestamp.
type Signup struct {
	ID         uint64    // signups.id
	UserID     uint64    // signups.user_id
	TimeslotID uint64    // signups.timeslot_id
	CreatedAt  time.Time // signups.created_at
}
