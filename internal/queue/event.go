// Package queue defines message payloads exchanged over the message broker
// and the background consumer that applies capacity cascades.
package queue

// CapacityUpdateRequested is published when an admin changes the capacity
// of an enrollment or its program.  The consumer applies the cascade to
// the enrollment's existing timeslots asynchronously; the event carries a
// job ID so the outcome can be correlated in the capacity log.
type CapacityUpdateRequested struct {
	JobID        string `json:"job_id"`
	EnrollmentID uint64 `json:"enrollment_id"`
	Capacity     uint32 `json:"capacity"`
	RequestedBy  uint64 `json:"requested_by"`
	RequestedAt  string `json:"requested_at"`
}
