package model

import "time"

// Qualification is an opaque credential token.  Programs declare the set
// of qualifications a volunteer must hold to claim their shifts; the
// eligibility check is pure set difference over qualification names.
//
// Fields:
//
//	ID          – primary key identifier.
//	Name        – unique token the validator compares.
//	Description – human explanation of the credential.
//	CreatedAt   – creation timestamp.
type Qualification struct {
	ID          uint64    // qualifications.id
	Name        string    // qualifications.name
	Description string    // qualifications.description
	CreatedAt   time.Time // qualifications.created_at
}
