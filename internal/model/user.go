package model

import "time"

// User is an authenticated account.  Role is either ADMIN (may manage
// conferences, programs, enrollments and capacities) or VOLUNTEER (may
// browse schedules and claim shifts).  The scheduling engine itself never
// inspects roles; the HTTP layer resolves authorization before calling it.
type User struct {
	ID           uint64    // users.id
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	Role         string    // users.role (ADMIN | VOLUNTEER)
	IsActive     bool      // users.is_active
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}
