package scheduler

import (
	"fmt"
	"strings"

	"github.com/iliyamo/conference-volunteer-shifts/internal/model"
)

// RejectReason identifies why a signup attempt was refused.  The values
// are stable strings so API clients can switch on them.
type RejectReason string

const (
	// ShiftFull means the timeslot's occupancy already equals its capacity.
	ShiftFull RejectReason = "SHIFT_FULL"
	// OverlappingShift means the volunteer already holds a signup whose
	// time range intersects this slot's, in any conference.
	OverlappingShift RejectReason = "OVERLAPPING_SHIFT"
	// MissingQualifications means the program requires qualifications the
	// volunteer does not hold; Rejection.Missing names every one.
	MissingQualifications RejectReason = "MISSING_QUALIFICATIONS"
	// AlreadySignedUp means the volunteer already holds this exact slot.
	AlreadySignedUp RejectReason = "ALREADY_SIGNED_UP"
)

// Rejection is a structured refusal of a signup attempt.  It is a result,
// not an error: the request was valid, the signup just is not allowed.
type Rejection struct {
	Reason  RejectReason `json:"reason"`
	Missing []string     `json:"missing_qualifications,omitempty"`
}

// Message renders a human-readable explanation for the rejection.
func (r *Rejection) Message() string {
	switch r.Reason {
	case ShiftFull:
		return "shift is already full"
	case OverlappingShift:
		return "you are already signed up for an overlapping shift"
	case MissingQualifications:
		return fmt.Sprintf("missing required qualifications: %s", strings.Join(r.Missing, ", "))
	case AlreadySignedUp:
		return "you are already signed up for this shift"
	}
	return string(r.Reason)
}

// missingFrom returns the required names absent from held, preserving the
// order of required.  Both inputs are small; a map would be overkill only
// for the held side, so it gets one anyway.
func missingFrom(required, held []string) []string {
	if len(required) == 0 {
		return nil
	}
	have := make(map[string]struct{}, len(held))
	for _, h := range held {
		have[h] = struct{}{}
	}
	var missing []string
	for _, req := range required {
		if _, ok := have[req]; !ok {
			missing = append(missing, req)
		}
	}
	return missing
}

// EvaluateSignup runs the eligibility checks for one signup attempt and
// returns the first failure, or nil when the signup may proceed.  The
// check order is fixed: capacity, overlap, qualifications, duplicate —
// a full slot reports SHIFT_FULL even when the caller also lacks a
// qualification.  The caller supplies every fact pre-fetched under its
// own transaction; the evaluation itself touches nothing.
func EvaluateSignup(slot *model.Timeslot, overlapping []model.Timeslot, required, held []string, alreadySignedUp bool) *Rejection {
	if slot.Full() {
		return &Rejection{Reason: ShiftFull}
	}
	for i := range overlapping {
		if overlapping[i].Overlaps(slot.StartTime, slot.EndTime) {
			return &Rejection{Reason: OverlappingShift}
		}
	}
	if missing := missingFrom(required, held); len(missing) > 0 {
		return &Rejection{Reason: MissingQualifications, Missing: missing}
	}
	if alreadySignedUp {
		return &Rejection{Reason: AlreadySignedUp}
	}
	return nil
}
