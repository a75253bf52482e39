package scheduler

import (
	"context"
	"log"

	"github.com/iliyamo/conference-volunteer-shifts/internal/model"
)

// regenStore is the slice of the timeslot repository the reconciler
// needs: the atomic destroy-and-insert swap.
type regenStore interface {
	ReplaceTimeslots(ctx context.Context, enrollmentID uint64, slots []model.Timeslot) (int64, error)
}

// enrollmentLister resolves the enrollments of a conference for the
// conference-wide regeneration path.
type enrollmentLister interface {
	IDsByConference(ctx context.Context, conferenceID uint64) ([]uint64, error)
}

// BuildFunc produces the fresh timeslot set for an enrollment.  The
// production implementation is Generator.BuildForEnrollment.
type BuildFunc func(ctx context.Context, enrollmentID uint64) ([]model.Timeslot, error)

// Reconciler reacts to schedule-shaping changes — a conference's dates or
// hours, an enrollment's day-schedule — by rebuilding the affected
// timeslot sets from scratch.  There is no diffing: the old set and its
// signups are destroyed and a fresh set takes their place.
type Reconciler struct {
	build       BuildFunc
	store       regenStore
	enrollments enrollmentLister
}

// NewReconciler constructs a Reconciler.
func NewReconciler(build BuildFunc, store regenStore, enrollments enrollmentLister) *Reconciler {
	if build == nil || store == nil || enrollments == nil {
		panic("nil dependency passed to NewReconciler")
	}
	return &Reconciler{build: build, store: store, enrollments: enrollments}
}

// RegenerateEnrollment rebuilds one enrollment's timeslots.  The new set
// is built first; only when the build succeeds does the destructive swap
// run, so a malformed day-schedule never costs the existing schedule.
// It returns how many old slots were destroyed and how many new ones
// replaced them.
func (r *Reconciler) RegenerateEnrollment(ctx context.Context, enrollmentID uint64) (destroyed int64, created int, err error) {
	slots, err := r.build(ctx, enrollmentID)
	if err != nil {
		return 0, 0, err
	}
	destroyed, err = r.store.ReplaceTimeslots(ctx, enrollmentID, slots)
	if err != nil {
		return 0, 0, err
	}
	log.Printf("reconciler: enrollment %d regenerated (%d destroyed, %d created)", enrollmentID, destroyed, len(slots))
	return destroyed, len(slots), nil
}

// RegenerateConference rebuilds every enrollment of a conference, one
// enrollment at a time.  The first failure stops the loop; enrollments
// already regenerated stay regenerated.
func (r *Reconciler) RegenerateConference(ctx context.Context, conferenceID uint64) (destroyed int64, created int, err error) {
	ids, err := r.enrollments.IDsByConference(ctx, conferenceID)
	if err != nil {
		return 0, 0, err
	}
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return destroyed, created, err
		}
		d, c, err := r.RegenerateEnrollment(ctx, id)
		if err != nil {
			return destroyed, created, err
		}
		destroyed += d
		created += c
	}
	return destroyed, created, nil
}
