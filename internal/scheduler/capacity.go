package scheduler

import (
	"context"
	"log"

	"github.com/iliyamo/conference-volunteer-shifts/internal/repository"
)

// enrollmentProbe is the slice of the enrollment repository the cascade
// needs: just existence.
type enrollmentProbe interface {
	Exists(ctx context.Context, id uint64) (bool, error)
}

// capacitySlotStore is the slice of the timeslot repository the cascade
// needs.  SetCapacity applies the new capacity to one slot unless its
// occupancy exceeds it, and reports whether the row now matches.
type capacitySlotStore interface {
	ListOccupancy(ctx context.Context, enrollmentID uint64) ([]repository.SlotOccupancy, error)
	SetCapacity(ctx context.Context, id uint64, capacity uint32) (bool, error)
}

// CascadeResult tallies one cascade run.  Updated counts slots whose
// capacity now equals the target, including those that already did;
// Skipped counts slots left alone because their occupancy exceeds the
// target.  Re-running the same cascade therefore reports the same tally.
type CascadeResult struct {
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
}

// CascadeUpdater pushes a capacity change onto an enrollment's existing
// timeslots, one row at a time.  It never touches occupancy counters and
// never shrinks a slot below its live signup count.
type CascadeUpdater struct {
	enrollments enrollmentProbe
	slots       capacitySlotStore
}

// NewCascadeUpdater constructs a CascadeUpdater.
func NewCascadeUpdater(enrollments enrollmentProbe, slots capacitySlotStore) *CascadeUpdater {
	if enrollments == nil || slots == nil {
		panic("nil dependency passed to NewCascadeUpdater")
	}
	return &CascadeUpdater{enrollments: enrollments, slots: slots}
}

// Apply sets capacity on every timeslot of the enrollment, skipping any
// slot whose current occupancy exceeds the new value.  Each row is its
// own statement; a run interrupted by ctx leaves the rows already
// processed in place and returns ctx.Err.  An enrollment that vanished
// before or during the run is a no-op, not an error — cascades ride an
// asynchronous queue and routinely race deletions.
func (u *CascadeUpdater) Apply(ctx context.Context, enrollmentID uint64, capacity uint32) (CascadeResult, error) {
	var res CascadeResult
	if capacity == 0 {
		return res, ErrInvalidCapacity
	}
	ok, err := u.enrollments.Exists(ctx, enrollmentID)
	if err != nil {
		return res, err
	}
	if !ok {
		log.Printf("capacity-cascade: enrollment %d vanished, nothing to do", enrollmentID)
		return res, nil
	}
	occ, err := u.slots.ListOccupancy(ctx, enrollmentID)
	if err != nil {
		return res, err
	}
	for _, slot := range occ {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if slot.CurrentCount > capacity {
			res.Skipped++
			continue
		}
		applied, err := u.slots.SetCapacity(ctx, slot.ID, capacity)
		if err != nil {
			return res, err
		}
		if applied {
			res.Updated++
		} else {
			// The row moved under us: occupancy grew past the target
			// between the read and the write.  Same outcome as the
			// pre-check, just later.
			res.Skipped++
		}
	}
	return res, nil
}
