// Package scheduler implements the shift scheduling engine: timeslot
// generation from day-schedules, signup eligibility and its transactional
// write path, the occupancy counter, capacity cascades and schedule
// regeneration.  Persistence stays in the repository layer; this package
// keeps the decision logic in pure functions and orchestrates the
// transactions around them.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/iliyamo/conference-volunteer-shifts/internal/model"
	"github.com/iliyamo/conference-volunteer-shifts/internal/repository"
)

// ErrBadDaySchedule is a structural error: a day-schedule entry carries a
// time string that does not parse as "HH:MM".  Generation aborts entirely
// rather than leaving a partially generated day behind.
var ErrBadDaySchedule = errors.New("malformed day schedule")

// ErrInvalidCapacity is returned when a capacity value is zero.  Every
// capacity in the system is strictly positive.
var ErrInvalidCapacity = errors.New("capacity must be positive")

// parseClock parses a wall-clock "HH:MM" string, rejecting anything the
// reference layout does not match exactly.
func parseClock(s string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, 0, err
	}
	return t.Hour(), t.Minute(), nil
}

// BuildTimeslots expands an enrollment's day-schedule into concrete
// timeslot values.  For each day offset within the conference's inclusive
// date range it resolves that day's operating window (the day entry's own
// bounds, falling back per-bound to the conference defaults) and walks it
// in fixed 15-minute steps.  Days that are absent, disabled, or whose
// window cannot be resolved from either source emit nothing — the silent
// skip is deliberate and callers rely on partial day-schedules being
// tolerated.  A trailing sliver shorter than the grain is dropped: only
// complete slots are emitted.
//
// The capacity is stamped onto every slot as a value; the generated set
// never tracks later enrollment or program capacity changes.  Malformed
// time strings fail the whole build with ErrBadDaySchedule so no partial
// schedule can ever be committed.
func BuildTimeslots(conf model.Conference, enr model.Enrollment, capacity uint32, loc *time.Location) ([]model.Timeslot, error) {
	if capacity == 0 {
		return nil, ErrInvalidCapacity
	}
	if loc == nil {
		loc = time.UTC
	}
	var out []model.Timeslot
	days := conf.Days()
	for d := 0; d < days; d++ {
		win, ok := enr.DaySchedule[strconv.Itoa(d)]
		if !ok || !win.Enabled {
			continue
		}
		startStr := win.Start
		if startStr == "" {
			startStr = conf.HoursStart
		}
		endStr := win.End
		if endStr == "" {
			endStr = conf.HoursEnd
		}
		if startStr == "" || endStr == "" {
			// No resolvable window for this day; leave it unscheduled.
			continue
		}
		sh, sm, err := parseClock(startStr)
		if err != nil {
			return nil, fmt.Errorf("%w: day %d start %q", ErrBadDaySchedule, d, startStr)
		}
		eh, em, err := parseClock(endStr)
		if err != nil {
			return nil, fmt.Errorf("%w: day %d end %q", ErrBadDaySchedule, d, endStr)
		}
		date := conf.StartDate.AddDate(0, 0, d)
		dayStart := time.Date(date.Year(), date.Month(), date.Day(), sh, sm, 0, 0, loc)
		dayEnd := time.Date(date.Year(), date.Month(), date.Day(), eh, em, 0, 0, loc)
		for t := dayStart; !t.Add(model.SlotDuration).After(dayEnd); t = t.Add(model.SlotDuration) {
			out = append(out, model.Timeslot{
				EnrollmentID: enr.ID,
				StartTime:    t.UTC(),
				EndTime:      t.Add(model.SlotDuration).UTC(),
				MaxCapacity:  capacity,
			})
		}
	}
	return out, nil
}

// Generator resolves an enrollment's inputs from the database and expands
// them with BuildTimeslots.  It performs no writes; the reconciler owns
// the destroy-and-insert transaction.
type Generator struct {
	conferences *repository.ConferenceRepo
	enrollments *repository.EnrollmentRepo
	programs    *repository.ProgramRepo
}

// NewGenerator constructs a Generator.  All dependencies must be non-nil.
func NewGenerator(conferences *repository.ConferenceRepo, enrollments *repository.EnrollmentRepo, programs *repository.ProgramRepo) *Generator {
	if conferences == nil || enrollments == nil || programs == nil {
		panic("nil repository passed to NewGenerator")
	}
	return &Generator{conferences: conferences, enrollments: enrollments, programs: programs}
}

// BuildForEnrollment loads the enrollment, its conference and its program
// and returns the freshly expanded timeslot set.  The effective capacity
// is the enrollment override when present, else the program default, and
// times resolve in the conference's timezone.
func (g *Generator) BuildForEnrollment(ctx context.Context, enrollmentID uint64) ([]model.Timeslot, error) {
	enr, err := g.enrollments.GetByID(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}
	conf, err := g.conferences.GetByID(ctx, enr.ConferenceID)
	if err != nil {
		return nil, err
	}
	prog, err := g.programs.GetByID(ctx, enr.ProgramID)
	if err != nil {
		return nil, err
	}
	loc, err := time.LoadLocation(conf.Timezone)
	if err != nil {
		return nil, fmt.Errorf("conference %d timezone %q: %w", conf.ID, conf.Timezone, err)
	}
	return BuildTimeslots(*conf, *enr, enr.EffectiveCapacity(prog.MaxVolunteers), loc)
}
