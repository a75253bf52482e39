// Package archive runs the scheduled sweep that marks past conferences
// as archived so they drop out of default listings.
package archive

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/iliyamo/conference-volunteer-shifts/internal/repository"
)

// Archiver owns the cron schedule for the archive sweep.
type Archiver struct {
	conferences *repository.ConferenceRepo
	cron        *cron.Cron
}

// New constructs an Archiver over the conference repository.
func New(conferences *repository.ConferenceRepo) *Archiver {
	if conferences == nil {
		panic("nil repository passed to archive.New")
	}
	return &Archiver{conferences: conferences, cron: cron.New()}
}

// Start registers the sweep under the given cron expression and starts
// the scheduler in its own goroutine.  It returns an error only for an
// invalid expression.
func (a *Archiver) Start(spec string) error {
	if _, err := a.cron.AddFunc(spec, a.sweep); err != nil {
		return err
	}
	a.cron.Start()
	log.Printf("archiver: sweep scheduled (%s)", spec)
	return nil
}

// Stop halts the scheduler, waiting for a running sweep to finish.
func (a *Archiver) Stop() {
	ctx := a.cron.Stop()
	<-ctx.Done()
}

// sweep archives every unarchived conference whose end date has passed.
func (a *Archiver) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	today := time.Now().UTC().Truncate(24 * time.Hour)
	n, err := a.conferences.ArchivePast(ctx, today)
	if err != nil {
		log.Printf("archiver: sweep failed: %v", err)
		return
	}
	if n > 0 {
		log.Printf("archiver: archived %d conference(s)", n)
	}
}
