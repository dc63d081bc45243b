// Package scheduler runs periodic maintenance jobs. The only job today is
// the assignment sweep: once a day, active assignments whose final training
// date has fully elapsed are transitioned to completed. Per-date statuses
// stay derived (never persisted); the sweep only moves the assignment
// lifecycle forward.
package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron"

	"hyperkids/gym-app/internal/domain"
	"hyperkids/gym-app/internal/metrics"
	"hyperkids/gym-app/internal/program"
	"hyperkids/gym-app/internal/repository"
)

const sweepTimeout = 2 * time.Minute

// Sweeper owns the cron schedule and the sweep logic.
type Sweeper struct {
	assignments repository.AssignmentRepository
	loc         *time.Location
	spec        string
	cron        *cron.Cron
}

// NewSweeper creates a sweeper running on the given cron spec in the
// organization timezone.
func NewSweeper(assignments repository.AssignmentRepository, loc *time.Location, spec string) *Sweeper {
	return &Sweeper{
		assignments: assignments,
		loc:         loc,
		spec:        spec,
		cron:        cron.New(),
	}
}

// Start registers the sweep and starts the cron loop.
func (s *Sweeper) Start() error {
	if err := s.cron.AddFunc(s.spec, s.sweep); err != nil {
		return err
	}
	s.cron.Start()
	log.Printf("Assignment sweeper scheduled (%s, timezone %s)", s.spec, s.loc)
	return nil
}

// Stop halts the cron loop. A sweep already in flight finishes.
func (s *Sweeper) Stop() {
	s.cron.Stop()
}

func (s *Sweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	active, err := s.assignments.ListActive(ctx)
	if err != nil {
		log.Printf("ERROR: Assignment sweep could not list active assignments: %v", err)
		return
	}

	today := program.Today(s.loc)
	closed := 0
	for _, a := range active {
		if !Elapsed(a.TrainingDates, today) {
			continue
		}
		if err := s.assignments.UpdateStatus(ctx, a.ID, domain.AssignmentCompleted); err != nil {
			log.Printf("ERROR: Assignment sweep could not close assignment %s: %v", a.ID.Hex(), err)
			continue
		}
		closed++
		metrics.SweepClosedAssignmentsTotal.Inc()
	}
	if closed > 0 {
		log.Printf("Assignment sweep closed %d assignment(s)", closed)
	}
}

// Elapsed reports whether every training date of a schedule lies strictly
// before today. An empty schedule never counts as elapsed.
func Elapsed(trainingDates []string, today program.Date) bool {
	if len(trainingDates) == 0 {
		return false
	}
	for _, raw := range trainingDates {
		if !program.Date(raw).Before(today) {
			return false
		}
	}
	return true
}
