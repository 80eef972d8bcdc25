package assign

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler runs the auto-assign engine on a cron schedule
type Scheduler struct {
	engine  *Engine
	sched   cron.Schedule
	onRun   func(*Result)
	mu      sync.Mutex
	lastRun time.Time
	running bool
}

// ParseCron parses a standard 5-field cron expression
func ParseCron(expr string) (cron.Schedule, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	return parser.Parse(expr)
}

// NewScheduler creates a scheduler for the given cron expression. onRun
// may be nil; when set it receives the result of each successful cycle.
func NewScheduler(engine *Engine, expr string, onRun func(*Result)) (*Scheduler, error) {
	sched, err := ParseCron(expr)
	if err != nil {
		return nil, err
	}
	return &Scheduler{engine: engine, sched: sched, onRun: onRun}, nil
}

// NextRun returns the next scheduled run time
func (s *Scheduler) NextRun() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	last := s.lastRun
	if last.IsZero() {
		last = time.Now()
	}
	return s.sched.Next(last)
}

// ShouldRun returns true when a cycle is due and none is in flight
func (s *Scheduler) ShouldRun(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return false
	}

	last := s.lastRun
	if last.IsZero() {
		last = now.Add(-24 * time.Hour)
	}
	return now.After(s.sched.Next(last))
}

func (s *Scheduler) markRunning() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = true
}

func (s *Scheduler) markComplete() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
	s.lastRun = time.Now()
}

// Run drives the scheduler until the context is cancelled
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			if !s.ShouldRun(now) {
				continue
			}
			s.markRunning()
			result, err := s.engine.Run()
			s.markComplete()
			if err != nil {
				log.Printf("auto-assign cycle failed: %v", err)
				continue
			}
			if result.Assigned > 0 || result.Started > 0 {
				log.Printf("auto-assign: %s", result.Summary())
				if s.onRun != nil {
					s.onRun(result)
				}
			}
		}
	}
}
