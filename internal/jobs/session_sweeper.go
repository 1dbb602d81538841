package jobs

import (
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"quizboard/internal/app"
)

// DefaultSweepSchedule runs the sweeper once a minute.
const DefaultSweepSchedule = "@every 1m"

// FinishedGrace keeps a submitted session readable for late polls and
// repeated submits.
const FinishedGrace = 5 * time.Minute

// SessionSweeper drops sessions that finished or went idle.
type SessionSweeper struct {
	sessions app.SessionRepository
	idleTTL  time.Duration
	grace    time.Duration
	clock    func() time.Time
	cron     *cron.Cron
}

func NewSessionSweeper(sessions app.SessionRepository, idleTTL time.Duration) *SessionSweeper {
	return &SessionSweeper{
		sessions: sessions,
		idleTTL:  idleTTL,
		grace:    FinishedGrace,
		clock:    time.Now,
	}
}

// Start schedules Sweep on the cron schedule and begins running it in the background.
func (s *SessionSweeper) Start(schedule string) error {
	if schedule == "" {
		schedule = DefaultSweepSchedule
	}
	c := cron.New()
	if _, err := c.AddFunc(schedule, func() {
		if n := s.Sweep(); n > 0 {
			log.Printf("swept %d quiz sessions", n)
		}
	}); err != nil {
		return err
	}
	s.cron = c
	c.Start()
	return nil
}

// Stop halts the schedule and waits for a running sweep to return.
func (s *SessionSweeper) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
}

// Sweep closes and removes sessions that finished more than the grace period
// ago or went idle, and returns how many were removed. Sessions with a running
// countdown or a submission in flight are never idle.
func (s *SessionSweeper) Sweep() int {
	now := s.clock()
	removed := 0
	for _, session := range s.sessions.List() {
		if session.Busy() {
			continue
		}
		quiet := now.Sub(session.LastActive())
		finished := session.Finished() && quiet > s.grace
		idle := s.idleTTL > 0 && quiet > s.idleTTL
		if !finished && !idle {
			continue
		}
		session.Close()
		s.sessions.Delete(session.ID())
		removed++
	}
	return removed
}
