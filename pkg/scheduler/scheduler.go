// Package scheduler runs the foreground due-alarm poll loop. It checks once
// per second but only treats second :00 of a matching minute as a trigger,
// so each occurrence fires at most once; while a session is already ringing,
// further matches are skipped, not queued.
package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"dreamclock/pkg/models"
	"dreamclock/pkg/schedule"
	"dreamclock/pkg/session"
	"dreamclock/pkg/store"
)

// Scheduler polls the repository and raises triggers on the session manager.
type Scheduler struct {
	repo     *store.Repository
	sessions *session.Manager
	log      *zap.Logger
	interval time.Duration
	now      func() time.Time
}

func New(repo *store.Repository, sessions *session.Manager, interval time.Duration, log *zap.Logger) *Scheduler {
	if interval <= 0 {
		interval = time.Second
	}
	return &Scheduler{
		repo:     repo,
		sessions: sessions,
		log:      log,
		interval: interval,
		now:      time.Now,
	}
}

// SetNow overrides the clock. Tests only.
func (s *Scheduler) SetNow(now func() time.Time) { s.now = now }

// Run polls until the context is cancelled. Each tick runs to completion
// before the next is considered; a failing tick is logged and never kills
// the loop.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.log.Info("foreground scheduler started", zap.Duration("interval", s.interval))
	for {
		select {
		case <-ctx.Done():
			s.log.Info("foreground scheduler stopped")
			return
		case <-ticker.C:
			s.Tick(s.now())
		}
	}
}

// Tick performs one due-alarm check at the given instant. Exported so tests
// can drive the loop with a simulated clock.
func (s *Scheduler) Tick(now time.Time) {
	// Edge-detect the minute boundary; a level check would re-fire for the
	// whole 60-second window.
	if now.Second() != 0 {
		return
	}
	if _, ringing := s.sessions.Active(); ringing {
		return
	}

	for _, alarm := range s.repo.Alarms() {
		if !schedule.IsDue(alarm, now) {
			continue
		}
		s.trigger(alarm, now)
		// One visible session at a time; other alarms due this minute fire
		// on their next natural occurrence.
		return
	}
}

func (s *Scheduler) trigger(alarm models.Alarm, now time.Time) {
	s.log.Info("alarm due",
		zap.String("alarm_id", alarm.ID),
		zap.String("time", alarm.Time),
		zap.String("weekday", now.Weekday().String()),
	)
	if err := s.sessions.Trigger(alarm); err != nil {
		s.log.Warn("trigger failed", zap.String("alarm_id", alarm.ID), zap.Error(err))
	}
}
