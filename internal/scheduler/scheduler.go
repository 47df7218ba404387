package scheduler

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"

	"github.com/example/tutorcore/internal/config"
	"github.com/example/tutorcore/internal/planner"
	"github.com/example/tutorcore/internal/store"
	"github.com/example/tutorcore/pkg/models"
)

// checkTimeout bounds one hourly pass
const checkTimeout = 5 * time.Minute

// Reminder tells a learner that reviews are waiting
type Reminder struct {
	ChatID         int64
	Course         string
	DueCount       int
	NextReviewDays int // days until the next concept comes due after these, 0 when none is waiting
}

// Notifier interface for sending notifications
type Notifier interface {
	SendReminder(ctx context.Context, r Reminder) error
}

// LearnerSource lists the subscriptions to notify at an hour
type LearnerSource interface {
	GetLearnersForNotification(ctx context.Context, hour int) ([]models.Learner, error)
}

// Scheduler manages scheduled tasks for the application
type Scheduler struct {
	cron     *gocron.Scheduler
	notifier Notifier
	learners LearnerSource
	progress store.ProgressStore
	planner  *planner.Planner
	log      zerolog.Logger
	now      func() time.Time

	mu     sync.RWMutex
	window config.NotificationConfig
}

// New creates a new scheduler instance
func New(
	notifier Notifier,
	learners LearnerSource,
	progress store.ProgressStore,
	p *planner.Planner,
	window config.NotificationConfig,
	log zerolog.Logger,
) *Scheduler {
	return &Scheduler{
		cron:     gocron.NewScheduler(time.UTC),
		notifier: notifier,
		learners: learners,
		progress: progress,
		planner:  p,
		log:      log.With().Str("component", "scheduler").Logger(),
		now:      time.Now,
		window:   window,
	}
}

// SetWindow replaces the notification window, e.g. after a config reload
func (s *Scheduler) SetWindow(w config.NotificationConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.window = w
}

func (s *Scheduler) currentWindow() config.NotificationConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.window
}

// Start schedules the hourly reminder check and runs it in the background
func (s *Scheduler) Start() error {
	_, err := s.cron.Every(1).Hour().StartImmediately().Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
		defer cancel()
		if _, err := s.CheckAndSendReminders(ctx); err != nil {
			s.log.Error().Err(err).Msg("reminder check failed")
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule reminders: %w", err)
	}
	s.cron.StartAsync()
	return nil
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.cron.Stop()
}

// CheckAndSendReminders notifies every learner whose hour is now, when now
// falls inside the notification window. It returns the number of reminders
// sent. A failure for one learner is logged and does not stop the others.
func (s *Scheduler) CheckAndSendReminders(ctx context.Context) (int, error) {
	window := s.currentWindow()
	if !window.Enabled {
		return 0, nil
	}
	hour := s.now().UTC().Hour()
	if !window.InWindow(hour) {
		s.log.Debug().
			Int("hour", hour).
			Int("start", window.StartHour).
			Int("end", window.EndHour).
			Msg("outside notification hours, skipping reminders")
		return 0, nil
	}

	learners, err := s.learners.GetLearnersForNotification(ctx, hour)
	if err != nil {
		return 0, fmt.Errorf("failed to get learners for notification: %w", err)
	}

	sent := 0
	for _, l := range learners {
		ok, err := s.RunManualCheck(ctx, l)
		if err != nil {
			s.log.Warn().Err(err).Int64("chat_id", l.ChatID).Str("course", l.Course).Msg("reminder failed")
			continue
		}
		if ok {
			sent++
		}
	}
	s.log.Info().Int("hour", hour).Int("learners", len(learners)).Int("sent", sent).Msg("reminder check done")
	return sent, nil
}

// RunManualCheck sends l a reminder when reviews are due, regardless of the
// window. It reports whether a reminder went out. A course without a
// progress record has nothing due.
func (s *Scheduler) RunManualCheck(ctx context.Context, l models.Learner) (bool, error) {
	progress, err := s.progress.LoadProgress(ctx, l.Course)
	if errors.Is(err, store.ErrProgressNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	now := s.now()
	due := s.planner.GetReviewItems(progress, now)
	if len(due) == 0 {
		return false, nil
	}

	r := Reminder{ChatID: l.ChatID, Course: l.Course, DueCount: len(due)}
	if next, ok := s.planner.NextDue(progress, now); ok {
		r.NextReviewDays = int(math.Ceil(next.Sub(now).Hours() / 24))
	}
	if err := s.notifier.SendReminder(ctx, r); err != nil {
		return false, fmt.Errorf("failed to send reminder: %w", err)
	}
	return true, nil
}
