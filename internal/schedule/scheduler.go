// Package schedule runs the periodic background jobs: rolling regular
// lessons forward, sending lesson reminders, and marking past lessons
// passed.
package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/abhisek/tutordesk/internal/store"
)

// Notifier delivers a reminder to a teacher's chat.
type Notifier interface {
	NotifyTeacher(ctx context.Context, telegramID int64, text string) error
}

// Config controls the scheduler.
type Config struct {
	// Interval between job runs.
	Interval time.Duration

	// ReminderWindow is how far ahead lesson reminders are sent.
	ReminderWindow time.Duration
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		Interval:       time.Minute,
		ReminderWindow: 30 * time.Minute,
	}
}

// Scheduler drives the periodic jobs off one ticker.
type Scheduler struct {
	db       *store.Store
	notifier Notifier
	cfg      Config
	log      zerolog.Logger

	now func() time.Time
}

// New creates a Scheduler.
func New(db *store.Store, notifier Notifier, cfg Config, log zerolog.Logger) *Scheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultConfig().Interval
	}
	if cfg.ReminderWindow <= 0 {
		cfg.ReminderWindow = DefaultConfig().ReminderWindow
	}
	return &Scheduler{
		db:       db,
		notifier: notifier,
		cfg:      cfg,
		log:      log,
		now:      time.Now,
	}
}

// Run blocks until the context is canceled, running all jobs every interval.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	s.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	if err := s.rollRegularLessons(ctx); err != nil {
		s.log.Error().Err(err).Msg("auto schedule job failed")
	}
	if err := s.sendReminders(ctx); err != nil {
		s.log.Error().Err(err).Msg("reminder job failed")
	}
	if err := s.markPassedLessons(ctx); err != nil {
		s.log.Error().Err(err).Msg("mark passed job failed")
	}
}

// rollRegularLessons creates the next occurrence for every regular lesson
// whose date has passed, then clears the flag on the old one so each series
// keeps a single regular head.
func (s *Scheduler) rollRegularLessons(ctx context.Context) error {
	lessons, err := s.db.RegularLessons(ctx)
	if err != nil {
		return err
	}

	now := s.now()
	for _, l := range lessons {
		if l.Date.After(now) {
			continue
		}

		interval, ok := regularInterval(l.RegularInterval)
		if !ok {
			s.log.Warn().Int64("lesson_id", l.ID).Str("interval", l.RegularInterval).Msg("unknown regular interval")
			continue
		}

		next := l.Date.Add(interval)
		for !next.After(now) {
			next = next.Add(interval)
		}

		created := store.Lesson{
			TeacherID:       l.TeacherID,
			StudentID:       l.StudentID,
			Date:            next,
			StartTime:       l.StartTime,
			EndTime:         l.EndTime,
			IsRegular:       true,
			RegularInterval: l.RegularInterval,
		}
		if err := s.db.CreateLesson(ctx, &created); err != nil {
			return err
		}
		if err := s.db.ClearRegularFlag(ctx, l.ID); err != nil {
			return err
		}
		s.log.Info().
			Int64("student_id", l.StudentID).
			Time("date", next).
			Msg("created next regular lesson")
	}
	return nil
}

// sendReminders notifies teachers about lessons starting inside the
// reminder window. Each lesson is notified once; a delivery failure is
// logged and retried on the next tick because the flag stays unset.
func (s *Scheduler) sendReminders(ctx context.Context) error {
	lessons, err := s.db.UnnotifiedLessonsBefore(ctx, s.now().Add(s.cfg.ReminderWindow))
	if err != nil {
		return err
	}

	for _, l := range lessons {
		teacher, err := s.db.TeacherByID(ctx, l.TeacherID)
		if err != nil {
			s.log.Warn().Err(err).Int64("lesson_id", l.ID).Msg("reminder skipped, teacher not found")
			continue
		}
		student, err := s.db.StudentByID(ctx, l.TeacherID, l.StudentID)
		if err != nil {
			s.log.Warn().Err(err).Int64("lesson_id", l.ID).Msg("reminder skipped, student not found")
			continue
		}

		text := reminderText(teacher.Language, student.DisplayName(), l)
		if err := s.notifier.NotifyTeacher(ctx, teacher.TelegramID, text); err != nil {
			s.log.Warn().Err(err).Int64("teacher_id", teacher.ID).Msg("reminder delivery failed")
			continue
		}
		if err := s.db.MarkLessonNotified(ctx, l.ID); err != nil {
			return err
		}
	}
	return nil
}

// markPassedLessons flags lessons whose date is behind us, which also bumps
// the student's completed counter.
func (s *Scheduler) markPassedLessons(ctx context.Context) error {
	lessons, err := s.db.UnpassedLessonsBefore(ctx, s.now())
	if err != nil {
		return err
	}
	for _, l := range lessons {
		if err := s.db.MarkLessonPassed(ctx, l.ID); err != nil {
			return err
		}
	}
	return nil
}

func regularInterval(name string) (time.Duration, bool) {
	switch name {
	case "daily":
		return 24 * time.Hour, true
	case "weekly":
		return 7 * 24 * time.Hour, true
	case "biweekly":
		return 14 * 24 * time.Hour, true
	}
	return 0, false
}

func reminderText(lang, studentName string, l store.Lesson) string {
	if lang == "ru" {
		return fmt.Sprintf("🔔 Напоминание: занятие с учеником %s в %s, %s.", studentName, l.StartTime, l.Date.Format("02.01.2006"))
	}
	return fmt.Sprintf("🔔 Reminder: upcoming lesson with %s at %s on %s.", studentName, l.StartTime, l.Date.Format("2006-01-02"))
}
