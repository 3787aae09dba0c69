package schedule

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/tutordesk/internal/store"
)

type fakeNotifier struct {
	sent []string
	err  error
}

func (f *fakeNotifier) NotifyTeacher(_ context.Context, _ int64, text string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, text)
	return nil
}

var schedNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestScheduler(t *testing.T) (*Scheduler, *store.Store, *fakeNotifier) {
	t.Helper()
	db, err := store.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	notifier := &fakeNotifier{}
	s := New(db, notifier, Config{Interval: time.Minute, ReminderWindow: 30 * time.Minute}, zerolog.Nop())
	s.now = func() time.Time { return schedNow }
	return s, db, notifier
}

func seedTeacherAndStudent(t *testing.T, db *store.Store) (*store.Teacher, *store.Student) {
	t.Helper()
	ctx := context.Background()

	teacher := &store.Teacher{TelegramID: 100, Login: "anna", Name: "Anna", Surname: "Ivanova", Language: "en"}
	require.NoError(t, db.CreateTeacher(ctx, teacher))

	student := &store.Student{TeacherID: teacher.ID, Name: "Ivan", Surname: "Petrov"}
	require.NoError(t, db.CreateStudent(ctx, student))

	return teacher, student
}

func TestRollRegularLessons(t *testing.T) {
	s, db, _ := newTestScheduler(t)
	teacher, student := seedTeacherAndStudent(t, db)
	ctx := context.Background()

	past := &store.Lesson{
		TeacherID:       teacher.ID,
		StudentID:       student.ID,
		Date:            schedNow.Add(-8 * 24 * time.Hour),
		StartTime:       "15:00",
		EndTime:         "16:00",
		IsRegular:       true,
		RegularInterval: "weekly",
	}
	require.NoError(t, db.CreateLesson(ctx, past))

	s.tick(ctx)

	regular, err := db.RegularLessons(ctx)
	require.NoError(t, err)
	require.Len(t, regular, 1, "series must have exactly one regular head")
	require.True(t, regular[0].Date.After(schedNow), "next occurrence must be in the future")
	require.Equal(t, "15:00", regular[0].StartTime)

	// A second tick must not create another occurrence.
	s.tick(ctx)
	regular, err = db.RegularLessons(ctx)
	require.NoError(t, err)
	require.Len(t, regular, 1)
}

func TestRollRegularLessonsSkipsUnknownInterval(t *testing.T) {
	s, db, _ := newTestScheduler(t)
	teacher, student := seedTeacherAndStudent(t, db)
	ctx := context.Background()

	require.NoError(t, db.CreateLesson(ctx, &store.Lesson{
		TeacherID:       teacher.ID,
		StudentID:       student.ID,
		Date:            schedNow.Add(-48 * time.Hour),
		IsRegular:       true,
		RegularInterval: "fortnightly-ish",
	}))

	s.tick(ctx)

	regular, err := db.RegularLessons(ctx)
	require.NoError(t, err)
	require.Len(t, regular, 1)
	require.False(t, regular[0].Date.After(schedNow), "unknown interval must be left alone")
}

func TestSendRemindersOnce(t *testing.T) {
	s, db, notifier := newTestScheduler(t)
	teacher, student := seedTeacherAndStudent(t, db)
	ctx := context.Background()

	require.NoError(t, db.CreateLesson(ctx, &store.Lesson{
		TeacherID: teacher.ID,
		StudentID: student.ID,
		Date:      schedNow.Add(15 * time.Minute),
		StartTime: "12:15",
	}))

	require.NoError(t, s.sendReminders(ctx))
	require.Len(t, notifier.sent, 1)
	require.True(t, strings.Contains(notifier.sent[0], "Ivan Petrov"), "reminder must name the student: %q", notifier.sent[0])

	require.NoError(t, s.sendReminders(ctx))
	require.Len(t, notifier.sent, 1, "reminder must be sent once")
}

func TestReminderRetriedAfterDeliveryFailure(t *testing.T) {
	s, db, notifier := newTestScheduler(t)
	teacher, student := seedTeacherAndStudent(t, db)
	ctx := context.Background()

	require.NoError(t, db.CreateLesson(ctx, &store.Lesson{
		TeacherID: teacher.ID,
		StudentID: student.ID,
		Date:      schedNow.Add(10 * time.Minute),
		StartTime: "12:10",
	}))

	notifier.err = errors.New("telegram down")
	require.NoError(t, s.sendReminders(ctx))
	require.Empty(t, notifier.sent)

	notifier.err = nil
	require.NoError(t, s.sendReminders(ctx))
	require.Len(t, notifier.sent, 1)
}

func TestReminderOutsideWindowNotSent(t *testing.T) {
	s, db, notifier := newTestScheduler(t)
	teacher, student := seedTeacherAndStudent(t, db)
	ctx := context.Background()

	require.NoError(t, db.CreateLesson(ctx, &store.Lesson{
		TeacherID: teacher.ID,
		StudentID: student.ID,
		Date:      schedNow.Add(2 * time.Hour),
		StartTime: "14:00",
	}))

	require.NoError(t, s.sendReminders(ctx))
	require.Empty(t, notifier.sent)
}

func TestMarkPassedLessonsBumpsCounter(t *testing.T) {
	s, db, _ := newTestScheduler(t)
	teacher, student := seedTeacherAndStudent(t, db)
	ctx := context.Background()

	require.NoError(t, db.CreateLesson(ctx, &store.Lesson{
		TeacherID: teacher.ID,
		StudentID: student.ID,
		Date:      schedNow.Add(-24 * time.Hour),
	}))

	require.NoError(t, s.markPassedLessons(ctx))

	lessons, err := db.LessonsForStudent(ctx, teacher.ID, student.ID)
	require.NoError(t, err)
	require.Len(t, lessons, 1)
	require.True(t, lessons[0].Passed)

	got, err := db.StudentByID(ctx, teacher.ID, student.ID)
	require.NoError(t, err)
	require.Equal(t, 1, got.LessonsCompleted)

	// Idempotent on the next tick.
	require.NoError(t, s.markPassedLessons(ctx))
	got, err = db.StudentByID(ctx, teacher.ID, student.ID)
	require.NoError(t, err)
	require.Equal(t, 1, got.LessonsCompleted)
}
