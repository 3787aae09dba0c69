package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// CreateLesson inserts a new lesson row.
func (s *Store) CreateLesson(ctx context.Context, l *Lesson) error {
	if err := s.db.WithContext(ctx).Create(l).Error; err != nil {
		return fmt.Errorf("create lesson: %w", err)
	}
	return nil
}

// LessonsForStudent lists a student's lessons ordered by date.
func (s *Store) LessonsForStudent(ctx context.Context, teacherID, studentID int64) ([]Lesson, error) {
	var lessons []Lesson
	err := s.db.WithContext(ctx).
		Where("teacher_id = ? AND student_id = ?", teacherID, studentID).
		Order("date, start_time").
		Find(&lessons).Error
	if err != nil {
		return nil, fmt.Errorf("lessons for student: %w", err)
	}
	return lessons, nil
}

// LessonsBetween lists all lessons scheduled inside [from, to).
func (s *Store) LessonsBetween(ctx context.Context, from, to time.Time) ([]Lesson, error) {
	var lessons []Lesson
	err := s.db.WithContext(ctx).
		Where("date >= ? AND date < ?", from, to).
		Order("date, start_time").
		Find(&lessons).Error
	if err != nil {
		return nil, fmt.Errorf("lessons between: %w", err)
	}
	return lessons, nil
}

// UnnotifiedLessonsBefore lists lessons that start before the deadline and
// have not had a reminder sent yet.
func (s *Store) UnnotifiedLessonsBefore(ctx context.Context, deadline time.Time) ([]Lesson, error) {
	var lessons []Lesson
	err := s.db.WithContext(ctx).
		Where("date <= ? AND passed = ? AND notified = ?", deadline, false, false).
		Find(&lessons).Error
	if err != nil {
		return nil, fmt.Errorf("unnotified lessons: %w", err)
	}
	return lessons, nil
}

// MarkLessonNotified flags a lesson so its reminder is sent once.
func (s *Store) MarkLessonNotified(ctx context.Context, lessonID int64) error {
	err := s.db.WithContext(ctx).Model(&Lesson{}).
		Where("lesson_id = ?", lessonID).
		Update("notified", true).Error
	if err != nil {
		return fmt.Errorf("mark lesson notified: %w", err)
	}
	return nil
}

// MarkLessonPassed flags a completed lesson and bumps the student's counter.
func (s *Store) MarkLessonPassed(ctx context.Context, lessonID int64) error {
	var l Lesson
	if err := s.db.WithContext(ctx).First(&l, lessonID).Error; err != nil {
		return fmt.Errorf("mark lesson passed: %w", err)
	}
	if l.Passed {
		return nil
	}

	err := s.db.WithContext(ctx).Model(&Lesson{}).
		Where("lesson_id = ?", lessonID).
		Update("passed", true).Error
	if err != nil {
		return fmt.Errorf("mark lesson passed: %w", err)
	}

	return s.db.WithContext(ctx).Model(&Student{}).
		Where("student_id = ?", l.StudentID).
		Update("lessons_completed", gorm.Expr("lessons_completed + 1")).Error
}

// UnpassedLessonsBefore lists lessons dated before the deadline that are
// not yet marked passed.
func (s *Store) UnpassedLessonsBefore(ctx context.Context, deadline time.Time) ([]Lesson, error) {
	var lessons []Lesson
	err := s.db.WithContext(ctx).
		Where("date < ? AND passed = ?", deadline, false).
		Find(&lessons).Error
	if err != nil {
		return nil, fmt.Errorf("unpassed lessons: %w", err)
	}
	return lessons, nil
}

// ClearRegularFlag detaches a lesson from its regular series. The auto
// schedule job calls this after creating the next occurrence so a series
// always has exactly one regular head.
func (s *Store) ClearRegularFlag(ctx context.Context, lessonID int64) error {
	err := s.db.WithContext(ctx).Model(&Lesson{}).
		Where("lesson_id = ?", lessonID).
		Update("is_regular", false).Error
	if err != nil {
		return fmt.Errorf("clear regular flag: %w", err)
	}
	return nil
}

// RegularLessons lists the latest occurrence of each regular lesson series
// for the auto-schedule job.
func (s *Store) RegularLessons(ctx context.Context) ([]Lesson, error) {
	var lessons []Lesson
	err := s.db.WithContext(ctx).
		Where("is_regular = ?", true).
		Order("date desc").
		Find(&lessons).Error
	if err != nil {
		return nil, fmt.Errorf("regular lessons: %w", err)
	}
	return lessons, nil
}
