package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// StudentByID returns the student only when it belongs to the given teacher.
// Ownership violations are indistinguishable from absence on purpose.
func (s *Store) StudentByID(ctx context.Context, teacherID, studentID int64) (*Student, error) {
	var st Student
	err := s.db.WithContext(ctx).
		Where("student_id = ? AND teacher_id = ?", studentID, teacherID).
		First(&st).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("student by id: %w", err)
	}
	return &st, nil
}

// ListStudents returns all students of a teacher ordered by surname.
func (s *Store) ListStudents(ctx context.Context, teacherID int64) ([]Student, error) {
	var students []Student
	err := s.db.WithContext(ctx).
		Where("teacher_id = ?", teacherID).
		Order("surname, name").
		Find(&students).Error
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return students, nil
}

// CreateStudent inserts a new student row.
func (s *Store) CreateStudent(ctx context.Context, st *Student) error {
	if err := s.db.WithContext(ctx).Create(st).Error; err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// DeleteStudent removes a student and cascades their lessons.
func (s *Store) DeleteStudent(ctx context.Context, teacherID, studentID int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("student_id = ? AND teacher_id = ?", studentID, teacherID).
			Delete(&Student{})
		if res.Error != nil {
			return fmt.Errorf("delete student: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		if err := tx.Where("student_id = ?", studentID).Delete(&Lesson{}).Error; err != nil {
			return fmt.Errorf("delete student lessons: %w", err)
		}
		return nil
	})
}

// UpdateReportCache stores the latest artifact text on the student row.
// The remote copy stays authoritative; this cache feeds prompt context.
func (s *Store) UpdateReportCache(ctx context.Context, studentID int64, text string) error {
	err := s.db.WithContext(ctx).Model(&Student{}).
		Where("student_id = ?", studentID).
		Update("report_text", text).Error
	if err != nil {
		return fmt.Errorf("update report cache: %w", err)
	}
	return nil
}

// IncrementGenerationCount bumps the student's monthly generation counter,
// resetting it first when the calendar month has rolled over. Returns the new
// count. The month token is compared for equality, not range.
func (s *Store) IncrementGenerationCount(ctx context.Context, teacherID, studentID int64, now time.Time) (int, error) {
	st, err := s.StudentByID(ctx, teacherID, studentID)
	if err != nil {
		return 0, err
	}

	month := now.Format("2006-01")
	if st.GenerationMonth != month {
		st.GenerationMonth = month
		st.MonthlyGenCount = 0
	}
	st.MonthlyGenCount++

	err = s.db.WithContext(ctx).Model(&Student{}).
		Where("student_id = ?", studentID).
		Updates(map[string]any{
			"generation_month":  st.GenerationMonth,
			"monthly_gen_count": st.MonthlyGenCount,
		}).Error
	if err != nil {
		return 0, fmt.Errorf("increment generation count: %w", err)
	}
	return st.MonthlyGenCount, nil
}

// AddTokenUsage adds prompt/completion token counts to the student's
// cumulative counters. Satisfies llm.UsageRecorder.
func (s *Store) AddTokenUsage(ctx context.Context, studentID int64, promptTokens, completionTokens int) error {
	err := s.db.WithContext(ctx).Model(&Student{}).
		Where("student_id = ?", studentID).
		Updates(map[string]any{
			"prompt_tokens_total":     gorm.Expr("prompt_tokens_total + ?", promptTokens),
			"completion_tokens_total": gorm.Expr("completion_tokens_total + ?", completionTokens),
		}).Error
	if err != nil {
		return fmt.Errorf("add token usage: %w", err)
	}
	return nil
}
