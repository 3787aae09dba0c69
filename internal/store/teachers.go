package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// TeacherByTelegramID looks up a teacher by their Telegram account.
func (s *Store) TeacherByTelegramID(ctx context.Context, telegramID int64) (*Teacher, error) {
	var t Teacher
	err := s.db.WithContext(ctx).Where("telegram_id = ?", telegramID).First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("teacher by telegram id: %w", err)
	}
	return &t, nil
}

// TeacherByID looks up a teacher by primary key.
func (s *Store) TeacherByID(ctx context.Context, id int64) (*Teacher, error) {
	var t Teacher
	err := s.db.WithContext(ctx).First(&t, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("teacher by id: %w", err)
	}
	return &t, nil
}

// CreateTeacher inserts a new teacher row.
func (s *Store) CreateTeacher(ctx context.Context, t *Teacher) error {
	if err := s.db.WithContext(ctx).Create(t).Error; err != nil {
		return fmt.Errorf("create teacher: %w", err)
	}
	return nil
}

// UpdateTeacher persists changed teacher fields.
func (s *Store) UpdateTeacher(ctx context.Context, t *Teacher) error {
	if err := s.db.WithContext(ctx).Save(t).Error; err != nil {
		return fmt.Errorf("update teacher: %w", err)
	}
	return nil
}

// SetDriveToken stores the teacher's remote-storage credential.
func (s *Store) SetDriveToken(ctx context.Context, teacherID int64, token string) error {
	err := s.db.WithContext(ctx).Model(&Teacher{}).
		Where("teacher_id = ?", teacherID).
		Update("drive_token", token).Error
	if err != nil {
		return fmt.Errorf("set drive token: %w", err)
	}
	return nil
}

// DeleteTeacher removes a teacher; students and lessons cascade.
func (s *Store) DeleteTeacher(ctx context.Context, teacherID int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("teacher_id = ?", teacherID).Delete(&Lesson{}).Error; err != nil {
			return fmt.Errorf("delete teacher lessons: %w", err)
		}
		if err := tx.Where("teacher_id = ?", teacherID).Delete(&Student{}).Error; err != nil {
			return fmt.Errorf("delete teacher students: %w", err)
		}
		if err := tx.Delete(&Teacher{}, teacherID).Error; err != nil {
			return fmt.Errorf("delete teacher: %w", err)
		}
		return nil
	})
}
