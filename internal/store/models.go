package store

import (
	"time"

	"gorm.io/datatypes"
)

// Teacher owns a roster of students. Tariff fields (model, limits) come from
// the subscription flow; the drive token is what lets the report manager
// persist artifacts.
type Teacher struct {
	ID         int64  `gorm:"primaryKey;column:teacher_id"`
	TelegramID int64  `gorm:"uniqueIndex"`
	Login      string `gorm:"uniqueIndex"`
	Surname    string
	Name       string
	Patronymic string
	Phone      string
	Email      string
	Language   string `gorm:"default:ru"`
	Subjects   string
	Occupation string
	Workplace  string

	SubscriptionExpires string
	DriveToken          string
	Model               string // tariff-selected LLM model
	UseLatex            bool   `gorm:"default:false"` // render documents through pdflatex
	StudentsLimit       int    `gorm:"default:0"`
	TokensLimit         int    `gorm:"default:0"`
	LessonsConducted    int    `gorm:"default:0"`

	Students []Student `gorm:"foreignKey:TeacherID;constraint:OnDelete:CASCADE"`
	Lessons  []Lesson  `gorm:"foreignKey:TeacherID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Teacher) TableName() string { return "teachers" }

// DisplayName returns "Name Surname" for messages and prompts.
func (t *Teacher) DisplayName() string {
	return t.Name + " " + t.Surname
}

// Student is a learner owned by exactly one teacher. The report text column
// is a cache of the remote artifact; the remote copy is authoritative and is
// mutated only through the report manager.
type Student struct {
	ID          int64 `gorm:"primaryKey;column:student_id"`
	TeacherID   int64 `gorm:"index;not null"`
	Name        string
	Surname     string
	Class       string
	Subject     string
	Direction   string
	Phone       string
	ParentPhone string

	// Profile holds free-form structured data: {"goal": ..., "level": ...,
	// "profile": ...}. Content is teacher-entered and may be arbitrary text
	// rather than valid JSON.
	Profile datatypes.JSON

	ReportText       string `gorm:"type:text"`
	LessonsCompleted int    `gorm:"default:0"`

	// Monthly generation accounting. GenerationMonth is a YYYY-MM token
	// compared for equality to detect rollover.
	GenerationMonth string `gorm:"default:''"`
	MonthlyGenCount int    `gorm:"default:0"`

	PromptTokensTotal     int `gorm:"default:0"`
	CompletionTokensTotal int `gorm:"default:0"`

	Lessons []Lesson `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Student) TableName() string { return "students" }

// DisplayName returns "Name Surname" for messages and prompts.
func (s *Student) DisplayName() string {
	return s.Name + " " + s.Surname
}

// FolderName returns the remote folder segment "Surname_Name".
func (s *Student) FolderName() string {
	return s.Surname + "_" + s.Name
}

// Lesson is a scheduled (or completed) lesson between a teacher and one of
// their students.
type Lesson struct {
	ID        int64 `gorm:"primaryKey;column:lesson_id"`
	TeacherID int64 `gorm:"index;not null"`
	StudentID int64 `gorm:"index;not null"`

	Date      time.Time `gorm:"index"`
	StartTime string    // "15:04"
	EndTime   string

	Passed          bool   `gorm:"default:false"`
	IsRegular       bool   `gorm:"default:false"`
	RegularInterval string `gorm:"default:''"` // e.g. "weekly"

	Notified bool `gorm:"default:false"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Lesson) TableName() string { return "lessons" }
