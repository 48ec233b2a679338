package models

import (
	"time"
)

type Exam struct {
	ID          string    `json:"id" db:"id"`
	OwnerID     string    `json:"owner_id" db:"owner_id"`
	Title       string    `json:"title" db:"title"`
	Topic       string    `json:"topic" db:"topic"`
	TargetMarks int       `json:"target_marks" db:"target_marks"` // advisory, not enforced
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// ExamQuestion rows are created as an atomic batch with their exam and only
// ever deleted together with it.
type ExamQuestion struct {
	ID             string  `json:"id" db:"id"`
	ExamID         string  `json:"exam_id" db:"exam_id"`
	QuestionNumber int     `json:"question_number" db:"question_number"`
	QuestionText   string  `json:"question_text" db:"question_text"` // markdown
	Marks          int     `json:"marks" db:"marks"`
	AnswerText     string  `json:"answer_text" db:"answer_text"` // markdown mark scheme
	ModelAnswer    *string `json:"model_answer,omitempty" db:"model_answer"`
}

// ExamWithQuestions bundles an exam header with its ordered question batch.
type ExamWithQuestions struct {
	Exam      Exam           `json:"exam"`
	Questions []ExamQuestion `json:"questions"`
}
