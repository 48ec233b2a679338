package services

import (
	"context"

	"studyaid/internal/domain/models"
)

// GenerationService turns model completions into persisted study material.
// Nothing is persisted when any stage (completion, extraction, validation)
// fails.
type GenerationService interface {
	// GenerateFlashcards asks the model for a flashcard batch on a topic,
	// extracts it and persists the surviving cards in one transaction.
	GenerateFlashcards(ctx context.Context, req *GenerateFlashcardsRequest) ([]models.Flashcard, error)

	// GenerateExam asks the model for a mock exam, extracts it and persists
	// the exam with its question batch atomically.
	GenerateExam(ctx context.Context, req *GenerateExamRequest) (*models.ExamWithQuestions, error)

	// GetExam retrieves a generated exam with its ordered questions
	GetExam(ctx context.Context, id, ownerID string) (*models.ExamWithQuestions, error)

	// ListExams lists an owner's exam headers, newest first
	ListExams(ctx context.Context, ownerID string) ([]models.Exam, error)

	// DeleteExam removes an exam and its question batch
	DeleteExam(ctx context.Context, id, ownerID string) error
}

// GenerateFlashcardsRequest represents a flashcard generation request
type GenerateFlashcardsRequest struct {
	OwnerID  string  `json:"-"`
	Topic    string  `json:"topic"`
	Count    int     `json:"count"`
	FolderID *string `json:"folder_id,omitempty"` // file generated cards here
}

// GenerateExamRequest represents a mock exam generation request.
// TargetMarks steers the prompt but the extracted total is never enforced.
type GenerateExamRequest struct {
	OwnerID       string `json:"-"`
	Title         string `json:"title"`
	Topic         string `json:"topic"`
	QuestionCount int    `json:"question_count"`
	TargetMarks   int    `json:"target_marks"`
}
