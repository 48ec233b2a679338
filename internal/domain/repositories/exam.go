package repositories

import (
	"context"

	"studyaid/internal/domain/models"
)

// ExamRepository defines data access operations for exams and their
// question batches. Questions have no identity outside their exam, so they
// are written and deleted together with the header row.
type ExamRepository interface {
	// Create inserts the exam header and its question batch
	Create(ctx context.Context, exam *models.Exam, questions []models.ExamQuestion) error

	// GetByID retrieves an exam with its questions ordered by question_number
	GetByID(ctx context.Context, id, ownerID string) (*models.ExamWithQuestions, error)

	// ListByOwner lists exam headers for an owner, newest first
	ListByOwner(ctx context.Context, ownerID string) ([]models.Exam, error)

	// Delete removes an exam and its questions
	Delete(ctx context.Context, id, ownerID string) error
}
