package repositories

import (
	"context"

	"studyaid/internal/domain/models"
)

// FlashcardRepository defines data access operations for flashcards,
// owner-scoped like FolderRepository.
type FlashcardRepository interface {
	// Create creates a new flashcard
	Create(ctx context.Context, card *models.Flashcard) error

	// CreateBatch inserts a batch of flashcards. Callers wanting atomicity
	// run it inside a transaction.
	CreateBatch(ctx context.Context, cards []models.Flashcard) error

	// GetByID retrieves a flashcard by ID
	GetByID(ctx context.Context, id, ownerID string) (*models.Flashcard, error)

	// Update updates a flashcard
	Update(ctx context.Context, card *models.Flashcard) error

	// Delete deletes a flashcard
	Delete(ctx context.Context, id, ownerID string) error

	// ListByFolder lists flashcards filed in a folder (nil = root level)
	ListByFolder(ctx context.Context, folderID *string, ownerID string) ([]models.Flashcard, error)

	// GetAllByOwner retrieves all flashcards for an owner (flat list)
	GetAllByOwner(ctx context.Context, ownerID string) ([]models.Flashcard, error)
}
