package repositories

import (
	"context"

	"studyaid/internal/domain/models"
)

// FolderRepository defines data access operations for folders. Every read
// and write is scoped to an owner; a row with a different owner_id behaves
// as if it does not exist.
type FolderRepository interface {
	// Create creates a new folder
	Create(ctx context.Context, folder *models.Folder) error

	// GetByID retrieves a folder by ID
	GetByID(ctx context.Context, id, ownerID string) (*models.Folder, error)

	// Update updates a folder's name, icon and parent reference
	Update(ctx context.Context, folder *models.Folder) error

	// Delete deletes a folder
	Delete(ctx context.Context, id, ownerID string) error

	// ListChildren lists immediate child folders (nil parentID = root level)
	ListChildren(ctx context.Context, parentID *string, ownerID string) ([]models.Folder, error)

	// GetAllByOwner retrieves all folders for an owner (flat list)
	GetAllByOwner(ctx context.Context, ownerID string) ([]models.Folder, error)
}
