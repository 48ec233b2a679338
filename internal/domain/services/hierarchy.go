package services

import (
	"context"

	"studyaid/internal/domain/models"
)

// ItemType discriminates the two movable/deletable entity kinds.
type ItemType string

const (
	ItemTypeFlashcard ItemType = "flashcard"
	ItemTypeFolder    ItemType = "folder"
)

// ItemRef identifies one entry in a move/delete request.
type ItemRef struct {
	ID   string   `json:"id"`
	Type ItemType `json:"type"`
}

// HierarchyService owns the folder/flashcard forest of a single owner.
// Every call takes the caller's owner identity explicitly; entities owned by
// someone else behave as not found.
type HierarchyService interface {
	// CreateFolder creates a folder, optionally under a parent
	CreateFolder(ctx context.Context, req *CreateFolderRequest) (*models.Folder, error)

	// RenameFolder changes a folder's name and/or icon
	RenameFolder(ctx context.Context, req *RenameFolderRequest) (*models.Folder, error)

	// CreateFlashcard creates a flashcard, optionally filed in a folder
	CreateFlashcard(ctx context.Context, req *CreateFlashcardRequest) (*models.Flashcard, error)

	// UpdateFlashcard edits a flashcard's topic, question or answer
	UpdateFlashcard(ctx context.Context, req *UpdateFlashcardRequest) (*models.Flashcard, error)

	// BuildTree returns the owner's folder forest. With rootIDs given, only
	// those subtrees are returned; unknown or unowned ids are skipped.
	BuildTree(ctx context.Context, ownerID string, rootIDs []string) (*models.TreeNode, error)

	// CollectFlashcards gathers the flashcards of the given folders and all
	// their descendants, deduplicated in first-seen order.
	CollectFlashcards(ctx context.Context, ownerID string, folderIDs []string) ([]models.Flashcard, error)

	// MoveItem re-files a flashcard or re-parents a folder. A nil target
	// moves the item to root level. Unknown/unowned items are a no-op;
	// a folder move that would create a cycle fails with ErrCyclicMove.
	MoveItem(ctx context.Context, ownerID string, item ItemRef, targetFolderID *string) error

	// MoveItemsBulk applies MoveItem to every entry all-or-nothing: one
	// invalid entry aborts the whole batch with nothing applied.
	MoveItemsBulk(ctx context.Context, ownerID string, items []ItemRef, targetFolderID *string) error

	// DeleteItem deletes a flashcard, or an empty folder. Deleting a
	// non-empty folder fails with ErrFolderNotEmpty; unknown items no-op.
	DeleteItem(ctx context.Context, ownerID string, item ItemRef) error

	// DeleteItemsBulk deletes every entry all-or-nothing under the same
	// non-empty-folder guard.
	DeleteItemsBulk(ctx context.Context, ownerID string, items []ItemRef) error
}

// CreateFolderRequest represents a folder creation request
type CreateFolderRequest struct {
	OwnerID  string  `json:"-"`
	Name     string  `json:"name"`
	Icon     string  `json:"icon,omitempty"`
	ParentID *string `json:"parent_id,omitempty"`
}

// RenameFolderRequest represents a folder rename request
type RenameFolderRequest struct {
	OwnerID  string  `json:"-"`
	FolderID string  `json:"-"`
	Name     *string `json:"name,omitempty"`
	Icon     *string `json:"icon,omitempty"`
}

// CreateFlashcardRequest represents a flashcard creation request
type CreateFlashcardRequest struct {
	OwnerID  string  `json:"-"`
	Topic    string  `json:"topic,omitempty"`
	Question string  `json:"question"`
	Answer   string  `json:"answer"`
	FolderID *string `json:"folder_id,omitempty"`
}

// UpdateFlashcardRequest represents a flashcard edit request
type UpdateFlashcardRequest struct {
	OwnerID     string  `json:"-"`
	FlashcardID string  `json:"-"`
	Topic       *string `json:"topic,omitempty"`
	Question    *string `json:"question,omitempty"`
	Answer      *string `json:"answer,omitempty"`
}
