package models

import (
	"time"
)

type Folder struct {
	ID        string    `json:"id" db:"id"`
	OwnerID   string    `json:"owner_id" db:"owner_id"`
	ParentID  *string   `json:"parent_id" db:"parent_id"` // NULL = root level
	Name      string    `json:"name" db:"name"`
	Icon      string    `json:"icon" db:"icon"` // display glyph, e.g. an emoji
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// TreeNode is the root of an owner's folder forest: root-level folders plus
// flashcards filed at root (no folder).
type TreeNode struct {
	Folders    []*FolderTreeNode `json:"folders"`
	Flashcards []Flashcard       `json:"flashcards"`
}

// FolderTreeNode represents a folder in the tree with nested children
type FolderTreeNode struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Icon       string            `json:"icon"`
	ParentID   *string           `json:"parent_id"`
	CreatedAt  time.Time         `json:"created_at"`
	Subfolders []*FolderTreeNode `json:"subfolders"` // Pointers for proper nesting
	Flashcards []Flashcard       `json:"flashcards"`
}
