package models

import (
	"time"
)

type Flashcard struct {
	ID        string    `json:"id" db:"id"`
	OwnerID   string    `json:"owner_id" db:"owner_id"`
	FolderID  *string   `json:"folder_id" db:"folder_id"` // NULL = filed at root
	Topic     string    `json:"topic" db:"topic"`
	Question  string    `json:"question" db:"question"`
	Answer    string    `json:"answer" db:"answer"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
