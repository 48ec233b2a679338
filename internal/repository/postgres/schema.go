package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema creates the tables if they do not exist. Folders reference
// themselves through parent_id and flashcards reference folders with
// ON DELETE RESTRICT: the database backs up the application-level
// "folders must be empty before deletion" guard. Exam questions cascade
// with their exam.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id UUID PRIMARY KEY,
			owner_id TEXT NOT NULL,
			parent_id UUID REFERENCES %s(id) ON DELETE RESTRICT,
			name TEXT NOT NULL,
			icon TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`, tables.Folders, tables.Folders),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_owner_idx ON %s (owner_id)`,
			tables.Folders, tables.Folders),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id UUID PRIMARY KEY,
			owner_id TEXT NOT NULL,
			folder_id UUID REFERENCES %s(id) ON DELETE RESTRICT,
			topic TEXT NOT NULL DEFAULT '',
			question TEXT NOT NULL,
			answer TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`, tables.Flashcards, tables.Folders),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_owner_idx ON %s (owner_id)`,
			tables.Flashcards, tables.Flashcards),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_folder_idx ON %s (folder_id)`,
			tables.Flashcards, tables.Flashcards),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id UUID PRIMARY KEY,
			owner_id TEXT NOT NULL,
			title TEXT NOT NULL,
			topic TEXT NOT NULL,
			target_marks INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL
		)`, tables.Exams),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_owner_idx ON %s (owner_id)`,
			tables.Exams, tables.Exams),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id UUID PRIMARY KEY,
			exam_id UUID NOT NULL REFERENCES %s(id) ON DELETE CASCADE,
			question_number INTEGER NOT NULL,
			question_text TEXT NOT NULL,
			marks INTEGER NOT NULL,
			answer_text TEXT NOT NULL,
			model_answer TEXT
		)`, tables.ExamQuestions, tables.Exams),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_exam_idx ON %s (exam_id)`,
			tables.ExamQuestions, tables.ExamQuestions),
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}

	return nil
}
