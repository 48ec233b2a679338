package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"studyaid/internal/domain"
	"studyaid/internal/domain/models"
	"studyaid/internal/domain/repositories"
)

// PostgresFlashcardRepository implements the FlashcardRepository interface
type PostgresFlashcardRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewFlashcardRepository creates a new flashcard repository
func NewFlashcardRepository(config *RepositoryConfig) repositories.FlashcardRepository {
	return &PostgresFlashcardRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create creates a new flashcard
func (r *PostgresFlashcardRepository) Create(ctx context.Context, card *models.Flashcard) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, owner_id, folder_id, topic, question, answer, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, r.tables.Flashcards)

	_, err := GetExecutor(ctx, r.pool).Exec(ctx, query,
		card.ID,
		card.OwnerID,
		card.FolderID,
		card.Topic,
		card.Question,
		card.Answer,
		card.CreatedAt,
		card.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create flashcard: %w", err)
	}

	return nil
}

// CreateBatch inserts a batch of flashcards one statement at a time; run it
// inside ExecTx when the batch must be atomic.
func (r *PostgresFlashcardRepository) CreateBatch(ctx context.Context, cards []models.Flashcard) error {
	for i := range cards {
		if err := r.Create(ctx, &cards[i]); err != nil {
			return fmt.Errorf("batch insert card %d: %w", i, err)
		}
	}
	return nil
}

// GetByID retrieves a flashcard by ID
func (r *PostgresFlashcardRepository) GetByID(ctx context.Context, id, ownerID string) (*models.Flashcard, error) {
	query := fmt.Sprintf(`
		SELECT id, owner_id, folder_id, topic, question, answer, created_at, updated_at
		FROM %s
		WHERE id = $1 AND owner_id = $2
	`, r.tables.Flashcards)

	var card models.Flashcard
	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query, id, ownerID).Scan(
		&card.ID,
		&card.OwnerID,
		&card.FolderID,
		&card.Topic,
		&card.Question,
		&card.Answer,
		&card.CreatedAt,
		&card.UpdatedAt,
	)
	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("flashcard %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get flashcard: %w", err)
	}

	return &card, nil
}

// Update updates a flashcard
func (r *PostgresFlashcardRepository) Update(ctx context.Context, card *models.Flashcard) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET folder_id = $1, topic = $2, question = $3, answer = $4, updated_at = $5
		WHERE id = $6 AND owner_id = $7
	`, r.tables.Flashcards)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query,
		card.FolderID,
		card.Topic,
		card.Question,
		card.Answer,
		card.UpdatedAt,
		card.ID,
		card.OwnerID,
	)
	if err != nil {
		return fmt.Errorf("update flashcard: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("flashcard %s: %w", card.ID, domain.ErrNotFound)
	}

	return nil
}

// Delete deletes a flashcard
func (r *PostgresFlashcardRepository) Delete(ctx context.Context, id, ownerID string) error {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE id = $1 AND owner_id = $2
	`, r.tables.Flashcards)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete flashcard: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("flashcard %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// ListByFolder lists flashcards filed in a folder (nil = root level)
func (r *PostgresFlashcardRepository) ListByFolder(ctx context.Context, folderID *string, ownerID string) ([]models.Flashcard, error) {
	var query string
	var args []interface{}

	if folderID == nil {
		query = fmt.Sprintf(`
			SELECT id, owner_id, folder_id, topic, question, answer, created_at, updated_at
			FROM %s
			WHERE owner_id = $1 AND folder_id IS NULL
			ORDER BY created_at ASC
		`, r.tables.Flashcards)
		args = append(args, ownerID)
	} else {
		query = fmt.Sprintf(`
			SELECT id, owner_id, folder_id, topic, question, answer, created_at, updated_at
			FROM %s
			WHERE owner_id = $1 AND folder_id = $2
			ORDER BY created_at ASC
		`, r.tables.Flashcards)
		args = append(args, ownerID, *folderID)
	}

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list flashcards: %w", err)
	}
	defer rows.Close()

	return scanFlashcards(rows)
}

// GetAllByOwner retrieves all flashcards for an owner (flat list)
func (r *PostgresFlashcardRepository) GetAllByOwner(ctx context.Context, ownerID string) ([]models.Flashcard, error) {
	query := fmt.Sprintf(`
		SELECT id, owner_id, folder_id, topic, question, answer, created_at, updated_at
		FROM %s
		WHERE owner_id = $1
		ORDER BY created_at ASC
	`, r.tables.Flashcards)

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("get all flashcards: %w", err)
	}
	defer rows.Close()

	return scanFlashcards(rows)
}

func scanFlashcards(rows pgx.Rows) ([]models.Flashcard, error) {
	var cards []models.Flashcard
	for rows.Next() {
		var card models.Flashcard
		err := rows.Scan(
			&card.ID,
			&card.OwnerID,
			&card.FolderID,
			&card.Topic,
			&card.Question,
			&card.Answer,
			&card.CreatedAt,
			&card.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan flashcard: %w", err)
		}
		cards = append(cards, card)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate flashcards: %w", err)
	}

	return cards, nil
}
