package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"studyaid/internal/domain"
	"studyaid/internal/domain/models"
	"studyaid/internal/domain/repositories"
)

// PostgresFolderRepository implements the FolderRepository interface
type PostgresFolderRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewFolderRepository creates a new folder repository
func NewFolderRepository(config *RepositoryConfig) repositories.FolderRepository {
	return &PostgresFolderRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create creates a new folder
func (r *PostgresFolderRepository) Create(ctx context.Context, folder *models.Folder) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, owner_id, parent_id, name, icon, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, r.tables.Folders)

	_, err := GetExecutor(ctx, r.pool).Exec(ctx, query,
		folder.ID,
		folder.OwnerID,
		folder.ParentID,
		folder.Name,
		folder.Icon,
		folder.CreatedAt,
		folder.UpdatedAt,
	)
	if err != nil {
		if isPgDuplicateError(err) {
			return fmt.Errorf("folder '%s': %w", folder.Name, domain.ErrConflict)
		}
		return fmt.Errorf("create folder: %w", err)
	}

	return nil
}

// GetByID retrieves a folder by ID
func (r *PostgresFolderRepository) GetByID(ctx context.Context, id, ownerID string) (*models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT id, owner_id, parent_id, name, icon, created_at, updated_at
		FROM %s
		WHERE id = $1 AND owner_id = $2
	`, r.tables.Folders)

	var folder models.Folder
	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query, id, ownerID).Scan(
		&folder.ID,
		&folder.OwnerID,
		&folder.ParentID,
		&folder.Name,
		&folder.Icon,
		&folder.CreatedAt,
		&folder.UpdatedAt,
	)
	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get folder: %w", err)
	}

	return &folder, nil
}

// Update updates a folder's name, icon and parent reference
func (r *PostgresFolderRepository) Update(ctx context.Context, folder *models.Folder) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET parent_id = $1, name = $2, icon = $3, updated_at = $4
		WHERE id = $5 AND owner_id = $6
	`, r.tables.Folders)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query,
		folder.ParentID,
		folder.Name,
		folder.Icon,
		folder.UpdatedAt,
		folder.ID,
		folder.OwnerID,
	)
	if err != nil {
		if isPgDuplicateError(err) {
			return fmt.Errorf("folder '%s': %w", folder.Name, domain.ErrConflict)
		}
		return fmt.Errorf("update folder: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("folder %s: %w", folder.ID, domain.ErrNotFound)
	}

	return nil
}

// Delete deletes a folder
func (r *PostgresFolderRepository) Delete(ctx context.Context, id, ownerID string) error {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE id = $1 AND owner_id = $2
	`, r.tables.Folders)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query, id, ownerID)
	if err != nil {
		if isPgForeignKeyError(err) {
			// The service checks emptiness first; this catches a concurrent
			// insert racing the check.
			return fmt.Errorf("folder %s still has children: %w", id, domain.ErrFolderNotEmpty)
		}
		return fmt.Errorf("delete folder: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// ListChildren lists immediate child folders (nil parentID = root level)
func (r *PostgresFolderRepository) ListChildren(ctx context.Context, parentID *string, ownerID string) ([]models.Folder, error) {
	var query string
	var args []interface{}

	if parentID == nil {
		query = fmt.Sprintf(`
			SELECT id, owner_id, parent_id, name, icon, created_at, updated_at
			FROM %s
			WHERE owner_id = $1 AND parent_id IS NULL
			ORDER BY name ASC
		`, r.tables.Folders)
		args = append(args, ownerID)
	} else {
		query = fmt.Sprintf(`
			SELECT id, owner_id, parent_id, name, icon, created_at, updated_at
			FROM %s
			WHERE owner_id = $1 AND parent_id = $2
			ORDER BY name ASC
		`, r.tables.Folders)
		args = append(args, ownerID, *parentID)
	}

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list folder children: %w", err)
	}
	defer rows.Close()

	var folders []models.Folder
	for rows.Next() {
		var folder models.Folder
		err := rows.Scan(
			&folder.ID,
			&folder.OwnerID,
			&folder.ParentID,
			&folder.Name,
			&folder.Icon,
			&folder.CreatedAt,
			&folder.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan folder: %w", err)
		}
		folders = append(folders, folder)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate folders: %w", err)
	}

	return folders, nil
}

// GetAllByOwner retrieves all folders for an owner (flat list)
func (r *PostgresFolderRepository) GetAllByOwner(ctx context.Context, ownerID string) ([]models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT id, owner_id, parent_id, name, icon, created_at, updated_at
		FROM %s
		WHERE owner_id = $1
		ORDER BY created_at ASC
	`, r.tables.Folders)

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("get all folders: %w", err)
	}
	defer rows.Close()

	var folders []models.Folder
	for rows.Next() {
		var folder models.Folder
		err := rows.Scan(
			&folder.ID,
			&folder.OwnerID,
			&folder.ParentID,
			&folder.Name,
			&folder.Icon,
			&folder.CreatedAt,
			&folder.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan folder: %w", err)
		}
		folders = append(folders, folder)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate folders: %w", err)
	}

	return folders, nil
}
