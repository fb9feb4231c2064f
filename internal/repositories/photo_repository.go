package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sitepanel/backend/internal/models"
)

type photoRepository struct {
	db *sql.DB
}

// NewPhotoRepository creates a new photo repository
func NewPhotoRepository(db *sql.DB) *photoRepository {
	return &photoRepository{
		db: db,
	}
}

// ListByResource retrieves the gallery of a resource, sorted by list order
func (r *photoRepository) ListByResource(ctx context.Context, resourceType string, resourceID int64) ([]models.Photo, error) {
	query := `
		SELECT id, resource_type, resource_id, name, filename, is_cover, list_order, created_at
		FROM photos
		WHERE resource_type = ? AND resource_id = ?
		ORDER BY list_order, id
	`

	rows, err := r.db.QueryContext(ctx, query, resourceType, resourceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query photos: %w", err)
	}
	defer rows.Close()

	photos := []models.Photo{}
	for rows.Next() {
		var photo models.Photo
		err := rows.Scan(
			&photo.ID,
			&photo.ResourceType,
			&photo.ResourceID,
			&photo.Name,
			&photo.Filename,
			&photo.IsCover,
			&photo.ListOrder,
			&photo.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan photo: %w", err)
		}
		photos = append(photos, photo)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return photos, nil
}

// GetByID retrieves a photo by its ID
func (r *photoRepository) GetByID(ctx context.Context, id int64) (*models.Photo, error) {
	query := `
		SELECT id, resource_type, resource_id, name, filename, is_cover, list_order, created_at
		FROM photos
		WHERE id = ?
		LIMIT 1
	`

	var photo models.Photo
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&photo.ID,
		&photo.ResourceType,
		&photo.ResourceID,
		&photo.Name,
		&photo.Filename,
		&photo.IsCover,
		&photo.ListOrder,
		&photo.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("photo not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get photo by id: %w", err)
	}

	return &photo, nil
}

// NextListOrder returns the list order that places a new photo at the end of the gallery
func (r *photoRepository) NextListOrder(ctx context.Context, resourceType string, resourceID int64) (int, error) {
	query := `SELECT COALESCE(MAX(list_order), 0) + 1 FROM photos WHERE resource_type = ? AND resource_id = ?`

	var next int
	err := r.db.QueryRowContext(ctx, query, resourceType, resourceID).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("failed to get next list order: %w", err)
	}

	return next, nil
}

// Create creates a new photo
func (r *photoRepository) Create(ctx context.Context, photo *models.Photo) error {
	query := `
		INSERT INTO photos (resource_type, resource_id, name, filename, is_cover, list_order)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		photo.ResourceType,
		photo.ResourceID,
		photo.Name,
		photo.Filename,
		photo.IsCover,
		photo.ListOrder,
	)
	if err != nil {
		return fmt.Errorf("failed to create photo: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	photo.ID = id
	return nil
}

// UpdateName renames a photo
func (r *photoRepository) UpdateName(ctx context.Context, id int64, name string) error {
	query := `UPDATE photos SET name = ? WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, name, id)
	if err != nil {
		return fmt.Errorf("failed to update photo name: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("photo not found")
	}

	return nil
}

// SetCover makes the photo the only cover of its resource gallery
func (r *photoRepository) SetCover(ctx context.Context, photo *models.Photo) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`UPDATE photos SET is_cover = 0 WHERE resource_type = ? AND resource_id = ?`,
		photo.ResourceType, photo.ResourceID,
	); err != nil {
		return fmt.Errorf("failed to reset gallery cover: %w", err)
	}

	result, err := tx.ExecContext(ctx, `UPDATE photos SET is_cover = 1 WHERE id = ?`, photo.ID)
	if err != nil {
		return fmt.Errorf("failed to set photo cover: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("photo not found")
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Delete deletes a photo by ID
func (r *photoRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM photos WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete photo: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("photo not found")
	}

	return nil
}
