package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sitepanel/backend/internal/models"
)

type pageContentRepository struct {
	db *sql.DB
}

// NewPageContentRepository creates a new page content repository
func NewPageContentRepository(db *sql.DB) *pageContentRepository {
	return &pageContentRepository{
		db: db,
	}
}

// PageExists checks if a page with the given ID exists
func (r *pageContentRepository) PageExists(ctx context.Context, pageID int64) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM pages WHERE id = ?)`

	var exists bool
	err := r.db.QueryRowContext(ctx, query, pageID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check page existence: %w", err)
	}

	return exists, nil
}

// ListByPage retrieves all sections of a page, sorted by list order
func (r *pageContentRepository) ListByPage(ctx context.Context, pageID int64) ([]models.PageContent, error) {
	query := `
		SELECT id, page_id, heading, content, media, list_order, created_at, updated_at
		FROM page_contents
		WHERE page_id = ?
		ORDER BY list_order, id
	`

	rows, err := r.db.QueryContext(ctx, query, pageID)
	if err != nil {
		return nil, fmt.Errorf("failed to query page contents: %w", err)
	}
	defer rows.Close()

	contents := []models.PageContent{}
	for rows.Next() {
		content, err := scanPageContent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan page content: %w", err)
		}
		contents = append(contents, *content)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return contents, nil
}

// GetByID retrieves a page section by its ID
func (r *pageContentRepository) GetByID(ctx context.Context, id int64) (*models.PageContent, error) {
	query := `
		SELECT id, page_id, heading, content, media, list_order, created_at, updated_at
		FROM page_contents
		WHERE id = ?
		LIMIT 1
	`

	content, err := scanPageContent(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("page content not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get page content by id: %w", err)
	}

	return content, nil
}

// NextListOrder returns the list order that places a new section at the end of the page
func (r *pageContentRepository) NextListOrder(ctx context.Context, pageID int64) (int, error) {
	query := `SELECT COALESCE(MAX(list_order), 0) + 1 FROM page_contents WHERE page_id = ?`

	var next int
	err := r.db.QueryRowContext(ctx, query, pageID).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("failed to get next list order: %w", err)
	}

	return next, nil
}

// Create creates a new page section
func (r *pageContentRepository) Create(ctx context.Context, content *models.PageContent) error {
	query := `
		INSERT INTO page_contents (page_id, heading, content, media, list_order)
		VALUES (?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		content.PageID,
		content.Heading,
		content.Content,
		nullString(content.Media),
		content.ListOrder,
	)
	if err != nil {
		return fmt.Errorf("failed to create page content: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	content.ID = id
	return nil
}

// Update updates heading, content and media of a page section
func (r *pageContentRepository) Update(ctx context.Context, content *models.PageContent) error {
	query := `
		UPDATE page_contents
		SET heading = ?, content = ?, media = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		content.Heading,
		content.Content,
		nullString(content.Media),
		content.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update page content: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("page content not found")
	}

	return nil
}

// ClearMedia sets the media reference of a page section to NULL
func (r *pageContentRepository) ClearMedia(ctx context.Context, id int64) error {
	query := `UPDATE page_contents SET media = NULL, updated_at = CURRENT_TIMESTAMP WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to clear page content media: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("page content not found")
	}

	return nil
}

// Delete deletes a page section by ID
func (r *pageContentRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM page_contents WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete page content: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("page content not found")
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPageContent(row rowScanner) (*models.PageContent, error) {
	var content models.PageContent
	var media sql.NullString
	err := row.Scan(
		&content.ID,
		&content.PageID,
		&content.Heading,
		&content.Content,
		&media,
		&content.ListOrder,
		&content.CreatedAt,
		&content.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if media.Valid {
		content.Media = &media.String
	}
	return &content, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
