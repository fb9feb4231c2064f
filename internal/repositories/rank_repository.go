package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/sitepanel/backend/internal/ordering"
)

// rankRepository writes list orders of any ranked table
type rankRepository struct {
	db *sql.DB
}

// NewRankRepository creates a new rank repository
func NewRankRepository(db *sql.DB) *rankRepository {
	return &rankRepository{
		db: db,
	}
}

// SetRank sets the rank column of one row. It reports false when no row with the id
// matches the scope. Requires a connection opened with clientFoundRows, otherwise
// a row that already holds the rank is reported as missing.
func (r *rankRepository) SetRank(ctx context.Context, target ordering.Target, id int64, rank int, scope ordering.Scope) (bool, error) {
	if err := target.Validate(); err != nil {
		return false, err
	}

	conditions := []string{"id = ?"}
	args := []any{rank, id}
	columns, values := scope.Conditions(target)
	for i, column := range columns {
		conditions = append(conditions, column+" = ?")
		args = append(args, values[i])
	}

	// Identifiers come from a validated target, values are bound
	query := fmt.Sprintf(`UPDATE %s SET %s = ? WHERE %s`,
		target.Table, target.RankColumn, strings.Join(conditions, " AND "))

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to update %s rank: %w", target.Table, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}
