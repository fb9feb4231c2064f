package repositories

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sitepanel/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pageContentColumns = []string{"id", "page_id", "heading", "content", "media", "list_order", "created_at", "updated_at"}

// setupPageContentTestRepository creates a page content repository with a mock database
func setupPageContentTestRepository(t *testing.T) (*pageContentRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	repo := NewPageContentRepository(db)

	cleanup := func() {
		db.Close()
	}

	return repo, mock, cleanup
}

func TestNewPageContentRepository(t *testing.T) {
	db := &sql.DB{}

	repo := NewPageContentRepository(db)

	assert.NotNil(t, repo)
	assert.Equal(t, db, repo.db)
}

func TestPageContentRepository_PageExists(t *testing.T) {
	tests := []struct {
		name          string
		setupMock     func(sqlmock.Sqlmock)
		expected      bool
		expectedError bool
	}{
		{
			name: "exists",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM pages WHERE id = \?\)`).
					WithArgs(int64(3)).
					WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
			},
			expected: true,
		},
		{
			name: "missing",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM pages WHERE id = \?\)`).
					WithArgs(int64(3)).
					WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
			},
			expected: false,
		},
		{
			name: "database error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT EXISTS`).
					WithArgs(int64(3)).
					WillReturnError(errors.New("database error"))
			},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupPageContentTestRepository(t)
			defer cleanup()

			tt.setupMock(mock)

			exists, err := repo.PageExists(context.Background(), 3)

			if tt.expectedError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expected, exists)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPageContentRepository_ListByPage(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name          string
		setupMock     func(sqlmock.Sqlmock)
		expectedError bool
		expectedCount int
	}{
		{
			name: "success",
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows(pageContentColumns).
					AddRow(1, 3, "Intro", "<p>hi</p>", "abc.jpg", 1, now, now).
					AddRow(2, 3, "Team", "", nil, 2, now, now)
				mock.ExpectQuery(`SELECT id, page_id, heading, content, media, list_order, created_at, updated_at FROM page_contents WHERE page_id = \? ORDER BY list_order, id`).
					WithArgs(int64(3)).
					WillReturnRows(rows)
			},
			expectedCount: 2,
		},
		{
			name: "empty page",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT .* FROM page_contents WHERE page_id = \?`).
					WithArgs(int64(3)).
					WillReturnRows(sqlmock.NewRows(pageContentColumns))
			},
			expectedCount: 0,
		},
		{
			name: "query error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT .* FROM page_contents`).
					WithArgs(int64(3)).
					WillReturnError(errors.New("database error"))
			},
			expectedError: true,
		},
		{
			name: "scan error",
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{"id"}).AddRow(1)
				mock.ExpectQuery(`SELECT .* FROM page_contents`).
					WithArgs(int64(3)).
					WillReturnRows(rows)
			},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupPageContentTestRepository(t)
			defer cleanup()

			tt.setupMock(mock)

			result, err := repo.ListByPage(context.Background(), 3)

			if tt.expectedError {
				assert.Error(t, err)
				assert.Nil(t, result)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, result)
				assert.Len(t, result, tt.expectedCount)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPageContentRepository_ListByPage_Media(t *testing.T) {
	repo, mock, cleanup := setupPageContentTestRepository(t)
	defer cleanup()
	now := time.Now()
	rows := sqlmock.NewRows(pageContentColumns).
		AddRow(1, 3, "Intro", "", "abc.jpg", 1, now, now).
		AddRow(2, 3, "Team", "", nil, 2, now, now)
	mock.ExpectQuery(`SELECT .* FROM page_contents`).WithArgs(int64(3)).WillReturnRows(rows)

	result, err := repo.ListByPage(context.Background(), 3)

	require.NoError(t, err)
	require.Len(t, result, 2)
	require.NotNil(t, result[0].Media)
	assert.Equal(t, "abc.jpg", *result[0].Media)
	assert.Nil(t, result[1].Media)
}

func TestPageContentRepository_GetByID(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name          string
		setupMock     func(sqlmock.Sqlmock)
		expectedError bool
		errorContains string
	}{
		{
			name: "success",
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows(pageContentColumns).AddRow(7, 3, "Intro", "", nil, 1, now, now)
				mock.ExpectQuery(`SELECT .* FROM page_contents WHERE id = \?`).
					WithArgs(int64(7)).
					WillReturnRows(rows)
			},
		},
		{
			name: "not found",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT .* FROM page_contents WHERE id = \?`).
					WithArgs(int64(7)).
					WillReturnError(sql.ErrNoRows)
			},
			expectedError: true,
			errorContains: "page content not found",
		},
		{
			name: "database error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT .* FROM page_contents WHERE id = \?`).
					WithArgs(int64(7)).
					WillReturnError(errors.New("database error"))
			},
			expectedError: true,
			errorContains: "failed to get page content by id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupPageContentTestRepository(t)
			defer cleanup()

			tt.setupMock(mock)

			result, err := repo.GetByID(context.Background(), 7)

			if tt.expectedError {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorContains)
				assert.Nil(t, result)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, int64(7), result.ID)
				assert.Equal(t, int64(3), result.PageID)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPageContentRepository_NextListOrder(t *testing.T) {
	repo, mock, cleanup := setupPageContentTestRepository(t)
	defer cleanup()
	mock.ExpectQuery(`SELECT COALESCE\(MAX\(list_order\), 0\) \+ 1 FROM page_contents WHERE page_id = \?`).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"next"}).AddRow(5))

	next, err := repo.NextListOrder(context.Background(), 3)

	assert.NoError(t, err)
	assert.Equal(t, 5, next)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPageContentRepository_Create(t *testing.T) {
	media := "abc.jpg"
	tests := []struct {
		name          string
		content       *models.PageContent
		setupMock     func(sqlmock.Sqlmock)
		expectedError bool
		expectedID    int64
	}{
		{
			name:    "success with media",
			content: &models.PageContent{PageID: 3, Heading: "Intro", Content: "text", Media: &media, ListOrder: 4},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO page_contents \(page_id, heading, content, media, list_order\) VALUES`).
					WithArgs(int64(3), "Intro", "text", "abc.jpg", 4).
					WillReturnResult(sqlmock.NewResult(11, 1))
			},
			expectedID: 11,
		},
		{
			name:    "success without media",
			content: &models.PageContent{PageID: 3, Heading: "Intro", ListOrder: 1},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO page_contents`).
					WithArgs(int64(3), "Intro", "", nil, 1).
					WillReturnResult(sqlmock.NewResult(12, 1))
			},
			expectedID: 12,
		},
		{
			name:    "database error",
			content: &models.PageContent{PageID: 3, Heading: "Intro", ListOrder: 1},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO page_contents`).
					WillReturnError(errors.New("database error"))
			},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupPageContentTestRepository(t)
			defer cleanup()

			tt.setupMock(mock)

			err := repo.Create(context.Background(), tt.content)

			if tt.expectedError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedID, tt.content.ID)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPageContentRepository_Update(t *testing.T) {
	media := "new.png"
	tests := []struct {
		name          string
		setupMock     func(sqlmock.Sqlmock)
		expectedError bool
		errorContains string
	}{
		{
			name: "success",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE page_contents SET heading = \?, content = \?, media = \?, updated_at = CURRENT_TIMESTAMP WHERE id = \?`).
					WithArgs("Intro", "text", "new.png", int64(7)).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "not found",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE page_contents`).
					WithArgs("Intro", "text", "new.png", int64(7)).
					WillReturnResult(sqlmock.NewResult(0, 0))
			},
			expectedError: true,
			errorContains: "page content not found",
		},
		{
			name: "database error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE page_contents`).
					WillReturnError(errors.New("database error"))
			},
			expectedError: true,
			errorContains: "failed to update page content",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupPageContentTestRepository(t)
			defer cleanup()

			tt.setupMock(mock)

			err := repo.Update(context.Background(), &models.PageContent{ID: 7, Heading: "Intro", Content: "text", Media: &media})

			if tt.expectedError {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorContains)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPageContentRepository_ClearMedia(t *testing.T) {
	tests := []struct {
		name          string
		result        driverResult
		expectedError bool
	}{
		{name: "success", result: driverResult{rows: 1}},
		{name: "not found", result: driverResult{rows: 0}, expectedError: true},
		{name: "database error", result: driverResult{err: errors.New("database error")}, expectedError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupPageContentTestRepository(t)
			defer cleanup()

			exec := mock.ExpectExec(`UPDATE page_contents SET media = NULL`).WithArgs(int64(7))
			tt.result.apply(exec)

			err := repo.ClearMedia(context.Background(), 7)

			if tt.expectedError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPageContentRepository_Delete(t *testing.T) {
	tests := []struct {
		name          string
		result        driverResult
		expectedError bool
		errorContains string
	}{
		{name: "success", result: driverResult{rows: 1}},
		{name: "not found", result: driverResult{rows: 0}, expectedError: true, errorContains: "page content not found"},
		{name: "database error", result: driverResult{err: errors.New("database error")}, expectedError: true, errorContains: "failed to delete page content"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupPageContentTestRepository(t)
			defer cleanup()

			exec := mock.ExpectExec(`DELETE FROM page_contents WHERE id = \?`).WithArgs(int64(7))
			tt.result.apply(exec)

			err := repo.Delete(context.Background(), 7)

			if tt.expectedError {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorContains)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

// driverResult describes the outcome of an expected Exec
type driverResult struct {
	rows int64
	err  error
}

func (d driverResult) apply(exec *sqlmock.ExpectedExec) {
	if d.err != nil {
		exec.WillReturnError(d.err)
		return
	}
	exec.WillReturnResult(sqlmock.NewResult(0, d.rows))
}
