package services

import (
	"context"
	"errors"
	"testing"

	"github.com/sitepanel/backend/internal/ordering"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockReorderer is a mock implementation of Reorderer
type mockReorderer struct {
	calls  int
	target ordering.Target
	scope  ordering.Scope
	ids    []int64
	err    error
}

func (m *mockReorderer) Reorder(ctx context.Context, target ordering.Target, scope ordering.Scope, ids []int64) (*ordering.Result, error) {
	m.calls++
	m.target, m.scope, m.ids = target, scope, ids
	if m.err != nil {
		return nil, m.err
	}
	return &ordering.Result{Ranked: ids, Skipped: []int64{}}, nil
}

func TestOrderService_Reorder(t *testing.T) {
	tests := []struct {
		name          string
		list          string
		reorderer     *mockReorderer
		expectedIDs   []int64
		expectedCalls int
		expectedError error
	}{
		{
			name:          "success",
			list:          `[{"id":5},{"id":2},{"id":9}]`,
			reorderer:     &mockReorderer{},
			expectedIDs:   []int64{5, 2, 9},
			expectedCalls: 1,
		},
		{
			name:          "malformed list writes nothing",
			list:          `[{"id":5},`,
			reorderer:     &mockReorderer{},
			expectedCalls: 0,
			expectedError: ordering.ErrMalformedPayload,
		},
		{
			name:          "store failure",
			list:          `[{"id":5}]`,
			reorderer:     &mockReorderer{err: errors.New("database error")},
			expectedIDs:   []int64{5},
			expectedCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewOrderService(tt.reorderer)
			scope := ordering.Scope{"page_id": int64(3)}

			result, err := svc.Reorder(context.Background(), ordering.PageSections, scope, []byte(tt.list))

			assert.Equal(t, tt.expectedCalls, tt.reorderer.calls)
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				return
			}
			if tt.reorderer.err != nil {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectedIDs, result.Ranked)
			assert.Equal(t, ordering.PageSections, tt.reorderer.target)
			assert.Equal(t, scope, tt.reorderer.scope)
		})
	}
}
