package services

import (
	"context"

	"github.com/sitepanel/backend/internal/ordering"
)

// Reorderer is the interface that wraps the rank rewrite of an ordered collection
type Reorderer interface {
	// Method Reorder gives ids[i] the rank i+1 inside target. Unknown ids are skipped.
	Reorder(ctx context.Context, target ordering.Target, scope ordering.Scope, ids []int64) (*ordering.Result, error)
}

type orderService struct {
	reranker Reorderer
}

// NewOrderService creates a new order service
func NewOrderService(reranker Reorderer) *orderService {
	return &orderService{
		reranker: reranker,
	}
}

// Reorder decodes a submitted ordering and applies it to target.
// A malformed list fails with ordering.ErrMalformedPayload before anything is written.
func (s *orderService) Reorder(ctx context.Context, target ordering.Target, scope ordering.Scope, list []byte) (*ordering.Result, error) {
	ids, err := ordering.DecodeList(list)
	if err != nil {
		return nil, err
	}
	return s.reranker.Reorder(ctx, target, scope, ids)
}
