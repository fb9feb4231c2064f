// Package ordering persists client-submitted orderings of ranked collections
package ordering

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Store writes ranks. SetRank reports false when no row with the id (inside scope) exists.
type Store interface {
	SetRank(ctx context.Context, target Target, id int64, rank int, scope Scope) (bool, error)
}

// Observer receives the outcome of every reorder
type Observer interface {
	ObserveReorder(target string, ranked, skipped int)
}

// Result lists the ids that received a rank and the ids that were not found
type Result struct {
	Ranked  []int64 `json:"ranked"`
	Skipped []int64 `json:"skipped"`
}

// Reranker rewrites the rank of every item of a submitted ordering
type Reranker struct {
	store      Store
	scopeCheck bool
	logger     *zap.Logger
	observer   Observer
}

// NewReranker creates a new reranker.
// With scopeCheck disabled, items are looked up by id alone and the scope is ignored.
func NewReranker(store Store, scopeCheck bool, logger *zap.Logger) *Reranker {
	return &Reranker{
		store:      store,
		scopeCheck: scopeCheck,
		logger:     logger,
	}
}

// SetObserver reports every reorder to o
func (r *Reranker) SetObserver(o Observer) {
	r.observer = o
}

// ScopeCheck reports whether ids outside the route scope are skipped
func (r *Reranker) ScopeCheck() bool {
	return r.scopeCheck
}

// Reorder gives ids[i] the rank i+1. Unknown ids are skipped and listed in the result.
// Items are written one by one; a storage error stops the loop and is returned together
// with the result of the items already written.
func (r *Reranker) Reorder(ctx context.Context, target Target, scope Scope, ids []int64) (*Result, error) {
	if err := target.Validate(); err != nil {
		return nil, err
	}

	var constraint Scope
	if r.scopeCheck {
		constraint = scope
	}

	result := &Result{Ranked: []int64{}, Skipped: []int64{}}
	for i, id := range ids {
		found, err := r.store.SetRank(ctx, target, id, i+1, constraint)
		if err != nil {
			r.logger.Error("failed to set rank",
				zap.Error(err),
				zap.String("target", target.Name),
				zap.Int64("id", id),
				zap.Int("rank", i+1),
			)
			r.observe(target, result)
			return result, fmt.Errorf("failed to rank %s item %d: %w", target.Name, id, err)
		}
		if !found {
			result.Skipped = append(result.Skipped, id)
			continue
		}
		result.Ranked = append(result.Ranked, id)
	}

	if len(result.Skipped) > 0 {
		r.logger.Debug("reorder skipped unknown items",
			zap.String("target", target.Name),
			zap.Int64s("skipped", result.Skipped),
		)
	}
	r.observe(target, result)
	return result, nil
}

func (r *Reranker) observe(target Target, result *Result) {
	if r.observer != nil {
		r.observer.ObserveReorder(target.Name, len(result.Ranked), len(result.Skipped))
	}
}
