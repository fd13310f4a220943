// Package shortlist narrows candidate sets through an external semantic
// search service before heuristic scoring. The gate is fail-open: a search
// failure or a useless result leaves the candidate set untouched. Context
// cancellation is the one exception and always surfaces as an error.
package shortlist

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// Query describes one semantic search call.
type Query struct {
	Text       string
	Type       string
	SemesterID string
	MajorID    string
	Limit      int
}

// Searcher is the external vector-search collaborator. It returns entity IDs
// ordered best-to-worst; an empty result is a valid "no shortlist" answer.
type Searcher interface {
	Search(ctx context.Context, q Query) ([]string, error)
}

// Apply filters source down to the entities the search service returned,
// preserving the source's relative order. The source is returned unchanged
// when the query text is empty, the source is empty, the search fails, or the
// returned IDs have zero overlap with the source (never shrink to nothing).
// Cancellation propagates instead of failing open.
func Apply[T any](ctx context.Context, searcher Searcher, logger *zap.Logger, q Query, source []T, idOf func(T) string) ([]T, error) {
	if searcher == nil || q.Text == "" || len(source) == 0 {
		return source, nil
	}

	ids, err := searcher.Search(ctx, q)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		logger.Warn("semantic shortlist failed, using unfiltered candidates",
			zap.String("type", q.Type),
			zap.Error(err),
		)
		return source, nil
	}
	if len(ids) == 0 {
		return source, nil
	}

	idSet := make(map[string]bool, len(ids))
	for _, id := range ids {
		idSet[id] = true
	}

	filtered := make([]T, 0, len(source))
	for _, item := range source {
		if idSet[idOf(item)] {
			filtered = append(filtered, item)
		}
	}
	if len(filtered) == 0 {
		logger.Debug("semantic shortlist had no overlap with candidates",
			zap.String("type", q.Type),
			zap.Int("returned_ids", len(ids)),
		)
		return source, nil
	}
	return filtered, nil
}
