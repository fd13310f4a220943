package rerank

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"
)

// Options configures one rerank pass for a suggestion type T.
type Options[T any] struct {
	// QueryType and QueryText describe what is being ranked, for the service.
	QueryType string
	QueryText string
	// Context carries short free-form hints (group needs, policy notes).
	Context map[string]string
	// Build produces the candidate record for one suggestion. A blank Key is
	// replaced with a stable per-call default.
	Build func(T) Candidate
	// Project merges one ranked item back into its suggestion, applying the
	// suggestion kind's precedence rules for score, reason, and skills.
	Project func(T, RankedItem) T
	// Heuristic reads the deterministic fallback score of a suggestion.
	Heuristic func(T) float64
	// RequireReason drops suggestions the service did not address at all,
	// keeping the returned batch internally comparable.
	RequireReason bool
}

// Rerank sends the top poolSize suggestions (by heuristic score) to the
// ranking service and reorders them by the fused rank score. Every failure
// mode except context cancellation degrades to the heuristic ordering.
func Rerank[T any](ctx context.Context, client Client, logger *zap.Logger, poolSize int, opts Options[T], items []T) ([]T, error) {
	if len(items) == 0 {
		return items, nil
	}

	pool := topByHeuristic(items, poolSize, opts.Heuristic)
	if client == nil {
		return pool, nil
	}

	req := &Request{
		QueryType:  opts.QueryType,
		QueryText:  opts.QueryText,
		Context:    opts.Context,
		Candidates: make([]Candidate, 0, len(pool)),
	}
	for i, item := range pool {
		candidate := opts.Build(item)
		if candidate.Key == "" {
			candidate.Key = fmt.Sprintf("c%d", i+1)
		}
		req.Candidates = append(req.Candidates, candidate)
	}

	resp, err := client.Rank(ctx, req)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		logger.Warn("rerank call failed, keeping heuristic order",
			zap.String("query_type", opts.QueryType),
			zap.Int("candidates", len(req.Candidates)),
			zap.Error(err),
		)
		return pool, nil
	}
	if resp == nil || len(resp.Items) == 0 {
		logger.Debug("rerank returned no items, keeping heuristic order",
			zap.String("query_type", opts.QueryType))
		return pool, nil
	}

	byKey := make(map[string]RankedItem, len(resp.Items))
	for _, item := range resp.Items {
		byKey[item.Key] = item
	}

	type scored struct {
		item T
		rank float64
	}
	fused := make([]scored, 0, len(pool))
	matchedAny := false
	for i, item := range pool {
		fallback := opts.Heuristic(item)
		ranked, found := byKey[req.Candidates[i].Key]
		if !found {
			if opts.RequireReason {
				continue
			}
			fused = append(fused, scored{item: item, rank: fallback})
			continue
		}
		matchedAny = true
		projected := opts.Project(item, ranked)
		fused = append(fused, scored{item: projected, rank: sanitizeScore(ranked.FinalScore, fallback)})
	}

	// A response that addresses none of our keys is as good as no response.
	if !matchedAny {
		logger.Debug("rerank response matched no candidate keys, keeping heuristic order",
			zap.String("query_type", opts.QueryType))
		return pool, nil
	}

	sort.SliceStable(fused, func(i, j int) bool { return fused[i].rank > fused[j].rank })

	out := make([]T, len(fused))
	for i, s := range fused {
		out[i] = s.item
	}
	return out, nil
}

// topByHeuristic returns up to n items with the highest heuristic scores,
// ordered descending. The sort is stable so equal scores keep input order.
func topByHeuristic[T any](items []T, n int, heuristic func(T) float64) []T {
	sorted := make([]T, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool { return heuristic(sorted[i]) > heuristic(sorted[j]) })
	if n > 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// sanitizeScore substitutes the fallback for NaN or infinite service scores.
func sanitizeScore(score, fallback float64) float64 {
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return fallback
	}
	return score
}
