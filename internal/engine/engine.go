package engine

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/group-matcher/internal/config"
	"github.com/jonathan/group-matcher/internal/pool"
	"github.com/jonathan/group-matcher/internal/rerank"
	"github.com/jonathan/group-matcher/internal/scoring"
	"github.com/jonathan/group-matcher/internal/shortlist"
	"github.com/jonathan/group-matcher/internal/types"
)

// Engine coordinates matching and auto-assignment. The ranker and searcher
// are optional: without them every decision falls back to the deterministic
// heuristics.
type Engine struct {
	reader   Reader
	writer   Writer
	searcher shortlist.Searcher
	ranker   rerank.Client
	cfg      *config.Config
	logger   *zap.Logger
}

// Option customizes an Engine.
type Option func(*Engine)

// WithSearcher attaches the semantic-search collaborator.
func WithSearcher(s shortlist.Searcher) Option {
	return func(e *Engine) { e.searcher = s }
}

// WithRanker attaches the external ranking collaborator.
func WithRanker(c rerank.Client) Option {
	return func(e *Engine) { e.ranker = c }
}

// New creates an engine over the given collaborators.
func New(reader Reader, writer Writer, cfg *config.Config, logger *zap.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{reader: reader, writer: writer, cfg: cfg, logger: logger}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) bounds(b config.ScorerBounds) scoring.Bounds {
	return scoring.Bounds{Threshold: b.Threshold, Max: b.Max}
}

func (e *Engine) tierConfig() pool.TierConfig {
	return pool.TierConfig{
		Percentile: e.cfg.GPAPercentile,
		MinSamples: e.cfg.GPAMinSamples,
		LowOffset:  e.cfg.GPALowOffset,
	}
}

// staffingSnapshot is everything the staffing phase reads up front.
type staffingSnapshot struct {
	policy   types.GroupPolicy
	students []types.StudentSnapshot
	groups   []types.GroupSnapshot
	mixes    types.RoleMixSet
}

// loadStaffingSnapshot fetches the phase inputs, with the two independent
// list reads issued concurrently.
func (e *Engine) loadStaffingSnapshot(ctx context.Context, semesterID, majorID string) (*staffingSnapshot, error) {
	policy, err := e.reader.ActivePolicy(ctx, semesterID)
	if err != nil {
		return nil, fmt.Errorf("failed to load group-size policy: %w", err)
	}
	if policy.MaxSize <= 0 {
		return nil, ErrSemesterPolicyMissing
	}
	snap := &staffingSnapshot{policy: policy.Normalized()}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		students, err := e.reader.UnassignedStudents(gctx, semesterID, majorID)
		if err != nil {
			return fmt.Errorf("failed to load unassigned students: %w", err)
		}
		snap.students = students
		return nil
	})
	g.Go(func() error {
		groups, err := e.reader.GroupCapacities(gctx, semesterID, majorID)
		if err != nil {
			return fmt.Errorf("failed to load group capacities: %w", err)
		}
		snap.groups = groups
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(snap.groups))
	for _, group := range snap.groups {
		ids = append(ids, group.ID)
	}
	if len(ids) > 0 {
		mixes, err := e.reader.GroupRoleMixes(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("failed to load group role mixes: %w", err)
		}
		snap.mixes = mixes
	}
	return snap, nil
}

// poolsByMajor builds one role pool per major from the unassigned students.
func (e *Engine) poolsByMajor(students []types.StudentSnapshot) map[string]*pool.RolePools {
	byMajor := make(map[string][]types.StudentSnapshot)
	for _, student := range students {
		byMajor[student.MajorID] = append(byMajor[student.MajorID], student)
	}

	pools := make(map[string]*pool.RolePools, len(byMajor))
	for majorID, list := range byMajor {
		pools[majorID] = pool.New(list, e.tierConfig())
	}
	return pools
}

// sortedMajors returns map keys in a stable order so runs are reproducible.
func sortedMajors[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
