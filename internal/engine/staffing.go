package engine

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/jonathan/group-matcher/internal/pool"
	"github.com/jonathan/group-matcher/internal/rerank"
	"github.com/jonathan/group-matcher/internal/scoring"
	"github.com/jonathan/group-matcher/internal/skills"
	"github.com/jonathan/group-matcher/internal/types"
)

// nextCandidate picks the next student for a group. With a ranker attached it
// asks the ranking service to pick from a bounded sample; any failure other
// than context cancellation falls back to the deterministic dequeue. The
// returned selection is already removed from the pool; nil means the pool is
// empty.
func (e *Engine) nextCandidate(ctx context.Context, p *pool.RolePools, state *groupState, groupSkills skills.Profile) (*pool.Selection, error) {
	needed := scoring.NeededRole(state.mix)
	avoidHigh := state.highAssigned > 0

	if e.ranker == nil {
		return p.DequeueForGroup(needed, avoidHigh), nil
	}

	sample := buildSample(p, needed, avoidHigh, e.cfg.SampleSize)
	if len(sample) == 0 {
		return p.DequeueForGroup(needed, avoidHigh), nil
	}

	req := &rerank.Request{
		QueryType:  "staffing",
		QueryText:  groupNeedsText(state.snapshot, state.mix, groupSkills),
		Candidates: make([]rerank.Candidate, 0, len(sample)),
		Context: rankContext(map[string]string{
			"group_skills": groupSkills.QueryText(),
			"major":        state.snapshot.MajorID,
		}),
	}
	for _, sel := range sample {
		profile := skills.FromStudent(sel.Student)
		req.Candidates = append(req.Candidates, rerank.Candidate{
			Key:   sel.Student.ID,
			ID:    sel.Student.ID,
			Title: sel.Student.Name,
			Text:  candidateText(sel.Student, profile),
		})
	}

	resp, err := e.ranker.Rank(ctx, req)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		e.logger.Warn("staffing rank call failed, using deterministic pick",
			zap.String("group_id", state.snapshot.ID),
			zap.Error(err),
		)
		return p.DequeueForGroup(needed, avoidHigh), nil
	}

	if id := bestSampledID(resp, sample); id != "" {
		if sel := p.DequeueSpecific(id); sel != nil {
			return sel, nil
		}
	}
	return p.DequeueForGroup(needed, avoidHigh), nil
}

// buildSample peeks up to size students for the ranking service, biased
// toward the role the group lacks with a backup slice of "other" students.
// When one high-GPA member is already placed, high-GPA students drop out of
// the sample as long as anyone else remains.
func buildSample(p *pool.RolePools, needed types.Role, avoidHigh bool, size int) []pool.Selection {
	var sample []pool.Selection
	if needed.Known() && needed != types.RoleOther {
		sample = p.Peek(needed, size*3/4)
		sample = append(sample, p.Peek(types.RoleOther, size-len(sample))...)
	} else {
		per := size / 3
		if per < 1 {
			per = 1
		}
		for _, role := range []types.Role{types.RoleFrontend, types.RoleBackend, types.RoleOther} {
			sample = append(sample, p.Peek(role, per)...)
		}
	}
	if len(sample) > size {
		sample = sample[:size]
	}

	if avoidHigh {
		nonHigh := make([]pool.Selection, 0, len(sample))
		for _, sel := range sample {
			if !sel.HighGPA {
				nonHigh = append(nonHigh, sel)
			}
		}
		if len(nonHigh) > 0 {
			sample = nonHigh
		}
	}
	return sample
}

// bestSampledID returns the highest-scored response key that names a sampled
// student, or "" when the response addresses none of them.
func bestSampledID(resp *rerank.Response, sample []pool.Selection) string {
	if resp == nil {
		return ""
	}
	sampled := make(map[string]bool, len(sample))
	for _, sel := range sample {
		sampled[sel.Student.ID] = true
	}

	bestID := ""
	bestScore := 0.0
	for _, item := range resp.Items {
		if !sampled[item.Key] {
			continue
		}
		if bestID == "" || item.FinalScore > bestScore {
			bestID = item.Key
			bestScore = item.FinalScore
		}
	}
	return bestID
}

// staffingIssueReason maps a group's stop cause to its reported reason,
// consulting the pool for the candidate-shortage distinctions.
func staffingIssueReason(state *groupState, p *pool.RolePools) string {
	switch state.stop {
	case stopRunLimit:
		return types.ReasonRunLimitReached
	case stopPolicyMax:
		return types.ReasonAtPolicyMax
	case stopPoolExhausted:
		return types.ReasonMajorExhausted
	default:
		if p.RemainingCount() == 0 {
			return types.ReasonMajorExhausted
		}
		if needed := scoring.NeededRole(state.mix); needed.Known() && p.RemainingInRole(needed) == 0 {
			return types.ReasonNeededRoleExhausted
		}
		return types.ReasonNoSuitableCandidate
	}
}
