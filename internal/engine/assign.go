package engine

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/jonathan/group-matcher/internal/pool"
	"github.com/jonathan/group-matcher/internal/skills"
	"github.com/jonathan/group-matcher/internal/types"
)

// AssignExistingGroups fills under-capacity groups with unassigned students
// from the same major. Groups needing the most members are staffed first, and
// a run-wide budget limits how many extra seats may be granted beyond stored
// capacities. Write failures abort the phase; earlier writes stay committed
// and are reflected in the returned result.
func (e *Engine) AssignExistingGroups(ctx context.Context, semesterID, majorID string) (*types.AssignResult, error) {
	snap, err := e.loadStaffingSnapshot(ctx, semesterID, majorID)
	if err != nil {
		return nil, err
	}

	result := &types.AssignResult{}
	pools := e.poolsByMajor(snap.students)

	// Neediest groups first so scarce candidates go where the gap is widest.
	groups := make([]types.GroupSnapshot, len(snap.groups))
	copy(groups, snap.groups)
	sort.SliceStable(groups, func(i, j int) bool {
		if a, b := groups[i].RemainingSlots(), groups[j].RemainingSlots(); a != b {
			return a > b
		}
		return groups[i].Name < groups[j].Name
	})

	budget := e.cfg.RunLimit
	states := make([]*groupState, 0, len(groups))

	for _, group := range groups {
		state := newGroupState(group, snap.mixes.MixFor(group.ID))
		states = append(states, state)

		p := pools[group.MajorID]
		if p == nil {
			p = pool.New(nil, e.tierConfig())
			pools[group.MajorID] = p
		}

		if err := e.staffGroup(ctx, semesterID, state, p, snap.policy, &budget, result); err != nil {
			return result, err
		}
	}

	// One capacity write per group, after clamping into the policy range and
	// releasing expanded seats no remaining candidate can fill.
	for _, state := range states {
		state.ensurePolicyRange(snap.policy.MinSize, snap.policy.MaxSize)
		if p := pools[state.snapshot.MajorID]; p != nil && p.RemainingCount() == 0 {
			state.shrinkToFit(snap.policy.MinSize)
		}
		if state.capacityDirty {
			if err := e.writer.UpdateGroupCapacity(ctx, state.snapshot.ID, state.maxMembers); err != nil {
				return result, fmt.Errorf("failed to update capacity of group %s: %w", state.snapshot.ID, err)
			}
		}

		if state.remaining == 0 {
			// Only groups this run actually filled get the close/activate
			// treatment; groups that arrived full stay untouched.
			if state.placed > 0 {
				if err := e.finalizeFullGroup(ctx, state); err != nil {
					return result, err
				}
			}
			continue
		}
		result.Issues = append(result.Issues, types.Issue{
			EntityID:   state.snapshot.ID,
			EntityKind: types.EntityKindGroup,
			Reason:     staffingIssueReason(state, pools[state.snapshot.MajorID]),
		})
	}

	e.logger.Info("staffed existing groups",
		zap.String("semester_id", semesterID),
		zap.Int("assignments", len(result.Assignments)),
		zap.Int("issues", len(result.Issues)),
	)
	return result, nil
}

// staffGroup runs one group's fill loop until it fills, the major's pool
// drains, or a limit stops it. The budget is shared across the whole run:
// every assignment consumes one unit, and a group at its stored maximum may
// expand toward the policy maximum by at most the remaining budget.
func (e *Engine) staffGroup(ctx context.Context, semesterID string, state *groupState, p *pool.RolePools, policy types.GroupPolicy, budget *int, result *types.AssignResult) error {
	groupSkills := e.groupProfile(ctx, state.snapshot.ID)

	for {
		if *budget <= 0 {
			state.stopAt(stopRunLimit)
			return nil
		}
		if p.RemainingCount() == 0 {
			if state.remaining > 0 {
				state.stopAt(stopPoolExhausted)
			}
			return nil
		}

		if state.remaining == 0 {
			if state.tryExpand(policy.MaxSize, *budget) == 0 {
				state.stopAt(stopPolicyMax)
				return nil
			}
		}

		sel, err := e.nextCandidate(ctx, p, state, groupSkills)
		if err != nil {
			return err
		}
		if sel == nil {
			state.stopAt(stopNoCandidate)
			return nil
		}

		if err := e.placeStudent(ctx, semesterID, state, sel, result); err != nil {
			return err
		}
		*budget--
		groupSkills = groupSkills.Merge(skills.FromStudent(sel.Student))
	}
}

// placeStudent writes one membership and its cleanup, then updates the
// in-memory state and result.
func (e *Engine) placeStudent(ctx context.Context, semesterID string, state *groupState, sel *pool.Selection, result *types.AssignResult) error {
	if err := e.writer.AddGroupMember(ctx, state.snapshot.ID, sel.Student.ID, semesterID, types.MemberStatusMember); err != nil {
		return fmt.Errorf("failed to add student %s to group %s: %w", sel.Student.ID, state.snapshot.ID, err)
	}
	if err := e.writer.DeletePersonalPostsForUser(ctx, sel.Student.ID, semesterID); err != nil {
		return fmt.Errorf("failed to clear posts of student %s: %w", sel.Student.ID, err)
	}

	state.apply(sel.Role, sel.HighGPA)
	result.Assignments = append(result.Assignments, types.Assignment{
		StudentID:   sel.Student.ID,
		StudentName: sel.Student.Name,
		GroupID:     state.snapshot.ID,
		GroupName:   state.snapshot.Name,
		Role:        sel.Role,
	})
	return nil
}

// finalizeFullGroup closes a filled group's recruitment posts and activates
// it when it already has both a topic and a mentor.
func (e *Engine) finalizeFullGroup(ctx context.Context, state *groupState) error {
	if err := e.writer.CloseOpenPostsForGroup(ctx, state.snapshot.ID); err != nil {
		return fmt.Errorf("failed to close posts of group %s: %w", state.snapshot.ID, err)
	}

	if state.snapshot.TopicID == "" {
		return nil
	}
	mentor, err := e.reader.GroupMentor(ctx, state.snapshot.ID)
	if err != nil {
		e.logger.Warn("failed to look up group mentor, skipping activation",
			zap.String("group_id", state.snapshot.ID),
			zap.Error(err),
		)
		return nil
	}
	if mentor == "" {
		return nil
	}
	if err := e.writer.SetGroupStatus(ctx, state.snapshot.ID, types.GroupStatusActive); err != nil {
		return fmt.Errorf("failed to activate group %s: %w", state.snapshot.ID, err)
	}
	return nil
}
