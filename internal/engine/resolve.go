package engine

import (
	"context"

	"go.uber.org/zap"

	"github.com/jonathan/group-matcher/internal/types"
)

// AutoResolve runs the full pipeline: staff existing groups, form new groups
// from whoever is left, then hand out topics. Results accumulate across
// phases; a failing phase returns what was committed so far along with the
// error. Cached unassigned-student data is invalidated between phases once
// any assignment has been written, so each phase reads fresh state.
func (e *Engine) AutoResolve(ctx context.Context, semesterID, majorID string) (*types.AssignResult, error) {
	result := &types.AssignResult{}

	staffed, err := e.AssignExistingGroups(ctx, semesterID, majorID)
	result.Merge(staffed)
	if err != nil {
		return result, err
	}
	if staffed != nil && len(staffed.Assignments) > 0 {
		e.reader.InvalidateUnassigned(semesterID)
	}

	formed, err := e.CreateGroupsFromLeftovers(ctx, semesterID, majorID)
	result.Merge(formed)
	if err != nil {
		return result, err
	}
	if formed != nil && len(formed.Assignments) > 0 {
		e.reader.InvalidateUnassigned(semesterID)
	}

	topics, err := e.AssignTopics(ctx, semesterID, majorID)
	result.Merge(topics)
	if err != nil {
		return result, err
	}

	e.logger.Info("auto-resolve complete",
		zap.String("semester_id", semesterID),
		zap.Int("assignments", len(result.Assignments)),
		zap.Int("created_groups", len(result.CreatedGroups)),
		zap.Int("topic_assignments", len(result.TopicAssignments)),
		zap.Int("issues", len(result.Issues)),
	)
	return result, nil
}
