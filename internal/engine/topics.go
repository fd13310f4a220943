package engine

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/jonathan/group-matcher/internal/scoring"
	"github.com/jonathan/group-matcher/internal/types"
)

// AssignTopics gives each in-scope topicless group its best-matching open
// topic. Each assignment consumes one of the topic's group slots; a topic
// stays in the running until its slots run out, at which point it is closed.
// Groups that cannot be matched report soft issues; write failures abort the
// phase.
func (e *Engine) AssignTopics(ctx context.Context, semesterID, majorID string) (*types.AssignResult, error) {
	groups, err := e.reader.GroupCapacities(ctx, semesterID, majorID)
	if err != nil {
		return nil, fmt.Errorf("failed to load groups: %w", err)
	}
	topics, err := e.reader.TopicAvailability(ctx, semesterID, majorID)
	if err != nil {
		return nil, fmt.Errorf("failed to load topic availability: %w", err)
	}

	// Alphabetical order keeps topic contention deterministic across runs.
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].Name < groups[j].Name })

	available := make([]types.TopicSnapshot, len(topics))
	copy(available, topics)

	result := &types.AssignResult{}
	for _, group := range groups {
		if group.TopicID != "" {
			continue
		}
		if err := e.assignTopicToGroup(ctx, group, &available, result); err != nil {
			return result, err
		}
	}

	e.logger.Info("assigned topics",
		zap.String("semester_id", semesterID),
		zap.Int("topic_assignments", len(result.TopicAssignments)),
		zap.Int("issues", len(result.Issues)),
	)
	return result, nil
}

// assignTopicToGroup matches one group against the still-available topics
// and commits the best suggestion.
func (e *Engine) assignTopicToGroup(ctx context.Context, group types.GroupSnapshot, available *[]types.TopicSnapshot, result *types.AssignResult) error {
	profile := e.groupProfile(ctx, group.ID)
	suggestions, err := e.rankTopics(ctx, group, profile, *available)
	if err != nil {
		return err
	}
	if len(suggestions) == 0 {
		result.Issues = append(result.Issues, types.Issue{
			EntityID:   group.ID,
			EntityKind: types.EntityKindGroup,
			Reason:     types.ReasonNoTopicAboveCutoff,
		})
		return nil
	}
	best := suggestions[0]

	mentor, err := e.reader.TopicDefaultMentor(ctx, best.TopicID)
	if err != nil {
		e.logger.Warn("failed to look up topic mentor",
			zap.String("topic_id", best.TopicID),
			zap.Error(err),
		)
		mentor = ""
	}
	if mentor == "" {
		result.Issues = append(result.Issues, types.Issue{
			EntityID:   group.ID,
			EntityKind: types.EntityKindGroup,
			Reason:     types.ReasonTopicWithoutMentor,
		})
		return nil
	}

	if err := e.writer.AssignTopicToGroup(ctx, group.ID, best.TopicID); err != nil {
		return fmt.Errorf("failed to assign topic %s to group %s: %w", best.TopicID, group.ID, err)
	}
	e.consumeTopicSlot(ctx, best.TopicID, available)

	// The topic's default mentor carries over, so a group that is already
	// full becomes active as soon as it has its topic.
	if group.RemainingSlots() == 0 {
		if err := e.writer.SetGroupStatus(ctx, group.ID, types.GroupStatusActive); err != nil {
			return fmt.Errorf("failed to activate group %s: %w", group.ID, err)
		}
	}

	result.TopicAssignments = append(result.TopicAssignments, types.TopicAssignment{
		GroupID: group.ID,
		TopicID: best.TopicID,
		Title:   best.Title,
		Score:   best.Score,
	})
	return nil
}

// AssignTopic attaches one named topic to one named group. Unlike the phase,
// the caller here picks the exact pair, so conflicts surface as errors rather
// than soft issues.
func (e *Engine) AssignTopic(ctx context.Context, groupID, topicID string) (*types.TopicAssignment, error) {
	group, err := e.reader.Group(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to load group %s: %w", groupID, err)
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}
	if group.TopicID != "" {
		return nil, ErrGroupHasTopic
	}

	topic, err := e.reader.Topic(ctx, topicID)
	if err != nil {
		return nil, fmt.Errorf("failed to load topic %s: %w", topicID, err)
	}
	if topic == nil {
		return nil, ErrTopicNotFound
	}
	if topic.Status == types.TopicStatusClosed || topic.OpenSlots() == 0 {
		return nil, ErrTopicFull
	}

	// The fit score is informational here: the caller already chose the pair,
	// so a below-threshold match is allowed and reported as zero.
	score := 0
	profile := e.groupProfile(ctx, group.ID)
	if result, ok := scoring.ScoreGroupTopic(profile, group.MajorID, *topic, topicProfile(*topic), e.bounds(e.cfg.GroupTopic)); ok {
		score = result.Score
	}

	if err := e.writer.AssignTopicToGroup(ctx, group.ID, topic.ID); err != nil {
		return nil, fmt.Errorf("failed to assign topic %s to group %s: %w", topic.ID, group.ID, err)
	}
	if topic.OpenSlots() == 1 {
		if err := e.writer.SetTopicStatus(ctx, topic.ID, types.TopicStatusClosed); err != nil {
			e.logger.Warn("failed to close fully assigned topic",
				zap.String("topic_id", topic.ID),
				zap.Error(err),
			)
		}
	}

	if group.RemainingSlots() == 0 && e.hasMentor(ctx, group.ID, topic.ID) {
		if err := e.writer.SetGroupStatus(ctx, group.ID, types.GroupStatusActive); err != nil {
			return nil, fmt.Errorf("failed to activate group %s: %w", group.ID, err)
		}
	}

	return &types.TopicAssignment{
		GroupID: group.ID,
		TopicID: topic.ID,
		Title:   topic.Title,
		Score:   score,
	}, nil
}

// hasMentor reports whether a group would have a mentor once the topic is
// attached: its own, or the topic's default. Lookup failures degrade to "no
// mentor" so activation is simply skipped.
func (e *Engine) hasMentor(ctx context.Context, groupID, topicID string) bool {
	mentor, err := e.reader.GroupMentor(ctx, groupID)
	if err != nil {
		e.logger.Warn("failed to look up group mentor",
			zap.String("group_id", groupID),
			zap.Error(err),
		)
	}
	if mentor != "" {
		return true
	}
	mentor, err = e.reader.TopicDefaultMentor(ctx, topicID)
	if err != nil {
		e.logger.Warn("failed to look up topic mentor",
			zap.String("topic_id", topicID),
			zap.Error(err),
		)
	}
	return mentor != ""
}

// consumeTopicSlot decrements a topic's availability in the working set and
// closes it once its last group slot is taken. Close failures are soft: the
// in-memory set already excludes the topic for the rest of the run.
func (e *Engine) consumeTopicSlot(ctx context.Context, topicID string, available *[]types.TopicSnapshot) {
	for i := range *available {
		t := &(*available)[i]
		if t.ID != topicID {
			continue
		}
		t.AssignedGroups++
		if t.OpenSlots() == 0 {
			if err := e.writer.SetTopicStatus(ctx, topicID, types.TopicStatusClosed); err != nil {
				e.logger.Warn("failed to close fully assigned topic",
					zap.String("topic_id", topicID),
					zap.Error(err),
				)
			}
		}
		return
	}
}
