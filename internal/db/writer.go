package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/group-matcher/internal/types"
)

// AddGroupMember writes one group membership.
func (s *Store) AddGroupMember(ctx context.Context, groupID, userID, semesterID, status string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO group_members (group_id, user_id, semester_id, status)
		 VALUES ($1, $2, $3, $4)`,
		groupID, userID, semesterID, status,
	)
	if err != nil {
		return fmt.Errorf("failed to add member %s to group %s: %w", userID, groupID, err)
	}
	return nil
}

// AddGroupMembers bulk-inserts memberships with one status via COPY.
func (s *Store) AddGroupMembers(ctx context.Context, groupID, semesterID string, userIDs []string, status string) error {
	if len(userIDs) == 0 {
		return nil
	}

	rows := make([][]any, 0, len(userIDs))
	for _, userID := range userIDs {
		rows = append(rows, []any{groupID, userID, semesterID, status})
	}

	_, err := s.pool.CopyFrom(ctx,
		pgx.Identifier{"group_members"},
		[]string{"group_id", "user_id", "semester_id", "status"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("failed to bulk-add members to group %s: %w", groupID, err)
	}
	return nil
}

// CreateGroup creates a group and returns its new ID.
func (s *Store) CreateGroup(ctx context.Context, group types.NewGroup) (string, error) {
	id := uuid.New().String()
	_, err := s.pool.Exec(ctx,
		`INSERT INTO groups (id, semester_id, major_id, name, description, max_members, skills_payload, status)
		 VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, 'forming')`,
		id, group.SemesterID, group.MajorID, group.Name, group.Description, group.MaxMembers, group.SkillsPayload,
	)
	if err != nil {
		return "", fmt.Errorf("failed to create group %q: %w", group.Name, err)
	}
	return id, nil
}

// UpdateGroupCapacity persists a group's adjusted maximum size.
func (s *Store) UpdateGroupCapacity(ctx context.Context, groupID string, maxMembers int) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE groups SET max_members = $1, updated_at = NOW() WHERE id = $2`,
		maxMembers, groupID,
	)
	if err != nil {
		return fmt.Errorf("failed to update capacity of group %s: %w", groupID, err)
	}
	return nil
}

// AssignTopicToGroup attaches a topic to a group.
func (s *Store) AssignTopicToGroup(ctx context.Context, groupID, topicID string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE groups SET topic_id = $1, updated_at = NOW() WHERE id = $2`,
		topicID, groupID,
	)
	if err != nil {
		return fmt.Errorf("failed to assign topic %s to group %s: %w", topicID, groupID, err)
	}
	return nil
}

// SetGroupStatus updates a group's lifecycle status.
func (s *Store) SetGroupStatus(ctx context.Context, groupID, status string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE groups SET status = $1, updated_at = NOW() WHERE id = $2`,
		status, groupID,
	)
	if err != nil {
		return fmt.Errorf("failed to set status of group %s: %w", groupID, err)
	}
	return nil
}

// SetTopicStatus updates a topic's lifecycle status.
func (s *Store) SetTopicStatus(ctx context.Context, topicID, status string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE topics SET status = $1, updated_at = NOW() WHERE id = $2`,
		status, topicID,
	)
	if err != nil {
		return fmt.Errorf("failed to set status of topic %s: %w", topicID, err)
	}
	return nil
}

// DeletePersonalPostsForUser removes a newly assigned student's personal
// posts for the semester.
func (s *Store) DeletePersonalPostsForUser(ctx context.Context, userID, semesterID string) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM profile_posts WHERE user_id = $1 AND semester_id = $2`,
		userID, semesterID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete posts of user %s: %w", userID, err)
	}
	return nil
}

// CloseOpenPostsForGroup closes a group's open recruitment posts.
func (s *Store) CloseOpenPostsForGroup(ctx context.Context, groupID string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE recruitment_posts SET status = 'closed', updated_at = NOW()
		 WHERE group_id = $1 AND status = 'open'`,
		groupID,
	)
	if err != nil {
		return fmt.Errorf("failed to close posts of group %s: %w", groupID, err)
	}
	return nil
}
