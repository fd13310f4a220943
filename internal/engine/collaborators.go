// Package engine implements the matching and auto-assignment orchestration:
// staffing existing groups, forming new groups from leftover students, and
// assigning topics, with optional AI-assisted ranking layered on top of
// deterministic heuristics.
package engine

import (
	"context"

	"github.com/jonathan/group-matcher/internal/types"
)

// Reader is the data-retrieval collaborator. Snapshots are fetched fresh per
// orchestration call; the engine never caches them itself. An empty majorID
// means "all majors in the semester".
type Reader interface {
	// ActivePolicy returns the semester's group-size policy.
	ActivePolicy(ctx context.Context, semesterID string) (types.GroupPolicy, error)
	// UnassignedStudents lists students without a group.
	UnassignedStudents(ctx context.Context, semesterID, majorID string) ([]types.StudentSnapshot, error)
	// GroupCapacities lists groups with their member counts.
	GroupCapacities(ctx context.Context, semesterID, majorID string) ([]types.GroupSnapshot, error)
	// GroupRoleMixes returns the role mix of each listed group. Missing
	// groups simply have no entry; callers use RoleMixSet.MixFor.
	GroupRoleMixes(ctx context.Context, groupIDs []string) (types.RoleMixSet, error)
	// TopicAvailability lists topics still open for assignment.
	TopicAvailability(ctx context.Context, semesterID, majorID string) ([]types.TopicSnapshot, error)
	// GroupMemberSkills returns the raw skills payloads of a group's members.
	GroupMemberSkills(ctx context.Context, groupID string) ([]string, error)
	// Group fetches one group snapshot.
	Group(ctx context.Context, groupID string) (*types.GroupSnapshot, error)
	// GroupMentor returns the group's mentor ID, or "" when unset.
	GroupMentor(ctx context.Context, groupID string) (string, error)
	// Topic fetches one topic snapshot.
	Topic(ctx context.Context, topicID string) (*types.TopicSnapshot, error)
	// TopicDefaultMentor returns the topic's default mentor ID, or "".
	TopicDefaultMentor(ctx context.Context, topicID string) (string, error)
	// OpenRecruitmentPosts lists groups' open recruitment posts.
	OpenRecruitmentPosts(ctx context.Context, semesterID, majorID string) ([]types.RecruitmentPost, error)
	// OpenProfilePosts lists students' open personal posts.
	OpenProfilePosts(ctx context.Context, semesterID, majorID string) ([]types.ProfilePost, error)
	// InvalidateUnassigned drops any cached unassigned-student data for the
	// semester. Called between phases once assignments have been written.
	InvalidateUnassigned(semesterID string)
}

// Writer is the persistence collaborator. Write failures are not soft: they
// abort the current phase, leaving earlier writes committed.
type Writer interface {
	AddGroupMember(ctx context.Context, groupID, userID, semesterID, status string) error
	// AddGroupMembers bulk-inserts memberships with one status.
	AddGroupMembers(ctx context.Context, groupID, semesterID string, userIDs []string, status string) error
	// CreateGroup creates a group and returns its new ID.
	CreateGroup(ctx context.Context, group types.NewGroup) (string, error)
	UpdateGroupCapacity(ctx context.Context, groupID string, maxMembers int) error
	AssignTopicToGroup(ctx context.Context, groupID, topicID string) error
	SetGroupStatus(ctx context.Context, groupID, status string) error
	SetTopicStatus(ctx context.Context, topicID, status string) error
	// DeletePersonalPostsForUser removes a newly assigned student's stale
	// personal posts.
	DeletePersonalPostsForUser(ctx context.Context, userID, semesterID string) error
	// CloseOpenPostsForGroup closes a fully staffed group's recruitment posts.
	CloseOpenPostsForGroup(ctx context.Context, groupID string) error
}
