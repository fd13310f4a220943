package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/group-matcher/internal/types"
)

func topicStore() *fakeStore {
	store := newFakeStore()
	store.groups = []types.GroupSnapshot{
		{ID: "g1", SemesterID: "sem1", MajorID: "se", Name: "Alpha", MaxMembers: 4, CurrentMembers: 4},
	}
	store.memberSkills["g1"] = []string{`{"role":"backend","skills":["Go","PostgreSQL"]}`}
	store.topics = []types.TopicSnapshot{
		{ID: "t1", SemesterID: "sem1", MajorID: "se", Title: "Payments Platform",
			SkillsPayload: `{"skills":["Go","PostgreSQL","Docker"]}`, GroupCapacity: 1},
		{ID: "t2", SemesterID: "sem1", MajorID: "se", Title: "Analytics Dashboard",
			SkillsPayload: `{"skills":["Go"]}`, GroupCapacity: 1},
	}
	store.topicMentors["t1"] = "mentor-1"
	store.topicMentors["t2"] = "mentor-2"
	return store
}

func TestAssignTopics_BestTopicWinsAndCloses(t *testing.T) {
	store := topicStore()

	result, err := newTestEngine(store).AssignTopics(context.Background(), "sem1", "")
	require.NoError(t, err)

	require.Len(t, result.TopicAssignments, 1)
	assert.Equal(t, "t1", result.TopicAssignments[0].TopicID)
	assert.Equal(t, "g1", result.TopicAssignments[0].GroupID)
	assert.Equal(t, "t1", store.topicAssigns["g1"])
	// The topic's only slot is taken, so it closes.
	assert.Equal(t, types.TopicStatusClosed, store.topicStatus["t1"])
	assert.Empty(t, store.topicStatus["t2"])
}

func TestAssignTopics_FullGroupIsActivated(t *testing.T) {
	store := topicStore()

	_, err := newTestEngine(store).AssignTopics(context.Background(), "sem1", "")
	require.NoError(t, err)
	assert.Equal(t, types.GroupStatusActive, store.groupStatus["g1"])
}

func TestAssignTopics_UnderCapacityGroupNotActivated(t *testing.T) {
	store := topicStore()
	store.groups[0].CurrentMembers = 2

	_, err := newTestEngine(store).AssignTopics(context.Background(), "sem1", "")
	require.NoError(t, err)
	assert.Empty(t, store.groupStatus)
}

func TestAssignTopics_SkipsGroupsWithTopic(t *testing.T) {
	store := topicStore()
	store.groups[0].TopicID = "existing"

	result, err := newTestEngine(store).AssignTopics(context.Background(), "sem1", "")
	require.NoError(t, err)
	assert.Empty(t, result.TopicAssignments)
	assert.Empty(t, result.Issues)
}

func TestAssignTopics_ContentionLeavesSecondGroupWithout(t *testing.T) {
	store := topicStore()
	store.topics = store.topics[:1] // only t1 remains
	store.groups = append(store.groups, types.GroupSnapshot{
		ID: "g2", SemesterID: "sem1", MajorID: "se", Name: "Beta", MaxMembers: 4, CurrentMembers: 4,
	})
	store.memberSkills["g2"] = []string{`{"role":"backend","skills":["Go","PostgreSQL"]}`}

	result, err := newTestEngine(store).AssignTopics(context.Background(), "sem1", "")
	require.NoError(t, err)

	// Alphabetical order: Alpha takes the only topic, Beta reports the miss.
	require.Len(t, result.TopicAssignments, 1)
	assert.Equal(t, "g1", result.TopicAssignments[0].GroupID)
	require.Len(t, result.Issues, 1)
	assert.Equal(t, "g2", result.Issues[0].EntityID)
	assert.Equal(t, types.ReasonNoTopicAboveCutoff, result.Issues[0].Reason)
}

func TestAssignTopics_NoTopicAboveCutoff(t *testing.T) {
	store := topicStore()
	store.memberSkills["g1"] = nil // no overlap, major match alone scores below threshold
	store.topics = []types.TopicSnapshot{
		{ID: "t1", SemesterID: "sem1", MajorID: "cs", Title: "Compilers", GroupCapacity: 1},
	}

	result, err := newTestEngine(store).AssignTopics(context.Background(), "sem1", "")
	require.NoError(t, err)

	assert.Empty(t, result.TopicAssignments)
	require.Len(t, result.Issues, 1)
	assert.Equal(t, types.ReasonNoTopicAboveCutoff, result.Issues[0].Reason)
}

func TestAssignTopic_GroupNotFound(t *testing.T) {
	store := topicStore()
	_, err := newTestEngine(store).AssignTopic(context.Background(), "missing", "t1")
	assert.ErrorIs(t, err, ErrGroupNotFound)
}

func TestAssignTopic_GroupAlreadyHasTopic(t *testing.T) {
	store := topicStore()
	store.groups[0].TopicID = "existing"

	_, err := newTestEngine(store).AssignTopic(context.Background(), "g1", "t1")
	assert.ErrorIs(t, err, ErrGroupHasTopic)
	assert.Empty(t, store.topicAssigns)
}

func TestAssignTopic_TopicNotFound(t *testing.T) {
	store := topicStore()
	_, err := newTestEngine(store).AssignTopic(context.Background(), "g1", "missing")
	assert.ErrorIs(t, err, ErrTopicNotFound)
}

func TestAssignTopic_TopicFull(t *testing.T) {
	store := topicStore()
	store.topics[0].AssignedGroups = 1 // t1's single slot is taken

	_, err := newTestEngine(store).AssignTopic(context.Background(), "g1", "t1")
	assert.ErrorIs(t, err, ErrTopicFull)
	assert.Empty(t, store.topicAssigns)
}

func TestAssignTopic_AssignsClosesAndActivates(t *testing.T) {
	store := topicStore()

	assignment, err := newTestEngine(store).AssignTopic(context.Background(), "g1", "t1")
	require.NoError(t, err)

	assert.Equal(t, "g1", assignment.GroupID)
	assert.Equal(t, "t1", assignment.TopicID)
	assert.Equal(t, "Payments Platform", assignment.Title)
	assert.Equal(t, 29, assignment.Score)
	assert.Equal(t, "t1", store.topicAssigns["g1"])
	// The topic's only slot is now taken; the full group inherits t1's mentor.
	assert.Equal(t, types.TopicStatusClosed, store.topicStatus["t1"])
	assert.Equal(t, types.GroupStatusActive, store.groupStatus["g1"])
}

func TestAssignTopic_BelowThresholdStillAssigns(t *testing.T) {
	store := topicStore()
	store.memberSkills["g1"] = nil
	store.topics[0].MajorID = "cs"
	store.topics[0].SkillsPayload = ""

	assignment, err := newTestEngine(store).AssignTopic(context.Background(), "g1", "t1")
	require.NoError(t, err)

	// The caller named the pair, so a weak fit is allowed and scored zero.
	assert.Equal(t, 0, assignment.Score)
	assert.Equal(t, "t1", store.topicAssigns["g1"])
}

func TestAssignTopic_NoMentorSkipsActivation(t *testing.T) {
	store := topicStore()
	delete(store.topicMentors, "t1")

	_, err := newTestEngine(store).AssignTopic(context.Background(), "g1", "t1")
	require.NoError(t, err)

	assert.Equal(t, "t1", store.topicAssigns["g1"])
	assert.Empty(t, store.groupStatus)
}

func TestAssignTopic_GroupMentorSufficesForActivation(t *testing.T) {
	store := topicStore()
	delete(store.topicMentors, "t1")
	store.groupMentors["g1"] = "mentor-9"

	_, err := newTestEngine(store).AssignTopic(context.Background(), "g1", "t1")
	require.NoError(t, err)
	assert.Equal(t, types.GroupStatusActive, store.groupStatus["g1"])
}

func TestAssignTopics_MentorlessTopicIsSoftIssue(t *testing.T) {
	store := topicStore()
	delete(store.topicMentors, "t1")
	store.topics = store.topics[:1]

	result, err := newTestEngine(store).AssignTopics(context.Background(), "sem1", "")
	require.NoError(t, err)

	assert.Empty(t, result.TopicAssignments)
	require.Len(t, result.Issues, 1)
	assert.Equal(t, types.ReasonTopicWithoutMentor, result.Issues[0].Reason)
	assert.Empty(t, store.topicAssigns)
}
