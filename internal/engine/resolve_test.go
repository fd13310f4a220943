package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/group-matcher/internal/types"
)

func TestAutoResolve_RunsAllPhases(t *testing.T) {
	store := newFakeStore()
	store.policy = types.GroupPolicy{MinSize: 2, MaxSize: 3}
	store.groups = []types.GroupSnapshot{
		{ID: "g1", SemesterID: "sem1", MajorID: "se", Name: "Alpha", MaxMembers: 3, CurrentMembers: 2},
	}
	store.mixes = types.RoleMixSet{"g1": {Frontend: 1, Backend: 1}}
	store.memberSkills["g1"] = []string{`{"skills":["Go","PostgreSQL"]}`}
	store.students = []types.StudentSnapshot{
		student("s1", "Ana", "se", types.RoleBackend),
		student("s2", "Ben", "se", types.RoleFrontend),
		student("s3", "Cal", "se", types.RoleBackend),
	}
	store.topics = []types.TopicSnapshot{
		{ID: "t1", SemesterID: "sem1", MajorID: "se", Title: "Payments",
			SkillsPayload: `{"skills":["Go","PostgreSQL"]}`, GroupCapacity: 2},
	}
	store.topicMentors["t1"] = "mentor-1"

	result, err := newTestEngine(store).AutoResolve(context.Background(), "sem1", "")
	require.NoError(t, err)

	// Phase 1 fills Alpha's last slot; phase 2 forms one group from the two
	// leftovers; phase 3 hands the topic to Alpha (created groups have no
	// member-skill records in the fake, so they score below the cutoff).
	assert.Len(t, result.Assignments, 3)
	require.Len(t, result.CreatedGroups, 1)
	assert.Equal(t, 2, result.CreatedGroups[0].CurrentMembers)
	require.NotEmpty(t, result.TopicAssignments)
	assert.Equal(t, "g1", result.TopicAssignments[0].GroupID)

	// Both staffing phases wrote assignments, so the cached pool was
	// invalidated after each.
	assert.Equal(t, 2, store.invalidations)
}

func TestAutoResolve_NoInvalidationWithoutAssignments(t *testing.T) {
	store := newFakeStore()

	result, err := newTestEngine(store).AutoResolve(context.Background(), "sem1", "")
	require.NoError(t, err)
	assert.Empty(t, result.Assignments)
	assert.Zero(t, store.invalidations)
}

func TestAutoResolve_PhaseErrorPreservesPartialResult(t *testing.T) {
	store := newFakeStore()
	store.policy = types.GroupPolicy{MinSize: 2, MaxSize: 3}
	store.groups = []types.GroupSnapshot{
		{ID: "g1", SemesterID: "sem1", MajorID: "se", Name: "Alpha", MaxMembers: 3, CurrentMembers: 2},
	}
	store.students = []types.StudentSnapshot{
		student("s1", "Ana", "se", types.RoleBackend),
		student("s2", "Ben", "se", types.RoleFrontend),
		student("s3", "Cal", "se", types.RoleBackend),
	}

	engine := newTestEngine(store)

	// Let phase 1 succeed, then make group creation fail in phase 2.
	store.createErr = errors.New("out of disk")

	result, err := engine.AutoResolve(context.Background(), "sem1", "")
	assert.ErrorContains(t, err, "out of disk")
	assert.Len(t, result.Assignments, 1)
	assert.Empty(t, result.CreatedGroups)
}
