package scoring

import (
	"testing"
	"time"

	"github.com/jonathan/group-matcher/internal/skills"
	"github.com/jonathan/group-matcher/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	studentGroupBounds = Bounds{Threshold: 25, Max: 85}
	groupTopicBounds   = Bounds{Threshold: 20, Max: 90}
	postNeedsBounds    = Bounds{Threshold: 25, Max: 85}
	studentPostBounds  = Bounds{Threshold: 25, Max: 95}
)

func TestNeededRole_TieBreakRules(t *testing.T) {
	assert.Equal(t, types.RoleBackend, NeededRole(types.RoleMix{}))
	assert.Equal(t, types.RoleBackend, NeededRole(types.RoleMix{Frontend: 2}))
	assert.Equal(t, types.RoleFrontend, NeededRole(types.RoleMix{Backend: 1}))
	assert.Equal(t, types.RoleBackend, NeededRole(types.RoleMix{Frontend: 3, Backend: 1}))
	assert.Equal(t, types.RoleFrontend, NeededRole(types.RoleMix{Frontend: 1, Backend: 3}))
	assert.Equal(t, types.RoleUnknown, NeededRole(types.RoleMix{Frontend: 2, Backend: 2, Other: 1}))
	// A 1-vs-2 imbalance is not yet a shortage.
	assert.Equal(t, types.RoleUnknown, NeededRole(types.RoleMix{Frontend: 2, Backend: 1}))
}

func TestScoreStudentGroup_RoleSkillsAndMajor(t *testing.T) {
	student := skills.Profile{Role: types.RoleBackend, Tags: []string{"Go", "SQL", "Redis"}}
	groupSkills := skills.Profile{Tags: []string{"Go", "SQL", "React"}}
	group := types.GroupSnapshot{ID: "g1", MajorID: "se"}

	result, ok := ScoreStudentGroup(student, "se", group, types.RoleMix{Frontend: 2}, groupSkills, studentGroupBounds)
	require.True(t, ok)

	// role 30 + 2 tags * 8 + major 15 = 61 -> (61-25)/60 = 60
	assert.Equal(t, 60, result.Score)
	assert.Equal(t, []string{"Go", "SQL"}, result.Matched)
	assert.Contains(t, result.Rationale, "backend")
	assert.Contains(t, result.Rationale, "Go, SQL")
}

func TestScoreStudentGroup_RejectsAtThreshold(t *testing.T) {
	student := skills.Profile{Role: types.RoleOther, Tags: []string{"Go"}}
	groupSkills := skills.Profile{Tags: []string{"Go"}}
	group := types.GroupSnapshot{ID: "g1", MajorID: "se"}

	// 1 tag * 8 + major 15 = 23 <= threshold 25 -> rejected.
	_, ok := ScoreStudentGroup(student, "se", group, types.RoleMix{Frontend: 1, Backend: 1}, groupSkills, studentGroupBounds)
	assert.False(t, ok)
}

func TestScoreStudentGroup_FrontendOversupplyPenalty(t *testing.T) {
	student := skills.Profile{Role: types.RoleFrontend, Tags: []string{"React", "CSS", "Vue", "HTML"}}
	groupSkills := skills.Profile{Tags: []string{"React", "CSS", "Vue", "HTML"}}
	group := types.GroupSnapshot{ID: "g1", MajorID: "se"}

	oversupplied, ok := ScoreStudentGroup(student, "se", group, types.RoleMix{Frontend: 3, Backend: 2}, groupSkills, studentGroupBounds)
	require.True(t, ok)
	balanced, ok := ScoreStudentGroup(student, "se", group, types.RoleMix{Frontend: 2, Backend: 2}, groupSkills, studentGroupBounds)
	require.True(t, ok)

	assert.Less(t, oversupplied.Score, balanced.Score)
}

func TestScoreStudentGroup_TagCap(t *testing.T) {
	manyTags := []string{"A1", "B2", "C3", "D4", "E5", "F6", "G7", "H8"}
	student := skills.Profile{Role: types.RoleBackend, Tags: manyTags}
	groupSkills := skills.Profile{Tags: manyTags}
	group := types.GroupSnapshot{ID: "g1", MajorID: "se"}
	mix := types.RoleMix{Frontend: 2}

	result, ok := ScoreStudentGroup(student, "se", group, mix, groupSkills, studentGroupBounds)
	require.True(t, ok)

	// role 30 + capped 5 tags * 8 + major 15 = 85 (the max) -> 100.
	assert.Equal(t, 100, result.Score)
}

func TestScoreStudentPost_RecencyDecay(t *testing.T) {
	student := skills.Profile{Role: types.RoleBackend, Tags: []string{"Go", "SQL"}}
	post := skills.Profile{Tags: []string{"Go", "SQL"}}
	mix := types.RoleMix{Frontend: 2}

	fresh, ok := ScoreStudentPost(student, "se", "se", post, mix, time.Hour, studentPostBounds)
	require.True(t, ok)
	stale, ok := ScoreStudentPost(student, "se", "se", post, mix, 45*24*time.Hour, studentPostBounds)
	require.True(t, ok)

	assert.Greater(t, fresh.Score, stale.Score)
	assert.Contains(t, fresh.Rationale, "recently posted")
	assert.NotContains(t, stale.Rationale, "recently posted")
}

func TestScoreGroupTopic_CapacityBonus(t *testing.T) {
	group := skills.Profile{Tags: []string{"Go", "SQL", "Docker"}}
	topicSkills := skills.Profile{Tags: []string{"Go", "SQL", "Docker"}}

	roomy := types.TopicSnapshot{ID: "t1", MajorID: "se", GroupCapacity: 3, AssignedGroups: 0}
	lastSlot := types.TopicSnapshot{ID: "t2", MajorID: "se", GroupCapacity: 3, AssignedGroups: 2}

	roomyResult, ok := ScoreGroupTopic(group, "se", roomy, topicSkills, groupTopicBounds)
	require.True(t, ok)
	lastResult, ok := ScoreGroupTopic(group, "se", lastSlot, topicSkills, groupTopicBounds)
	require.True(t, ok)

	// 3 tags * 10 + major 15 + capacity 10 = 55 -> (55-20)/70 = 50
	assert.Equal(t, 50, roomyResult.Score)
	assert.Greater(t, roomyResult.Score, lastResult.Score)
}

func TestScoreGroupTopic_NoOverlapRejected(t *testing.T) {
	group := skills.Profile{Tags: []string{"Go"}}
	topicSkills := skills.Profile{Tags: []string{"Unity"}}
	topic := types.TopicSnapshot{ID: "t1", MajorID: "other-major", GroupCapacity: 1}

	_, ok := ScoreGroupTopic(group, "se", topic, topicSkills, groupTopicBounds)
	assert.False(t, ok)
}

func TestScorePostNeeds_NeededRoleDominates(t *testing.T) {
	groupSkills := skills.Profile{Tags: []string{"Go"}}
	mix := types.RoleMix{Frontend: 2}

	backendPost := skills.Profile{Role: types.RoleBackend, Tags: []string{"Go"}}
	otherPost := skills.Profile{Role: types.RoleOther, Tags: []string{"Go"}}

	withRole, ok := ScorePostNeeds(backendPost, time.Hour, mix, groupSkills, postNeedsBounds)
	require.True(t, ok)
	assert.Contains(t, withRole.Rationale, "backend")

	// 8 + 10 recency = 18 <= 25 -> rejected without the role signal.
	_, ok = ScorePostNeeds(otherPost, time.Hour, mix, groupSkills, postNeedsBounds)
	assert.False(t, ok)
}

func TestScoring_MajorWildcards(t *testing.T) {
	student := skills.Profile{Role: types.RoleBackend, Tags: []string{"Go", "SQL"}}
	groupSkills := skills.Profile{Tags: []string{"Go", "SQL"}}
	openMajor := types.GroupSnapshot{ID: "g1"} // no major constraint

	result, ok := ScoreStudentGroup(student, "se", openMajor, types.RoleMix{Frontend: 2}, groupSkills, studentGroupBounds)
	require.True(t, ok)
	assert.Contains(t, result.Rationale, "same major")

	_ = result
}
