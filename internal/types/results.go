//nolint:revive // types is a standard Go package name pattern
package types

// Assignment records one student placed into one group.
type Assignment struct {
	StudentID   string `json:"student_id"`
	StudentName string `json:"student_name"`
	GroupID     string `json:"group_id"`
	GroupName   string `json:"group_name"`
	Role        Role   `json:"role"`
}

// TopicAssignment records one topic attached to one group.
type TopicAssignment struct {
	GroupID string `json:"group_id"`
	TopicID string `json:"topic_id"`
	Title   string `json:"title"`
	Score   int    `json:"score"`
}

// Issue is a per-entity condition the engine could not resolve. Issues are
// results, not errors: a phase completes and reports them alongside successes.
type Issue struct {
	EntityID   string `json:"entity_id"`
	EntityKind string `json:"entity_kind"` // "group" or "student"
	Reason     string `json:"reason"`
}

// Fixed reasons for per-entity issues. The staffing reasons form a precedence
// order: a group that stopped for an earlier reason never reports a later one.
const (
	ReasonRunLimitReached      = "hit configured run limit"
	ReasonAtPolicyMax          = "group is already at the policy maximum size"
	ReasonMajorExhausted       = "no unassigned students remain in this major"
	ReasonNeededRoleExhausted  = "no unassigned students remain in the needed role"
	ReasonNoSuitableCandidate  = "no suitable remaining candidate"
	ReasonInsufficientStudents = "not enough leftover students in the major to form a group"
	ReasonNoBalancedSplit      = "leftover students cannot be split into balanced groups"
	ReasonNoTopicAboveCutoff   = "no topic cleared the suggestion threshold"
	ReasonTopicWithoutMentor   = "best-matching topic has no assignable mentor"
)

const (
	EntityKindGroup   = "group"
	EntityKindStudent = "student"
)

// AssignResult aggregates the outcome of one orchestration phase, or of the
// combined auto-resolve run.
type AssignResult struct {
	Assignments      []Assignment      `json:"assignments"`
	TopicAssignments []TopicAssignment `json:"topic_assignments,omitempty"`
	CreatedGroups    []GroupSnapshot   `json:"created_groups,omitempty"`
	Issues           []Issue           `json:"issues,omitempty"`
}

// Merge appends another result's contents into this one.
func (r *AssignResult) Merge(other *AssignResult) {
	if other == nil {
		return
	}
	r.Assignments = append(r.Assignments, other.Assignments...)
	r.TopicAssignments = append(r.TopicAssignments, other.TopicAssignments...)
	r.CreatedGroups = append(r.CreatedGroups, other.CreatedGroups...)
	r.Issues = append(r.Issues, other.Issues...)
}
