//nolint:revive // types is a standard Go package name pattern
package types

// StudentSnapshot is a read-only view of an unassigned student, sourced fresh
// per orchestration call and never mutated.
type StudentSnapshot struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	MajorID         string   `json:"major_id"`
	GPA             *float64 `json:"gpa,omitempty"` // 0-4 scale, nil when unreported
	DesiredPosition string   `json:"desired_position,omitempty"`
	SkillsPayload   string   `json:"skills_payload,omitempty"`
	Role            Role     `json:"role"`
}

// GroupSnapshot is a read-only view of a project group's capacity and status.
type GroupSnapshot struct {
	ID             string `json:"id"`
	SemesterID     string `json:"semester_id"`
	MajorID        string `json:"major_id,omitempty"`
	Name           string `json:"name"`
	Description    string `json:"description,omitempty"`
	TopicID        string `json:"topic_id,omitempty"`
	MaxMembers     int    `json:"max_members"`
	CurrentMembers int    `json:"current_members"`
	Status         string `json:"status"`
}

// RemainingSlots returns max minus current members, never negative.
func (g GroupSnapshot) RemainingSlots() int {
	if g.MaxMembers <= g.CurrentMembers {
		return 0
	}
	return g.MaxMembers - g.CurrentMembers
}

// TopicSnapshot is a read-only view of a topic open for group assignment.
type TopicSnapshot struct {
	ID             string `json:"id"`
	SemesterID     string `json:"semester_id"`
	MajorID        string `json:"major_id,omitempty"`
	Title          string `json:"title"`
	Description    string `json:"description,omitempty"`
	SkillsPayload  string `json:"skills_payload,omitempty"`
	GroupCapacity  int    `json:"group_capacity"`
	AssignedGroups int    `json:"assigned_groups"`
	Status         string `json:"status"`
}

// OpenSlots returns how many more groups the topic can take, never negative.
func (t TopicSnapshot) OpenSlots() int {
	if t.GroupCapacity <= t.AssignedGroups {
		return 0
	}
	return t.GroupCapacity - t.AssignedGroups
}

// GroupPolicy holds the semester-configured desired group-size bounds.
type GroupPolicy struct {
	MinSize int `json:"min_size"`
	MaxSize int `json:"max_size"`
}

// Normalized returns the policy with min clamped to at least 1 and max
// clamped to at least min.
func (p GroupPolicy) Normalized() GroupPolicy {
	if p.MinSize < 1 {
		p.MinSize = 1
	}
	if p.MaxSize < p.MinSize {
		p.MaxSize = p.MinSize
	}
	return p
}

// NewGroup describes a group to be created by the engine.
type NewGroup struct {
	SemesterID    string `json:"semester_id"`
	MajorID       string `json:"major_id,omitempty"`
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
	MaxMembers    int    `json:"max_members"`
	SkillsPayload string `json:"skills_payload,omitempty"`
}

// Group and topic status values written by the engine.
const (
	GroupStatusActive = "active"
	TopicStatusClosed = "closed"

	MemberStatusLeader = "leader"
	MemberStatusMember = "member"
)
