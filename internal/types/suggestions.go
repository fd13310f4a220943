//nolint:revive // types is a standard Go package name pattern
package types

// TopicSuggestion is a scored candidate topic for a group.
type TopicSuggestion struct {
	TopicID       string   `json:"topic_id"`
	Title         string   `json:"title"`
	Description   string   `json:"description,omitempty"`
	Score         int      `json:"score"` // 0-100
	MatchedSkills []string `json:"matched_skills,omitempty"`
	Reason        string   `json:"reason,omitempty"`
}

// RecruitmentSuggestion is a scored recruitment post suggested to a student.
type RecruitmentSuggestion struct {
	PostID        string   `json:"post_id"`
	GroupID       string   `json:"group_id"`
	Title         string   `json:"title"`
	Description   string   `json:"description,omitempty"`
	Score         int      `json:"score"` // 0-100
	MatchedSkills []string `json:"matched_skills,omitempty"`
	Reason        string   `json:"reason,omitempty"`
}

// ProfileSuggestion is a scored personal post suggested to a recruiting group.
type ProfileSuggestion struct {
	PostID        string   `json:"post_id"`
	StudentID     string   `json:"student_id"`
	StudentName   string   `json:"student_name"`
	Title         string   `json:"title"`
	Description   string   `json:"description,omitempty"`
	Score         int      `json:"score"` // 0-100
	MatchedSkills []string `json:"matched_skills,omitempty"`
	Reason        string   `json:"reason,omitempty"`
}

// StaffingCandidate is a scored student considered for the next open slot of
// a group during auto-assignment.
type StaffingCandidate struct {
	StudentID string `json:"student_id"`
	Name      string `json:"name"`
	Role      Role   `json:"role"`
	Score     int    `json:"score"` // 0-100
	Reason    string `json:"reason,omitempty"`
}
