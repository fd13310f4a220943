//nolint:revive // types is a standard Go package name pattern
package types

import "time"

// RecruitmentPost is a group's open call for members. MajorID is the posting
// group's major, denormalized so scorers never need a second group lookup.
type RecruitmentPost struct {
	ID            string    `json:"id"`
	GroupID       string    `json:"group_id"`
	MajorID       string    `json:"major_id,omitempty"`
	Title         string    `json:"title"`
	Description   string    `json:"description,omitempty"`
	SkillsPayload string    `json:"skills_payload,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// ProfilePost is a student's personal post advertising themselves to groups.
type ProfilePost struct {
	ID            string    `json:"id"`
	StudentID     string    `json:"student_id"`
	StudentName   string    `json:"student_name"`
	MajorID       string    `json:"major_id,omitempty"`
	Title         string    `json:"title"`
	Description   string    `json:"description,omitempty"`
	SkillsPayload string    `json:"skills_payload,omitempty"`
	Role          Role      `json:"role"`
	CreatedAt     time.Time `json:"created_at"`
}
