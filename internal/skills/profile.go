// Package skills builds canonical skill profiles from raw student, group, and
// post data and computes tag overlap between profiles.
package skills

import (
	"strings"

	"github.com/jonathan/group-matcher/internal/parsing"
	"github.com/jonathan/group-matcher/internal/types"
)

// Profile is a canonical skill classification: a primary role plus an
// ordered, deduplicated tag list.
type Profile struct {
	Role types.Role
	Tags []string
}

// FromPayload builds a profile from a raw skills payload. When the payload
// does not carry a role, freeText (typically the desired-position field) is
// used to infer one.
func FromPayload(payload, freeText string) Profile {
	role, tags := parsing.ParseSkillsPayload(payload)
	if !role.Known() {
		role = parsing.InferRole(freeText)
	}
	return Profile{Role: role, Tags: tags}
}

// FromStudent builds a profile for a student snapshot. The snapshot's own
// role classification wins over anything parsed from the payload.
func FromStudent(s types.StudentSnapshot) Profile {
	profile := FromPayload(s.SkillsPayload, s.DesiredPosition)
	if s.Role.Known() {
		profile.Role = s.Role
	}
	return profile
}

// Merge combines two profiles: the union of tags (first-appearance order) and
// the role chosen by precedence — a known role beats unknown, and the
// receiver's role beats the other's when both are known.
func (p Profile) Merge(other Profile) Profile {
	role := p.Role
	if !role.Known() {
		role = other.Role
	}
	return Profile{Role: role, Tags: parsing.NormalizeTags(append(append([]string{}, p.Tags...), other.Tags...))}
}

// Overlap returns the tags present in both profiles, in the receiver's order.
// Matching is case-insensitive and exact-token.
func (p Profile) Overlap(other Profile) []string {
	if len(p.Tags) == 0 || len(other.Tags) == 0 {
		return nil
	}

	otherSet := make(map[string]bool, len(other.Tags))
	for _, tag := range other.Tags {
		otherSet[strings.ToLower(tag)] = true
	}

	var matched []string
	for _, tag := range p.Tags {
		if otherSet[strings.ToLower(tag)] {
			matched = append(matched, tag)
		}
	}
	return matched
}

// QueryText renders the profile as a compact text line for semantic search.
func (p Profile) QueryText() string {
	var parts []string
	if p.Role.Known() {
		parts = append(parts, string(p.Role))
	}
	parts = append(parts, p.Tags...)
	return strings.Join(parts, " ")
}
