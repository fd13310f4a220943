// Package scoring provides the deterministic heuristic scorers used to rank
// candidate matches. Each scorer sums independent signal contributions,
// rejects candidates at or below a threshold, and rescales the rest to 0-100.
package scoring

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/jonathan/group-matcher/internal/skills"
	"github.com/jonathan/group-matcher/internal/types"
)

// Signal point values. Thresholds and maxima live in config; these weights
// are fixed relative proportions between signals.
const (
	roleNeedPoints    = 30 // student fills the group's scarce role
	needsRolePoints   = 35 // profile post matches the recruiting group's scarce role
	oversupplyPenalty = 10 // discourage stacking more frontend onto a frontend-heavy group

	tagPoints      = 8 // per matched skill tag (student scorers)
	tagCap         = 5
	topicTagPoints = 10 // per matched skill tag (group-vs-topic)
	topicTagCap    = 6

	majorPoints     = 15 // same major (student-group, group-topic)
	postMajorPoints = 10 // same major (student-post)

	postRecencyMax  = 15 // fresh recruitment post
	needsRecencyMax = 10 // fresh profile post
	recencyWindow   = 30 * 24 * time.Hour

	topicSlackBonus = 10 // topic still has 2+ open group slots
	topicLastSlot   = 5  // exactly one slot left
)

// Bounds is a scorer's rejection threshold and raw-score ceiling. Raw sums at
// or below Threshold reject the candidate; (Threshold, Max] maps to (0, 100].
type Bounds struct {
	Threshold int
	Max       int
}

// Result is a scored candidate with its matched tags and a deterministic,
// human-readable rationale.
type Result struct {
	Score     int
	Matched   []string
	Rationale string
}

// NeededRole reports which core role the group is currently short of, or
// RoleUnknown when the mix is adequate. Backend is checked first: a group
// with no backend member needs one even if it also lacks frontend.
func NeededRole(mix types.RoleMix) types.Role {
	switch {
	case mix.Backend == 0:
		return types.RoleBackend
	case mix.Frontend == 0:
		return types.RoleFrontend
	case mix.Frontend-mix.Backend >= 2 && mix.Frontend >= 2:
		return types.RoleBackend
	case mix.Backend-mix.Frontend >= 2 && mix.Backend >= 2:
		return types.RoleFrontend
	default:
		return types.RoleUnknown
	}
}

// frontendOversupplied reports the discouraged state: three or more frontend
// members while backend coverage is already adequate.
func frontendOversupplied(mix types.RoleMix) bool {
	return mix.Frontend >= 3 && mix.Backend >= 2
}

// ScoreStudentGroup rates how well a student fits an under-capacity group.
func ScoreStudentGroup(student skills.Profile, studentMajor string, group types.GroupSnapshot, mix types.RoleMix, groupSkills skills.Profile, b Bounds) (Result, bool) {
	raw := 0
	var parts []string

	needed := NeededRole(mix)
	if needed.Known() && student.Role == needed {
		raw += roleNeedPoints
		parts = append(parts, fmt.Sprintf("fills the group's missing %s role", needed))
	}
	if student.Role == types.RoleFrontend && frontendOversupplied(mix) {
		raw -= oversupplyPenalty
	}

	matched := student.Overlap(groupSkills)
	raw += tagContribution(len(matched), tagPoints, tagCap)
	parts = appendTagPart(parts, matched)

	if majorMatches(studentMajor, group.MajorID) {
		raw += majorPoints
		parts = append(parts, "same major")
	}

	return finish(raw, b, matched, parts)
}

// ScoreStudentPost rates a group's recruitment post for a browsing student.
// postAge is the time since the post was published.
func ScoreStudentPost(student skills.Profile, studentMajor, postMajor string, post skills.Profile, mix types.RoleMix, postAge time.Duration, b Bounds) (Result, bool) {
	raw := 0
	var parts []string

	needed := NeededRole(mix)
	if needed.Known() && student.Role == needed {
		raw += roleNeedPoints
		parts = append(parts, fmt.Sprintf("the group is recruiting a %s", needed))
	}

	matched := student.Overlap(post)
	raw += tagContribution(len(matched), tagPoints, tagCap)
	parts = appendTagPart(parts, matched)

	if majorMatches(studentMajor, postMajor) {
		raw += postMajorPoints
		parts = append(parts, "same major")
	}

	if bonus := recencyBonus(postAge, postRecencyMax); bonus > 0 {
		raw += bonus
		parts = append(parts, "recently posted")
	}

	return finish(raw, b, matched, parts)
}

// ScoreGroupTopic rates a topic for a group that still needs one.
func ScoreGroupTopic(group skills.Profile, groupMajor string, topic types.TopicSnapshot, topicSkills skills.Profile, b Bounds) (Result, bool) {
	raw := 0
	var parts []string

	matched := group.Overlap(topicSkills)
	raw += tagContribution(len(matched), topicTagPoints, topicTagCap)
	parts = appendTagPart(parts, matched)

	if majorMatches(groupMajor, topic.MajorID) {
		raw += majorPoints
		parts = append(parts, "same major")
	}

	switch slots := topic.OpenSlots(); {
	case slots >= 2:
		raw += topicSlackBonus
		parts = append(parts, "topic has open capacity")
	case slots == 1:
		raw += topicLastSlot
	}

	return finish(raw, b, matched, parts)
}

// ScorePostNeeds rates a student's personal post against a recruiting group's
// current needs.
func ScorePostNeeds(post skills.Profile, postAge time.Duration, mix types.RoleMix, groupSkills skills.Profile, b Bounds) (Result, bool) {
	raw := 0
	var parts []string

	needed := NeededRole(mix)
	if needed.Known() && post.Role == needed {
		raw += needsRolePoints
		parts = append(parts, fmt.Sprintf("offers the needed %s role", needed))
	}

	matched := post.Overlap(groupSkills)
	raw += tagContribution(len(matched), tagPoints, tagCap)
	parts = appendTagPart(parts, matched)

	if bonus := recencyBonus(postAge, needsRecencyMax); bonus > 0 {
		raw += bonus
		parts = append(parts, "recently posted")
	}

	return finish(raw, b, matched, parts)
}

// tagContribution converts a matched-tag count into points, capped.
func tagContribution(matchedCount, perTag, capCount int) int {
	if matchedCount > capCount {
		matchedCount = capCount
	}
	return matchedCount * perTag
}

// recencyBonus decays linearly from max at age zero to nothing at the window.
func recencyBonus(age time.Duration, max int) int {
	if age < 0 {
		age = 0
	}
	if age >= recencyWindow {
		return 0
	}
	fraction := 1 - float64(age)/float64(recencyWindow)
	return roundHalfAway(float64(max) * fraction)
}

func majorMatches(a, b string) bool {
	// A side without a major constraint matches anything.
	return a == "" || b == "" || a == b
}

// finish applies the threshold gate and rescales [threshold, max] to [0, 100].
func finish(raw int, b Bounds, matched, parts []string) (Result, bool) {
	if raw <= b.Threshold {
		return Result{}, false
	}
	if raw > b.Max {
		raw = b.Max
	}

	span := b.Max - b.Threshold
	if span <= 0 {
		return Result{}, false
	}
	score := roundHalfAway(float64(raw-b.Threshold) * 100 / float64(span))

	rationale := "General fit"
	if len(parts) > 0 {
		rationale = strings.Join(parts, ". ")
	}
	return Result{Score: score, Matched: matched, Rationale: rationale}, true
}

// roundHalfAway rounds half away from zero.
func roundHalfAway(v float64) int {
	if v >= 0 {
		return int(math.Floor(v + 0.5))
	}
	return int(math.Ceil(v - 0.5))
}

// appendTagPart adds a matched-skills clause to the rationale parts.
func appendTagPart(parts []string, matched []string) []string {
	if len(matched) == 0 {
		return parts
	}
	return append(parts, fmt.Sprintf("matching skills: %s", strings.Join(matched, ", ")))
}
