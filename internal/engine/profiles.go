package engine

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/group-matcher/internal/parsing"
	"github.com/jonathan/group-matcher/internal/scoring"
	"github.com/jonathan/group-matcher/internal/skills"
	"github.com/jonathan/group-matcher/internal/types"
)

// groupProfile merges the skill payloads of a group's current members into
// one profile. A failed read degrades to an empty profile: skill overlap is a
// scoring signal, not a prerequisite.
func (e *Engine) groupProfile(ctx context.Context, groupID string) skills.Profile {
	payloads, err := e.reader.GroupMemberSkills(ctx, groupID)
	if err != nil {
		e.logger.Warn("failed to load group member skills, scoring without them",
			zap.String("group_id", groupID),
			zap.Error(err),
		)
		return skills.Profile{Role: types.RoleUnknown}
	}

	profile := skills.Profile{Role: types.RoleUnknown}
	for _, payload := range payloads {
		profile = profile.Merge(skills.FromPayload(payload, ""))
	}
	return profile
}

func topicProfile(t types.TopicSnapshot) skills.Profile {
	return skills.FromPayload(t.SkillsPayload, parsing.StripHTML(t.Description))
}

func recruitmentProfile(p types.RecruitmentPost) skills.Profile {
	return skills.FromPayload(p.SkillsPayload, parsing.StripHTML(p.Description))
}

func profilePostProfile(p types.ProfilePost) skills.Profile {
	profile := skills.FromPayload(p.SkillsPayload, parsing.StripHTML(p.Description))
	if p.Role.Known() {
		profile.Role = p.Role
	}
	return profile
}

// groupQueryText renders what a group is and needs as one search line.
func groupQueryText(g types.GroupSnapshot, profile skills.Profile) string {
	parts := []string{g.Name}
	if desc := parsing.StripHTML(g.Description); desc != "" {
		parts = append(parts, desc)
	}
	if skillLine := profile.QueryText(); skillLine != "" {
		parts = append(parts, skillLine)
	}
	return strings.Join(parts, " ")
}

// groupNeedsText describes a recruiting group's situation for the ranking
// service: its role mix, the scarce role, and the skills already covered.
func groupNeedsText(g types.GroupSnapshot, mix types.RoleMix, profile skills.Profile) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Group %q has %d of %d members (%d frontend, %d backend, %d other).",
		g.Name, mix.Total(), g.MaxMembers,
		mix.Count(types.RoleFrontend), mix.Count(types.RoleBackend), mix.Count(types.RoleOther))
	if needed := scoring.NeededRole(mix); needed.Known() {
		fmt.Fprintf(&b, " It most needs a %s member.", needed)
	}
	if len(profile.Tags) > 0 {
		fmt.Fprintf(&b, " Skills already on the team: %s.", strings.Join(profile.Tags, ", "))
	}
	return b.String()
}

// candidateText renders a student as a pipe-delimited field line for ranking
// candidates. The reason quality gate knows this shape and rejects rationales
// that merely echo it.
func candidateText(s types.StudentSnapshot, profile skills.Profile) string {
	fields := []string{
		fmt.Sprintf("Role: %s", profile.Role),
		fmt.Sprintf("Major: %s", orUnset(s.MajorID)),
	}
	if len(profile.Tags) > 0 {
		fields = append(fields, fmt.Sprintf("Skills: %s", strings.Join(profile.Tags, ", ")))
	}
	return strings.Join(fields, " | ")
}

func orUnset(v string) string {
	if v == "" {
		return "unset"
	}
	return v
}

// rankContext flattens hints into the sorted key/value map the ranking
// request carries.
func rankContext(pairs map[string]string) map[string]string {
	if len(pairs) == 0 {
		return nil
	}
	out := make(map[string]string, len(pairs))
	keys := make([]string, 0, len(pairs))
	for k := range pairs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if pairs[k] != "" {
			out[k] = pairs[k]
		}
	}
	return out
}

// fuseScore folds an external 0-100 score into a suggestion's integer score,
// keeping the heuristic score when the external value is out of range.
func fuseScore(existing int, external float64) int {
	if math.IsNaN(external) || external < 0 || external > 100 {
		return existing
	}
	return int(external + 0.5)
}
