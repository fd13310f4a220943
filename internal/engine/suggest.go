package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/jonathan/group-matcher/internal/parsing"
	"github.com/jonathan/group-matcher/internal/rerank"
	"github.com/jonathan/group-matcher/internal/scoring"
	"github.com/jonathan/group-matcher/internal/shortlist"
	"github.com/jonathan/group-matcher/internal/skills"
	"github.com/jonathan/group-matcher/internal/types"
)

// SuggestTopicsForGroup returns the best-matching open topics for a group,
// ordered best-first. Only topics clearing the scorer threshold appear.
func (e *Engine) SuggestTopicsForGroup(ctx context.Context, groupID string) ([]types.TopicSuggestion, error) {
	group, err := e.reader.Group(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to load group %s: %w", groupID, err)
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}

	topics, err := e.reader.TopicAvailability(ctx, group.SemesterID, group.MajorID)
	if err != nil {
		return nil, fmt.Errorf("failed to load topic availability: %w", err)
	}

	profile := e.groupProfile(ctx, group.ID)
	return e.rankTopics(ctx, *group, profile, topics)
}

// rankTopics runs the shared topic pipeline against an already-fetched topic
// list, so the assignment phase can reuse it with its own dwindling set.
func (e *Engine) rankTopics(ctx context.Context, group types.GroupSnapshot, profile skills.Profile, topics []types.TopicSnapshot) ([]types.TopicSuggestion, error) {
	open := make([]types.TopicSnapshot, 0, len(topics))
	for _, t := range topics {
		if t.OpenSlots() > 0 {
			open = append(open, t)
		}
	}

	open, err := shortlist.Apply(ctx, e.searcher, e.logger, shortlist.Query{
		Text:       groupQueryText(group, profile),
		Type:       "topic",
		SemesterID: group.SemesterID,
		MajorID:    group.MajorID,
		Limit:      e.cfg.ShortlistLimit,
	}, open, func(t types.TopicSnapshot) string { return t.ID })
	if err != nil {
		return nil, err
	}

	var suggestions []types.TopicSuggestion
	for _, t := range open {
		result, ok := scoring.ScoreGroupTopic(profile, group.MajorID, t, topicProfile(t), e.bounds(e.cfg.GroupTopic))
		if !ok {
			continue
		}
		suggestions = append(suggestions, types.TopicSuggestion{
			TopicID:       t.ID,
			Title:         t.Title,
			Description:   parsing.StripHTML(t.Description),
			Score:         result.Score,
			MatchedSkills: result.Matched,
			Reason:        result.Rationale,
		})
	}

	return rerank.Rerank(ctx, e.ranker, e.logger, e.cfg.RerankPoolSize, rerank.Options[types.TopicSuggestion]{
		QueryType: "topic",
		QueryText: groupQueryText(group, profile),
		Context: rankContext(map[string]string{
			"group_skills": profile.QueryText(),
			"major":        group.MajorID,
		}),
		Build: func(s types.TopicSuggestion) rerank.Candidate {
			return rerank.Candidate{Key: s.TopicID, ID: s.TopicID, Title: s.Title, Text: s.Description}
		},
		Project: func(s types.TopicSuggestion, item rerank.RankedItem) types.TopicSuggestion {
			s.Score = fuseScore(s.Score, item.FinalScore)
			s.Reason = rerank.ReasonOrFallback(item.Reason, s.Reason, s.Description)
			if len(item.MatchedSkills) > 0 {
				s.MatchedSkills = item.MatchedSkills
			}
			return s
		},
		Heuristic: func(s types.TopicSuggestion) float64 { return float64(s.Score) },
	}, suggestions)
}

// SuggestGroupsForStudent returns open recruitment posts matching a student,
// ordered best-first.
func (e *Engine) SuggestGroupsForStudent(ctx context.Context, semesterID string, student types.StudentSnapshot) ([]types.RecruitmentSuggestion, error) {
	posts, err := e.reader.OpenRecruitmentPosts(ctx, semesterID, student.MajorID)
	if err != nil {
		return nil, fmt.Errorf("failed to load recruitment posts: %w", err)
	}

	groupIDs := make([]string, 0, len(posts))
	for _, p := range posts {
		groupIDs = append(groupIDs, p.GroupID)
	}
	var mixes types.RoleMixSet
	if len(groupIDs) > 0 {
		if mixes, err = e.reader.GroupRoleMixes(ctx, groupIDs); err != nil {
			return nil, fmt.Errorf("failed to load group role mixes: %w", err)
		}
	}

	profile := skills.FromStudent(student)
	posts, err = shortlist.Apply(ctx, e.searcher, e.logger, shortlist.Query{
		Text:       profile.QueryText(),
		Type:       "recruitment_post",
		SemesterID: semesterID,
		MajorID:    student.MajorID,
		Limit:      e.cfg.ShortlistLimit,
	}, posts, func(p types.RecruitmentPost) string { return p.ID })
	if err != nil {
		return nil, err
	}

	now := time.Now()
	var suggestions []types.RecruitmentSuggestion
	for _, p := range posts {
		result, ok := scoring.ScoreStudentPost(profile, student.MajorID, p.MajorID,
			recruitmentProfile(p), mixes.MixFor(p.GroupID), now.Sub(p.CreatedAt), e.bounds(e.cfg.StudentPost))
		if !ok {
			continue
		}
		suggestions = append(suggestions, types.RecruitmentSuggestion{
			PostID:        p.ID,
			GroupID:       p.GroupID,
			Title:         p.Title,
			Description:   parsing.StripHTML(p.Description),
			Score:         result.Score,
			MatchedSkills: result.Matched,
			Reason:        result.Rationale,
		})
	}

	return rerank.Rerank(ctx, e.ranker, e.logger, e.cfg.RerankPoolSize, rerank.Options[types.RecruitmentSuggestion]{
		QueryType: "recruitment_post",
		QueryText: profile.QueryText(),
		Context: rankContext(map[string]string{
			"student_major": student.MajorID,
			"student_role":  string(profile.Role),
		}),
		Build: func(s types.RecruitmentSuggestion) rerank.Candidate {
			return rerank.Candidate{Key: s.PostID, ID: s.PostID, Title: s.Title, Text: s.Description}
		},
		Project: func(s types.RecruitmentSuggestion, item rerank.RankedItem) types.RecruitmentSuggestion {
			s.Score = fuseScore(s.Score, item.FinalScore)
			s.Reason = rerank.ReasonOrFallback(item.Reason, s.Reason, s.Description)
			// Matched skills stay heuristic: the service has no view of the
			// canonical tag vocabulary.
			return s
		},
		Heuristic: func(s types.RecruitmentSuggestion) float64 { return float64(s.Score) },
	}, suggestions)
}

// SuggestStudentsForGroup returns unassigned students ranked for a group's
// open slots, ordered best-first. This is the read-only view of the staffing
// pick: the same scorer the assignment phase draws on, without any writes.
func (e *Engine) SuggestStudentsForGroup(ctx context.Context, groupID string) ([]types.StaffingCandidate, error) {
	group, err := e.reader.Group(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to load group %s: %w", groupID, err)
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}

	mixes, err := e.reader.GroupRoleMixes(ctx, []string{group.ID})
	if err != nil {
		return nil, fmt.Errorf("failed to load group role mix: %w", err)
	}
	mix := mixes.MixFor(group.ID)

	students, err := e.reader.UnassignedStudents(ctx, group.SemesterID, group.MajorID)
	if err != nil {
		return nil, fmt.Errorf("failed to load unassigned students: %w", err)
	}

	groupSkills := e.groupProfile(ctx, group.ID)
	needsText := groupNeedsText(*group, mix, groupSkills)
	students, err = shortlist.Apply(ctx, e.searcher, e.logger, shortlist.Query{
		Text:       needsText,
		Type:       "student",
		SemesterID: group.SemesterID,
		MajorID:    group.MajorID,
		Limit:      e.cfg.ShortlistLimit,
	}, students, func(s types.StudentSnapshot) string { return s.ID })
	if err != nil {
		return nil, err
	}

	texts := make(map[string]string, len(students))
	var candidates []types.StaffingCandidate
	for _, s := range students {
		profile := skills.FromStudent(s)
		result, ok := scoring.ScoreStudentGroup(profile, s.MajorID, *group, mix, groupSkills, e.bounds(e.cfg.StudentGroup))
		if !ok {
			continue
		}
		texts[s.ID] = candidateText(s, profile)
		candidates = append(candidates, types.StaffingCandidate{
			StudentID: s.ID,
			Name:      s.Name,
			Role:      profile.Role,
			Score:     result.Score,
			Reason:    result.Rationale,
		})
	}

	return rerank.Rerank(ctx, e.ranker, e.logger, e.cfg.RerankPoolSize, rerank.Options[types.StaffingCandidate]{
		QueryType: "student",
		QueryText: needsText,
		Context: rankContext(map[string]string{
			"group_skills": groupSkills.QueryText(),
			"major":        group.MajorID,
		}),
		Build: func(c types.StaffingCandidate) rerank.Candidate {
			return rerank.Candidate{Key: c.StudentID, ID: c.StudentID, Title: c.Name, Text: texts[c.StudentID]}
		},
		Project: func(c types.StaffingCandidate, item rerank.RankedItem) types.StaffingCandidate {
			c.Score = fuseScore(c.Score, item.FinalScore)
			c.Reason = rerank.ReasonOrFallback(item.Reason, c.Reason, texts[c.StudentID])
			return c
		},
		Heuristic: func(c types.StaffingCandidate) float64 { return float64(c.Score) },
	}, candidates)
}

// SuggestCandidatesForGroup returns students' personal posts matching a
// recruiting group's current needs, ordered best-first.
func (e *Engine) SuggestCandidatesForGroup(ctx context.Context, groupID string) ([]types.ProfileSuggestion, error) {
	group, err := e.reader.Group(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to load group %s: %w", groupID, err)
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}

	mixes, err := e.reader.GroupRoleMixes(ctx, []string{group.ID})
	if err != nil {
		return nil, fmt.Errorf("failed to load group role mix: %w", err)
	}
	mix := mixes.MixFor(group.ID)

	posts, err := e.reader.OpenProfilePosts(ctx, group.SemesterID, group.MajorID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile posts: %w", err)
	}

	groupSkills := e.groupProfile(ctx, group.ID)
	posts, err = shortlist.Apply(ctx, e.searcher, e.logger, shortlist.Query{
		Text:       groupQueryText(*group, groupSkills),
		Type:       "profile_post",
		SemesterID: group.SemesterID,
		MajorID:    group.MajorID,
		Limit:      e.cfg.ShortlistLimit,
	}, posts, func(p types.ProfilePost) string { return p.ID })
	if err != nil {
		return nil, err
	}

	now := time.Now()
	var suggestions []types.ProfileSuggestion
	for _, p := range posts {
		result, ok := scoring.ScorePostNeeds(profilePostProfile(p), now.Sub(p.CreatedAt), mix, groupSkills, e.bounds(e.cfg.PostNeeds))
		if !ok {
			continue
		}
		suggestions = append(suggestions, types.ProfileSuggestion{
			PostID:        p.ID,
			StudentID:     p.StudentID,
			StudentName:   p.StudentName,
			Title:         p.Title,
			Description:   parsing.StripHTML(p.Description),
			Score:         result.Score,
			MatchedSkills: result.Matched,
			Reason:        result.Rationale,
		})
	}

	return rerank.Rerank(ctx, e.ranker, e.logger, e.cfg.RerankPoolSize, rerank.Options[types.ProfileSuggestion]{
		QueryType: "profile_post",
		QueryText: groupNeedsText(*group, mix, groupSkills),
		Context: rankContext(map[string]string{
			"group_skills": groupSkills.QueryText(),
			"major":        group.MajorID,
		}),
		Build: func(s types.ProfileSuggestion) rerank.Candidate {
			return rerank.Candidate{Key: s.PostID, ID: s.PostID, Title: s.Title, Text: s.Description}
		},
		Project: func(s types.ProfileSuggestion, item rerank.RankedItem) types.ProfileSuggestion {
			s.Score = fuseScore(s.Score, item.FinalScore)
			s.Reason = rerank.ReasonOrFallback(item.Reason, s.Reason, s.Description)
			return s
		},
		Heuristic:     func(s types.ProfileSuggestion) float64 { return float64(s.Score) },
		RequireReason: true,
	}, suggestions)
}
