package engine

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/jonathan/group-matcher/internal/partition"
	"github.com/jonathan/group-matcher/internal/pool"
	"github.com/jonathan/group-matcher/internal/scoring"
	"github.com/jonathan/group-matcher/internal/skills"
	"github.com/jonathan/group-matcher/internal/types"
)

// CreateGroupsFromLeftovers splits the remaining unassigned students of each
// major into balanced new groups within the policy size range. Majors whose
// leftovers cannot form a valid group report one issue per stranded student.
func (e *Engine) CreateGroupsFromLeftovers(ctx context.Context, semesterID, majorID string) (*types.AssignResult, error) {
	policy, err := e.reader.ActivePolicy(ctx, semesterID)
	if err != nil {
		return nil, fmt.Errorf("failed to load group-size policy: %w", err)
	}
	if policy.MaxSize <= 0 {
		return nil, ErrSemesterPolicyMissing
	}
	policy = policy.Normalized()

	students, err := e.reader.UnassignedStudents(ctx, semesterID, majorID)
	if err != nil {
		return nil, fmt.Errorf("failed to load unassigned students: %w", err)
	}

	byMajor := make(map[string][]types.StudentSnapshot)
	for _, student := range students {
		byMajor[student.MajorID] = append(byMajor[student.MajorID], student)
	}

	result := &types.AssignResult{}
	for _, major := range sortedMajors(byMajor) {
		if err := e.formGroupsForMajor(ctx, semesterID, major, byMajor[major], policy, result); err != nil {
			return result, err
		}
	}

	e.logger.Info("formed groups from leftover students",
		zap.String("semester_id", semesterID),
		zap.Int("created_groups", len(result.CreatedGroups)),
		zap.Int("assignments", len(result.Assignments)),
		zap.Int("issues", len(result.Issues)),
	)
	return result, nil
}

func (e *Engine) formGroupsForMajor(ctx context.Context, semesterID, major string, students []types.StudentSnapshot, policy types.GroupPolicy, result *types.AssignResult) error {
	if len(students) < policy.MinSize {
		strandStudents(result, students, types.ReasonInsufficientStudents)
		return nil
	}

	sizes := partition.Partition(len(students), policy.MinSize, policy.MaxSize)
	if sizes == nil {
		strandStudents(result, students, types.ReasonNoBalancedSplit)
		return nil
	}

	p := pool.New(students, e.tierConfig())
	for _, size := range sizes {
		if err := e.formOneGroup(ctx, semesterID, major, size, p, result); err != nil {
			return err
		}
	}
	return nil
}

// formOneGroup drafts size members role-by-role, creates the group, and
// writes the memberships with the alphabetically first member as leader.
func (e *Engine) formOneGroup(ctx context.Context, semesterID, major string, size int, p *pool.RolePools, result *types.AssignResult) error {
	var members []pool.Selection
	mix := types.RoleMix{}
	anyHigh := false
	for len(members) < size {
		sel := p.DequeueForGroup(scoring.NeededRole(mix), anyHigh)
		if sel == nil {
			// Partition totals always equal the student count, so the pool
			// cannot drain mid-group.
			break
		}
		members = append(members, *sel)
		mix = mix.WithRoleAdded(sel.Role)
		anyHigh = anyHigh || sel.HighGPA
	}
	if len(members) == 0 {
		return nil
	}

	leader := 0
	for i, m := range members {
		if lessByName(m.Student, members[leader].Student) {
			leader = i
		}
	}

	merged := skills.Profile{Role: types.RoleUnknown}
	for _, m := range members {
		merged = merged.Merge(skills.FromStudent(m.Student))
	}

	spec := types.NewGroup{
		SemesterID:    semesterID,
		MajorID:       major,
		Name:          fmt.Sprintf("%s's Group", members[leader].Student.Name),
		Description:   "Automatically formed from unassigned students",
		MaxMembers:    size,
		SkillsPayload: skillsPayload(merged),
	}
	groupID, err := e.writer.CreateGroup(ctx, spec)
	if err != nil {
		return fmt.Errorf("failed to create group for major %s: %w", major, err)
	}

	if err := e.writer.AddGroupMember(ctx, groupID, members[leader].Student.ID, semesterID, types.MemberStatusLeader); err != nil {
		return fmt.Errorf("failed to add leader to group %s: %w", groupID, err)
	}
	rest := make([]string, 0, len(members)-1)
	for i, m := range members {
		if i != leader {
			rest = append(rest, m.Student.ID)
		}
	}
	if len(rest) > 0 {
		if err := e.writer.AddGroupMembers(ctx, groupID, semesterID, rest, types.MemberStatusMember); err != nil {
			return fmt.Errorf("failed to add members to group %s: %w", groupID, err)
		}
	}
	for _, m := range members {
		if err := e.writer.DeletePersonalPostsForUser(ctx, m.Student.ID, semesterID); err != nil {
			return fmt.Errorf("failed to clear posts of student %s: %w", m.Student.ID, err)
		}
	}

	created := types.GroupSnapshot{
		ID:             groupID,
		SemesterID:     semesterID,
		MajorID:        major,
		Name:           spec.Name,
		Description:    spec.Description,
		MaxMembers:     size,
		CurrentMembers: len(members),
	}
	result.CreatedGroups = append(result.CreatedGroups, created)
	for _, m := range members {
		result.Assignments = append(result.Assignments, types.Assignment{
			StudentID:   m.Student.ID,
			StudentName: m.Student.Name,
			GroupID:     groupID,
			GroupName:   spec.Name,
			Role:        m.Role,
		})
	}
	return nil
}

func strandStudents(result *types.AssignResult, students []types.StudentSnapshot, reason string) {
	for _, student := range students {
		result.Issues = append(result.Issues, types.Issue{
			EntityID:   student.ID,
			EntityKind: types.EntityKindStudent,
			Reason:     reason,
		})
	}
}

func lessByName(a, b types.StudentSnapshot) bool {
	if a.Name != b.Name {
		return a.Name < b.Name
	}
	return a.ID < b.ID
}

// skillsPayload serializes a merged profile into the structured payload
// format group records carry.
func skillsPayload(p skills.Profile) string {
	role := ""
	if p.Role.Known() {
		role = string(p.Role)
	}
	data, err := json.Marshal(struct {
		Role   string   `json:"role,omitempty"`
		Skills []string `json:"skills"`
	}{Role: role, Skills: p.Tags})
	if err != nil {
		return ""
	}
	return string(data)
}
