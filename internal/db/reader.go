package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jonathan/group-matcher/internal/parsing"
	"github.com/jonathan/group-matcher/internal/types"
)

// ActivePolicy returns the semester's group-size policy. A missing semester
// yields a zero policy, which the engine rejects as unconfigured.
func (s *Store) ActivePolicy(ctx context.Context, semesterID string) (types.GroupPolicy, error) {
	var policy types.GroupPolicy
	err := s.pool.QueryRow(ctx,
		`SELECT min_group_size, max_group_size FROM semesters WHERE id = $1`,
		semesterID,
	).Scan(&policy.MinSize, &policy.MaxSize)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return types.GroupPolicy{}, nil
		}
		return types.GroupPolicy{}, fmt.Errorf("failed to get semester policy: %w", err)
	}
	return policy, nil
}

// UnassignedStudents lists students enrolled in the semester who hold no
// group membership. Results are cached until InvalidateUnassigned.
func (s *Store) UnassignedStudents(ctx context.Context, semesterID, majorID string) ([]types.StudentSnapshot, error) {
	if cached, ok := s.cache.get(semesterID, majorID); ok {
		return cached, nil
	}

	rows, err := s.pool.Query(ctx,
		`SELECT st.id, st.name, COALESCE(st.major_id, ''), st.gpa,
		        COALESCE(st.desired_position, ''), COALESCE(st.skills_payload, ''),
		        COALESCE(st.role, '')
		 FROM students st
		 LEFT JOIN group_members gm ON gm.user_id = st.id AND gm.semester_id = st.semester_id
		 WHERE st.semester_id = $1
		   AND gm.user_id IS NULL
		   AND ($2 = '' OR st.major_id = $2)
		 ORDER BY st.name, st.id`,
		semesterID, majorID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list unassigned students: %w", err)
	}
	defer rows.Close()

	var students []types.StudentSnapshot
	for rows.Next() {
		var st types.StudentSnapshot
		var role string
		if err := rows.Scan(&st.ID, &st.Name, &st.MajorID, &st.GPA, &st.DesiredPosition, &st.SkillsPayload, &role); err != nil {
			return nil, fmt.Errorf("failed to scan student: %w", err)
		}
		st.Role = parsing.ParseRole(role)
		students = append(students, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read students: %w", err)
	}

	s.cache.put(semesterID, majorID, students)
	return students, nil
}

const groupSelect = `
	SELECT g.id, g.semester_id, COALESCE(g.major_id, ''), g.name,
	       COALESCE(g.description, ''), COALESCE(g.topic_id::text, ''),
	       g.max_members, COUNT(gm.user_id), g.status
	FROM groups g
	LEFT JOIN group_members gm ON gm.group_id = g.id`

// GroupCapacities lists the semester's groups with live member counts.
func (s *Store) GroupCapacities(ctx context.Context, semesterID, majorID string) ([]types.GroupSnapshot, error) {
	rows, err := s.pool.Query(ctx,
		groupSelect+`
		 WHERE g.semester_id = $1
		   AND g.status != 'disbanded'
		   AND ($2 = '' OR g.major_id = $2)
		 GROUP BY g.id
		 ORDER BY g.name, g.id`,
		semesterID, majorID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list group capacities: %w", err)
	}
	defer rows.Close()

	var groups []types.GroupSnapshot
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read groups: %w", err)
	}
	return groups, nil
}

// Group fetches one group snapshot, or nil when absent.
func (s *Store) Group(ctx context.Context, groupID string) (*types.GroupSnapshot, error) {
	rows, err := s.pool.Query(ctx,
		groupSelect+` WHERE g.id = $1 GROUP BY g.id`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	g, err := scanGroup(rows)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func scanGroup(rows pgx.Rows) (types.GroupSnapshot, error) {
	var g types.GroupSnapshot
	if err := rows.Scan(&g.ID, &g.SemesterID, &g.MajorID, &g.Name, &g.Description,
		&g.TopicID, &g.MaxMembers, &g.CurrentMembers, &g.Status); err != nil {
		return types.GroupSnapshot{}, fmt.Errorf("failed to scan group: %w", err)
	}
	return g, nil
}

// GroupRoleMixes aggregates member role counts for the given groups.
func (s *Store) GroupRoleMixes(ctx context.Context, groupIDs []string) (types.RoleMixSet, error) {
	mixes := types.RoleMixSet{}
	if len(groupIDs) == 0 {
		return mixes, nil
	}

	rows, err := s.pool.Query(ctx,
		`SELECT gm.group_id, COALESCE(st.role, ''), COUNT(*)
		 FROM group_members gm
		 JOIN students st ON st.id = gm.user_id
		 WHERE gm.group_id = ANY($1)
		 GROUP BY gm.group_id, st.role`,
		groupIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get group role mixes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var groupID, role string
		var count int
		if err := rows.Scan(&groupID, &role, &count); err != nil {
			return nil, fmt.Errorf("failed to scan role mix: %w", err)
		}
		mix := mixes[groupID]
		for i := 0; i < count; i++ {
			mix = mix.WithRoleAdded(parsing.ParseRole(role))
		}
		mixes[groupID] = mix
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read role mixes: %w", err)
	}
	return mixes, nil
}

// TopicAvailability lists open topics with their current group counts.
func (s *Store) TopicAvailability(ctx context.Context, semesterID, majorID string) ([]types.TopicSnapshot, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT t.id, t.semester_id, COALESCE(t.major_id, ''), t.title,
		        COALESCE(t.description, ''), COALESCE(t.skills_payload, ''),
		        t.group_capacity, COUNT(g.id), t.status
		 FROM topics t
		 LEFT JOIN groups g ON g.topic_id = t.id AND g.status != 'disbanded'
		 WHERE t.semester_id = $1
		   AND t.status = 'open'
		   AND ($2 = '' OR t.major_id IS NULL OR t.major_id = $2)
		 GROUP BY t.id
		 ORDER BY t.title, t.id`,
		semesterID, majorID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list topic availability: %w", err)
	}
	defer rows.Close()

	var topics []types.TopicSnapshot
	for rows.Next() {
		var t types.TopicSnapshot
		if err := rows.Scan(&t.ID, &t.SemesterID, &t.MajorID, &t.Title, &t.Description,
			&t.SkillsPayload, &t.GroupCapacity, &t.AssignedGroups, &t.Status); err != nil {
			return nil, fmt.Errorf("failed to scan topic: %w", err)
		}
		topics = append(topics, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read topics: %w", err)
	}
	return topics, nil
}

// Topic fetches one topic snapshot, or nil when absent.
func (s *Store) Topic(ctx context.Context, topicID string) (*types.TopicSnapshot, error) {
	var t types.TopicSnapshot
	err := s.pool.QueryRow(ctx,
		`SELECT t.id, t.semester_id, COALESCE(t.major_id, ''), t.title,
		        COALESCE(t.description, ''), COALESCE(t.skills_payload, ''),
		        t.group_capacity,
		        (SELECT COUNT(*) FROM groups g WHERE g.topic_id = t.id AND g.status != 'disbanded'),
		        t.status
		 FROM topics t WHERE t.id = $1`,
		topicID,
	).Scan(&t.ID, &t.SemesterID, &t.MajorID, &t.Title, &t.Description,
		&t.SkillsPayload, &t.GroupCapacity, &t.AssignedGroups, &t.Status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get topic: %w", err)
	}
	return &t, nil
}

// GroupMemberSkills returns the non-empty skill payloads of a group's members.
func (s *Store) GroupMemberSkills(ctx context.Context, groupID string) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT st.skills_payload
		 FROM group_members gm
		 JOIN students st ON st.id = gm.user_id
		 WHERE gm.group_id = $1 AND COALESCE(st.skills_payload, '') != ''`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list group member skills: %w", err)
	}
	defer rows.Close()

	var payloads []string
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan skills payload: %w", err)
		}
		payloads = append(payloads, payload)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read skills payloads: %w", err)
	}
	return payloads, nil
}

// GroupMentor returns the group's mentor ID, or "" when unset.
func (s *Store) GroupMentor(ctx context.Context, groupID string) (string, error) {
	var mentor string
	err := s.pool.QueryRow(ctx,
		`SELECT COALESCE(mentor_id::text, '') FROM groups WHERE id = $1`,
		groupID,
	).Scan(&mentor)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("failed to get group mentor: %w", err)
	}
	return mentor, nil
}

// TopicDefaultMentor returns the topic's default mentor ID, or "" when unset.
func (s *Store) TopicDefaultMentor(ctx context.Context, topicID string) (string, error) {
	var mentor string
	err := s.pool.QueryRow(ctx,
		`SELECT COALESCE(default_mentor_id::text, '') FROM topics WHERE id = $1`,
		topicID,
	).Scan(&mentor)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("failed to get topic mentor: %w", err)
	}
	return mentor, nil
}

// OpenRecruitmentPosts lists groups' open recruitment posts, newest first.
func (s *Store) OpenRecruitmentPosts(ctx context.Context, semesterID, majorID string) ([]types.RecruitmentPost, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT p.id, p.group_id, COALESCE(g.major_id, ''), p.title,
		        COALESCE(p.description, ''), COALESCE(p.skills_payload, ''), p.created_at
		 FROM recruitment_posts p
		 JOIN groups g ON g.id = p.group_id
		 WHERE g.semester_id = $1
		   AND p.status = 'open'
		   AND ($2 = '' OR g.major_id = $2)
		 ORDER BY p.created_at DESC`,
		semesterID, majorID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list recruitment posts: %w", err)
	}
	defer rows.Close()

	var posts []types.RecruitmentPost
	for rows.Next() {
		var p types.RecruitmentPost
		if err := rows.Scan(&p.ID, &p.GroupID, &p.MajorID, &p.Title, &p.Description,
			&p.SkillsPayload, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan recruitment post: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read recruitment posts: %w", err)
	}
	return posts, nil
}

// OpenProfilePosts lists students' open personal posts, newest first.
func (s *Store) OpenProfilePosts(ctx context.Context, semesterID, majorID string) ([]types.ProfilePost, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT p.id, p.user_id, st.name, COALESCE(st.major_id, ''), p.title,
		        COALESCE(p.description, ''), COALESCE(p.skills_payload, ''),
		        COALESCE(st.role, ''), p.created_at
		 FROM profile_posts p
		 JOIN students st ON st.id = p.user_id
		 WHERE p.semester_id = $1
		   AND p.status = 'open'
		   AND ($2 = '' OR st.major_id = $2)
		 ORDER BY p.created_at DESC`,
		semesterID, majorID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list profile posts: %w", err)
	}
	defer rows.Close()

	var posts []types.ProfilePost
	for rows.Next() {
		var p types.ProfilePost
		var role string
		if err := rows.Scan(&p.ID, &p.StudentID, &p.StudentName, &p.MajorID, &p.Title,
			&p.Description, &p.SkillsPayload, &role, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan profile post: %w", err)
		}
		p.Role = parsing.ParseRole(role)
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read profile posts: %w", err)
	}
	return posts, nil
}
