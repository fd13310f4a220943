package engine

import (
	"context"
	"fmt"

	"github.com/jonathan/group-matcher/internal/rerank"
	"github.com/jonathan/group-matcher/internal/shortlist"
	"github.com/jonathan/group-matcher/internal/types"
)

// fakeStore backs both collaborator interfaces with in-memory state, so a
// phase's writes are visible to later reads the way a real store behaves.
type fakeStore struct {
	policy       types.GroupPolicy
	policyErr    error
	students     []types.StudentSnapshot
	groups       []types.GroupSnapshot
	mixes        types.RoleMixSet
	topics       []types.TopicSnapshot
	memberSkills map[string][]string
	groupMentors map[string]string
	topicMentors map[string]string
	recPosts     []types.RecruitmentPost
	profPosts    []types.ProfilePost

	assigned       map[string]string // student -> group
	memberAdds     []memberAdd
	created        []types.NewGroup
	createdIDs     []string
	capacityWrites map[string]int
	groupStatus    map[string]string
	topicStatus    map[string]string
	topicAssigns   map[string]string // group -> topic
	deletedPosts   map[string]int
	closedPosts    []string
	invalidations  int

	addMemberErr error
	createErr    error
}

type memberAdd struct {
	GroupID   string
	StudentID string
	Status    string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		policy:         types.GroupPolicy{MinSize: 2, MaxSize: 5},
		mixes:          types.RoleMixSet{},
		memberSkills:   map[string][]string{},
		groupMentors:   map[string]string{},
		topicMentors:   map[string]string{},
		assigned:       map[string]string{},
		capacityWrites: map[string]int{},
		groupStatus:    map[string]string{},
		topicStatus:    map[string]string{},
		topicAssigns:   map[string]string{},
		deletedPosts:   map[string]int{},
	}
}

func (f *fakeStore) ActivePolicy(context.Context, string) (types.GroupPolicy, error) {
	return f.policy, f.policyErr
}

func (f *fakeStore) UnassignedStudents(_ context.Context, _, majorID string) ([]types.StudentSnapshot, error) {
	var out []types.StudentSnapshot
	for _, s := range f.students {
		if _, taken := f.assigned[s.ID]; taken {
			continue
		}
		if majorID != "" && s.MajorID != majorID {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeStore) addsFor(groupID string) int {
	n := 0
	for _, add := range f.memberAdds {
		if add.GroupID == groupID {
			n++
		}
	}
	return n
}

func (f *fakeStore) GroupCapacities(_ context.Context, _, majorID string) ([]types.GroupSnapshot, error) {
	var out []types.GroupSnapshot
	for _, g := range f.groups {
		if majorID != "" && g.MajorID != majorID {
			continue
		}
		g.CurrentMembers += f.addsFor(g.ID)
		if written, ok := f.capacityWrites[g.ID]; ok {
			g.MaxMembers = written
		}
		if topicID, ok := f.topicAssigns[g.ID]; ok {
			g.TopicID = topicID
		}
		out = append(out, g)
	}
	for i, spec := range f.created {
		id := f.createdIDs[i]
		if majorID != "" && spec.MajorID != majorID {
			continue
		}
		out = append(out, types.GroupSnapshot{
			ID:             id,
			SemesterID:     spec.SemesterID,
			MajorID:        spec.MajorID,
			Name:           spec.Name,
			Description:    spec.Description,
			TopicID:        f.topicAssigns[id],
			MaxMembers:     spec.MaxMembers,
			CurrentMembers: f.addsFor(id),
		})
	}
	return out, nil
}

func (f *fakeStore) GroupRoleMixes(context.Context, []string) (types.RoleMixSet, error) {
	return f.mixes, nil
}

func (f *fakeStore) TopicAvailability(_ context.Context, _, majorID string) ([]types.TopicSnapshot, error) {
	var out []types.TopicSnapshot
	for _, t := range f.topics {
		if majorID != "" && t.MajorID != "" && t.MajorID != majorID {
			continue
		}
		if f.topicStatus[t.ID] == types.TopicStatusClosed {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (f *fakeStore) GroupMemberSkills(_ context.Context, groupID string) ([]string, error) {
	return f.memberSkills[groupID], nil
}

func (f *fakeStore) Group(ctx context.Context, groupID string) (*types.GroupSnapshot, error) {
	groups, _ := f.GroupCapacities(ctx, "", "")
	for i := range groups {
		if groups[i].ID == groupID {
			return &groups[i], nil
		}
	}
	return nil, nil
}

func (f *fakeStore) GroupMentor(_ context.Context, groupID string) (string, error) {
	return f.groupMentors[groupID], nil
}

func (f *fakeStore) Topic(_ context.Context, topicID string) (*types.TopicSnapshot, error) {
	for i := range f.topics {
		if f.topics[i].ID == topicID {
			t := f.topics[i]
			return &t, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) TopicDefaultMentor(_ context.Context, topicID string) (string, error) {
	return f.topicMentors[topicID], nil
}

func (f *fakeStore) OpenRecruitmentPosts(context.Context, string, string) ([]types.RecruitmentPost, error) {
	return f.recPosts, nil
}

func (f *fakeStore) OpenProfilePosts(context.Context, string, string) ([]types.ProfilePost, error) {
	return f.profPosts, nil
}

func (f *fakeStore) InvalidateUnassigned(string) {
	f.invalidations++
}

func (f *fakeStore) AddGroupMember(_ context.Context, groupID, userID, _, status string) error {
	if f.addMemberErr != nil {
		return f.addMemberErr
	}
	f.memberAdds = append(f.memberAdds, memberAdd{GroupID: groupID, StudentID: userID, Status: status})
	f.assigned[userID] = groupID
	return nil
}

func (f *fakeStore) AddGroupMembers(ctx context.Context, groupID, semesterID string, userIDs []string, status string) error {
	for _, id := range userIDs {
		if err := f.AddGroupMember(ctx, groupID, id, semesterID, status); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeStore) CreateGroup(_ context.Context, group types.NewGroup) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	id := fmt.Sprintf("group-new-%d", len(f.created)+1)
	f.created = append(f.created, group)
	f.createdIDs = append(f.createdIDs, id)
	return id, nil
}

func (f *fakeStore) UpdateGroupCapacity(_ context.Context, groupID string, maxMembers int) error {
	f.capacityWrites[groupID] = maxMembers
	return nil
}

func (f *fakeStore) AssignTopicToGroup(_ context.Context, groupID, topicID string) error {
	f.topicAssigns[groupID] = topicID
	return nil
}

func (f *fakeStore) SetGroupStatus(_ context.Context, groupID, status string) error {
	f.groupStatus[groupID] = status
	return nil
}

func (f *fakeStore) SetTopicStatus(_ context.Context, topicID, status string) error {
	f.topicStatus[topicID] = status
	return nil
}

func (f *fakeStore) DeletePersonalPostsForUser(_ context.Context, userID, _ string) error {
	f.deletedPosts[userID]++
	return nil
}

func (f *fakeStore) CloseOpenPostsForGroup(_ context.Context, groupID string) error {
	f.closedPosts = append(f.closedPosts, groupID)
	return nil
}

// fakeRanker scripts the external ranking collaborator.
type fakeRanker struct {
	resp  *rerank.Response
	err   error
	fn    func(req *rerank.Request) (*rerank.Response, error)
	calls []*rerank.Request
}

func (f *fakeRanker) Rank(_ context.Context, req *rerank.Request) (*rerank.Response, error) {
	f.calls = append(f.calls, req)
	if f.fn != nil {
		return f.fn(req)
	}
	return f.resp, f.err
}

// fakeSearcher scripts the semantic-search collaborator.
type fakeSearcher struct {
	ids []string
	err error
}

func (f *fakeSearcher) Search(context.Context, shortlist.Query) ([]string, error) {
	return f.ids, f.err
}

var (
	_ Reader             = (*fakeStore)(nil)
	_ Writer             = (*fakeStore)(nil)
	_ rerank.Client      = (*fakeRanker)(nil)
	_ shortlist.Searcher = (*fakeSearcher)(nil)
)
