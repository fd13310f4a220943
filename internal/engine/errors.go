package engine

import "errors"

// Sentinel errors for targeted operations. Phase-level orchestration reports
// per-entity conditions as result issues instead; these surface only when a
// caller names a specific entity that cannot be acted on.
var (
	// ErrSemesterPolicyMissing means the semester has no group-size policy,
	// so no staffing or forming phase can run.
	ErrSemesterPolicyMissing = errors.New("semester has no group-size policy")

	// ErrGroupNotFound means the named group does not exist in the semester.
	ErrGroupNotFound = errors.New("group not found")

	// ErrTopicNotFound means the named topic does not exist in the semester.
	ErrTopicNotFound = errors.New("topic not found")

	// ErrGroupHasTopic means the group already carries a topic assignment.
	ErrGroupHasTopic = errors.New("group already has a topic")

	// ErrTopicFull means the topic has no open group slots left.
	ErrTopicFull = errors.New("topic has no open group slots")
)
