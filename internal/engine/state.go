package engine

import "github.com/jonathan/group-matcher/internal/types"

// groupState tracks one group's capacity and composition while the staffing
// loop fills it. It upholds a single invariant throughout:
//
//	remaining = maxMembers - currentMembers, never negative
//
// Capacity changes go through setMax so the invariant is recomputed in one
// place, and every change marks the state dirty so exactly one capacity write
// happens per group at the end of the phase.
type groupState struct {
	snapshot types.GroupSnapshot
	mix      types.RoleMix

	maxMembers     int
	currentMembers int
	remaining      int

	// addedCapacity is how many extra seats this run granted the group.
	addedCapacity int
	// capacityDirty means maxMembers differs from the stored value.
	capacityDirty bool
	// highAssigned counts high-GPA students placed here during this run.
	highAssigned int
	// placed counts all students placed here during this run.
	placed int
	// stop records why the staffing loop ended for this group.
	stop stopCause
}

// stopCause is why a group's staffing loop ended, in issue-reporting
// precedence order: an earlier cause is never downgraded to a later one.
type stopCause int

const (
	stopNone stopCause = iota
	stopRunLimit
	stopPolicyMax
	stopPoolExhausted
	stopNoCandidate
	stopFilled
)

func newGroupState(g types.GroupSnapshot, mix types.RoleMix) *groupState {
	s := &groupState{snapshot: g, mix: mix, currentMembers: g.CurrentMembers}
	s.setMax(g.MaxMembers)
	s.capacityDirty = false
	return s
}

func (s *groupState) setMax(maxMembers int) {
	if maxMembers < 0 {
		maxMembers = 0
	}
	s.maxMembers = maxMembers
	s.remaining = 0
	if s.maxMembers > s.currentMembers {
		s.remaining = s.maxMembers - s.currentMembers
	}
	s.capacityDirty = true
}

// apply records one placed student.
func (s *groupState) apply(role types.Role, highGPA bool) {
	s.currentMembers++
	if s.remaining > 0 {
		s.remaining--
	}
	s.mix = s.mix.WithRoleAdded(role)
	s.placed++
	if highGPA {
		s.highAssigned++
	}
}

// tryExpand grants up to desired extra seats without exceeding the policy
// maximum. It returns the number of seats actually granted.
func (s *groupState) tryExpand(policyMax, desired int) int {
	if desired <= 0 || s.maxMembers >= policyMax {
		return 0
	}
	grant := min(policyMax-s.maxMembers, desired)
	s.setMax(s.maxMembers + grant)
	s.addedCapacity += grant
	return grant
}

// ensurePolicyRange clamps the capacity into the policy's [min, max] range.
// Current membership is never clamped away: a group that already holds more
// members than the policy maximum keeps a capacity covering them.
func (s *groupState) ensurePolicyRange(minSize, maxSize int) {
	target := s.maxMembers
	if target < minSize {
		target = minSize
	}
	if target > maxSize {
		target = maxSize
	}
	if target < s.currentMembers {
		target = s.currentMembers
	}
	if target != s.maxMembers {
		s.setMax(target)
	}
}

// shrinkToFit releases unusable expanded seats once no candidates remain,
// keeping the capacity at least the policy minimum and at least the current
// membership. Only seats this run added are released.
func (s *groupState) shrinkToFit(minSize int) {
	if s.addedCapacity == 0 || s.remaining == 0 {
		return
	}
	target := max(s.currentMembers, minSize)
	floor := s.maxMembers - s.addedCapacity
	if target < floor {
		target = floor
	}
	if target < s.maxMembers {
		s.addedCapacity -= s.maxMembers - target
		s.setMax(target)
	}
}

// stopAt records the first stop cause; later causes never overwrite it.
func (s *groupState) stopAt(cause stopCause) {
	if s.stop == stopNone {
		s.stop = cause
	}
}
