// Package pool maintains tiered FIFO queues of unassigned students for one
// major, partitioned by role and GPA tier.
package pool

import (
	"sort"

	"github.com/jonathan/group-matcher/internal/types"
)

// Tier is the GPA bucket used to balance high-GPA students across groups.
type Tier int

const (
	TierHigh Tier = iota
	TierMid
	TierLow
)

// tierCount and the fixed role order define the scan order for specific
// extraction: frontend/backend/other, each high -> mid -> low.
const tierCount = 3

var roleOrder = [...]types.Role{types.RoleFrontend, types.RoleBackend, types.RoleOther}

// TierConfig controls how GPA tiers are computed at construction.
type TierConfig struct {
	// Percentile is the major-local GPA quantile marking the high tier.
	Percentile float64
	// MinSamples is the minimum number of GPA values required before tiering
	// applies; below it every student lands in the mid tier.
	MinSamples int
	// LowOffset is subtracted from the high threshold to get the low cutoff.
	LowOffset float64
}

// Selection is a dequeued candidate: the student plus the role queue they
// came from and whether they counted as high-GPA.
type Selection struct {
	Student types.StudentSnapshot
	Role    types.Role
	HighGPA bool
}

// RolePools partitions one major's unassigned students into nine disjoint
// FIFO queues ({frontend, backend, other} x {high, mid, low}). Every student
// appears in exactly one queue. Tier membership is computed once at
// construction and never revisited.
type RolePools struct {
	queues    [len(roleOrder)][tierCount][]types.StudentSnapshot
	remaining int
	tiered    bool
	highMin   float64
	lowMax    float64
}

// New builds pools from an unfiltered list of unassigned students.
func New(students []types.StudentSnapshot, cfg TierConfig) *RolePools {
	p := &RolePools{}
	p.computeThresholds(students, cfg)

	for _, student := range students {
		ri := roleIndex(student.Role)
		tier := p.tierOf(student)
		p.queues[ri][tier] = append(p.queues[ri][tier], student)
		p.remaining++
	}
	return p
}

// computeThresholds derives the high/low GPA cutoffs from the major's own GPA
// distribution. Tiering requires at least cfg.MinSamples reported GPAs.
func (p *RolePools) computeThresholds(students []types.StudentSnapshot, cfg TierConfig) {
	var gpas []float64
	for _, student := range students {
		if student.GPA != nil {
			gpas = append(gpas, *student.GPA)
		}
	}
	if len(gpas) < cfg.MinSamples || cfg.MinSamples <= 0 {
		return
	}

	sort.Float64s(gpas)
	idx := int(cfg.Percentile * float64(len(gpas)-1))
	if idx < 0 {
		idx = 0
	}
	if idx >= len(gpas) {
		idx = len(gpas) - 1
	}

	p.tiered = true
	p.highMin = gpas[idx]
	p.lowMax = p.highMin - cfg.LowOffset
}

func (p *RolePools) tierOf(student types.StudentSnapshot) Tier {
	if !p.tiered || student.GPA == nil {
		return TierMid
	}
	switch {
	case *student.GPA >= p.highMin:
		return TierHigh
	case *student.GPA < p.lowMax:
		return TierLow
	default:
		return TierMid
	}
}

func roleIndex(role types.Role) int {
	switch role {
	case types.RoleFrontend:
		return 0
	case types.RoleBackend:
		return 1
	default:
		return 2
	}
}

// RemainingCount returns how many students are still queued.
func (p *RolePools) RemainingCount() int {
	return p.remaining
}

// RemainingInRole returns how many students are queued under the given role.
func (p *RolePools) RemainingInRole(role types.Role) int {
	total := 0
	for _, q := range p.queues[roleIndex(role)] {
		total += len(q)
	}
	return total
}

// DequeueForGroup removes the best next candidate for a group that needs the
// given role. When the group already received a high-GPA member (avoidHigh),
// the high tier is skipped as long as a non-high alternative exists. When the
// preferred role is exhausted, the largest role-queue set is drawn instead.
func (p *RolePools) DequeueForGroup(needed types.Role, avoidHigh bool) *Selection {
	if needed.Known() {
		if sel := p.dequeueRole(needed, avoidHigh); sel != nil {
			return sel
		}
	}
	return p.dequeueLargest(avoidHigh)
}

// dequeueRole pops from one role's queues in high -> mid -> low order.
func (p *RolePools) dequeueRole(role types.Role, avoidHigh bool) *Selection {
	ri := roleIndex(role)

	order := []Tier{TierHigh, TierMid, TierLow}
	if avoidHigh && (len(p.queues[ri][TierMid]) > 0 || len(p.queues[ri][TierLow]) > 0) {
		order = []Tier{TierMid, TierLow, TierHigh}
	}

	for _, tier := range order {
		if len(p.queues[ri][tier]) == 0 {
			continue
		}
		student := p.queues[ri][tier][0]
		p.queues[ri][tier] = p.queues[ri][tier][1:]
		p.remaining--
		return &Selection{Student: student, Role: roleOrder[ri], HighGPA: tier == TierHigh}
	}
	return nil
}

// dequeueLargest pops from whichever role currently holds the most students.
// Ties resolve in fixed frontend/backend/other order.
func (p *RolePools) dequeueLargest(avoidHigh bool) *Selection {
	best := -1
	bestSize := 0
	for ri, role := range roleOrder {
		if size := p.RemainingInRole(role); size > bestSize {
			best = ri
			bestSize = size
		}
	}
	if best < 0 {
		return nil
	}
	return p.dequeueRole(roleOrder[best], avoidHigh)
}

// DequeueSpecific extracts the student with the given ID from whichever queue
// holds them, scanning roles and tiers in fixed order and preserving the
// relative order of the remaining items. Returns nil when absent.
func (p *RolePools) DequeueSpecific(id string) *Selection {
	for ri := range p.queues {
		for tier := range p.queues[ri] {
			for i, student := range p.queues[ri][tier] {
				if student.ID != id {
					continue
				}
				q := p.queues[ri][tier]
				p.queues[ri][tier] = append(q[:i:i], q[i+1:]...)
				p.remaining--
				return &Selection{Student: student, Role: roleOrder[ri], HighGPA: Tier(tier) == TierHigh}
			}
		}
	}
	return nil
}

// Peek returns up to n queued students of a role without removal, ordered
// high -> mid -> low.
func (p *RolePools) Peek(role types.Role, n int) []Selection {
	ri := roleIndex(role)
	var out []Selection
	for tier := TierHigh; tier <= TierLow; tier++ {
		for _, student := range p.queues[ri][tier] {
			if len(out) >= n {
				return out
			}
			out = append(out, Selection{Student: student, Role: roleOrder[ri], HighGPA: tier == TierHigh})
		}
	}
	return out
}
