// Package partition computes balanced group-size splits for leftover students.
package partition

// Partition splits total students into group sizes within [min, max] that
// differ by at most one. It searches group counts from ceil(total/max) to
// floor(total/min); for each count, sizes are total/count with the first
// total%count groups getting one extra member. The first count whose sizes all
// fall within range wins. Returns nil when total < min or no count works.
//
// The function is deterministic and side-effect free.
func Partition(total, min, max int) []int {
	if min < 1 {
		min = 1
	}
	if max < min {
		max = min
	}
	if total < min {
		return nil
	}

	lowest := (total + max - 1) / max
	highest := total / min

	for count := lowest; count <= highest; count++ {
		base := total / count
		extra := total % count

		smallest := base
		largest := base
		if extra > 0 {
			largest = base + 1
		}
		if smallest < min || largest > max {
			continue
		}

		sizes := make([]int, count)
		for i := range sizes {
			sizes[i] = base
			if i < extra {
				sizes[i]++
			}
		}
		return sizes
	}

	return nil
}
