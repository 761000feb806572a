// Package sorting provides the literal sorter used to order clause
// literals, keyed by a caller-supplied projection.
package sorting

import "github.com/MarcelSimader/FERAT/lit"

// A Key projects a literal to its sort key.
type Key func(l lit.Lit) uint32

// Identity orders literals by their encoded value.
func Identity(l lit.Lit) uint32 {
	return uint32(l)
}

// A Sorter runs an iterative in-place quicksort. It holds the partition
// stack so that repeated sorts reuse its storage; the zero value is ready to
// use. Sorting is not stable.
type Sorter struct {
	stack []int
}

// Sort orders lits in place by ascending key.
func (s *Sorter) Sort(lits []lit.Lit, key Key) {
	if len(lits) < 2 {
		return
	}
	s.stack = append(s.stack[:0], 0, len(lits)-1)
	for len(s.stack) > 0 {
		high := s.stack[len(s.stack)-1]
		low := s.stack[len(s.stack)-2]
		s.stack = s.stack[:len(s.stack)-2]
		// Rightmost element is the pivot; everything with a key no larger
		// than it moves left.
		pivot := key(lits[high])
		i := low - 1
		for j := low; j < high; j++ {
			if key(lits[j]) > pivot {
				continue
			}
			i++
			lits[i], lits[j] = lits[j], lits[i]
		}
		if i+1 < high {
			lits[i+1], lits[high] = lits[high], lits[i+1]
		}
		mid := i + 1
		if low+1 < mid {
			s.stack = append(s.stack, low, mid-1)
		}
		if high-1 > mid {
			s.stack = append(s.stack, mid+1, high)
		}
	}
}
