package check

import (
	"sort"

	"github.com/MarcelSimader/FERAT/lit"
)

// A litSet is a sorted literal sequence with binary-search membership. The
// backing array persists across clauses; reset keeps the storage.
type litSet struct {
	lits []lit.Lit
}

func (s *litSet) reset() {
	s.lits = s.lits[:0]
}

func (s *litSet) insert(l lit.Lit) {
	i := sort.Search(len(s.lits), func(i int) bool { return s.lits[i] >= l })
	s.lits = append(s.lits, 0)
	copy(s.lits[i+1:], s.lits[i:])
	s.lits[i] = l
}

func (s *litSet) contains(l lit.Lit) bool {
	i := sort.Search(len(s.lits), func(i int) bool { return s.lits[i] >= l })
	return i < len(s.lits) && s.lits[i] == l
}

// removeAll deletes every occurrence of l.
func (s *litSet) removeAll(l lit.Lit) {
	lo := sort.Search(len(s.lits), func(i int) bool { return s.lits[i] >= l })
	hi := lo
	for hi < len(s.lits) && s.lits[hi] == l {
		hi++
	}
	if hi > lo {
		s.lits = append(s.lits[:lo], s.lits[hi:]...)
	}
}
