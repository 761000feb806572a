// Package qbf models prenex QBF formulas read from QDIMACS streams.
package qbf

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/MarcelSimader/FERAT/lit"
	"github.com/MarcelSimader/FERAT/sorting"
)

// QuantKind is the kind of a quantifier block.
type QuantKind uint8

const (
	// Existential marks an `e` block.
	Existential QuantKind = iota + 1
	// Universal marks an `a` block.
	Universal
)

func (k QuantKind) String() string {
	switch k {
	case Existential:
		return "e"
	case Universal:
		return "a"
	}
	return "?"
}

// A Quantifier is one block of the prefix. Variables bound in any block are
// unique across the entire prefix.
type Quantifier struct {
	Kind     QuantKind
	Ordering uint32 // 0-based position in the prefix
	Vars     []lit.Var
}

// A Clause is an ordered sequence of literals.
type Clause []lit.Lit

// A QBF is a parsed prefix-matrix formula. It owns the variable-to-block
// index and the once-per-variable free-variable warning set.
type QBF struct {
	MaxVar          lit.Var
	NumAlternations uint32
	Prefix          []*Quantifier
	Matrix          []Clause

	prefixIndex map[lit.Var]*Quantifier
	warnedFree  map[lit.Var]bool
	log         *logrus.Logger
	silent      bool
}

// QuantifierOf returns the block binding v, or nil if v is free.
func (q *QBF) QuantifierOf(v lit.Var) *Quantifier {
	return q.prefixIndex[v]
}

// Ordering returns the prefix position of the block binding v. Free
// variables order as existential at position 0, with a one-time warning.
func (q *QBF) Ordering(v lit.Var) uint32 {
	quant := q.prefixIndex[v]
	if quant == nil {
		q.WarnFree(v)
		return 0
	}
	return quant.Ordering
}

// WarnFree emits the warning for a variable missing from the prefix, at most
// once per variable.
func (q *QBF) WarnFree(v lit.Var) {
	if q.warnedFree[v] {
		return
	}
	q.warnedFree[v] = true
	if q.silent {
		return
	}
	q.log.Warnf("variable %d not found in QBF prefix, assuming existentially quantified", v)
}

// SortMatrix orders every clause's literals by their binding quantifier's
// prefix position. The checker's prefix walk relies on this ordering.
func (q *QBF) SortMatrix(s *sorting.Sorter) {
	key := func(l lit.Lit) uint32 { return q.Ordering(l.Var()) }
	for _, c := range q.Matrix {
		s.Sort(c, key)
	}
}

// Dump writes the parsed formula as DIMACS comment lines.
func (q *QBF) Dump(w io.Writer) {
	fmt.Fprintf(w, "c QBF {\n")
	fmt.Fprintf(w, "c   max_var=%d\n", q.MaxVar)
	fmt.Fprintf(w, "c   num_alternations=%d\n", q.NumAlternations)
	fmt.Fprintf(w, "c   prefix:\n")
	for _, quant := range q.Prefix {
		fmt.Fprintf(w, "c     %s", quant.Kind)
		for _, v := range quant.Vars {
			fmt.Fprintf(w, " %d", v)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "c   matrix:\n")
	for _, c := range q.Matrix {
		fmt.Fprintf(w, "c    ")
		for _, l := range c {
			fmt.Fprintf(w, " %s", l)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "c }\n")
}
