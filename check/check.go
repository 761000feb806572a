// Package check implements the per-clause FERAT expansion checks: the
// existential-literal correspondence between an expansion clause and a QBF
// matrix clause, and the admissibility of the annotations recorded for each
// expansion variable against the universal prefix.
package check

import (
	"github.com/MarcelSimader/FERAT/expansion"
	"github.com/MarcelSimader/FERAT/lit"
	"github.com/MarcelSimader/FERAT/qbf"
	"github.com/MarcelSimader/FERAT/sorting"
)

// A Checker verifies expansion clauses against a parsed, matrix-sorted QBF.
// The U and V literal sets and the sorter stack are allocated once per
// checker and reused across clauses.
type Checker struct {
	qbf *qbf.QBF
	exp *expansion.Expansion

	// u holds universal literals whose variable occurs in the candidate
	// clause, with polarity negated relative to it; v holds both polarities
	// of the universals that do not occur.
	u, v   litSet
	sorter sorting.Sorter
}

// New returns a Checker over the given formulas. The QBF matrix must
// already be sorted by quantifier ordering.
func New(q *qbf.QBF, e *expansion.Expansion) *Checker {
	return &Checker{qbf: q, exp: e}
}

// Run checks every expansion clause in stream order and returns the
// collected result; the verdict is Result.Valid. Each clause is discarded
// once its check completes.
func (c *Checker) Run() (*Result, error) {
	res := &Result{}
	for i := uint32(0); ; i++ {
		clause, err := c.exp.Next()
		if err != nil {
			return nil, err
		}
		if clause == nil {
			break
		}
		c.sorter.Sort(clause, sorting.Identity)
		if err := c.checkClause(clause, i, res); err != nil {
			return nil, err
		}
	}
	c.exp.WarnClauseCount()
	return res, nil
}

// checkClause tests one expansion clause. With an origin map the indicated
// matrix clause is the sole candidate and is trusted even when its
// annotations fail; without one, the matrix is scanned until a candidate
// passes both tests.
func (c *Checker) checkClause(e expansion.Clause, clauseIndex uint32, res *Result) error {
	if c.exp.HasOrigins() && int(clauseIndex) >= c.exp.NumOrigins() {
		c.exp.Warnf("expected %d clauses in clause origin mapping comment ('c o 1 4 2 2 ... 0'), "+
			"but yielded %d clauses so far, falling back to iterative search mode, this might be quite slow",
			c.exp.NumOrigins(), clauseIndex)
		c.exp.DropOrigins()
	}
	found, passed := false, false
	if c.exp.HasOrigins() {
		matrixIndex := c.exp.OriginAt(clauseIndex)
		if int(matrixIndex) >= len(c.qbf.Matrix) {
			return c.exp.Errorf("given origin index %d is invalid, as there are only %d clauses in the QBF matrix",
				matrixIndex+1, len(c.qbf.Matrix))
		}
		q := c.qbf.Matrix[matrixIndex]
		if c.matchesExistentials(q, e) {
			found = true
			passed = c.checkAnnotations(q, e)
		}
	} else {
		for _, q := range c.qbf.Matrix {
			if !c.matchesExistentials(q, e) {
				continue
			}
			found = true
			if c.checkAnnotations(q, e) {
				passed = true
				break
			}
		}
	}
	if passed {
		return nil
	}
	if found {
		res.add(IncorrectAnnotation, clauseIndex)
	} else {
		res.add(IncorrectLiterals, clauseIndex)
	}
	return nil
}

// matchesExistentials reports whether every literal of e translates to a
// literal of q, and q holds no existential (or free) literal beyond those.
// Universal literals of q are ignored here.
func (c *Checker) matchesExistentials(q qbf.Clause, e expansion.Clause) bool {
	for _, el := range e {
		m := c.exp.Mapping(el.Var())
		if m == nil {
			c.exp.WarnUnmapped(el.Var())
			return false
		}
		if !containsLit(q, m.QBFVar.SignedLit(el.Sign())) {
			return false
		}
	}
	existentials := 0
	for _, ql := range q {
		quant := c.qbf.QuantifierOf(ql.Var())
		if quant == nil {
			c.qbf.WarnFree(ql.Var())
			existentials++
		} else if quant.Kind == qbf.Existential {
			existentials++
		}
	}
	return len(e) == existentials
}

// checkAnnotations walks the prefix left of each mapped variable, building
// the U and V universal-literal sets, and tests each annotation against
// their union. q must be sorted by quantifier ordering and e by literal
// value; both sets are logically cleared on entry.
func (c *Checker) checkAnnotations(q qbf.Clause, e expansion.Clause) bool {
	c.u.reset()
	c.v.reset()
	var lastOrd uint32
	universalsSeen := 0
	for _, el := range e {
		m := c.exp.Mapping(el.Var())
		quant := c.qbf.QuantifierOf(m.QBFVar)
		if quant == nil {
			// A free variable counts as existential at the very beginning,
			// so nothing can be assigned to its left.
			c.qbf.WarnFree(m.QBFVar)
			if len(m.Annotation) != 0 {
				return false
			}
			continue
		}
		for ord := lastOrd; ord < quant.Ordering; ord++ {
			block := c.qbf.Prefix[ord]
			if block.Kind != qbf.Universal {
				continue
			}
			for _, u := range block.Vars {
				universalsSeen++
				if l, ok := findVar(q, u); ok {
					c.u.insert(l.Neg())
				} else {
					c.v.insert(u.SignedLit(false))
					c.v.insert(u.SignedLit(true))
				}
			}
		}
		// The annotation must assign exactly the universals to the left of
		// the bound variable, each with a polarity found in U or V.
		if len(m.Annotation) != universalsSeen {
			return false
		}
		for _, a := range m.Annotation {
			if !c.v.contains(a) && !c.u.contains(a) {
				return false
			}
		}
		// The chosen polarities bind the remaining literals of the clause;
		// conflicting ones leave V.
		for _, a := range m.Annotation {
			c.v.removeAll(a.Neg())
		}
		lastOrd = quant.Ordering
	}
	return true
}

func containsLit(q qbf.Clause, l lit.Lit) bool {
	for _, ql := range q {
		if ql == l {
			return true
		}
	}
	return false
}

func findVar(q qbf.Clause, v lit.Var) (lit.Lit, bool) {
	for _, ql := range q {
		if ql.Var() == v {
			return ql, true
		}
	}
	return 0, false
}
