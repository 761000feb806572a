// Package expansion models the annotated propositional expansion of a QBF,
// read from an extended DIMACS stream. The preamble carries `c x` mapping
// comments tying each expansion variable to its QBF original and the
// universal assignments that produced the copy, and optionally one `c o`
// comment recording the QBF matrix clause each expansion clause came from.
package expansion

import (
	"fmt"
	"io"

	"github.com/MarcelSimader/FERAT/lit"
	"github.com/MarcelSimader/FERAT/parsing"
)

// A VarMapping ties one expansion variable to the QBF variable it copies
// and to the annotation, the ordered universal assignments to the left of
// that variable in the prefix.
type VarMapping struct {
	ExpVar     lit.Var
	QBFVar     lit.Var
	Annotation []lit.Lit
}

// A Clause is an ordered sequence of expansion literals.
type Clause []lit.Lit

// An Expansion is the parsed preamble of an expansion stream plus the live
// parser from which clauses are yielded one at a time. The mapping table
// and origin list are read-only once the preamble is parsed.
type Expansion struct {
	// PMaxVar and PNumClauses come from the `p cnf` header, with PMaxVar
	// adjusted upward if the mapping comments mention a larger variable.
	PMaxVar     lit.Var
	PNumClauses uint32
	// NumYielded counts the clauses handed out so far.
	NumYielded uint32

	origins    []uint32
	hasOrigins bool

	mappings    map[lit.Var]*VarMapping
	mappingKeys []lit.Var

	warnedUnmapped map[lit.Var]bool

	p *parsing.Parser
}

// Mapping returns the annotation record for expansion variable v, or nil if
// the preamble never mapped it.
func (e *Expansion) Mapping(v lit.Var) *VarMapping {
	return e.mappings[v]
}

// NumMappings returns the number of mapped expansion variables.
func (e *Expansion) NumMappings() int {
	return len(e.mappings)
}

// HasOrigins reports whether the origin map is still in effect.
func (e *Expansion) HasOrigins() bool {
	return e.hasOrigins
}

// NumOrigins returns the length of the origin map.
func (e *Expansion) NumOrigins() int {
	return len(e.origins)
}

// OriginAt returns the 0-based QBF matrix index recorded for expansion
// clause i.
func (e *Expansion) OriginAt(i uint32) uint32 {
	return e.origins[i]
}

// DropOrigins discards the origin map; the checker falls back to iterating
// the matrix. Later code must tolerate the absence.
func (e *Expansion) DropOrigins() {
	e.origins = nil
	e.hasOrigins = false
}

// WarnUnmapped emits the warning for an expansion variable missing from the
// mapping comments, at most once per variable.
func (e *Expansion) WarnUnmapped(v lit.Var) {
	if e.warnedUnmapped[v] {
		return
	}
	e.warnedUnmapped[v] = true
	e.Warnf("expansion variable %d has no mapping comment", v)
}

// Warnf emits a warning at the parser's current position.
func (e *Expansion) Warnf(format string, args ...interface{}) {
	e.p.Warnf(format, args...)
}

// Errorf builds a fatal parse error at the parser's current position.
func (e *Expansion) Errorf(format string, args ...interface{}) error {
	return e.p.Errorf(format, args...)
}

// WarnClauseCount compares the yielded clause count against the preamble;
// call it once the stream is used up.
func (e *Expansion) WarnClauseCount() {
	if e.NumYielded != e.PNumClauses {
		e.Warnf("expected %d clause[s], but received %d", e.PNumClauses, e.NumYielded)
	}
}

// Dump writes the preamble as DIMACS comment lines.
func (e *Expansion) Dump(w io.Writer) {
	fmt.Fprintf(w, "c Expansion {\n")
	fmt.Fprintf(w, "c   max_var=%d\n", e.PMaxVar)
	fmt.Fprintf(w, "c   clause origins:\n")
	fmt.Fprintf(w, "c    ")
	for _, o := range e.origins {
		fmt.Fprintf(w, " %d", o)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "c   variable mappings:\n")
	for _, v := range e.mappingKeys {
		m := e.mappings[v]
		fmt.Fprintf(w, "c     (exp var) %d <-> (QBF var) %d, annotation:", m.ExpVar, m.QBFVar)
		for _, a := range m.Annotation {
			fmt.Fprintf(w, " %s", a)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "c   clauses yielded=%d\n", e.NumYielded)
	fmt.Fprintf(w, "c }\n")
}
