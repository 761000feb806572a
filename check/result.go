package check

import (
	"fmt"
	"io"
)

// Kind classifies a failed expansion clause.
type Kind uint8

const (
	// IncorrectLiterals means no QBF clause matches the clause's literals.
	IncorrectLiterals Kind = iota + 1
	// IncorrectAnnotation means a matching QBF clause exists but the
	// recorded annotations cannot have produced the clause.
	IncorrectAnnotation
)

func (k Kind) String() string {
	switch k {
	case IncorrectLiterals:
		return "No QBF clause matches the literals found"
	case IncorrectAnnotation:
		return "Annotations in expansion are incorrect"
	}
	return "unknown inconsistency"
}

// A Failure records one rejected expansion clause by its 0-based index.
type Failure struct {
	Kind        Kind
	ClauseIndex uint32
}

// A Result collects failures in the order expansion clauses were checked,
// which is input order.
type Result struct {
	Failures []Failure
}

// Valid reports whether every checked clause passed.
func (r *Result) Valid() bool {
	return len(r.Failures) == 0
}

func (r *Result) add(k Kind, clauseIndex uint32) {
	r.Failures = append(r.Failures, Failure{Kind: k, ClauseIndex: clauseIndex})
}

// Write prints the failures as DIMACS comment lines, numbering both the
// failures and the clause indices from 1.
func (r *Result) Write(w io.Writer) {
	word := "inconsistencies"
	if len(r.Failures) == 1 {
		word = "inconsistency"
	}
	fmt.Fprintf(w, "c Found %d %s:\n", len(r.Failures), word)
	for i, f := range r.Failures {
		fmt.Fprintf(w, "c   %4d. %s in expansion clause %d\n", i+1, f.Kind, f.ClauseIndex+1)
	}
}
