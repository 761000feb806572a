package check

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MarcelSimader/FERAT/expansion"
	"github.com/MarcelSimader/FERAT/parsing"
	"github.com/MarcelSimader/FERAT/qbf"
	"github.com/MarcelSimader/FERAT/sorting"
)

// runCheck parses both inputs, sorts the matrix, and runs the checker, the
// same sequence the driver performs.
func runCheck(t *testing.T, qbfInput, expInput string) (*Result, error) {
	t.Helper()
	logger := parsing.NewLogger(&bytes.Buffer{})
	qp := parsing.New(strings.NewReader(qbfInput))
	qp.Logger = logger
	q, err := qbf.Parse(qp)
	require.NoError(t, err)
	var sorter sorting.Sorter
	q.SortMatrix(&sorter)
	ep := parsing.New(strings.NewReader(expInput))
	ep.Logger = logger
	e, err := expansion.ParsePreamble(ep)
	require.NoError(t, err)
	return New(q, e).Run()
}

func mustCheck(t *testing.T, qbfInput, expInput string) *Result {
	t.Helper()
	res, err := runCheck(t, qbfInput, expInput)
	require.NoError(t, err)
	return res
}

func TestEmptyFormulas(t *testing.T) {
	res := mustCheck(t, "p cnf 1 0\n", "p cnf 1 0\n")
	assert.True(t, res.Valid())
	assert.Empty(t, res.Failures)
}

// One universal then two existentials; the expansion keeps both existential
// copies for the branch where x1 is false.
const simpleQBF = `p cnf 3 1
a 1 0
e 2 3 0
1 2 3 0
`

func TestSimpleExpansionVerified(t *testing.T) {
	const exp = `p cnf 2 1
c x 1 2 0 2 3 0 -1 0
c o 1 0
1 2 0
`
	res := mustCheck(t, simpleQBF, exp)
	assert.True(t, res.Valid())
}

func TestSimpleExpansionWrongPolarity(t *testing.T) {
	// x1 occurs positively in the clause, so the only admissible
	// assignment is the negative one.
	const exp = `p cnf 2 1
c x 1 0 2 0 1 0
c x 2 0 3 0 -1 0
c o 1 0
1 2 0
`
	res := mustCheck(t, simpleQBF, exp)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, IncorrectAnnotation, res.Failures[0].Kind)
	assert.Equal(t, uint32(0), res.Failures[0].ClauseIndex)
}

// A three-level prefix exercising U, V, and the cross-literal polarity
// removal: forall 1, exists 4 5, forall 2, exists 6, forall 3.
const deepQBF = `p cnf 6 4
a 1 0
e 4 5 0
a 2 0
e 6 0
a 3 0
-1 4 6 0
1 5 6 0
2 6 0
-3 6 0
`

const deepExpMappings = `c x 1 2 0 4 5 0 1 0
c x 3 4 0 4 5 0 -1 0
c x 5 0 6 0 -1 -2 0
c x 6 0 6 0 1 -2 0
c x 7 0 6 0 1 2 0
`

const deepExpClauses = `1 6 0
1 7 0
4 5 0
5 0
6 0
6 0
7 0
`

func TestDeepPrefixVerified(t *testing.T) {
	exp := "p cnf 7 7\n" + deepExpMappings + "c o 1 1 2 3 3 4 4 0\n" + deepExpClauses
	res := mustCheck(t, deepQBF, exp)
	assert.True(t, res.Valid())
	assert.Empty(t, res.Failures)
}

func TestDeepPrefixVerifiedWithoutOrigins(t *testing.T) {
	// Origins are an optimization: dropping the `c o` line must not change
	// the verdict.
	exp := "p cnf 7 7\n" + deepExpMappings + deepExpClauses
	res := mustCheck(t, deepQBF, exp)
	assert.True(t, res.Valid())
}

func TestDeepPrefixWrongAnnotation(t *testing.T) {
	// Flip e7's annotation to [-1, 2]: the clause derived from the first
	// matrix clause no longer matches, since that clause pins x1 to true.
	mappings := strings.Replace(deepExpMappings, "c x 7 0 6 0 1 2 0", "c x 7 0 6 0 -1 2 0", 1)
	exp := "p cnf 7 7\n" + mappings + "c o 1 1 2 3 3 4 4 0\n" + deepExpClauses
	res := mustCheck(t, deepQBF, exp)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, IncorrectAnnotation, res.Failures[0].Kind)
	assert.Equal(t, uint32(1), res.Failures[0].ClauseIndex)
}

func TestRepeatedRunsAgree(t *testing.T) {
	mappings := strings.Replace(deepExpMappings, "c x 7 0 6 0 1 2 0", "c x 7 0 6 0 -1 2 0", 1)
	exp := "p cnf 7 7\n" + mappings + "c o 1 1 2 3 3 4 4 0\n" + deepExpClauses
	first := mustCheck(t, deepQBF, exp)
	second := mustCheck(t, deepQBF, exp)
	assert.Equal(t, first.Failures, second.Failures)
}

func TestExtraExistentialInQBF(t *testing.T) {
	// The matrix clause holds an existential the expansion never covers.
	const qbfIn = "p cnf 2 1\ne 1 2 0\n1 2 0\n"
	const exp = `p cnf 1 1
c x 1 0 1 0 0
c o 1 0
1 0
`
	res := mustCheck(t, qbfIn, exp)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, IncorrectLiterals, res.Failures[0].Kind)
}

func TestUnmappedExpansionLiteral(t *testing.T) {
	const qbfIn = "p cnf 1 1\ne 1 0\n1 0\n"
	const exp = `p cnf 2 1
c x 1 0 1 0 0
c o 1 0
1 2 0
`
	res := mustCheck(t, qbfIn, exp)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, IncorrectLiterals, res.Failures[0].Kind)
}

func TestFreeVariables(t *testing.T) {
	// No prefix at all: every variable is free, which counts as
	// existential with an empty annotation.
	const qbfIn = "p cnf 2 1\n1 2 0\n"
	const exp = `p cnf 2 1
c x 1 2 0 1 2 0 0
c o 1 0
1 2 0
`
	res := mustCheck(t, qbfIn, exp)
	assert.True(t, res.Valid())
}

func TestFreeVariableNonEmptyAnnotation(t *testing.T) {
	const qbfIn = "p cnf 1 1\n1 0\n"
	const exp = `p cnf 1 1
c x 1 0 1 0 5 0
c o 1 0
1 0
`
	res := mustCheck(t, qbfIn, exp)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, IncorrectAnnotation, res.Failures[0].Kind)
}

func TestOriginIsTrusted(t *testing.T) {
	// The origin points at a clause that matches existentially but fails
	// the annotation test, while another matrix clause would pass. The
	// origin is trusted: no retry, incorrect annotation.
	const qbfIn = "p cnf 2 2\na 1 0\ne 2 0\n1 2 0\n-1 2 0\n"
	const expWrongOrigin = `p cnf 1 1
c x 1 0 2 0 1 0
c o 1 0
1 0
`
	res := mustCheck(t, qbfIn, expWrongOrigin)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, IncorrectAnnotation, res.Failures[0].Kind)

	// Without the origin line the iterative scan finds the second clause.
	const expNoOrigin = `p cnf 1 1
c x 1 0 2 0 1 0
1 0
`
	res = mustCheck(t, qbfIn, expNoOrigin)
	assert.True(t, res.Valid())
}

func TestOriginMapTooShort(t *testing.T) {
	// The map covers only the first clause; the checker warns, drops it,
	// and keeps going iteratively with the same verdict.
	const qbfIn = "p cnf 2 2\ne 1 2 0\n1 0\n2 0\n"
	const exp = `p cnf 2 2
c x 1 2 0 1 2 0 0
c o 1 0
1 0
2 0
`
	res := mustCheck(t, qbfIn, exp)
	assert.True(t, res.Valid())
}

func TestOriginOutOfBoundsFatal(t *testing.T) {
	const qbfIn = "p cnf 1 1\ne 1 0\n1 0\n"
	const exp = `p cnf 1 1
c x 1 0 1 0 0
c o 5 0
1 0
`
	_, err := runCheck(t, qbfIn, exp)
	require.Error(t, err)
	var perr *parsing.Error
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, err.Error(), "origin index")
}

func TestFailuresInInputOrder(t *testing.T) {
	const qbfIn = "p cnf 2 1\na 1 0\ne 2 0\n1 2 0\n"
	const exp = `p cnf 2 3
c x 1 0 2 0 1 0
c x 2 0 2 0 -1 0
2 0
1 0
2 0
`
	res := mustCheck(t, qbfIn, exp)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, Failure{Kind: IncorrectAnnotation, ClauseIndex: 1}, res.Failures[0])
}

func TestResultWrite(t *testing.T) {
	res := &Result{}
	res.add(IncorrectLiterals, 0)
	res.add(IncorrectAnnotation, 4)
	var buf bytes.Buffer
	res.Write(&buf)
	out := buf.String()
	assert.Contains(t, out, "Found 2 inconsistencies:")
	assert.Contains(t, out, "1. No QBF clause matches the literals found in expansion clause 1")
	assert.Contains(t, out, "2. Annotations in expansion are incorrect in expansion clause 5")
}
