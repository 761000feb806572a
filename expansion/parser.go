package expansion

import (
	"github.com/MarcelSimader/FERAT/lit"
	"github.com/MarcelSimader/FERAT/parsing"
)

type parseState uint8

const (
	stateNone parseState = iota
	stateProblem
	stateComment
	statePlainComment
	stateMappingComment
	stateOriginComment
	stateClause
)

// ParsePreamble reads the header and comment preamble from p, stopping at
// the first clause byte. Clauses are then yielded one at a time through
// Next, which keeps reading from the same parser.
func ParsePreamble(p *parsing.Parser) (*Expansion, error) {
	e := &Expansion{
		mappings:       make(map[lit.Var]*VarMapping),
		warnedUnmapped: make(map[lit.Var]bool),
		p:              p,
	}
	var (
		state                        = stateNone
		parsedProblem, parsedOrigins bool
		maxVar                       lit.Var
	)
	for !p.EOF() && state != stateClause {
		if p.HandleNewline() {
			state = stateNone
			continue
		}
		switch state {
		case stateNone:
			switch p.Peek() {
			case 'c':
				state = stateComment
				p.Advance()
			case 'p':
				state = stateProblem
				p.Advance()
			default:
				state = stateClause
			}

		case stateProblem:
			if parsedProblem {
				return nil, p.Errorf("found second, or duplicate 'p ...' header")
			}
			if w := p.Word(); w != "cnf" {
				return nil, p.Errorf("only 'cnf' option is supported, not %q", w)
			}
			pMaxVar, err := p.Number(true)
			if err != nil {
				return nil, err
			}
			pNumClauses, err := p.Number(true)
			if err != nil {
				return nil, err
			}
			e.PMaxVar = lit.Var(pMaxVar)
			e.PNumClauses = uint32(pNumClauses)
			parsedProblem = true
			state = stateNone

		case stateComment:
			switch p.Word() {
			case "x":
				state = stateMappingComment
			case "o":
				state = stateOriginComment
			default:
				state = statePlainComment
			}

		case statePlainComment:
			p.SkipLine()
			state = stateNone

		case stateMappingComment:
			expVars, err := p.VariableList()
			if err != nil {
				return nil, err
			}
			qbfVars, err := p.VariableList()
			if err != nil {
				return nil, err
			}
			if len(qbfVars) != len(expVars) {
				return nil, p.Errorf("QBF variable (%d) and expansion variable lists (%d) must be of the same size",
					len(qbfVars), len(expVars))
			}
			annotation, err := p.LiteralList()
			if err != nil {
				return nil, err
			}
			for i, expVar := range expVars {
				// Each record gets its own copy of the shared annotation.
				m := &VarMapping{
					ExpVar:     expVar,
					QBFVar:     qbfVars[i],
					Annotation: append([]lit.Lit(nil), annotation...),
				}
				if expVar > maxVar {
					maxVar = expVar
				}
				e.mappings[expVar] = m
				e.mappingKeys = append(e.mappingKeys, expVar)
			}
			state = stateNone

		case stateOriginComment:
			gotZero := false
			for {
				p.SkipWhite()
				if p.EOF() || p.Peek() == '\n' {
					break
				}
				n, err := p.Number(true)
				if err != nil {
					return nil, err
				}
				if n == 0 {
					gotZero = true
					break
				}
				// Entries are 1-indexed on the wire, 0 being the sentinel.
				e.origins = append(e.origins, uint32(n-1))
			}
			if !gotZero {
				p.Warnf("expected '0' delimiter before end of line")
			}
			parsedOrigins = true
			state = stateNone
		}
	}
	if err := p.IOErr(); err != nil {
		return nil, err
	}
	if !parsedOrigins {
		p.Warnf("no clause origin mapping comment ('c o 1 4 2 2 ... 0') found, " +
			"falling back to iterative search mode, this might be quite slow")
		e.origins = nil
	} else {
		e.hasOrigins = true
	}
	if !parsedProblem {
		return nil, p.Errorf("expected a 'p ...' header but reached EOF")
	}
	if maxVar != e.PMaxVar {
		p.Warnf("expected maximum variable to be %d, but maximum variable is actually %d in the expansion mapping comments",
			e.PMaxVar, maxVar)
		if maxVar > e.PMaxVar {
			e.PMaxVar = maxVar
		}
	}
	return e, nil
}

// Next yields the next expansion clause, or nil once the stream is used up.
// The caller owns the clause and is expected to discard it before asking
// for the next one; the parser cannot be re-entered.
func (e *Expansion) Next() (Clause, error) {
	for e.p.HandleNewline() {
	}
	if e.p.EOF() {
		return nil, e.p.IOErr()
	}
	lits, err := e.p.LiteralList()
	if err != nil {
		return nil, err
	}
	e.NumYielded++
	return Clause(lits), nil
}
