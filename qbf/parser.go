package qbf

import (
	"github.com/MarcelSimader/FERAT/lit"
	"github.com/MarcelSimader/FERAT/parsing"
)

type parseState uint8

const (
	stateNone parseState = iota
	stateProblem
	stateComment
	stateQuantifier
	stateClause
)

// Parse reads a QDIMACS formula from p. The grammar is line oriented: a `p
// cnf` header (required, exactly once), `c` comments, `e`/`a` quantifier
// blocks, and clause lines. Structural inconsistencies (count mismatches,
// duplicate prefix variables, missing list terminators) warn and continue;
// lexical problems are fatal.
func Parse(p *parsing.Parser) (*QBF, error) {
	q := &QBF{
		prefixIndex: make(map[lit.Var]*Quantifier),
		warnedFree:  make(map[lit.Var]bool),
		log:         p.Logger,
		silent:      p.Silent,
	}
	var (
		state                        = stateNone
		parsedProblem                bool
		sawQuant, lastExist, isExist bool
		pMaxVar, pNumClauses         int64
	)
	for !p.EOF() {
		if p.HandleNewline() {
			state = stateNone
			continue
		}
		switch state {
		case stateNone:
			switch p.Peek() {
			case 'p':
				state = stateProblem
				p.Advance()
			case 'c':
				state = stateComment
				p.Advance()
			case 'e':
				state = stateQuantifier
				isExist = true
				p.Advance()
			case 'a':
				state = stateQuantifier
				isExist = false
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
			var err error
			if pMaxVar, err = p.Number(true); err != nil {
				return nil, err
			}
			if pNumClauses, err = p.Number(true); err != nil {
				return nil, err
			}
			if err = p.NumberLiteral(0); err != nil {
				return nil, err
			}
			parsedProblem = true
			state = stateNone

		case stateComment:
			p.SkipLine()
			state = stateNone

		case stateClause:
			lits, err := p.LiteralList()
			if err != nil {
				return nil, err
			}
			clause := Clause(lits)
			for _, l := range clause {
				if v := l.Var(); v > q.MaxVar {
					q.MaxVar = v
				}
			}
			q.Matrix = append(q.Matrix, clause)
			state = stateNone

		case stateQuantifier:
			vars, err := p.VariableList()
			if err != nil {
				return nil, err
			}
			kind := Universal
			if isExist {
				kind = Existential
			}
			quant := &Quantifier{Kind: kind}
			for _, v := range vars {
				if _, dup := q.prefixIndex[v]; dup {
					p.Warnf("found duplicate variable %d in prefix, keeping its first appearance", v)
					continue
				}
				quant.Vars = append(quant.Vars, v)
				q.prefixIndex[v] = quant
				if v > q.MaxVar {
					q.MaxVar = v
				}
			}
			// A fully duplicated block ends up empty; drop it so orderings
			// stay aligned with prefix positions.
			if len(quant.Vars) != 0 {
				if sawQuant {
					if lastExist != isExist {
						q.NumAlternations++
					} else {
						p.Warnf("two quantifiers of same type in a row")
					}
				}
				sawQuant = true
				lastExist = isExist
				quant.Ordering = uint32(len(q.Prefix))
				q.Prefix = append(q.Prefix, quant)
			}
			state = stateNone
		}
	}
	if err := p.IOErr(); err != nil {
		return nil, err
	}
	if !parsedProblem {
		return nil, p.Errorf("expected a 'p ...' header but reached EOF")
	}
	if int64(len(q.Matrix)) != pNumClauses {
		p.Warnf("expected %d clause[s], but received %d", pNumClauses, len(q.Matrix))
	}
	if int64(q.MaxVar) != pMaxVar {
		p.Warnf("expected maximum variable to be %d, but maximum variable is actually %d in quantifiers and clauses",
			pMaxVar, q.MaxVar)
		if pMaxVar > int64(q.MaxVar) {
			q.MaxVar = lit.Var(pMaxVar)
		}
	}
	return q, nil
}
