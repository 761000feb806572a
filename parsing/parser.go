// Package parsing implements the byte-level reader and the lexical
// primitives shared by the QDIMACS and expansion parsers. Both input
// grammars are line oriented, so the parser tracks line and column positions
// and exposes a newline handler the state machines use to detect line
// boundaries.
package parsing

import (
	"bufio"
	"fmt"
	"io"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/MarcelSimader/FERAT/lit"
)

// Error is a fatal lexical or syntactic error, carrying the position at
// which parsing stopped.
type Error struct {
	Line, Col uint32
	Msg       string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Col, e.Msg)
}

// A Parser reads a byte stream with one byte of lookahead. Advancing past a
// newline increments Line and resets Col; both are 1-based.
type Parser struct {
	rd    *bufio.Reader
	la    byte
	prev  byte
	eof   bool
	ioErr error

	Line, Col uint32

	// Silent suppresses warnings; fatal errors are unaffected.
	Silent bool
	// Logger receives warnings as DIMACS comment lines.
	Logger *logrus.Logger
}

// New returns a Parser reading from r, positioned on the first byte.
func New(r io.Reader) *Parser {
	p := &Parser{rd: bufio.NewReader(r), Line: 1, Logger: DefaultLogger}
	p.Advance()
	return p
}

// EOF reports whether the stream is used up.
func (p *Parser) EOF() bool {
	return p.eof
}

// IOErr returns the underlying read error, if any. A failed read looks like
// EOF to the lexer; callers check this once a stream ends.
func (p *Parser) IOErr() error {
	return p.ioErr
}

// Peek returns the current byte without consuming it.
func (p *Parser) Peek() byte {
	return p.la
}

// Advance consumes one byte.
func (p *Parser) Advance() {
	p.prev = p.la
	if p.prev == '\n' {
		p.Line++
		p.Col = 0
	}
	p.Col++
	b, err := p.rd.ReadByte()
	if err != nil {
		p.la = 0
		p.eof = true
		if err != io.EOF {
			p.ioErr = err
		}
		return
	}
	p.la = b
}

// Errorf builds a fatal *Error at the current position.
func (p *Parser) Errorf(format string, args ...interface{}) *Error {
	return &Error{Line: p.Line, Col: p.Col, Msg: fmt.Sprintf(format, args...)}
}

// Warnf emits a warning at the current position, unless the parser is
// silent.
func (p *Parser) Warnf(format string, args ...interface{}) {
	if p.Silent {
		return
	}
	p.Logger.WithFields(logrus.Fields{"line": p.Line, "col": p.Col}).Warnf(format, args...)
}

// SkipWhite consumes horizontal whitespace (space, tab, vertical tab,
// carriage return) and returns the number of bytes skipped.
func (p *Parser) SkipWhite() uint32 {
	var n uint32
	for !p.eof && (p.la == ' ' || p.la == '\t' || p.la == '\v' || p.la == '\r') {
		p.Advance()
		n++
	}
	return n
}

// HandleNewline skips horizontal whitespace and, if the next byte is a
// newline, consumes it and reports true. The line-oriented state machines
// call this first on every iteration.
func (p *Parser) HandleNewline() bool {
	p.SkipWhite()
	if p.eof || p.la != '\n' {
		return false
	}
	p.Advance()
	return true
}

// SkipLine consumes bytes up to, but not including, the next newline.
func (p *Parser) SkipLine() {
	for !p.eof && p.la != '\n' {
		p.Advance()
	}
}

// Word reads contiguous non-whitespace bytes after skipping leading
// whitespace.
func (p *Parser) Word() string {
	p.SkipWhite()
	var w []byte
	for !p.eof && p.la != ' ' && p.la != '\t' && p.la != '\v' && p.la != '\r' && p.la != '\n' {
		w = append(w, p.la)
		p.Advance()
	}
	return string(w)
}

// Number reads a decimal integer. When expectPositive is set, a leading '-'
// is fatal. A missing digit directly before a newline or EOF reads as 0,
// which lets `p cnf N M` headers parse whether or not they carry the
// optional trailing 0; a non-digit byte anywhere else is fatal.
func (p *Parser) Number(expectPositive bool) (int64, error) {
	if p.ioErr != nil {
		return 0, p.ioErr
	}
	p.SkipWhite()
	neg := false
	if !p.eof && p.la == '-' {
		if expectPositive {
			return 0, p.Errorf("expected a positive number, received '-'")
		}
		neg = true
		p.Advance()
	}
	if p.eof || p.la == '\n' {
		if neg {
			return 0, p.Errorf("expected digits after '-'")
		}
		return 0, nil
	}
	if p.la < '0' || p.la > '9' {
		return 0, p.Errorf("expected a digit, received %q", p.la)
	}
	var n int64
	for !p.eof && p.la >= '0' && p.la <= '9' {
		n = n*10 + int64(p.la-'0')
		if n > math.MaxInt32 {
			return 0, p.Errorf("number is too large")
		}
		p.Advance()
	}
	if neg {
		n = -n
	}
	return n, nil
}

// NumberLiteral reads a number and fails unless it equals want.
func (p *Parser) NumberLiteral(want int64) error {
	n, err := p.Number(false)
	if err != nil {
		return err
	}
	if n != want {
		return p.Errorf("expected %d, received %d", want, n)
	}
	return nil
}

// Variable reads a non-negative number and returns it as a variable, with
// bound checks. 0 is only accepted when acceptZero is set.
func (p *Parser) Variable(acceptZero bool) (lit.Var, error) {
	n, err := p.Number(true)
	if err != nil {
		return 0, err
	}
	if n == 0 && !acceptZero {
		return 0, p.Errorf("expected a variable, received 0")
	}
	if n > int64(lit.MaxVar) {
		return 0, p.Errorf("variable %d exceeds maximum %d", n, lit.MaxVar)
	}
	return lit.Var(n), nil
}

// Literal reads a signed number and returns it in the internal literal
// encoding. 0 is only accepted when acceptZero is set.
func (p *Parser) Literal(acceptZero bool) (lit.Lit, error) {
	n, err := p.Number(false)
	if err != nil {
		return 0, err
	}
	if n == 0 && !acceptZero {
		return 0, p.Errorf("expected a literal, received 0")
	}
	return lit.FromInt(int32(n)), nil
}

// LiteralList reads literals until a terminating 0, a newline, or EOF. The
// 0 is not part of the result; a list ended without one warns.
func (p *Parser) LiteralList() ([]lit.Lit, error) {
	var lits []lit.Lit
	gotZero := false
	for {
		p.SkipWhite()
		if p.eof || p.la == '\n' {
			break
		}
		l, err := p.Literal(true)
		if err != nil {
			return nil, err
		}
		if l == 0 {
			gotZero = true
			break
		}
		lits = append(lits, l)
	}
	if !gotZero {
		p.Warnf("expected '0' delimiter before end of line")
	}
	return lits, nil
}

// VariableList reads variables until a terminating 0, a newline, or EOF.
// The 0 is not part of the result; a list ended without one warns.
func (p *Parser) VariableList() ([]lit.Var, error) {
	var vars []lit.Var
	gotZero := false
	for {
		p.SkipWhite()
		if p.eof || p.la == '\n' {
			break
		}
		v, err := p.Variable(true)
		if err != nil {
			return nil, err
		}
		if v == 0 {
			gotZero = true
			break
		}
		vars = append(vars, v)
	}
	if !gotZero {
		p.Warnf("expected '0' delimiter before end of line")
	}
	return vars, nil
}
