package parsing

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// DefaultLogger renders entries as DIMACS comment lines on stdout. Parsers
// use it unless given another logger.
var DefaultLogger = NewLogger(os.Stdout)

// NewLogger returns a logger whose entries come out as `c `-prefixed DIMACS
// comment lines, so diagnostics never break the output protocol. Warnings
// carry the position recorded in the "line" and "col" fields.
func NewLogger(w io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(commentFormatter{})
	return l
}

type commentFormatter struct{}

func (commentFormatter) Format(e *logrus.Entry) ([]byte, error) {
	var b bytes.Buffer
	b.WriteString("c ")
	if e.Level <= logrus.WarnLevel {
		b.WriteString("[Warning")
		if line, ok := e.Data["line"]; ok {
			fmt.Fprintf(&b, " %v:%v", line, e.Data["col"])
		}
		b.WriteString("] ")
	}
	b.WriteString(e.Message)
	b.WriteByte('\n')
	return b.Bytes(), nil
}
