// Package ferat drives end-to-end FERAT verification: parse the QBF, sort
// its matrix by quantifier ordering, parse the expansion preamble, and
// check every expansion clause against the matrix.
package ferat

import (
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/MarcelSimader/FERAT/check"
	"github.com/MarcelSimader/FERAT/expansion"
	"github.com/MarcelSimader/FERAT/parsing"
	"github.com/MarcelSimader/FERAT/qbf"
	"github.com/MarcelSimader/FERAT/sorting"
)

// Options configures a verification run.
type Options struct {
	// Silent suppresses parser warnings.
	Silent bool
	// Verbose dumps the parsed formulas as comment lines.
	Verbose bool
	// Logger receives warnings and progress comments; nil means the
	// default stdout comment logger.
	Logger *logrus.Logger
	// Out is where verbose dumps go; nil means stdout.
	Out io.Writer
}

// Verify checks the expansion at expPath against the QBF at qbfPath. Both
// files may be gzip-compressed. The returned result lists every rejected
// expansion clause in input order; Result.Valid gives the verdict.
func Verify(qbfPath, expPath string, opts Options) (*check.Result, error) {
	qr, err := parsing.Open(qbfPath)
	if err != nil {
		return nil, errors.Wrap(err, "qbf")
	}
	defer qr.Close()
	er, err := parsing.Open(expPath)
	if err != nil {
		return nil, errors.Wrap(err, "expansion")
	}
	defer er.Close()
	return VerifyReaders(qr, er, opts)
}

// VerifyReaders is Verify over already-open streams.
func VerifyReaders(qbfIn, expIn io.Reader, opts Options) (*check.Result, error) {
	log := opts.Logger
	if log == nil {
		log = parsing.DefaultLogger
	}
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	start := time.Now()
	qp := parsing.New(qbfIn)
	qp.Silent = opts.Silent
	qp.Logger = log
	q, err := qbf.Parse(qp)
	if err != nil {
		return nil, errors.Wrap(err, "qbf")
	}
	log.Infof("Parsed QBF with max variable %d and %d clause[s]", q.MaxVar, len(q.Matrix))
	log.Infof("QBF parsing took %v", time.Since(start))

	start = time.Now()
	var sorter sorting.Sorter
	q.SortMatrix(&sorter)
	log.Infof("Sorted QBF clauses by quantifier index")
	log.Infof("QBF sorting took %v", time.Since(start))
	if opts.Verbose {
		q.Dump(out)
	}

	start = time.Now()
	ep := parsing.New(expIn)
	ep.Silent = opts.Silent
	ep.Logger = log
	e, err := expansion.ParsePreamble(ep)
	if err != nil {
		return nil, errors.Wrap(err, "expansion")
	}
	log.Infof("Parsed CNF expansion with max variable %d, reporting %d clause[s]", e.PMaxVar, e.PNumClauses)
	log.Infof("CNF expansion parsing took %v", time.Since(start))
	if opts.Verbose {
		e.Dump(out)
	}

	start = time.Now()
	res, err := check.New(q, e).Run()
	if err != nil {
		return nil, errors.Wrap(err, "check")
	}
	log.Infof("Expansion verification took %v", time.Since(start))
	return res, nil
}
