// Command ferat verifies the expansion step of a FERAT proof: it checks
// that every clause of a propositional expansion is a legal expansion of
// some clause in a QBF, under the variable mappings recorded in the
// expansion's preamble.
package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/MarcelSimader/FERAT/ferat"
	"github.com/MarcelSimader/FERAT/parsing"
)

const version = "1.0.0"

const (
	exitOK          = 0
	exitFailure     = 1
	exitCLIFailure  = 2
	exitVerified    = 10
	exitNotVerified = 20
	exitParsing     = 80
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	var silent, verbose bool
	code := exitOK
	cmd := &cobra.Command{
		Use:   "ferat <qbf-file> <expansion-file>",
		Short: "verify the expansion step of a FERAT proof",
		Long: "ferat checks that a propositional CNF expansion, annotated with\n" +
			"'c x' variable mapping comments, is a legal expansion of a QBF in\n" +
			"QDIMACS format. Both inputs may be gzip-compressed.",
		Args:    cobra.ExactArgs(2),
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			code = verify(args[0], args[1], silent, verbose)
			return nil
		},
	}
	cmd.Flags().BoolVar(&silent, "silent", false, "suppress parser warnings")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "dump the parsed formulas as comments")
	cmd.SetVersionTemplate("FERAT by Simader, Seidl, and Rebola-Pardo\nVersion {{.Version}}\n")
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		return exitCLIFailure
	}
	return code
}

func verify(qbfPath, expPath string, silent, verbose bool) int {
	start := time.Now()
	res, err := ferat.Verify(qbfPath, expPath, ferat.Options{Silent: silent, Verbose: verbose})
	if err != nil {
		var perr *parsing.Error
		if errors.As(err, &perr) {
			fmt.Fprintf(os.Stderr, "c [Parser error %d:%d] %v\n", perr.Line, perr.Col, err)
			return exitParsing
		}
		fmt.Fprintf(os.Stderr, "c %v\n", err)
		return exitFailure
	}
	code := exitVerified
	fmt.Println("c")
	if res.Valid() {
		fmt.Println("s VERIFIED")
	} else {
		fmt.Println("s NOT VERIFIED")
		res.Write(os.Stdout)
		code = exitNotVerified
	}
	fmt.Println("c")
	fmt.Printf("c Total time %v\n", time.Since(start))
	return code
}
