// Package debugprint pretty-prints decoded verification input/output
// records for the CLI's -debug flag.
package debugprint

import (
	"io"

	"github.com/k0kubun/pp/v3"
)

// Print pretty-prints v to w with struct field names and types, the
// way pp renders nested records in a terminal.
func Print(w io.Writer, v any) {
	printer := pp.New()
	printer.SetOutput(w)
	printer.Println(v)
}
