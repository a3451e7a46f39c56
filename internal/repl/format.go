package repl

import (
	"fmt"
	"io"
	"strings"

	"budget/internal/core"
)

// writeCalc prints the interactive calc result.
func writeCalc(w io.Writer, s core.Summary) {
	fmt.Fprintf(w, "£%s left over\n", s.Remaining)

	if len(s.Result.Funded) > 0 {
		fmt.Fprintln(w, "Deductions:")
		for _, it := range s.Result.Funded {
			fmt.Fprintf(w, "%s %s\n", it.Title, it.Cost)
		}
	}

	if len(s.Result.Unfunded) > 0 {
		titles := make([]string, len(s.Result.Unfunded))
		for i, it := range s.Result.Unfunded {
			titles[i] = it.Title
		}
		fmt.Fprintln(w, "Not enough money:")
		fmt.Fprintln(w, strings.Join(titles, " "))
	}

	fmt.Fprintln(w)
}

// WriteReport prints the one-shot pay report.
func WriteReport(w io.Writer, s core.Summary) {
	fmt.Fprintf(w, "Base pay is £%s\n", s.Pay)
	fmt.Fprintf(w, "Money spent on items is £%s\n", s.Spent)
	fmt.Fprintf(w, "Money left over is £%s\n", s.Remaining)
}
