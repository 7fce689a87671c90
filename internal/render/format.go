// Package render produces the printable documents for an order aggregate:
// a self-contained HTML page for browser printing and a paginated PDF.
package render

import (
	"fmt"
	"time"
)

// Monetary values are stored at full float precision; rounding to two
// decimals happens here, at display time only.
func brl(v float64) string { return fmt.Sprintf("R$ %.2f", v) }

func fmtQty(v float64) string { return fmt.Sprintf("%.2f", v) }

func fmtDate(t time.Time) string { return t.Format("02/01/2006") }

func fmtDateTime(t time.Time) string { return t.Format("02/01/2006 15:04:05") }

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
