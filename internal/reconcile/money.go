// Package reconcile computes calculated totals from classified data rows
// and validates them against the AI-extracted document total.
package reconcile

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrNotMonetary indicates a cell could not be parsed as a monetary value.
var ErrNotMonetary = errors.New("cell is not a monetary value")

// ParseAmount parses a monetary cell value. Currency symbols and
// thousands separators are stripped; a value wrapped in parentheses is
// negative, per accounting convention.
func ParseAmount(cell string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(cell)
	if cleaned == "" {
		return decimal.Zero, fmt.Errorf("%w: empty cell", ErrNotMonetary)
	}

	negative := false
	if strings.HasPrefix(cleaned, "(") && strings.HasSuffix(cleaned, ")") {
		negative = true
		cleaned = cleaned[1 : len(cleaned)-1]
	}

	cleaned = strings.TrimSpace(cleaned)
	cleaned = strings.TrimPrefix(cleaned, "$")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.TrimSpace(cleaned)

	if strings.HasPrefix(cleaned, "-") {
		negative = !negative
		cleaned = cleaned[1:]
	}

	value, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrNotMonetary, cell)
	}

	if negative {
		value = value.Neg()
	}
	return value, nil
}
