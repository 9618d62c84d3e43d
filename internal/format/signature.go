// Package format implements carrier table-format learning: stable layout
// signatures, fuzzy matching of new tables against learned formats, and
// automatic reapplication of learned settings.
package format

import (
	"crypto/sha256"
	"fmt"
	"strings"
)

// Structure carries the coarse structural features that feed a signature.
type Structure struct {
	ColumnCount          int
	RowCount             int
	HasFinancialKeywords bool
}

// financialHeaderKeywords identify tables that carry monetary columns.
var financialHeaderKeywords = []string{
	"premium", "commission", "billed", "group", "client", "invoice",
	"total", "amount", "due", "paid", "rate", "percentage", "period",
}

// NormalizeHeader lowercases a header, trims it, and collapses internal
// whitespace so extraction noise does not change the signature.
func NormalizeHeader(header string) string {
	return strings.Join(strings.Fields(strings.ToLower(header)), " ")
}

// NormalizeHeaders normalizes every header in order.
func NormalizeHeaders(headers []string) []string {
	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = NormalizeHeader(h)
	}
	return normalized
}

// HasFinancialHeaders reports whether any header contains a financial keyword.
func HasFinancialHeaders(headers []string) bool {
	for _, h := range headers {
		lower := strings.ToLower(h)
		for _, kw := range financialHeaderKeywords {
			if strings.Contains(lower, kw) {
				return true
			}
		}
	}
	return false
}

// StructureFor derives the signature structure from headers and rows.
func StructureFor(headers []string, rows [][]string) Structure {
	return Structure{
		ColumnCount:          len(headers),
		RowCount:             len(rows),
		HasFinancialKeywords: HasFinancialHeaders(headers),
	}
}

// Signature derives a stable fingerprint from a table's headers and
// structure. It is order-sensitive over normalized headers: column order
// matters for financial tables. Row counts are bucketed so minor
// extraction noise maps to the same signature.
func Signature(headers []string, structure Structure) string {
	var b strings.Builder
	b.WriteString(strings.Join(NormalizeHeaders(headers), "|"))
	fmt.Fprintf(&b, "#cols=%d", structure.ColumnCount)
	fmt.Fprintf(&b, "#rows=%s", rowCountBucket(structure.RowCount))
	fmt.Fprintf(&b, "#fin=%t", structure.HasFinancialKeywords)

	sum := sha256.Sum256([]byte(b.String()))
	return fmt.Sprintf("%x", sum)
}

// rowCountBucket coarsens an exact row count into a stable range label.
func rowCountBucket(n int) string {
	switch {
	case n <= 10:
		return "0-10"
	case n <= 50:
		return "11-50"
	case n <= 200:
		return "51-200"
	default:
		return "200+"
	}
}
