package classify

import (
	"regexp"
	"strings"
)

// summaryKeywords are phrases that identify aggregate rows in carrier
// statements. Matching is case-insensitive.
var summaryKeywords = []string{
	"total for group",
	"total for vendor",
	"total for agent",
	"total for producer",
	"grand total",
	"subtotal",
	"sub-total",
	"sub total",
	"group total",
	"report total",
	"page total",
	"writing agent name:",
	"writing agent number:",
	"producer name:",
	"producer number:",
	"agent name:",
	"agent number:",
	"statement total",
}

// placeholderCells are values that count as empty for structural scoring.
var placeholderCells = map[string]bool{
	"":    true,
	"-":   true,
	"--":  true,
	"—":   true,
	"n/a": true,
	"na":  true,
}

// moneyPattern matches currency-shaped cells like "$1,234.56" or "($141.14)".
var moneyPattern = regexp.MustCompile(`^\(?\$?[\d,]+\.\d{2}\)?$`)

// isPlaceholder reports whether a cell is empty or a placeholder value.
func isPlaceholder(cell string) bool {
	return placeholderCells[strings.ToLower(strings.TrimSpace(cell))]
}

// isMoneyShaped reports whether a cell looks like a monetary amount.
func isMoneyShaped(cell string) bool {
	return moneyPattern.MatchString(strings.TrimSpace(cell))
}

// nonEmptyCells counts cells that are neither empty nor placeholders.
func nonEmptyCells(row []string) int {
	count := 0
	for _, cell := range row {
		if !isPlaceholder(cell) {
			count++
		}
	}
	return count
}

// keywordScore scores a row against the summary keyword list.
// An exact phrase at the start of the first cell scores 1.0; substring
// matches elsewhere score 0.4-0.8 scaled by the number of matched keywords.
func keywordScore(row []string) float64 {
	if len(row) == 0 {
		return 0
	}

	firstCell := strings.ToLower(strings.TrimSpace(row[0]))
	for _, kw := range summaryKeywords {
		if strings.HasPrefix(firstCell, kw) {
			return 1.0
		}
	}

	joined := strings.ToLower(strings.Join(row, " "))
	matched := 0
	for _, kw := range summaryKeywords {
		if strings.Contains(joined, kw) {
			matched++
		}
	}
	if matched == 0 {
		return 0
	}

	// 0.4 base for one match, +0.2 per additional keyword, capped at 0.8.
	score := 0.4 + 0.2*float64(matched-1)
	if score > 0.8 {
		score = 0.8
	}
	return score
}

// structuralScore scores a row on emptiness patterns: sparse rows and an
// empty identifier (first) column are typical of aggregate rows.
func structuralScore(row []string, columnCount int) float64 {
	if len(row) == 0 || columnCount == 0 {
		return 0
	}

	populated := nonEmptyCells(row)
	if populated == 0 {
		// Fully blank rows are handled separately by the classifier.
		return 0
	}

	score := 0.0

	// Empty identifier column is a strong indicator.
	if isPlaceholder(row[0]) {
		score = 0.6
	}

	// Nearly empty rows in a wide table.
	if columnCount >= 4 && populated <= 2 {
		if score < 0.5 {
			score = 0.5
		}
		score += 0.1
	}

	// Fraction of placeholder cells nudges the score upward.
	emptyFraction := float64(len(row)-populated) / float64(len(row))
	if emptyFraction > 0.5 {
		score += 0.2 * emptyFraction
	}

	if score > 1.0 {
		score = 1.0
	}
	return score
}

// positionalScore gives the conventional positions of aggregate rows a
// bonus: grand totals are usually last, and the first row occasionally
// restates headers as a summary.
func positionalScore(rowIndex, rowCount int) float64 {
	if rowCount == 0 {
		return 0
	}
	switch {
	case rowIndex == rowCount-1:
		return 0.6
	case rowIndex == rowCount-2 && rowCount > 3:
		return 0.5
	case rowIndex == 0:
		return 0.2
	default:
		return 0
	}
}

// isGrandTotalShape reports whether a row matches the deterministic
// last-row grand-total layout: empty identifier column with a populated,
// money-shaped cell in the last or next-to-last position.
func isGrandTotalShape(row []string) bool {
	if len(row) < 2 {
		return false
	}
	if !isPlaceholder(row[0]) {
		return false
	}
	if isMoneyShaped(row[len(row)-1]) {
		return true
	}
	return len(row) >= 3 && isMoneyShaped(row[len(row)-2])
}
