// Package classify distinguishes genuine data rows from summary and
// aggregate rows in extracted commission tables. Each row is scored by
// independent signals and combined into a confidence-weighted verdict.
package classify

import (
	"math"
	"sort"

	"github.com/tahasheikh786/commission-tracker-sub003/internal/model"
)

// Config holds the tunable weights and thresholds for row classification.
// The weights are a starting point, not a contract: the invariants that
// matter are the summary-row cap and keyword dominance.
type Config struct {
	KeywordWeight     float64
	StructuralWeight  float64
	PositionalWeight  float64
	StatisticalWeight float64

	// HighConfidence marks a row as summary on combined score alone.
	HighConfidence float64
	// KeywordAlone marks a row as summary on the keyword signal alone.
	KeywordAlone float64
	// WeakSignal is the per-signal threshold for the multiple-weak-indicators rule.
	WeakSignal float64
	// MaxSummaryFraction caps how much of a table one pass may flag.
	MaxSummaryFraction float64
}

// DefaultConfig returns the default classification configuration.
// Keyword is weighted heaviest because it is the most reliable signal.
func DefaultConfig() Config {
	return Config{
		KeywordWeight:      0.35,
		StructuralWeight:   0.25,
		PositionalWeight:   0.20,
		StatisticalWeight:  0.20,
		HighConfidence:     0.85,
		KeywordAlone:       0.90,
		WeakSignal:         0.50,
		MaxSummaryFraction: 0.20,
	}
}

// Classifier scores table rows as data or summary rows.
type Classifier struct {
	statistical StatisticalStrategy
	config      Config
}

// New creates a classifier with the default configuration and the
// arithmetic z-score outlier strategy.
func New() *Classifier {
	return NewWithConfig(DefaultConfig(), NewZScoreStrategy())
}

// NewWithConfig creates a classifier with custom configuration and
// statistical strategy. A nil strategy falls back to the z-score default.
func NewWithConfig(config Config, statistical StatisticalStrategy) *Classifier {
	if statistical == nil {
		statistical = NewZScoreStrategy()
	}
	return &Classifier{
		config:      config,
		statistical: statistical,
	}
}

// Classify returns one classification per row, order-preserving. It is a
// pure function over the table: the caller decides whether to fold the
// flagged indices into Table.SummaryRowIndices.
func (c *Classifier) Classify(table *model.Table) []model.RowClassification {
	n := len(table.Rows)
	results := make([]model.RowClassification, n)
	if n == 0 {
		return results
	}

	statScores := c.statistical.Score(table)
	columnCount := len(table.Headers)

	for i, row := range table.Rows {
		result := model.RowClassification{RowIndex: i}

		if nonEmptyCells(row) == 0 {
			// Blank separator rows are kept in place, never flagged.
			result.IsBlank = true
			results[i] = result
			continue
		}

		keyword := keywordScore(row)
		structural := structuralScore(row, columnCount)
		positional := positionalScore(i, n)
		statistical := 0.0
		if i < len(statScores) {
			statistical = statScores[i]
		}

		combined := c.config.KeywordWeight*keyword +
			c.config.StructuralWeight*structural +
			c.config.PositionalWeight*positional +
			c.config.StatisticalWeight*statistical

		weakCount := 0
		for _, pair := range []struct {
			signal model.Signal
			score  float64
		}{
			{model.SignalKeyword, keyword},
			{model.SignalStructural, structural},
			{model.SignalPositional, positional},
			{model.SignalStatistical, statistical},
		} {
			if pair.score > c.config.WeakSignal {
				result.Signals = append(result.Signals, pair.signal)
				weakCount++
			}
		}

		result.Confidence = combined
		switch {
		case keyword >= c.config.KeywordAlone:
			result.IsSummary = true
			// A dominant keyword match is trusted past the combined score.
			result.Confidence = math.Max(combined, keyword)
		case combined >= c.config.HighConfidence:
			result.IsSummary = true
		case weakCount >= 2:
			result.IsSummary = true
		}

		results[i] = result
	}

	c.applyCap(results, n)
	c.applyGrandTotalOverride(table, results)

	return results
}

// applyCap enforces the safety invariant that one classification pass
// never flags more than MaxSummaryFraction of a table's rows. When the
// naive rules exceed the cap, only the highest-confidence rows keep
// their flag.
func (c *Classifier) applyCap(results []model.RowClassification, rowCount int) {
	limit := int(math.Ceil(c.config.MaxSummaryFraction * float64(rowCount)))
	if limit < 1 {
		limit = 1
	}

	flagged := make([]int, 0, len(results))
	for i := range results {
		if results[i].IsSummary {
			flagged = append(flagged, i)
		}
	}
	if len(flagged) <= limit {
		return
	}

	sort.SliceStable(flagged, func(a, b int) bool {
		return results[flagged[a]].Confidence > results[flagged[b]].Confidence
	})
	for _, idx := range flagged[limit:] {
		results[idx].IsSummary = false
	}
}

// applyGrandTotalOverride always flags a last row shaped like a grand
// total (empty identifier column, money-shaped trailing cell). This is a
// deterministic layout rule and may exceed the cap by exactly one row.
func (c *Classifier) applyGrandTotalOverride(table *model.Table, results []model.RowClassification) {
	n := len(table.Rows)
	if n == 0 {
		return
	}
	last := n - 1
	if results[last].IsBlank {
		return
	}
	if !isGrandTotalShape(table.Rows[last]) {
		return
	}

	results[last].IsSummary = true
	results[last].Confidence = math.Max(results[last].Confidence, 0.9)
	if !results[last].HasSignal(model.SignalStructural) {
		results[last].Signals = append(results[last].Signals, model.SignalStructural)
	}
	if !results[last].HasSignal(model.SignalPositional) {
		results[last].Signals = append(results[last].Signals, model.SignalPositional)
	}
}

// SummaryIndices extracts the flagged row indices from classifications.
func SummaryIndices(results []model.RowClassification) []int {
	var indices []int
	for _, r := range results {
		if r.IsSummary {
			indices = append(indices, r.RowIndex)
		}
	}
	return indices
}
