package format

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tahasheikh786/commission-tracker-sub003/internal/common"
	"github.com/tahasheikh786/commission-tracker-sub003/internal/model"
)

// Match score thresholds.
const (
	// MinMatchScore is the floor below which a fuzzy candidate is discarded.
	// It is deliberately permissive: carrier documents drift slightly month
	// to month, and total reconciliation backstops low-confidence applies.
	MinMatchScore = 0.5
	// HighMatchScore is the level above which a learned header layout is
	// trusted over freshly extracted headers.
	HighMatchScore = 0.8
)

// Store is the learned-format lookup surface the matcher needs.
type Store interface {
	GetLearnedFormat(ctx context.Context, carrierID, signature string) (*model.LearnedFormat, error)
	ListLearnedFormats(ctx context.Context, carrierID string) ([]model.LearnedFormat, error)
}

// Matcher finds the best learned format for a freshly extracted table.
type Matcher struct {
	store Store
}

// NewMatcher creates a matcher backed by the given store.
func NewMatcher(store Store) *Matcher {
	return &Matcher{store: store}
}

// FindMatch returns the best matching learned format for a carrier and a
// score in [0, 1]. An exact signature match with a usable field mapping
// scores 1.0; otherwise header similarity decides. A nil format with
// score 0 means no candidate cleared the threshold; that is an expected
// outcome, not an error.
func (m *Matcher) FindMatch(ctx context.Context, carrierID string, headers []string, structure Structure) (*model.LearnedFormat, float64, error) {
	signature := Signature(headers, structure)

	exact, err := m.store.GetLearnedFormat(ctx, carrierID, signature)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return nil, 0, fmt.Errorf("failed to look up format by signature: %w", err)
	}
	if exact != nil && len(exact.FieldMapping) > 0 {
		slog.Debug("exact format signature match",
			"carrier_id", carrierID,
			"signature", signature)
		return exact, 1.0, nil
	}

	// Fuzzy fallback over the carrier's formats, most-used first.
	candidates, err := m.store.ListLearnedFormats(ctx, carrierID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list formats for carrier: %w", err)
	}

	normalized := NormalizeHeaders(headers)
	var best *model.LearnedFormat
	bestScore := 0.0

	for i := range candidates {
		candidate := &candidates[i]
		score := headerSimilarity(normalized, NormalizeHeaders(candidate.Headers))
		if score > bestScore {
			best = candidate
			bestScore = score
		}
	}

	if best == nil || bestScore <= MinMatchScore {
		return nil, 0, nil
	}

	slog.Debug("fuzzy format match",
		"carrier_id", carrierID,
		"signature", best.Signature,
		"score", bestScore)
	return best, bestScore, nil
}

// headerSimilarity blends Jaccard similarity over header sets with a
// position-aware sequence similarity for extra precision on reordered
// columns. Both inputs must already be normalized.
func headerSimilarity(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	return 0.7*jaccard(a, b) + 0.3*sequenceSimilarity(a, b)
}

// jaccard computes set intersection over union of header tokens.
func jaccard(a, b []string) float64 {
	setA := make(map[string]bool, len(a))
	for _, h := range a {
		setA[h] = true
	}
	setB := make(map[string]bool, len(b))
	for _, h := range b {
		setB[h] = true
	}

	intersection := 0
	for h := range setA {
		if setB[h] {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// sequenceSimilarity counts position-by-position header equality,
// normalized by the longer list.
func sequenceSimilarity(a, b []string) float64 {
	shorter := len(a)
	if len(b) < shorter {
		shorter = len(b)
	}
	longer := len(a)
	if len(b) > longer {
		longer = len(b)
	}
	if longer == 0 {
		return 0
	}

	matched := 0
	for i := 0; i < shorter; i++ {
		if a[i] == b[i] {
			matched++
		}
	}
	return float64(matched) / float64(longer)
}
