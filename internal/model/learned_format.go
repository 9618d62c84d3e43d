package model

import (
	"fmt"
	"strings"
	"time"
)

// Confidence bounds for learned formats.
const (
	// InitialFormatConfidence is assigned when a human finishes editing
	// and approving a statement for a carrier.
	InitialFormatConfidence = 90
	// MaxFormatConfidence caps confidence growth on repeated reuse.
	MaxFormatConfidence = 100
)

// TableEditorSettings captures the human corrections made while editing
// a statement: removed tables and rows, confirmed summary rows, and any
// metadata fixes.
type TableEditorSettings struct {
	CorrectedCarrierName   string `json:"corrected_carrier_name,omitempty"`
	CorrectedStatementDate string `json:"corrected_statement_date,omitempty"`
	DeletedTables          []int  `json:"deleted_tables,omitempty"`
	DeletedRows            []int  `json:"deleted_rows,omitempty"`
	SummaryRows            []int  `json:"summary_rows,omitempty"`
}

// LearnedFormat is a carrier-specific, previously human-confirmed table
// layout that can be reapplied automatically to future statements with
// the same format signature.
type LearnedFormat struct {
	LastUsed          time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
	FieldMapping      map[string]string
	CarrierID         string
	Signature         string
	Headers           []string
	EditorSettings    TableEditorSettings
	ConfidenceScore   int
	UsageCount        int
	AutoApprovedCount int
}

// Validate ensures the format can be persisted and reapplied.
func (f *LearnedFormat) Validate() error {
	if strings.TrimSpace(f.CarrierID) == "" {
		return fmt.Errorf("carrier ID is required")
	}
	if strings.TrimSpace(f.Signature) == "" {
		return fmt.Errorf("format signature is required")
	}
	if len(f.Headers) == 0 {
		return fmt.Errorf("headers are required")
	}
	if f.ConfidenceScore < 0 || f.ConfidenceScore > MaxFormatConfidence {
		return fmt.Errorf("confidence score must be between 0 and %d", MaxFormatConfidence)
	}
	if f.UsageCount < 0 {
		return fmt.Errorf("usage count cannot be negative")
	}
	for extracted, canonical := range f.FieldMapping {
		if strings.TrimSpace(extracted) == "" {
			return fmt.Errorf("field mapping contains an empty extracted header")
		}
		if strings.TrimSpace(canonical) == "" {
			return fmt.Errorf("field mapping for %q has an empty canonical field", extracted)
		}
	}
	return nil
}

// MappedField returns the canonical field name for an extracted header,
// if one was learned.
func (f *LearnedFormat) MappedField(header string) (string, bool) {
	canonical, ok := f.FieldMapping[header]
	return canonical, ok
}
