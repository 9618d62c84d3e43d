package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// StatementStatus tracks a statement upload through the approval pipeline.
type StatementStatus string

// Statement status constants.
const (
	StatementExtracted   StatementStatus = "extracted"
	StatementReconciling StatementStatus = "reconciling"
	StatementApproved    StatementStatus = "approved"
	StatementNeedsReview StatementStatus = "needs_review"
)

// StatementUpload is one uploaded commission statement together with the
// durable output of the approval decision.
type StatementUpload struct {
	CreatedAt         time.Time
	UpdatedAt         time.Time
	TotalMatch        *TotalValidation
	ID                string
	CarrierID         string
	FileName          string
	Status            StatementStatus
	StatementDate     string
	ExtractedTotal    decimal.Decimal
	CalculatedTotal   decimal.Decimal
	AutomatedApproval bool
}

// Company is an insurance carrier whose statements are processed.
type Company struct {
	ID   string
	Name string
}
