// Package engine orchestrates the statement approval pipeline: format
// matching, auto-apply, persistence, total reconciliation, and the final
// approval decision.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tahasheikh786/commission-tracker-sub003/internal/classify"
	"github.com/tahasheikh786/commission-tracker-sub003/internal/common"
	"github.com/tahasheikh786/commission-tracker-sub003/internal/format"
	"github.com/tahasheikh786/commission-tracker-sub003/internal/model"
	"github.com/tahasheikh786/commission-tracker-sub003/internal/reconcile"
	"github.com/tahasheikh786/commission-tracker-sub003/internal/service"
)

// ApprovalEngine sequences a statement from extraction to a terminal
// approved or needs_review status.
type ApprovalEngine struct {
	storage     service.Storage
	commissions service.CommissionProcessor
	classifier  *classify.Classifier
	matcher     *format.Matcher
	applier     *format.Applier
	reconciler  *reconcile.Reconciler
}

// Result is the outcome of processing one statement.
type Result struct {
	Upload        *model.StatementUpload
	LearnedFormat *model.LearnedFormat
	Tables        []*model.Table
	Validation    model.TotalValidation
	MatchScore    float64
}

// New creates an approval engine. The commission processor may be nil
// when downstream commission materialization is handled elsewhere.
func New(storage service.Storage, commissions service.CommissionProcessor) *ApprovalEngine {
	classifier := classify.New()
	return &ApprovalEngine{
		storage:     storage,
		commissions: commissions,
		classifier:  classifier,
		matcher:     format.NewMatcher(storage),
		applier:     format.NewApplier(classifier),
		reconciler:  reconcile.NewReconciler(),
	}
}

// ProcessStatement runs the full pipeline for one extracted statement.
// Failure to persist the primary table or upload data aborts the
// operation; learning writes and commission generation are best-effort
// and never fail the approval flow.
func (e *ApprovalEngine) ProcessStatement(ctx context.Context, carrierID, fileName string, extraction *service.Extraction) (*Result, error) {
	if extraction == nil || len(extraction.Tables) == 0 {
		return nil, common.ErrNoTables
	}
	primary := extraction.Tables[0]
	if len(primary.Headers) == 0 {
		return nil, common.ErrMissingHeaders
	}

	company, err := e.storage.GetCompanyByID(ctx, carrierID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve carrier: %w", err)
	}

	// Normalize rows before any scoring so cells index cleanly.
	for _, table := range extraction.Tables {
		table.Normalize()
	}

	learned, matchScore, err := e.matcher.FindMatch(ctx, carrierID, primary.Headers,
		format.StructureFor(primary.Headers, primary.Rows))
	if err != nil {
		// Matching is an optimization; a store hiccup degrades to a
		// fresh extraction rather than failing the statement.
		slog.Warn("format matching unavailable", "carrier_id", carrierID, "error", err)
		learned, matchScore = nil, 0
	}

	tables := extraction.Tables
	var fieldMapping map[string]string
	if learned != nil {
		slog.Info("auto-applying learned format",
			"carrier_id", carrierID,
			"signature", learned.Signature,
			"match_score", matchScore)
		tables = e.applier.ApplyToTables(tables, learned, matchScore)
		fieldMapping = learned.FieldMapping
	} else {
		for _, table := range tables {
			for _, result := range e.classifier.Classify(table) {
				if result.IsSummary {
					table.MarkSummaryRow(result.RowIndex)
				}
			}
		}
	}

	upload := &model.StatementUpload{
		ID:            uuid.NewString(),
		CarrierID:     company.ID,
		FileName:      fileName,
		Status:        model.StatementExtracted,
		StatementDate: extraction.Metadata.StatementDate,
	}
	if learned != nil && learned.EditorSettings.CorrectedStatementDate != "" {
		upload.StatementDate = learned.EditorSettings.CorrectedStatementDate
	}

	// Persist the primary data. A failure here aborts before any state
	// transition so no partial approval is recorded.
	if err := e.storage.SaveStatementUpload(ctx, upload); err != nil {
		return nil, fmt.Errorf("failed to persist statement upload: %w", err)
	}
	if err := e.storage.SaveStatementTables(ctx, upload.ID, tables); err != nil {
		return nil, fmt.Errorf("failed to persist statement tables: %w", err)
	}

	upload.Status = model.StatementReconciling
	validation := e.reconciler.Reconcile(tables, fieldMapping, extraction.Metadata.TotalAmount)

	status, automated := e.DecideApproval(validation)
	upload.Status = status
	upload.AutomatedApproval = automated
	upload.ExtractedTotal = validation.ExtractedTotal
	upload.CalculatedTotal = validation.CalculatedTotal
	if validation.Populated {
		upload.TotalMatch = &validation
	}

	if err := e.storage.SaveStatementUpload(ctx, upload); err != nil {
		return nil, fmt.Errorf("failed to persist approval status: %w", err)
	}

	if status == model.StatementApproved {
		e.generateCommissions(ctx, upload, tables, fieldMapping)
	}

	if learned != nil {
		e.recordUsage(ctx, learned, status == model.StatementApproved)
	}

	slog.Info("statement processed",
		"upload_id", upload.ID,
		"carrier_id", carrierID,
		"status", status,
		"extracted_total", validation.ExtractedTotal,
		"calculated_total", validation.CalculatedTotal)

	return &Result{
		Upload:        upload,
		LearnedFormat: learned,
		Tables:        tables,
		Validation:    validation,
		MatchScore:    matchScore,
	}, nil
}

// DecideApproval maps a reconciliation verdict to the terminal statement
// status. Only an approved statement triggers commission generation.
func (e *ApprovalEngine) DecideApproval(validation model.TotalValidation) (model.StatementStatus, bool) {
	if validation.NeedsReview {
		return model.StatementNeedsReview, false
	}
	return model.StatementApproved, true
}

// LearnFromCorrections persists a learned format after a human finishes
// editing and approving a statement. The format starts at the initial
// confidence and is merged with any existing record for the same layout.
func (e *ApprovalEngine) LearnFromCorrections(ctx context.Context, carrierID string, headers []string, rows [][]string, fieldMapping map[string]string, settings model.TableEditorSettings) (*model.LearnedFormat, error) {
	if len(headers) == 0 {
		return nil, common.ErrMissingHeaders
	}

	structure := format.StructureFor(headers, rows)
	learned := &model.LearnedFormat{
		CarrierID:       carrierID,
		Signature:       format.Signature(headers, structure),
		Headers:         headers,
		FieldMapping:    fieldMapping,
		EditorSettings:  settings,
		ConfidenceScore: model.InitialFormatConfidence,
		LastUsed:        time.Now(),
	}

	if err := e.storage.SaveLearnedFormat(ctx, learned); err != nil {
		return nil, fmt.Errorf("failed to save learned format: %w", err)
	}
	return learned, nil
}

// ClassifyRows exposes the row classifier as a standalone pipeline stage.
func (e *ApprovalEngine) ClassifyRows(table *model.Table) []model.RowClassification {
	return e.classifier.Classify(table)
}

// ReconcileTotals exposes total reconciliation as a standalone pipeline stage.
func (e *ApprovalEngine) ReconcileTotals(tables []*model.Table, fieldMapping map[string]string, extractedTotal *decimal.Decimal) model.TotalValidation {
	return e.reconciler.Reconcile(tables, fieldMapping, extractedTotal)
}

// generateCommissions triggers downstream commission materialization.
// Failures are recoverable: the approval stands, because the statement's
// correctness is independent of whether derived rows were materialized.
func (e *ApprovalEngine) generateCommissions(ctx context.Context, upload *model.StatementUpload, tables []*model.Table, fieldMapping map[string]string) {
	if e.commissions == nil {
		return
	}
	if err := e.commissions.BulkProcessCommissions(ctx, upload, tables, fieldMapping); err != nil {
		slog.Error("commission generation failed after approval",
			"upload_id", upload.ID,
			"error", err)
	}
}

// recordUsage bumps the learned format's usage counters. Learning is
// best-effort: a failed write means the system simply won't benefit from
// this statement next time.
func (e *ApprovalEngine) recordUsage(ctx context.Context, learned *model.LearnedFormat, autoApproved bool) {
	err := common.WithRetry(ctx, func() error {
		return e.storage.RecordFormatUsage(ctx, learned.CarrierID, learned.Signature, autoApproved)
	}, common.RetryOptions{MaxAttempts: 3, InitialDelay: 50 * time.Millisecond})

	if err != nil {
		slog.Warn("failed to record format usage",
			"carrier_id", learned.CarrierID,
			"signature", learned.Signature,
			"error", err)
	}
}
