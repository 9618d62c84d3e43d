// Package service defines the interfaces for all application services.
package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/tahasheikh786/commission-tracker-sub003/internal/model"
)

// Storage defines the contract for our persistence layer: learned format
// records, carriers, and statement uploads.
type Storage interface {
	// Learned format operations. SaveLearnedFormat upserts: an existing
	// (carrier, signature) record is merged, never clobbered with less
	// complete data.
	SaveLearnedFormat(ctx context.Context, format *model.LearnedFormat) error
	GetLearnedFormat(ctx context.Context, carrierID, signature string) (*model.LearnedFormat, error)
	ListLearnedFormats(ctx context.Context, carrierID string) ([]model.LearnedFormat, error)
	RecordFormatUsage(ctx context.Context, carrierID, signature string, autoApproved bool) error

	// Carrier operations
	GetCompanyByID(ctx context.Context, id string) (*model.Company, error)
	SaveCompany(ctx context.Context, company *model.Company) error

	// Statement operations
	SaveStatementUpload(ctx context.Context, upload *model.StatementUpload) error
	GetStatementUpload(ctx context.Context, id string) (*model.StatementUpload, error)
	ListStatementUploads(ctx context.Context, carrierID string) ([]model.StatementUpload, error)
	SaveStatementTables(ctx context.Context, uploadID string, tables []*model.Table) error
	GetStatementTables(ctx context.Context, uploadID string) ([]*model.Table, error)

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// CommissionProcessor materializes commission records from an approved
// statement. It is invoked only after a statement reaches approved.
type CommissionProcessor interface {
	BulkProcessCommissions(ctx context.Context, upload *model.StatementUpload, tables []*model.Table, fieldMapping map[string]string) error
}

// DocumentMetadata is what an extractor reports about the document as a
// whole, independent of any particular table.
type DocumentMetadata struct {
	TotalAmount           *decimal.Decimal
	CarrierName           string
	StatementDate         string
	TotalAmountConfidence float64
}

// Extraction is the vendor-agnostic result of running a document
// extractor over a statement file.
type Extraction struct {
	Metadata DocumentMetadata
	Tables   []*model.Table
}

// DocumentExtractor turns a statement file into raw tables plus document
// metadata. Implementations wrap vision/OCR vendors or direct
// spreadsheet parsing; the pipeline is agnostic to which produced it.
type DocumentExtractor interface {
	Extract(ctx context.Context, path string) (*Extraction, error)
}
