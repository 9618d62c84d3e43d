package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tahasheikh786/commission-tracker-sub003/internal/model"
)

// Validation errors.
var (
	ErrNilContext     = errors.New("context cannot be nil")
	ErrEmptyString    = errors.New("string parameter cannot be empty")
	ErrNilParameter   = errors.New("parameter cannot be nil")
	ErrInvalidUpload  = errors.New("invalid statement upload")
	ErrInvalidFormat  = errors.New("invalid learned format")
	ErrInvalidCompany = errors.New("invalid company")
	ErrInvalidStatus  = errors.New("invalid statement status")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateLearnedFormat validates a learned format before persistence.
func validateLearnedFormat(format *model.LearnedFormat) error {
	if format == nil {
		return fmt.Errorf("%w: format", ErrNilParameter)
	}
	if err := format.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	return nil
}

// validateUpload validates a statement upload before persistence.
func validateUpload(upload *model.StatementUpload) error {
	if upload == nil {
		return fmt.Errorf("%w: upload", ErrNilParameter)
	}
	if strings.TrimSpace(upload.ID) == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidUpload)
	}
	if strings.TrimSpace(upload.CarrierID) == "" {
		return fmt.Errorf("%w: missing carrier ID", ErrInvalidUpload)
	}

	switch upload.Status {
	case model.StatementExtracted,
		model.StatementReconciling,
		model.StatementApproved,
		model.StatementNeedsReview:
		// Valid status
	default:
		return fmt.Errorf("%w: %s", ErrInvalidStatus, upload.Status)
	}
	return nil
}

// validateCompany validates a company.
func validateCompany(company *model.Company) error {
	if company == nil {
		return fmt.Errorf("%w: company", ErrNilParameter)
	}
	if strings.TrimSpace(company.ID) == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidCompany)
	}
	if strings.TrimSpace(company.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidCompany)
	}
	return nil
}
