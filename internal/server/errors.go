// Package server provides the HTTP API and form page for the audit service.
package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/jonathan/presence-audit/internal/audit"
	"github.com/jonathan/presence-audit/internal/export"
	"github.com/jonathan/presence-audit/internal/reports"
)

// Error codes returned in the "error" field of JSON error bodies.
const (
	CodeBadRequest        = "bad_request"
	CodeValidation        = "validation_error"
	CodeMissingCredential = "missing_credential"
	CodeGenerationFailed  = "generation_failed"
	CodeBusy              = "busy"
	CodeExportFailed      = "export_failed"
	CodeNotFound          = "not_found"
	CodeCancelled         = "cancelled"
	CodeInternal          = "internal_error"
	CodeRateLimited       = "rate_limit_exceeded"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error        string `json:"error"`
	Message      string `json:"message"`
	Field        string `json:"field,omitempty"`
	OpenSettings bool   `json:"open_settings,omitempty"`
	Fallback     string `json:"fallback,omitempty"`
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		validation *audit.ValidationError
		credential *audit.MissingCredentialError
		generation *audit.GenerationError
		busy       *audit.BusyError
		exportErr  *export.ExportError
	)
	switch {
	case errors.As(err, &validation), errors.As(err, &credential):
		return http.StatusBadRequest
	case errors.As(err, &busy):
		return http.StatusConflict
	case errors.Is(err, reports.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, context.Canceled):
		// nginx's "client closed request"
		return 499
	case errors.As(err, &generation), errors.As(err, &exportErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// errorBody maps err to a user-facing body. Causes of generation and export
// failures are never included.
func errorBody(err error) ErrorBody {
	var (
		validation *audit.ValidationError
		credential *audit.MissingCredentialError
		generation *audit.GenerationError
		busy       *audit.BusyError
		exportErr  *export.ExportError
	)
	switch {
	case errors.As(err, &validation):
		return ErrorBody{Error: CodeValidation, Message: validation.Field + " " + validation.Message, Field: validation.Field}
	case errors.As(err, &credential):
		return ErrorBody{Error: CodeMissingCredential, Message: credential.Error(), OpenSettings: true}
	case errors.As(err, &busy):
		return ErrorBody{Error: CodeBusy, Message: busy.Error()}
	case errors.Is(err, reports.ErrNotFound):
		return ErrorBody{Error: CodeNotFound, Message: "report not found"}
	case errors.Is(err, context.Canceled):
		return ErrorBody{Error: CodeCancelled, Message: "request cancelled"}
	case errors.As(err, &generation):
		return ErrorBody{Error: CodeGenerationFailed, Message: generation.Message}
	case errors.As(err, &exportErr):
		return ErrorBody{Error: CodeExportFailed, Message: "PDF export failed. Download the HTML report instead."}
	default:
		return ErrorBody{Error: CodeInternal, Message: "internal server error"}
	}
}
