// Package errors provides structured error handling with HTTP status mapping.
package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Page errors
	CodePageNotFound      Code = "PAGE_NOT_FOUND"
	CodePageNameEmpty     Code = "PAGE_NAME_EMPTY"
	CodePageAlreadyExists Code = "PAGE_ALREADY_EXISTS"
	CodePageLastRemaining Code = "PAGE_LAST_REMAINING"

	// Reorder errors
	CodeReorderInvalidPermutation Code = "REORDER_INVALID_PERMUTATION"

	// Template errors
	CodeTemplateNotFound  Code = "TEMPLATE_NOT_FOUND"
	CodeTemplateNameEmpty Code = "TEMPLATE_NAME_EMPTY"
	CodeTemplateInUse     Code = "TEMPLATE_IN_USE"
	CodeTemplateReserved  Code = "TEMPLATE_RESERVED"

	// Routing errors
	CodeRoutingEventEmpty Code = "ROUTING_EVENT_EMPTY"

	// Document errors
	CodeDocumentMalformed      Code = "DOCUMENT_MALFORMED"
	CodeDocumentMissingSection Code = "DOCUMENT_MISSING_SECTION"
	CodeDocumentSlugEmpty      Code = "DOCUMENT_SLUG_EMPTY"

	// Request errors
	CodeRequestMalformed Code = "REQUEST_MALFORMED"

	// Storage errors
	CodeNotFound           Code = "NOT_FOUND"
	CodeAlreadyExists      Code = "ALREADY_EXISTS"
	CodeStorageUnavailable Code = "STORAGE_UNAVAILABLE"

	// Editor grant errors
	CodeEditorGrantInvalid Code = "EDITOR_GRANT_INVALID"
	CodeEditorGrantExpired Code = "EDITOR_GRANT_EXPIRED"
)

// HTTPStatus maps domain codes to HTTP status codes.
func (c Code) HTTPStatus() int {
	switch c {
	// Bad request - validation failures, bad input
	case CodePageNameEmpty,
		CodeReorderInvalidPermutation,
		CodeTemplateNameEmpty,
		CodeRoutingEventEmpty,
		CodeDocumentMalformed,
		CodeDocumentMissingSection,
		CodeDocumentSlugEmpty,
		CodeRequestMalformed:
		return http.StatusBadRequest

	// Conflict - state doesn't allow operation
	case CodePageLastRemaining,
		CodePageAlreadyExists,
		CodeTemplateInUse,
		CodeTemplateReserved,
		CodeAlreadyExists:
		return http.StatusConflict

	// Not found - resource doesn't exist
	case CodeNotFound,
		CodePageNotFound,
		CodeTemplateNotFound:
		return http.StatusNotFound

	// Unauthorized - grant verification failures
	case CodeEditorGrantInvalid,
		CodeEditorGrantExpired:
		return http.StatusUnauthorized

	// Service unavailable - optional subsystems that are not configured
	case CodeStorageUnavailable:
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}
