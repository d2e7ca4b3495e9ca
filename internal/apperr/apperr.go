// Package apperr contains sentinel errors used across layers for stable
// error mapping at the HTTP boundary.
package apperr

import "errors"

var (
	// ErrAuthRequired indicates no credential was presented at all.
	ErrAuthRequired = errors.New("authentication required")

	// ErrAuthInvalid indicates a presented token failed verification.
	// Expiry and signature failures are deliberately not distinguished.
	ErrAuthInvalid = errors.New("invalid token")

	// ErrForbidden indicates a privileged route was hit without the admin header.
	ErrForbidden = errors.New("admin access required")

	// ErrValidation indicates schema-level field violations.
	ErrValidation = errors.New("validation failed")

	// ErrConflict indicates a unique constraint violation (email or mobile taken).
	ErrConflict = errors.New("already exists")

	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrMalformedID indicates an identifier that cannot be parsed as a record key.
	ErrMalformedID = errors.New("malformed identifier")

	// ErrUploadRejected indicates an attachment with a disallowed extension.
	ErrUploadRejected = errors.New("unsupported file type")

	// ErrUploadTooLarge indicates an attachment over the size ceiling.
	ErrUploadTooLarge = errors.New("file too large")
)
