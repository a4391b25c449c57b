package models

import "errors"

// Sentinel errors for common failure conditions
var (
	ErrNotFound       = errors.New("resource not found")
	ErrConflict       = errors.New("resource already exists")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrBadRequest     = errors.New("bad request")
	ErrInternalServer = errors.New("internal server error")

	// Login state errors
	ErrLocked            = errors.New("too many failed attempts")
	ErrInvalidAccessCode = errors.New("invalid access code")
	ErrInvalidUnlockKey  = errors.New("invalid unlock key")

	// Ledger errors
	ErrInvalidPayment = errors.New("invalid payment amounts")
)
