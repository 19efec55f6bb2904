// Package common defines sentinel errors and constants shared by every layer
// of the taskkeeper server. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors.
	ErrorInternal           = errors.New("internal error")
	ErrorUnauthorized       = errors.New("unauthorized")
	ErrorValidation         = errors.New("validation error")
	ErrorInvalidCredentials = errors.New("invalid username or password")
	ErrorStorageDisabled    = errors.New("object storage is not configured")

	// Token errors. Both are reported to clients as unauthenticated.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
