package contract

import "errors"

var (
	ErrModelInvoke     = errors.New("model invoke failed")
	ErrSchemaViolation = errors.New("model response violates schema")
	ErrValidation      = errors.New("validation failed")
	ErrStoreWrite      = errors.New("store write failed")
	ErrNotConfigured   = errors.New("missing required configuration")
)
