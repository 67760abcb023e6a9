package contract

import "errors"

var (
	ErrModelInvoke     = errors.New("model invoke failed")
	ErrSchemaViolation = errors.New("model response violates schema")
	ErrValidation      = errors.New("validation failed")

	ErrDuplicateEmail = errors.New("lead email already captured")
	ErrLeadNotFound   = errors.New("lead not found")
)
