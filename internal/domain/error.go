package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrAlreadyExists      = errors.New("entity already exists")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrForbidden          = errors.New("not authorized to access this resource")
	ErrUnauthorized       = errors.New("could not validate credentials")
	ErrPremiumRequired    = errors.New("this is a premium feature")
	ErrRateLimited        = errors.New("too many requests")
	ErrExerciseCompleted  = errors.New("this exercise is already completed")
	ErrInvalidExecContext = errors.New("invalid execution context")
	ErrReadDatabaseRow    = errors.New("failed to read database row")

	// Roadmap job lifecycle
	ErrInvalidTransition = errors.New("invalid roadmap job transition")
	ErrStaleJobState     = errors.New("roadmap job is no longer in the expected state")

	// Tutoring oracle
	ErrOracleUnavailable   = errors.New("tutoring oracle unavailable")
	ErrOracleMalformedJSON = errors.New("tutoring oracle returned malformed output")
)
