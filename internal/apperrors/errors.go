package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrAuthorityViolation indicates that the calling service is not permitted to
// mutate the target model.
var ErrAuthorityViolation = errors.New("authority violation")

// ErrIdempotency indicates that the duplicate-detection bookkeeping itself is
// inconsistent (e.g. a record points at an entry that no longer exists).
var ErrIdempotency = errors.New("idempotency error")

// ErrConcurrency indicates lock contention or a lock wait timeout. This is the
// only error category a caller may safely retry.
var ErrConcurrency = errors.New("concurrency error")

// ErrQuarantine indicates an operational failure in the quarantine subsystem.
var ErrQuarantine = errors.New("quarantine error")

// ErrGovernance indicates an operational failure in the repair/governance
// subsystem (e.g. an unknown repair policy).
var ErrGovernance = errors.New("governance error")
