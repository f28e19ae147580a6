package ingest

import "fmt"

// MalformedRowError marks a row that cannot be interpreted at all. The row is
// recorded as failed and processing continues.
type MalformedRowError struct {
	Row   int
	Field string
	Err   error
}

func (e *MalformedRowError) Error() string {
	return fmt.Sprintf("malformed row %d: field %q: %v", e.Row, e.Field, e.Err)
}

func (e *MalformedRowError) Unwrap() error { return e.Err }

// UnknownStateError is raised when a state code is not in the fixed
// two-letter set. States are never created on demand.
type UnknownStateError struct {
	Code string
}

func (e *UnknownStateError) Error() string {
	return fmt.Sprintf("unknown state code %q", e.Code)
}

// UnknownTaxonomyError is raised when a taxonomy code is not in the closed
// reference set populated outside this pipeline.
type UnknownTaxonomyError struct {
	Code string
}

func (e *UnknownTaxonomyError) Error() string {
	return fmt.Sprintf("unknown taxonomy code %q", e.Code)
}

// ConstraintViolationError surfaces a storage constraint the reconciler did
// not anticipate. The row's transaction is rolled back and the row recorded
// as failed; the batch continues.
type ConstraintViolationError struct {
	Detail string
	Err    error
}

func (e *ConstraintViolationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("constraint violation: %s: %v", e.Detail, e.Err)
	}
	return fmt.Sprintf("constraint violation: %s", e.Detail)
}

func (e *ConstraintViolationError) Unwrap() error { return e.Err }
