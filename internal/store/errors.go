package store

import (
	"errors"
	"fmt"
)

var (
	ErrCourseNotFound    = errors.New("store: course not found")
	ErrProgressNotFound  = errors.New("store: progress not found")
	ErrInvalidCourseName = errors.New("store: invalid course name")
	ErrInvalidCourse     = errors.New("store: invalid course")
	ErrInvalidProgress   = errors.New("store: invalid progress")
	ErrSchemaVersion     = errors.New("store: unsupported schema version")
	ErrStaleMastery      = errors.New("store: stored mastery score does not match its inputs")
	ErrCourseMismatch    = errors.New("store: progress belongs to another course")
)

// CorruptStateError is returned when a persisted file cannot be trusted:
// it does not parse, fails schema validation or has an unknown version.
type CorruptStateError struct {
	Path string
	Err  error
}

func (e *CorruptStateError) Error() string {
	return fmt.Sprintf("store: corrupt state in %s: %v", e.Path, e.Err)
}

func (e *CorruptStateError) Unwrap() error {
	return e.Err
}

func corrupt(path string, err error) error {
	return &CorruptStateError{Path: path, Err: err}
}
