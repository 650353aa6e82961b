package domain

import "errors"

var (
	errNotFound    = errors.New("no document found with that ID")
	errMalformedID = errors.New("invalid identifier")
)

// ErrNotFound covers both a missing document and one hidden by a
// visibility guard; callers cannot tell the two apart.
func ErrNotFound() error {
	return errNotFound
}

func ErrMalformedID() error {
	return errMalformedID
}

func IsNotFound(err error) bool {
	return errors.Is(err, errNotFound)
}

func IsMalformedID(err error) bool {
	return errors.Is(err, errMalformedID)
}

// ValidationError carries the specific constraint message for one field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ConflictError names the duplicated relationship or field.
type ConflictError struct {
	Relationship string
}

func (e *ConflictError) Error() string {
	return "duplicate value for " + e.Relationship
}

func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}
