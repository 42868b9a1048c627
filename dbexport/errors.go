package dbexport

import (
	"fmt"
	"strings"
)

var invalidObjectPatterns = []string{
	"is not a valid object name",
	"invalid object name",
	"object does not exist",
	"table does not exist",
	"invalid table name",
	"could not find object",
	"no such table",
	"does not exist",
}

// isInvalidObjectError checks recursively for substrings indicating a
// missing or misspelled table/view in any wrapped error.
func isInvalidObjectError(err error) bool {
	for err != nil {
		errStr := strings.ToLower(err.Error())
		for _, pat := range invalidObjectPatterns {
			if strings.Contains(errStr, pat) {
				return true
			}
		}
		type unwrapper interface{ Unwrap() error }
		if u, ok := err.(unwrapper); ok {
			err = u.Unwrap()
		} else {
			break
		}
	}
	return false
}

// objectHintError keeps the driver error in the chain while appending
// advice to the message.
type objectHintError struct {
	err error
}

func (e *objectHintError) Error() string {
	return fmt.Sprintf("%v (check that the table or view exists and is spelled correctly; if it belongs to another schema use the qualified name, e.g. schema.table)", e.err)
}

func (e *objectHintError) Unwrap() error { return e.err }

func withObjectHint(err error) error {
	if isInvalidObjectError(err) {
		return &objectHintError{err: err}
	}
	return err
}
