package database

import (
	"errors"

	"github.com/lib/pq"
)

const (
	codeForeignKeyViolation = pq.ErrorCode("23503")
	classDataException      = pq.ErrorClass("22")
)

func IsForeignKeyViolation(err error) bool {
	pqErr, ok := asPQError(err)
	return ok && pqErr.Code == codeForeignKeyViolation
}

// IsDataException reports a value Postgres cannot store, such as an over-long string, a
// NUL byte or a malformed uuid. Retrying the same write fails the same way.
func IsDataException(err error) bool {
	pqErr, ok := asPQError(err)
	return ok && pqErr.Code.Class() == classDataException
}

func asPQError(err error) (*pq.Error, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr, true
	}
	return nil, false
}
