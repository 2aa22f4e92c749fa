package postgres

import (
	"errors"

	"github.com/lib/pq"
)

// Postgres error codes that signal a concurrent-modification problem the
// caller may retry: serialization_failure, deadlock_detected and
// lock_not_available.
var conflictCodes = map[string]struct{}{
	"40001": {},
	"40P01": {},
	"55P03": {},
}

func isStorageConflict(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		_, ok := conflictCodes[string(pqErr.Code)]
		return ok
	}
	return false
}
