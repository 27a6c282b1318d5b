package database

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/lib/pq"

	"github.com/aster-data/aster/pkg/models"
)

// pq error classes. 08 = connection exception, 40 = transaction rollback
// (includes 40P01 deadlock), 57 = operator intervention, 53 = insufficient
// resources.
var retryableClasses = map[string]bool{
	"08": true,
	"40": true,
	"53": true,
	"57": true,
}

const uniqueViolation = "23505"

// ClassifyError wraps a driver error into a StoreError with a
// retryable/non-retryable classification. Connection failures, deadlocks,
// and timeouts are worth retrying; constraint violations never are.
func ClassifyError(op string, err error) error {
	if err == nil {
		return nil
	}

	return &models.StoreError{
		Op:        op,
		Retryable: isRetryable(err),
		Err:       err,
	}
}

// IsNotFound reports whether err is the sql sentinel for an absent row.
func IsNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// IsUniqueViolation reports whether err is a Postgres unique constraint
// violation, optionally on a specific constraint name.
func IsUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	if string(pqErr.Code) != uniqueViolation {
		return false
	}
	return constraint == "" || pqErr.Constraint == constraint
}

func isRetryable(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return retryableClasses[string(pqErr.Code.Class())]
	}

	// Driver-level failures that never reach the server have no SQLSTATE.
	msg := strings.ToLower(err.Error())
	for _, pattern := range []string{"connection refused", "connection reset", "broken pipe", "timeout", "deadlock"} {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}
