package repository

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	"github.com/lib/pq"

	"github.com/josh-kwaku/bank-backoffice/internal/domain"
)

const (
	pqUniqueViolation      = "23505"
	pqSerializationFailure = "40001"
	pqDeadlockDetected     = "40P01"
	pqQueryCanceled        = "57014"
	pqAdminShutdown        = "57P01"
	pqCannotConnectNow     = "57P03"
	pqClassConnection      = "08"
)

// mapStoreError tags transient failures with domain.ErrStoreUnavailable and
// lock races with domain.ErrConflict, keeping the original error in the chain.
func mapStoreError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrStoreUnavailable) || errors.Is(err, domain.ErrConflict) {
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, driver.ErrBadConn) {
		return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch {
		case pqErr.Code == pqSerializationFailure, pqErr.Code == pqDeadlockDetected:
			return fmt.Errorf("%w: %w", domain.ErrConflict, err)
		case pqErr.Code == pqQueryCanceled, pqErr.Code == pqAdminShutdown, pqErr.Code == pqCannotConnectNow,
			string(pqErr.Code.Class()) == pqClassConnection:
			return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
		}
		return err
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}

	return err
}

// uniqueConstraint returns the violated constraint name, or "" if err is not a unique violation.
func uniqueConstraint(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
		return pqErr.Constraint
	}
	return ""
}
