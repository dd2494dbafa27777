package repository

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"github.com/josh-kwaku/bank-backoffice/internal/domain"
)

func TestMapStoreError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantIs  error
		wantNot []error
	}{
		{
			name:   "deadline exceeded",
			err:    fmt.Errorf("query: %w", context.DeadlineExceeded),
			wantIs: domain.ErrStoreUnavailable,
		},
		{
			name:   "bad connection",
			err:    driver.ErrBadConn,
			wantIs: domain.ErrStoreUnavailable,
		},
		{
			name:   "connection class",
			err:    &pq.Error{Code: "08006"},
			wantIs: domain.ErrStoreUnavailable,
		},
		{
			name:   "statement canceled",
			err:    &pq.Error{Code: pqQueryCanceled},
			wantIs: domain.ErrStoreUnavailable,
		},
		{
			name:   "serialization failure",
			err:    &pq.Error{Code: pqSerializationFailure},
			wantIs: domain.ErrConflict,
		},
		{
			name:   "deadlock",
			err:    &pq.Error{Code: pqDeadlockDetected},
			wantIs: domain.ErrConflict,
		},
		{
			name:    "unique violation passes through",
			err:     &pq.Error{Code: pqUniqueViolation},
			wantNot: []error{domain.ErrConflict, domain.ErrStoreUnavailable},
		},
		{
			name:    "plain error passes through",
			err:     errors.New("boom"),
			wantNot: []error{domain.ErrConflict, domain.ErrStoreUnavailable},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := mapStoreError(tc.err)
			assert.ErrorIs(t, got, tc.err)
			if tc.wantIs != nil {
				assert.ErrorIs(t, got, tc.wantIs)
			}
			for _, not := range tc.wantNot {
				assert.NotErrorIs(t, got, not)
			}
		})
	}

	assert.NoError(t, mapStoreError(nil))
}

func TestUniqueConstraint(t *testing.T) {
	assert.Equal(t, "customers_email_key", uniqueConstraint(fmt.Errorf("wrap: %w", &pq.Error{Code: pqUniqueViolation, Constraint: "customers_email_key"})))
	assert.Equal(t, "", uniqueConstraint(&pq.Error{Code: "23503", Constraint: "fk"}))
	assert.Equal(t, "", uniqueConstraint(errors.New("x")))
}
