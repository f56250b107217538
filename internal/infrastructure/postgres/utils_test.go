package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Concreto-api/internal/domain"
)

func TestMapTxError_CodigosDeConcurrencia(t *testing.T) {
	for _, code := range []string{"40001", "40P01", "55P03", "23514"} {
		err := mapTxError(fmt.Errorf("lock: %w", &pgconn.PgError{Code: code}))
		assert.True(t, errors.Is(err, domain.ErrConcurrencyConflict), "código %s", code)
	}
}

func TestMapTxError_OtrosErroresPasan(t *testing.T) {
	base := &pgconn.PgError{Code: "42P01"}
	err := mapTxError(base)
	assert.False(t, errors.Is(err, domain.ErrConcurrencyConflict))
	assert.Same(t, base, err)
	assert.Nil(t, mapTxError(nil))

	assert.True(t, errors.Is(mapTxError(domain.ErrNotFound), domain.ErrNotFound))
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.True(t, isUniqueViolation(errors.New("ERROR: duplicate key (SQLSTATE 23505)")))
}
