package jwt_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgjwt "github.com/jhoicas/Concreto-api/pkg/jwt"
)

const secret = "test-secret-key-for-unit-tests"

func TestGenerateParse_ConservaIdentidad(t *testing.T) {
	for _, role := range []string{"admin", "operador", "bodeguero", "vendedor", ""} {
		tok, err := pkgjwt.Generate(secret, "u-1", "co-1", role, "concreto-api-test", 5)
		require.NoError(t, err)

		userID, companyID, gotRole, err := pkgjwt.Parse(secret, tok)
		require.NoError(t, err, "rol %q", role)
		assert.Equal(t, "u-1", userID)
		assert.Equal(t, "co-1", companyID)
		assert.Equal(t, role, gotRole)
	}
}

func TestGenerate_Validaciones(t *testing.T) {
	_, err := pkgjwt.Generate("", "u-1", "co-1", "admin", "x", 5)
	assert.True(t, errors.Is(err, pkgjwt.ErrEmptySecret))

	_, err = pkgjwt.Generate(secret, "", "co-1", "admin", "x", 5)
	assert.Error(t, err, "sin usuario")

	_, err = pkgjwt.Generate(secret, "u-1", "", "admin", "x", 5)
	assert.Error(t, err, "sin empresa")
}

func TestParse_Rechazos(t *testing.T) {
	good, err := pkgjwt.Generate(secret, "u-1", "co-1", "admin", "x", 5)
	require.NoError(t, err)
	expired, err := pkgjwt.Generate(secret, "u-1", "co-1", "admin", "x", -1)
	require.NoError(t, err)

	_, _, _, err = pkgjwt.Parse("", good)
	assert.True(t, errors.Is(err, pkgjwt.ErrEmptySecret))

	_, _, _, err = pkgjwt.Parse("otro-secret", good)
	assert.Error(t, err, "firma con otro secreto")

	_, _, _, err = pkgjwt.Parse(secret, expired)
	assert.Error(t, err, "token expirado")

	_, _, _, err = pkgjwt.Parse(secret, good+"x")
	assert.Error(t, err, "firma alterada")
}
