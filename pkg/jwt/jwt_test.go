package jwt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgjwt "github.com/jhoicas/Traspasos-api/pkg/jwt"
)

const secret = "test-secret-key-for-unit-tests"

func TestJWT_GenerateAndParse_ConSucursal(t *testing.T) {
	tok, err := pkgjwt.Generate(secret, "u-1", "suc-centro", "gerente_sucursal", "traspasos-test", 60)
	require.NoError(t, err)

	claims, err := pkgjwt.Parse(secret, tok)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "suc-centro", claims.BranchID)
	assert.Equal(t, "gerente_sucursal", claims.Role)
	assert.Equal(t, "traspasos-test", claims.Issuer)
}

func TestJWT_TokenExpirado_RetornaError(t *testing.T) {
	tok, err := pkgjwt.Generate(secret, "u-1", "suc-centro", "admin", "traspasos-test", -1)
	require.NoError(t, err)

	_, err = pkgjwt.Parse(secret, tok)
	assert.Error(t, err, "token expirado debe retornar error")
}

func TestJWT_SecretIncorrecto_RetornaError(t *testing.T) {
	tok, err := pkgjwt.Generate(secret, "u-1", "suc-centro", "admin", "traspasos-test", 60)
	require.NoError(t, err)

	_, err = pkgjwt.Parse("otro-secret-completamente-distinto", tok)
	assert.Error(t, err)
}

func TestJWT_SecretVacio(t *testing.T) {
	_, err := pkgjwt.Generate("", "u-1", "suc-centro", "admin", "x", 60)
	assert.Error(t, err)
}
