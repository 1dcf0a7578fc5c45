package jwt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/pkg/jwt"
)

func TestGenerateParse_RoundTrip(t *testing.T) {
	unit := int64(3)
	token, err := jwt.Generate("s3cr3t", "stock-ledger", jwt.Subject{
		UserID: 7, Name: "Ana", Role: "supervisor", UnitID: &unit,
	}, 5)
	require.NoError(t, err)

	sub, err := jwt.Parse("s3cr3t", token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), sub.UserID)
	assert.Equal(t, "Ana", sub.Name)
	assert.Equal(t, "supervisor", sub.Role)
	require.NotNil(t, sub.UnitID)
	assert.Equal(t, int64(3), *sub.UnitID)
	assert.Nil(t, sub.WarehouseID)
}

func TestParse_FirmaIncorrecta(t *testing.T) {
	token, err := jwt.Generate("uno", "x", jwt.Subject{UserID: 1, Role: "user"}, 5)
	require.NoError(t, err)

	_, err = jwt.Parse("otro", token)
	assert.Error(t, err)
}

func TestParse_Expirado(t *testing.T) {
	token, err := jwt.Generate("s", "x", jwt.Subject{UserID: 1, Role: "user"}, -1)
	require.NoError(t, err)

	_, err = jwt.Parse("s", token)
	assert.Error(t, err)
}

func TestGenerate_SecretVacio(t *testing.T) {
	_, err := jwt.Generate("", "x", jwt.Subject{UserID: 1}, 5)
	assert.Error(t, err)
}
