package access_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/access"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

func TestResolveMovementScope_RolUsuarioSoloPropiosSinUnidad(t *testing.T) {
	unit := int64(3)
	for _, p := range []entity.Principal{
		{UserID: 7, Role: entity.RoleUser},
		{UserID: 7, Role: entity.RoleUser, UnitID: &unit},
	} {
		scope, err := access.ResolveMovementScope(p)
		require.NoError(t, err)
		assert.True(t, scope.All)
		require.NotNil(t, scope.OnlyUserID)
		assert.Equal(t, int64(7), *scope.OnlyUserID)
	}
}

func TestResolveMovementScope_SupervisorPorUnidad(t *testing.T) {
	unit := int64(3)
	scope, err := access.ResolveMovementScope(entity.Principal{UserID: 2, Role: entity.RoleSupervisor, UnitID: &unit})
	require.NoError(t, err)
	assert.False(t, scope.All)
	assert.Equal(t, unit, scope.UnitID)
	assert.Nil(t, scope.OnlyUserID)

	_, err = access.ResolveMovementScope(entity.Principal{UserID: 2, Role: entity.RoleAdmin})
	assert.Equal(t, domain.KindForbidden, domain.KindOf(err))

	scope, err = access.ResolveMovementScope(entity.Principal{UserID: 1, Role: entity.RoleSuperAdmin})
	require.NoError(t, err)
	assert.True(t, scope.All)
	assert.Nil(t, scope.OnlyUserID)
}
