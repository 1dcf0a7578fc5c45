package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/auth"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/stock-ledger/pkg/jwt"
)

var cfg = auth.JWTConfig{Secret: "secreto-de-prueba", ExpMinutes: 5, Issuer: "stock-ledger-test"}

func TestIssueToken_LlevaDatosDelUsuario(t *testing.T) {
	s := memory.NewDemoStore()
	uc := auth.NewTokenUseCase(s.Users(), cfg)

	token, user, err := uc.IssueToken(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, entity.RoleSupervisor, user.Role)

	sub, err := jwt.Parse(cfg.Secret, token)
	require.NoError(t, err)
	assert.Equal(t, int64(2), sub.UserID)
	assert.Equal(t, "supervisor", sub.Role)
	require.NotNil(t, sub.UnitID)
	assert.Equal(t, int64(1), *sub.UnitID)
}

func TestIssueToken_UsuarioInexistente(t *testing.T) {
	uc := auth.NewTokenUseCase(memory.NewStore().Users(), cfg)

	_, _, err := uc.IssueToken(context.Background(), 42)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
}

func TestIssueToken_RolDesconocido(t *testing.T) {
	s := memory.NewStore()
	id := s.AddUser(entity.User{Name: "Viejo", Role: "vendedor"})
	uc := auth.NewTokenUseCase(s.Users(), cfg)

	_, _, err := uc.IssueToken(context.Background(), id)
	assert.Equal(t, domain.KindInvalidInput, domain.KindOf(err))
}
