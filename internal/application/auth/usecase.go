// Package auth emite tokens para usuarios existentes. La verificación de credenciales
// vive en el proveedor de identidad; aquí solo se firman los datos del solicitante.
package auth

import (
	"context"
	"fmt"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/pkg/jwt"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// TokenUseCase firma tokens con los datos de un usuario.
type TokenUseCase struct {
	userRepo repository.UserRepository
	jwtCfg   JWTConfig
}

// NewTokenUseCase construye el caso de uso.
func NewTokenUseCase(userRepo repository.UserRepository, jwtCfg JWTConfig) *TokenUseCase {
	return &TokenUseCase{userRepo: userRepo, jwtCfg: jwtCfg}
}

// IssueToken genera un JWT para el usuario userID.
func (uc *TokenUseCase) IssueToken(ctx context.Context, userID int64) (string, *entity.User, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return "", nil, fmt.Errorf("obtener usuario: %w", err)
	}
	if user == nil {
		return "", nil, domain.New(domain.KindNotFound, "usuario no encontrado")
	}
	if user.Role.Rank() == 0 {
		return "", nil, domain.New(domain.KindInvalidInput, fmt.Sprintf("rol desconocido %q", user.Role))
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, uc.jwtCfg.Issuer, jwt.Subject{
		UserID:      user.ID,
		Name:        user.Name,
		Role:        string(user.Role),
		UnitID:      user.UnitID,
		WarehouseID: user.WarehouseID,
	}, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return "", nil, fmt.Errorf("generar token: %w", err)
	}
	return token, user, nil
}
