package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// UserRepository lectura de usuarios para emitir tokens.
type UserRepository interface {
	// GetByID devuelve nil, nil si el usuario no existe.
	GetByID(ctx context.Context, id int64) (*entity.User, error)
}
