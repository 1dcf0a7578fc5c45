// Package access implementa el Permission Gate: autoriza lecturas y escrituras
// por rango de rol y alcance de unidad antes de tocar el ledger.
package access

import (
	"context"
	"fmt"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// MinWriteRole es el rango mínimo para mover stock.
const MinWriteRole = entity.RoleSupervisor

// Gate resuelve alcances y autoriza operaciones sobre bodegas.
type Gate struct {
	warehouseRepo repository.WarehouseRepository
}

// NewGate construye el gate.
func NewGate(warehouseRepo repository.WarehouseRepository) *Gate {
	return &Gate{warehouseRepo: warehouseRepo}
}

// ResolveScope es la única fuente del alcance de un solicitante; la consumen
// escrituras y todas las vistas de reporte.
func ResolveScope(p entity.Principal) (entity.Scope, error) {
	if p.Role == entity.RoleSuperAdmin {
		return entity.ScopeAll, nil
	}
	if p.UnitID == nil {
		return entity.Scope{}, domain.New(domain.KindForbidden, "el usuario no pertenece a ninguna unidad")
	}
	return entity.UnitScope(*p.UnitID), nil
}

// ResolveMovementScope aplica además la regla del rol base: solo ve los movimientos que
// registró, en cualquier bodega y aunque no tenga unidad asignada.
func ResolveMovementScope(p entity.Principal) (entity.MovementScope, error) {
	if p.Role != entity.RoleSuperAdmin && !p.Role.AtLeast(entity.RoleSupervisor) {
		uid := p.UserID
		return entity.MovementScope{Scope: entity.ScopeAll, OnlyUserID: &uid}, nil
	}
	scope, err := ResolveScope(p)
	if err != nil {
		return entity.MovementScope{}, err
	}
	return entity.MovementScope{Scope: scope}, nil
}

// AuthorizeWrite exige rango >= supervisor y que la bodega sea de la unidad del solicitante.
func (g *Gate) AuthorizeWrite(ctx context.Context, p entity.Principal, warehouseID int64) error {
	if p.Role == entity.RoleSuperAdmin {
		return nil
	}
	if !p.Role.AtLeast(MinWriteRole) {
		return domain.New(domain.KindForbidden, "no tiene permiso para alterar este stock")
	}
	return g.authorizeUnit(ctx, p, warehouseID)
}

// AuthorizeRead exige que la bodega sea de la unidad del solicitante.
func (g *Gate) AuthorizeRead(ctx context.Context, p entity.Principal, warehouseID int64) error {
	if p.Role == entity.RoleSuperAdmin {
		return nil
	}
	return g.authorizeUnit(ctx, p, warehouseID)
}

func (g *Gate) authorizeUnit(ctx context.Context, p entity.Principal, warehouseID int64) error {
	scope, err := ResolveScope(p)
	if err != nil {
		return err
	}
	wh, err := g.warehouseRepo.GetByID(ctx, warehouseID)
	if err != nil {
		return fmt.Errorf("gate: obtener bodega: %w", err)
	}
	if wh == nil {
		return domain.New(domain.KindNotFound, "bodega no encontrada")
	}
	if scope.All {
		return nil
	}
	if !wh.BelongsTo(&scope.UnitID) {
		return domain.New(domain.KindForbidden, "no tiene permiso en esta unidad")
	}
	return nil
}
