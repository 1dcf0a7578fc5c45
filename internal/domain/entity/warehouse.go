package entity

import "time"

// Warehouse representa una bodega. UnitID solo es nil para bodegas de alcance global.
type Warehouse struct {
	ID          int64
	Name        string
	Description string
	UnitID      *int64
	CreatedAt   time.Time
}

// BelongsTo indica si la bodega pertenece a la unidad indicada.
func (w *Warehouse) BelongsTo(unitID *int64) bool {
	if w.UnitID == nil || unitID == nil {
		return false
	}
	return *w.UnitID == *unitID
}
