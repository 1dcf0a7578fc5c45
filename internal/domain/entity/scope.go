package entity

// Scope es el alcance de visibilidad resuelto para un solicitante:
// todo (All) o una unidad concreta.
type Scope struct {
	All    bool
	UnitID int64
}

// ScopeAll es el alcance sin restricciones.
var ScopeAll = Scope{All: true}

// UnitScope restringe a una unidad.
func UnitScope(unitID int64) Scope {
	return Scope{UnitID: unitID}
}

// MovementScope añade al Scope la restricción por autor que aplica al rol base
// en el reporte de movimientos. Con OnlyUserID el Scope es All: el autor manda
// sobre la unidad.
type MovementScope struct {
	Scope
	OnlyUserID *int64
}
