package entity

// Unit es la unidad organizacional que agrupa bodegas y usuarios para el control de acceso.
type Unit struct {
	ID          int64
	Name        string
	Acronym     string
	Description string
}
