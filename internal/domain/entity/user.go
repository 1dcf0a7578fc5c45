package entity

// Role es el papel de un usuario. El orden de privilegio lo define Rank, no la comparación de strings.
type Role string

// Roles válidos, de menor a mayor privilegio.
const (
	RoleUser       Role = "user"
	RoleSupervisor Role = "supervisor"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// Rank devuelve la posición del rol en el orden total user < supervisor < admin < super_admin.
// Un rol desconocido queda por debajo de user.
func (r Role) Rank() int {
	switch r {
	case RoleUser:
		return 1
	case RoleSupervisor:
		return 2
	case RoleAdmin:
		return 3
	case RoleSuperAdmin:
		return 4
	default:
		return 0
	}
}

// AtLeast indica si r alcanza o supera el rango de min.
func (r Role) AtLeast(min Role) bool {
	return r.Rank() >= min.Rank()
}

// Principal es el solicitante ya autenticado por el colaborador de auth.
// El núcleo confía en estos datos tal cual llegan.
type Principal struct {
	UserID      int64
	Name        string
	Role        Role
	UnitID      *int64
	WarehouseID *int64
}

// User representa un usuario del sistema (pertenece a una Unit).
type User struct {
	ID          int64
	Name        string
	Email       string
	Role        Role
	UnitID      *int64
	WarehouseID *int64
}
