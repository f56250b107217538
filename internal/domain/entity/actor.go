package entity

// Roles del token.
const (
	RoleAdmin     = "admin"
	RoleBodeguero = "bodeguero"
	RoleOperador  = "operador" // operador de planta
	RoleVendedor  = "vendedor"
)

// Actor identifica a quien ejecuta una operación (extraído del JWT).
type Actor struct {
	UserID    string
	CompanyID string
	Role      string
}
