package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin        = "admin"
	RoleManager      = "manager"
	RoleStoreManager = "store_manager"
	RoleCashier      = "cashier"
	RoleStockClerk   = "stock_clerk"
)

// IsValidRole indica si r es un rol conocido.
func IsValidRole(r string) bool {
	switch r {
	case RoleAdmin, RoleManager, RoleStoreManager, RoleCashier, RoleStockClerk:
		return true
	}
	return false
}

// IsApproverRole indica si el rol puede aprobar reembolsos por encima del umbral.
func IsApproverRole(r string) bool {
	return r == RoleAdmin || r == RoleManager || r == RoleStoreManager
}

// CanTargetAnyStore indica si el rol puede operar sobre tiendas distintas a la suya.
func CanTargetAnyStore(r string) bool {
	return r == RoleAdmin || r == RoleManager
}

// Scope es la tienda activa y el rol de quien opera sobre un documento.
// El valor cero no restringe (procesos internos).
type Scope struct {
	StoreID string
	Role    string
}

// Allows indica si el alcance puede operar sobre un documento de alguna de las tiendas dadas.
func (s Scope) Allows(storeIDs ...string) bool {
	if s == (Scope{}) || CanTargetAnyStore(s.Role) {
		return true
	}
	for _, id := range storeIDs {
		if id != "" && id == s.StoreID {
			return true
		}
	}
	return false
}

// User representa un usuario del sistema con su tienda activa.
type User struct {
	ID           string
	StoreID      string
	Username     string
	PasswordHash string // bcrypt hash
	Name         string
	Role         string
	Status       string // active, inactive
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
