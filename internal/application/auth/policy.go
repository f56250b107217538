package auth

import (
	"context"

	"github.com/jhoicas/Concreto-api/internal/application/ports"
	"github.com/jhoicas/Concreto-api/internal/domain/entity"
)

var _ ports.Authorizer = (*RolePolicy)(nil)

// RolePolicy resuelve capacidades a partir del rol del token (sin consultar la DB).
// admin tiene todas las capacidades.
type RolePolicy struct {
	grants map[string]map[string]bool
}

// DefaultGrants es la matriz rol -> capacidades de la planta.
func DefaultGrants() map[string][]string {
	return map[string][]string{
		entity.RoleOperador: {
			ports.CapProductionLog, ports.CapProductionView, ports.CapInventoryView,
		},
		entity.RoleBodeguero: {
			ports.CapInventoryStockIn, ports.CapInventoryManage, ports.CapInventoryView, ports.CapProductionView,
		},
		entity.RoleVendedor: {
			ports.CapProductionView, ports.CapInventoryView,
		},
	}
}

// NewRolePolicy construye la política. grants nil usa DefaultGrants.
func NewRolePolicy(grants map[string][]string) *RolePolicy {
	if grants == nil {
		grants = DefaultGrants()
	}
	p := &RolePolicy{grants: make(map[string]map[string]bool, len(grants))}
	for role, caps := range grants {
		set := make(map[string]bool, len(caps))
		for _, c := range caps {
			set[c] = true
		}
		p.grants[role] = set
	}
	return p
}

// Authorize informa si el actor tiene la capacidad.
func (p *RolePolicy) Authorize(_ context.Context, actor entity.Actor, capability string) bool {
	if actor.UserID == "" || actor.CompanyID == "" || actor.Role == "" {
		return false
	}
	if actor.Role == entity.RoleAdmin {
		return true
	}
	return p.grants[actor.Role][capability]
}
