package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Concreto-api/internal/application/auth"
	"github.com/jhoicas/Concreto-api/internal/application/ports"
	"github.com/jhoicas/Concreto-api/internal/domain/entity"
)

func actor(role string) entity.Actor {
	return entity.Actor{UserID: "u-1", CompanyID: "c-1", Role: role}
}

func TestRolePolicy_Defaults(t *testing.T) {
	p := auth.NewRolePolicy(nil)
	ctx := context.Background()

	assert.True(t, p.Authorize(ctx, actor(entity.RoleAdmin), ports.CapRecipeManage))
	assert.True(t, p.Authorize(ctx, actor(entity.RoleOperador), ports.CapProductionLog))
	assert.False(t, p.Authorize(ctx, actor(entity.RoleVendedor), ports.CapProductionLog))
	assert.False(t, p.Authorize(ctx, actor(entity.RoleOperador), ports.CapInventoryStockIn))
	assert.True(t, p.Authorize(ctx, actor(entity.RoleBodeguero), ports.CapInventoryStockIn))
}

func TestRolePolicy_ActorIncompleto(t *testing.T) {
	p := auth.NewRolePolicy(nil)
	assert.False(t, p.Authorize(context.Background(), entity.Actor{Role: entity.RoleAdmin}, ports.CapProductionLog),
		"sin usuario ni empresa no hay permisos")
}

func TestRolePolicy_Personalizada(t *testing.T) {
	p := auth.NewRolePolicy(map[string][]string{"auditor": {ports.CapProductionView}})
	assert.True(t, p.Authorize(context.Background(), actor("auditor"), ports.CapProductionView))
	assert.False(t, p.Authorize(context.Background(), actor(entity.RoleOperador), ports.CapProductionLog))
}
