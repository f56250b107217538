package http_test

import (
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Concreto-api/internal/application/dto"
	"github.com/jhoicas/Concreto-api/internal/domain/entity"
	apphttp "github.com/jhoicas/Concreto-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/Concreto-api/pkg/jwt"
)

// ─── Helpers ──────────────────────────────────────────────────────────────────

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testUserID    = "00000000-0000-0000-0000-000000000001"
	testCompanyID = "00000000-0000-0000-0000-000000000002"
	testIssuer    = "concreto-api-test"
	testExpMin    = 60
)

var plantRoles = []string{entity.RoleAdmin, entity.RoleOperador, entity.RoleBodeguero, entity.RoleVendedor}

// tokenForRole genera el header Authorization con el rol indicado.
func tokenForRole(t *testing.T, role string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, testCompanyID, role, testIssuer, testExpMin)
	require.NoError(t, err, "debe generarse un token JWT válido")
	return "Bearer " + tok
}

// signWith firma claims arbitrarios para armar tokens que Generate no produce.
func signWith(t *testing.T, method gojwt.SigningMethod, claims pkgjwt.Claims) string {
	t.Helper()
	tok, err := gojwt.NewWithClaims(method, claims).SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return "Bearer " + tok
}

func rawGet(t *testing.T, app *fiber.App, path, authHeader string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// ─── Autenticación ────────────────────────────────────────────────────────────

func TestAuthMiddleware_RechazaCredenciales(t *testing.T) {
	other, err := pkgjwt.Generate("otro-secret-completamente-distinto", testUserID, testCompanyID, entity.RoleAdmin, testIssuer, testExpMin)
	require.NoError(t, err)
	expired, err := pkgjwt.Generate(testJWTSecret, testUserID, testCompanyID, entity.RoleAdmin, testIssuer, -1)
	require.NoError(t, err)
	noRole, err := pkgjwt.Generate(testJWTSecret, testUserID, testCompanyID, "", testIssuer, testExpMin)
	require.NoError(t, err)
	valid := pkgjwt.Claims{
		RegisteredClaims: gojwt.RegisteredClaims{ExpiresAt: gojwt.NewNumericDate(time.Now().Add(time.Hour))},
		UserID:           testUserID,
		CompanyID:        testCompanyID,
		Role:             entity.RoleAdmin,
	}
	withoutExp := valid
	withoutExp.ExpiresAt = nil

	cases := []struct {
		name   string
		header string
		status int
		code   string
	}{
		{"sin header", "", http.StatusUnauthorized, "MISSING_TOKEN"},
		{"esquema distinto de Bearer", "Token abc", http.StatusUnauthorized, "INVALID_TOKEN"},
		{"token malformado", "Bearer token.invalido.aqui", http.StatusUnauthorized, "INVALID_TOKEN"},
		{"secreto incorrecto", "Bearer " + other, http.StatusUnauthorized, "INVALID_TOKEN"},
		{"token expirado", "Bearer " + expired, http.StatusUnauthorized, "INVALID_TOKEN"},
		{"algoritmo distinto de HS256", signWith(t, gojwt.SigningMethodHS512, valid), http.StatusUnauthorized, "INVALID_TOKEN"},
		{"token sin expiración", signWith(t, gojwt.SigningMethodHS256, withoutExp), http.StatusUnauthorized, "INVALID_TOKEN"},
		{"token sin rol", "Bearer " + noRole, http.StatusUnauthorized, "MISSING_ROLE"},
		{"rol fuera de la planta", tokenForRole(t, "auditor"), http.StatusForbidden, "FORBIDDEN"},
	}
	app, _ := plantApp(t, "6000", false)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := rawGet(t, app, "/api/production/runs", tc.header)
			assert.Equal(t, tc.status, resp.StatusCode)
			assert.Equal(t, tc.code, decode[dto.ErrorResponse](t, resp).Code)
		})
	}

	resp := rawGet(t, app, "/api/production/runs", signWith(t, gojwt.SigningMethodHS256, valid))
	assert.Equal(t, http.StatusOK, resp.StatusCode, "los mismos claims firmados con HS256 sí pasan")
}

func TestActorFrom_ArmaActorDelToken(t *testing.T) {
	app := fiber.New()
	app.Get("/actor", apphttp.AuthMiddleware(testJWTSecret), func(c *fiber.Ctx) error {
		return c.JSON(apphttp.ActorFrom(c))
	})

	resp := rawGet(t, app, "/actor", tokenForRole(t, entity.RoleOperador))
	actor := decode[entity.Actor](t, resp)
	assert.Equal(t, entity.Actor{UserID: testUserID, CompanyID: testCompanyID, Role: entity.RoleOperador}, actor)
}

// ─── Matriz de capacidades por ruta ───────────────────────────────────────────

// route describe una operación de la API y los roles que la política deja pasar.
// okStatus es la respuesta esperada para un rol permitido sobre la planta de prueba.
type route struct {
	method   string
	path     string
	body     any
	allowed  []string
	okStatus int
}

func plantRoutes() []route {
	all := plantRoles
	admin := []string{entity.RoleAdmin}
	planta := []string{entity.RoleAdmin, entity.RoleOperador}
	bodega := []string{entity.RoleAdmin, entity.RoleBodeguero}

	return []route{
		{http.MethodPost, "/api/production/preview", map[string]any{"recipe_id": "rec-c25", "volume": "1", "silo_id": "silo-1"}, all, http.StatusOK},
		{http.MethodPost, "/api/production/runs", runBody("1"), planta, http.StatusCreated},
		{http.MethodGet, "/api/production/runs", nil, all, http.StatusOK},
		{http.MethodGet, "/api/production/runs/export", nil, all, http.StatusOK},
		{http.MethodGet, "/api/production/runs/no-existe", nil, all, http.StatusNotFound},
		{http.MethodGet, "/api/production/runs/no-existe/receipt", nil, all, http.StatusNotFound},

		{http.MethodPost, "/api/recipes", map[string]any{
			"product_code": "C30", "name": "Concreto 30 MPa",
			"ingredients": []map[string]any{{"material_id": "agg-1", "quantity_per_unit": "1750", "unit": "kg"}},
		}, admin, http.StatusCreated},
		{http.MethodGet, "/api/recipes", nil, all, http.StatusOK},
		{http.MethodGet, "/api/recipes/rec-c25", nil, all, http.StatusOK},
		{http.MethodPut, "/api/recipes/rec-c25", map[string]any{"name": "Concreto 25 MPa (rev)"}, admin, http.StatusOK},

		{http.MethodPost, "/api/inventory/items", map[string]any{
			"name": "Arena fina", "category": entity.CategoryRawMaterial, "item_type": entity.ItemTypeAggregate, "unit": "kg",
		}, bodega, http.StatusCreated},
		{http.MethodGet, "/api/inventory/items", nil, all, http.StatusOK},
		{http.MethodGet, "/api/inventory/items/agg-1", nil, all, http.StatusOK},
		{http.MethodGet, "/api/inventory/low-stock", nil, all, http.StatusOK},
		{http.MethodPost, "/api/inventory/stock-in", map[string]any{"inventory_item_id": "agg-1", "quantity": "10", "unit_cost": "0.02"}, bodega, http.StatusCreated},

		{http.MethodPost, "/api/locations", map[string]any{"name": "Silo 2", "type": entity.LocationTypeSilo, "capacity": "60000"}, bodega, http.StatusCreated},
		{http.MethodGet, "/api/locations", nil, all, http.StatusOK},
		{http.MethodGet, "/api/locations/silo-1", nil, all, http.StatusOK},
		{http.MethodPut, "/api/locations/silo-1/cement-item", map[string]any{"inventory_item_id": "cem-silo-1"}, bodega, http.StatusOK},
	}
}

func TestRouter_MatrizDeCapacidades(t *testing.T) {
	for _, rt := range plantRoutes() {
		for _, role := range plantRoles {
			granted := slices.Contains(rt.allowed, role)
			t.Run(rt.method+" "+rt.path+" como "+role, func(t *testing.T) {
				app, store := plantApp(t, "6000", true)
				runsBefore := store.RunCount()

				resp := send(t, app, rt.method, rt.path, role, rt.body)
				if granted {
					assert.Equal(t, rt.okStatus, resp.StatusCode, "%s debe poder operar", role)
					return
				}
				assert.Equal(t, http.StatusForbidden, resp.StatusCode, "%s no debe poder operar", role)
				assert.Equal(t, "UNAUTHORIZED", decode[dto.ErrorResponse](t, resp).Code,
					"la negación viene de la política de capacidades, no del filtro de roles")
				assert.Equal(t, runsBefore, store.RunCount())
				assert.True(t, store.Item("agg-1").Quantity.Equal(dec("6000")), "una operación negada no toca existencias")
			})
		}
	}
}
