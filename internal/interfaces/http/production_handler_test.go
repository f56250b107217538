package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Concreto-api/internal/application/auth"
	"github.com/jhoicas/Concreto-api/internal/application/dto"
	"github.com/jhoicas/Concreto-api/internal/application/inventory"
	"github.com/jhoicas/Concreto-api/internal/application/order"
	"github.com/jhoicas/Concreto-api/internal/application/production"
	"github.com/jhoicas/Concreto-api/internal/application/recipe"
	"github.com/jhoicas/Concreto-api/internal/domain/entity"
	"github.com/jhoicas/Concreto-api/internal/infrastructure/export"
	"github.com/jhoicas/Concreto-api/internal/infrastructure/memory"
	"github.com/jhoicas/Concreto-api/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/Concreto-api/internal/interfaces/http"
)

// ─── Helpers ──────────────────────────────────────────────────────────────────

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// plantApp arma la API completa sobre el almacén en memoria con la receta C25
// (300 kg cemento + 1800 kg agregado por m³), 1000 kg de cemento en silo-1 y el agregado indicado.
func plantApp(t *testing.T, aggregate string, withDocs bool) (*fiber.App, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	silo := "cem-silo-1"
	store.PutItem(entity.InventoryItem{ID: "cem-silo-1", CompanyID: testCompanyID, Name: "Cemento Silo 1", Category: entity.CategoryRawMaterial, ItemType: entity.ItemTypeCement, Quantity: dec("1000"), Unit: "kg", UnitCost: dec("0.5")})
	store.PutItem(entity.InventoryItem{ID: "agg-1", CompanyID: testCompanyID, Name: "Agregado", Category: entity.CategoryRawMaterial, ItemType: entity.ItemTypeAggregate, Quantity: dec(aggregate), Unit: "kg", UnitCost: dec("0.02")})
	store.PutLocation(entity.StorageLocation{ID: "silo-1", CompanyID: testCompanyID, Name: "Silo 1", Type: entity.LocationTypeSilo, Capacity: dec("60000"), CementItemID: &silo})
	store.PutRecipe(entity.Recipe{
		ID: "rec-c25", CompanyID: testCompanyID, ProductCode: "C25", Name: "Concreto 25 MPa", Version: 1, IsLatest: true,
		Ingredients: []entity.Ingredient{
			{MaterialID: "cem-silo-1", MaterialName: "Cemento", MaterialType: entity.ItemTypeCement, QuantityPerUnit: dec("300"), Unit: "kg"},
			{MaterialID: "agg-1", MaterialName: "Agregado", MaterialType: entity.ItemTypeAggregate, QuantityPerUnit: dec("1800"), Unit: "kg"},
		},
	})

	authz := auth.NewRolePolicy(nil)
	ledger := inventory.NewStockLedger()
	deps := apphttp.RouterDeps{
		ProductionUC: production.NewUseCase(production.Deps{
			TxRunner:     store,
			RecipeRepo:   store.Recipes(),
			LocationRepo: store.Locations(),
			ItemRepo:     store.Items(),
			RunRepo:      store.Runs(),
			Ledger:       ledger,
			Authz:        authz,
			Linker:       order.NewLinkageUseCase(store, store.OrderLines()),
			Log:          zerolog.Nop(),
		}, production.DefaultConfig()),
		RecipeUC:    recipe.NewUseCase(store, store.Recipes(), store.Items(), authz, zerolog.Nop()),
		ItemUC:      inventory.NewItemUseCase(store.Items(), authz),
		StockInUC:   inventory.NewStockInUseCase(store, authz, ledger, zerolog.Nop()),
		LocationUC:  inventory.NewLocationUseCase(store, store.Locations(), authz),
		ServiceName: "concreto-api-test",
		JWTSecret:   testJWTSecret,
	}
	if withDocs {
		deps.Receipts = pdf.NewRunReceiptGenerator("Planta Norte")
		deps.Exporter = export.NewRunsXLSX()
	}
	app := fiber.New()
	apphttp.Router(app, deps)
	return app, store
}

func send(t *testing.T, app *fiber.App, method, path, role string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if role != "" {
		req.Header.Set("Authorization", tokenForRole(t, role))
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func runBody(volume string) map[string]any {
	return map[string]any{"recipe_id": "rec-c25", "silo_id": "silo-1", "volume": volume}
}

// ─── Producción ───────────────────────────────────────────────────────────────

func TestProductionRun_StockInsuficiente_Retorna409(t *testing.T) {
	app, store := plantApp(t, "5000", false)
	resp := send(t, app, http.MethodPost, "/api/production/runs", entity.RoleOperador, runBody("3"))
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	body := decode[dto.InsufficientStockResponse](t, resp)
	assert.Equal(t, "INSUFFICIENT_STOCK", body.Code)
	assert.Equal(t, "Agregado", body.Ingredient)
	assert.True(t, body.Required.Equal(dec("5400")), "requerido %s", body.Required)
	assert.True(t, body.Available.Equal(dec("5000")), "disponible %s", body.Available)
	assert.True(t, store.Item("cem-silo-1").Quantity.Equal(dec("1000")), "el cemento no debe cambiar")
}

func TestProductionRun_Suficiente_Retorna201YSeConsulta(t *testing.T) {
	app, store := plantApp(t, "6000", false)
	resp := send(t, app, http.MethodPost, "/api/production/runs", entity.RoleOperador, runBody("3"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	run := decode[dto.RunSummaryResponse](t, resp)
	assert.Equal(t, "C25", run.ProductCode)
	assert.True(t, run.CementUsed.Equal(dec("900")))
	assert.Len(t, run.Deductions, 2)
	assert.True(t, store.Item("cem-silo-1").Quantity.Equal(dec("100")))
	assert.True(t, store.Item("agg-1").Quantity.Equal(dec("600")))

	got := send(t, app, http.MethodGet, "/api/production/runs/"+run.RunID, entity.RoleVendedor, nil)
	require.Equal(t, http.StatusOK, got.StatusCode)
	assert.Equal(t, run.RunID, decode[dto.RunSummaryResponse](t, got).RunID)

	list := send(t, app, http.MethodGet, "/api/production/runs?limit=5", entity.RoleOperador, nil)
	require.Equal(t, http.StatusOK, list.StatusCode)
	assert.Len(t, decode[dto.RunListResponse](t, list).Items, 1)
}

func TestProductionRun_RolSinPermiso_Retorna403(t *testing.T) {
	app, store := plantApp(t, "6000", false)
	resp := send(t, app, http.MethodPost, "/api/production/runs", entity.RoleVendedor, runBody("1"))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "UNAUTHORIZED", decode[dto.ErrorResponse](t, resp).Code)
	assert.Equal(t, 0, store.RunCount())
}

func TestProductionRun_EntradaInvalida_Retorna400(t *testing.T) {
	app, _ := plantApp(t, "6000", false)

	resp := send(t, app, http.MethodPost, "/api/production/runs", entity.RoleOperador, runBody("0"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", decode[dto.ErrorResponse](t, resp).Code)

	req := httptest.NewRequest(http.MethodPost, "/api/production/runs", strings.NewReader("{no-json"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", tokenForRole(t, entity.RoleOperador))
	raw, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, raw.StatusCode)
	assert.Equal(t, "INVALID_BODY", decode[dto.ErrorResponse](t, raw).Code)
}

func TestProductionRun_RecetaInexistente_Retorna404(t *testing.T) {
	app, _ := plantApp(t, "6000", false)
	body := runBody("1")
	body["recipe_id"] = "no-existe"
	resp := send(t, app, http.MethodPost, "/api/production/runs", entity.RoleOperador, body)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestProductionPreview(t *testing.T) {
	app, store := plantApp(t, "5000", false)
	resp := send(t, app, http.MethodPost, "/api/production/preview", entity.RoleVendedor,
		map[string]any{"recipe_id": "rec-c25", "volume": "3", "silo_id": "silo-1"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	out := decode[dto.PreviewResponse](t, resp)
	assert.False(t, out.AllSufficient)
	require.Len(t, out.Requirements, 2)
	assert.True(t, out.Requirements[1].Shortfall.Equal(dec("400")))
	assert.Equal(t, 0, store.RunCount(), "la vista previa no registra nada")
}

func TestProductionDocs_NoConfigurados_Retorna501(t *testing.T) {
	app, _ := plantApp(t, "6000", false)
	resp := send(t, app, http.MethodGet, "/api/production/runs/export", entity.RoleAdmin, nil)
	assert.Equal(t, http.StatusNotImplemented, resp.StatusCode)
}

func TestProductionDocs_ComprobanteYExportacion(t *testing.T) {
	app, _ := plantApp(t, "6000", true)
	created := send(t, app, http.MethodPost, "/api/production/runs", entity.RoleOperador, runBody("1"))
	require.Equal(t, http.StatusCreated, created.StatusCode)
	run := decode[dto.RunSummaryResponse](t, created)

	receipt := send(t, app, http.MethodGet, "/api/production/runs/"+run.RunID+"/receipt", entity.RoleOperador, nil)
	require.Equal(t, http.StatusOK, receipt.StatusCode)
	assert.Equal(t, "application/pdf", receipt.Header.Get("Content-Type"))
	pdfBytes, err := io.ReadAll(receipt.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdfBytes, []byte("%PDF")))

	xlsx := send(t, app, http.MethodGet, "/api/production/runs/export", entity.RoleAdmin, nil)
	require.Equal(t, http.StatusOK, xlsx.StatusCode)
	assert.Contains(t, xlsx.Header.Get("Content-Disposition"), "producciones.xlsx")
}

// ─── Catálogo e inventario ────────────────────────────────────────────────────

func TestRecipes_CrearYListar(t *testing.T) {
	app, _ := plantApp(t, "6000", false)
	body := map[string]any{
		"product_code": "C30",
		"name":         "Concreto 30 MPa",
		"ingredients": []map[string]any{
			{"material_id": "cem-silo-1", "quantity_per_unit": "350", "unit": "kg"},
			{"material_id": "agg-1", "quantity_per_unit": "1750", "unit": "kg"},
		},
	}
	denied := send(t, app, http.MethodPost, "/api/recipes", entity.RoleOperador, body)
	assert.Equal(t, http.StatusForbidden, denied.StatusCode, "el operador no administra recetas")

	resp := send(t, app, http.MethodPost, "/api/recipes", entity.RoleAdmin, body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[dto.RecipeResponse](t, resp)
	assert.Equal(t, 1, created.Version)

	dup := send(t, app, http.MethodPost, "/api/recipes", entity.RoleAdmin, body)
	assert.Equal(t, http.StatusConflict, dup.StatusCode)
	assert.Equal(t, "DUPLICATE", decode[dto.ErrorResponse](t, dup).Code)

	list := send(t, app, http.MethodGet, "/api/recipes", entity.RoleOperador, nil)
	require.Equal(t, http.StatusOK, list.StatusCode)
	assert.Len(t, decode[dto.RecipeListResponse](t, list).Items, 2)
}

func TestInventory_EntradaDeStock(t *testing.T) {
	app, store := plantApp(t, "6000", false)
	resp := send(t, app, http.MethodPost, "/api/inventory/stock-in", entity.RoleBodeguero,
		map[string]any{"inventory_item_id": "agg-1", "quantity": "400", "unit_cost": "0.02"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.True(t, store.Item("agg-1").Quantity.Equal(dec("6400")))

	item := send(t, app, http.MethodGet, "/api/inventory/items/agg-1", entity.RoleVendedor, nil)
	require.Equal(t, http.StatusOK, item.StatusCode)
	assert.True(t, decode[dto.InventoryItemResponse](t, item).Quantity.Equal(dec("6400")))
}

func TestLocations_ObtenerSilo(t *testing.T) {
	app, _ := plantApp(t, "6000", false)
	resp := send(t, app, http.MethodGet, "/api/locations/silo-1", entity.RoleBodeguero, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	loc := decode[dto.LocationResponse](t, resp)
	require.NotNil(t, loc.CementItemID)
	assert.Equal(t, "cem-silo-1", *loc.CementItemID)
}

func TestRecipes_UnidadIncompatible_Retorna400(t *testing.T) {
	app, _ := plantApp(t, "6000", false)
	body := map[string]any{
		"product_code": "C30",
		"name":         "Concreto 30 MPa",
		"ingredients": []map[string]any{
			{"material_id": "cem-silo-1", "quantity_per_unit": "6", "unit": "bolsa"},
		},
	}
	resp := send(t, app, http.MethodPost, "/api/recipes", entity.RoleAdmin, body)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", decode[dto.ErrorResponse](t, resp).Code)
}

func TestRecipes_EnToneladasProduceEnKg(t *testing.T) {
	app, store := plantApp(t, "6000", false)
	body := map[string]any{
		"product_code": "C30",
		"name":         "Concreto 30 MPa",
		"ingredients": []map[string]any{
			{"material_id": "cem-silo-1", "quantity_per_unit": "0.3", "unit": "t"},
			{"material_id": "agg-1", "quantity_per_unit": "1.8", "unit": "t"},
		},
	}
	created := send(t, app, http.MethodPost, "/api/recipes", entity.RoleAdmin, body)
	require.Equal(t, http.StatusCreated, created.StatusCode)
	rec := decode[dto.RecipeResponse](t, created)

	resp := send(t, app, http.MethodPost, "/api/production/runs", entity.RoleOperador,
		map[string]any{"recipe_id": rec.ID, "silo_id": "silo-1", "volume": "1"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	run := decode[dto.RunSummaryResponse](t, resp)
	for _, ded := range run.Deductions {
		assert.Equal(t, "kg", ded.Unit)
	}
	assert.True(t, store.Item("cem-silo-1").Quantity.Equal(dec("700")))
	assert.True(t, store.Item("agg-1").Quantity.Equal(dec("4200")))
}

func TestListados_LimiteAcotado(t *testing.T) {
	app, _ := plantApp(t, "6000", false)
	resp := send(t, app, http.MethodGet, "/api/recipes?limit=500", entity.RoleOperador, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, dto.MaxPageLimit, decode[dto.RecipeListResponse](t, resp).Page.Limit)
}

// ─── Rutas operativas ─────────────────────────────────────────────────────────

func TestHealth_SinToken(t *testing.T) {
	app, _ := plantApp(t, "6000", false)
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
