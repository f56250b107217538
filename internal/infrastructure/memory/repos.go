package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Concreto-api/internal/domain"
	"github.com/jhoicas/Concreto-api/internal/domain/entity"
	"github.com/jhoicas/Concreto-api/internal/domain/repository"
)

var (
	_ repository.InventoryItemRepository   = (*itemRepo)(nil)
	_ repository.StorageLocationRepository = (*locationRepo)(nil)
	_ repository.RecipeRepository          = (*recipeRepo)(nil)
	_ repository.ProductionRunRepository   = (*runRepo)(nil)
	_ repository.StockMovementRepository   = (*movementRepo)(nil)
	_ repository.OrderLineItemRepository   = (*lineRepo)(nil)
)

func page[T any](list []T, limit, offset int) []T {
	if offset >= len(list) {
		return []T{}
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}

// ─── Inventario ───────────────────────────────────────────────────────────────

type itemRepo struct {
	s *Store
	a access
}

func (r *itemRepo) Create(ctx context.Context, item *entity.InventoryItem) error {
	return r.a(func(st *state) error {
		if err := r.s.fail("items.Create"); err != nil {
			return err
		}
		if _, ok := st.items[item.ID]; ok {
			return domain.ErrDuplicate
		}
		st.items[item.ID] = cloneItem(*item)
		return nil
	})
}

func (r *itemRepo) GetByID(ctx context.Context, id string) (*entity.InventoryItem, error) {
	var out *entity.InventoryItem
	err := r.a(func(st *state) error {
		if it, ok := st.items[id]; ok {
			c := cloneItem(it)
			out = &c
		}
		return nil
	})
	return out, err
}

func (r *itemRepo) GetByName(ctx context.Context, companyID, name string) (*entity.InventoryItem, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	var out *entity.InventoryItem
	err := r.a(func(st *state) error {
		for _, it := range sortedItems(st) {
			if it.CompanyID == companyID && strings.ToLower(strings.TrimSpace(it.Name)) == key {
				c := cloneItem(it)
				out = &c
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *itemRepo) ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.InventoryItem, error) {
	var out []*entity.InventoryItem
	err := r.a(func(st *state) error {
		var list []*entity.InventoryItem
		for _, it := range sortedItems(st) {
			if it.CompanyID == companyID {
				c := cloneItem(it)
				list = append(list, &c)
			}
		}
		sort.SliceStable(list, func(i, j int) bool { return list[i].Name < list[j].Name })
		out = page(list, limit, offset)
		return nil
	})
	return out, err
}

func (r *itemRepo) ListBelowThreshold(ctx context.Context, companyID string) ([]*entity.InventoryItem, error) {
	var out []*entity.InventoryItem
	err := r.a(func(st *state) error {
		for _, it := range sortedItems(st) {
			if it.CompanyID == companyID && it.BelowThreshold() {
				c := cloneItem(it)
				out = append(out, &c)
			}
		}
		return nil
	})
	return out, err
}

func (r *itemRepo) LockForUpdate(ctx context.Context, ids []string) ([]*entity.InventoryItem, error) {
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)
	var out []*entity.InventoryItem
	err := r.a(func(st *state) error {
		if err := r.s.fail("items.LockForUpdate"); err != nil {
			return err
		}
		for _, id := range sorted {
			if it, ok := st.items[id]; ok {
				c := cloneItem(it)
				out = append(out, &c)
			}
		}
		return nil
	})
	return out, err
}

func (r *itemRepo) ApplyDelta(ctx context.Context, id string, delta, unitCost decimal.Decimal) (*entity.InventoryItem, error) {
	var out *entity.InventoryItem
	err := r.a(func(st *state) error {
		if err := r.s.fail("items.ApplyDelta"); err != nil {
			return err
		}
		it, ok := st.items[id]
		if !ok {
			return domain.ErrNotFound
		}
		next := it.Quantity.Add(delta)
		if next.IsNegative() {
			return domain.ErrConcurrencyConflict
		}
		it.Quantity = next
		it.UnitCost = unitCost
		it.RecomputeValue()
		it.UpdatedAt = time.Now()
		st.items[id] = it
		c := cloneItem(it)
		out = &c
		return nil
	})
	return out, err
}

func (r *itemRepo) UpdateLocation(ctx context.Context, id string, locationID *string) error {
	return r.a(func(st *state) error {
		it, ok := st.items[id]
		if !ok {
			return domain.ErrNotFound
		}
		it.LocationID = cloneStr(locationID)
		it.UpdatedAt = time.Now()
		st.items[id] = it
		return nil
	})
}

func sortedItems(st *state) []entity.InventoryItem {
	list := make([]entity.InventoryItem, 0, len(st.items))
	for _, it := range st.items {
		list = append(list, it)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}

// ─── Ubicaciones ──────────────────────────────────────────────────────────────

type locationRepo struct {
	s *Store
	a access
}

func (r *locationRepo) Create(ctx context.Context, loc *entity.StorageLocation) error {
	return r.a(func(st *state) error {
		if _, ok := st.locations[loc.ID]; ok {
			return domain.ErrDuplicate
		}
		st.locations[loc.ID] = cloneLocation(*loc)
		return nil
	})
}

func (r *locationRepo) GetByID(ctx context.Context, id string) (*entity.StorageLocation, error) {
	var out *entity.StorageLocation
	err := r.a(func(st *state) error {
		if l, ok := st.locations[id]; ok {
			c := cloneLocation(l)
			out = &c
		}
		return nil
	})
	return out, err
}

func (r *locationRepo) GetByCementItem(ctx context.Context, itemID string) (*entity.StorageLocation, error) {
	var out *entity.StorageLocation
	err := r.a(func(st *state) error {
		for _, l := range st.locations {
			if l.CementItemID != nil && *l.CementItemID == itemID {
				c := cloneLocation(l)
				out = &c
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *locationRepo) ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.StorageLocation, error) {
	var out []*entity.StorageLocation
	err := r.a(func(st *state) error {
		var list []*entity.StorageLocation
		for _, l := range st.locations {
			if l.CompanyID == companyID {
				c := cloneLocation(l)
				list = append(list, &c)
			}
		}
		sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
		out = page(list, limit, offset)
		return nil
	})
	return out, err
}

func (r *locationRepo) SetCementItem(ctx context.Context, locationID string, itemID *string) error {
	return r.a(func(st *state) error {
		l, ok := st.locations[locationID]
		if !ok {
			return domain.ErrNotFound
		}
		l.CementItemID = cloneStr(itemID)
		l.UpdatedAt = time.Now()
		st.locations[locationID] = l
		return nil
	})
}

// ─── Recetas ──────────────────────────────────────────────────────────────────

type recipeRepo struct {
	s *Store
	a access
}

func (r *recipeRepo) Create(ctx context.Context, recipe *entity.Recipe) error {
	return r.a(func(st *state) error {
		if _, ok := st.recipes[recipe.ID]; ok {
			return domain.ErrDuplicate
		}
		for _, other := range st.recipes {
			if recipe.IsLatest && other.IsLatest && other.CompanyID == recipe.CompanyID && other.ProductCode == recipe.ProductCode {
				return domain.ErrDuplicate
			}
		}
		st.recipes[recipe.ID] = cloneRecipe(*recipe)
		return nil
	})
}

func (r *recipeRepo) GetByID(ctx context.Context, id string) (*entity.Recipe, error) {
	var out *entity.Recipe
	err := r.a(func(st *state) error {
		if rec, ok := st.recipes[id]; ok {
			c := cloneRecipe(rec)
			out = &c
		}
		return nil
	})
	return out, err
}

// GetForUpdate y GetForShare no necesitan más que la lectura: la transacción ya es exclusiva.
func (r *recipeRepo) GetForUpdate(ctx context.Context, id string) (*entity.Recipe, error) {
	return r.GetByID(ctx, id)
}

func (r *recipeRepo) GetForShare(ctx context.Context, id string) (*entity.Recipe, error) {
	return r.GetByID(ctx, id)
}

func (r *recipeRepo) GetLatestByCode(ctx context.Context, companyID, productCode string) (*entity.Recipe, error) {
	var out *entity.Recipe
	err := r.a(func(st *state) error {
		for _, rec := range st.recipes {
			if rec.IsLatest && rec.CompanyID == companyID && rec.ProductCode == productCode {
				c := cloneRecipe(rec)
				out = &c
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *recipeRepo) ListLatest(ctx context.Context, companyID string, limit, offset int) ([]*entity.Recipe, error) {
	var out []*entity.Recipe
	err := r.a(func(st *state) error {
		var list []*entity.Recipe
		for _, rec := range st.recipes {
			if rec.IsLatest && rec.CompanyID == companyID {
				c := cloneRecipe(rec)
				list = append(list, &c)
			}
		}
		sort.Slice(list, func(i, j int) bool { return list[i].ProductCode < list[j].ProductCode })
		out = page(list, limit, offset)
		return nil
	})
	return out, err
}

func (r *recipeRepo) Update(ctx context.Context, recipe *entity.Recipe) error {
	return r.a(func(st *state) error {
		cur, ok := st.recipes[recipe.ID]
		if !ok {
			return domain.ErrNotFound
		}
		cur.Name = recipe.Name
		cur.Ingredients = append([]entity.Ingredient(nil), recipe.Ingredients...)
		cur.UpdatedAt = recipe.UpdatedAt
		st.recipes[recipe.ID] = cur
		return nil
	})
}

func (r *recipeRepo) MarkSuperseded(ctx context.Context, id string) error {
	return r.a(func(st *state) error {
		cur, ok := st.recipes[id]
		if !ok {
			return domain.ErrNotFound
		}
		cur.IsLatest = false
		st.recipes[id] = cur
		return nil
	})
}

// ─── Producciones ─────────────────────────────────────────────────────────────

type runRepo struct {
	s *Store
	a access
}

func (r *runRepo) Create(ctx context.Context, run *entity.ProductionRun) error {
	return r.a(func(st *state) error {
		if err := r.s.fail("runs.Create"); err != nil {
			return err
		}
		if _, ok := st.runs[run.ID]; ok {
			return domain.ErrDuplicate
		}
		st.runs[run.ID] = cloneRun(*run)
		return nil
	})
}

func (r *runRepo) GetByID(ctx context.Context, id string) (*entity.ProductionRun, error) {
	var out *entity.ProductionRun
	err := r.a(func(st *state) error {
		if run, ok := st.runs[id]; ok {
			c := cloneRun(run)
			out = &c
		}
		return nil
	})
	return out, err
}

func (r *runRepo) ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.ProductionRun, error) {
	var out []*entity.ProductionRun
	err := r.a(func(st *state) error {
		var list []*entity.ProductionRun
		for _, run := range st.runs {
			if run.CompanyID == companyID {
				c := cloneRun(run)
				list = append(list, &c)
			}
		}
		sort.Slice(list, func(i, j int) bool {
			if list[i].CreatedAt.Equal(list[j].CreatedAt) {
				return list[i].ID > list[j].ID
			}
			return list[i].CreatedAt.After(list[j].CreatedAt)
		})
		out = page(list, limit, offset)
		return nil
	})
	return out, err
}

func (r *runRepo) CountByRecipe(ctx context.Context, recipeID string) (int, error) {
	n := 0
	err := r.a(func(st *state) error {
		for _, run := range st.runs {
			if run.RecipeID == recipeID && run.Status == entity.RunStatusCompleted {
				n++
			}
		}
		return nil
	})
	return n, err
}

// ─── Movimientos ──────────────────────────────────────────────────────────────

type movementRepo struct {
	s *Store
	a access
}

func (r *movementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	return r.a(func(st *state) error {
		if err := r.s.fail("movements.Create"); err != nil {
			return err
		}
		st.movements = append(st.movements, *m)
		return nil
	})
}

func (r *movementRepo) ListByItem(ctx context.Context, itemID string, limit, offset int) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	err := r.a(func(st *state) error {
		var list []*entity.StockMovement
		for i := len(st.movements) - 1; i >= 0; i-- {
			if st.movements[i].InventoryItemID == itemID {
				m := st.movements[i]
				list = append(list, &m)
			}
		}
		out = page(list, limit, offset)
		return nil
	})
	return out, err
}

// ─── Líneas de pedido ─────────────────────────────────────────────────────────

type lineRepo struct {
	s *Store
	a access
}

func (r *lineRepo) GetByID(ctx context.Context, id string) (*entity.OrderLineItem, error) {
	var out *entity.OrderLineItem
	err := r.a(func(st *state) error {
		if l, ok := st.lines[id]; ok {
			out = &l
		}
		return nil
	})
	return out, err
}

func (r *lineRepo) GetForUpdate(ctx context.Context, id string) (*entity.OrderLineItem, error) {
	return r.GetByID(ctx, id)
}

func (r *lineRepo) UpdateDelivery(ctx context.Context, line *entity.OrderLineItem) error {
	return r.a(func(st *state) error {
		if err := r.s.fail("lines.UpdateDelivery"); err != nil {
			return err
		}
		cur, ok := st.lines[line.ID]
		if !ok {
			return domain.ErrNotFound
		}
		cur.DeliveredQty = line.DeliveredQty
		cur.Status = line.Status
		cur.UpdatedAt = line.UpdatedAt
		st.lines[line.ID] = cur
		return nil
	})
}
