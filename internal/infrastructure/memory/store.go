// Package memory es un almacén transaccional en proceso para desarrollo y pruebas.
// Serializa todas las transacciones con un mutex: cada unidad trabaja sobre una copia
// del estado que solo se confirma si la función no devuelve error.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/Concreto-api/internal/domain/entity"
	"github.com/jhoicas/Concreto-api/internal/domain/repository"
)

type state struct {
	items     map[string]entity.InventoryItem
	locations map[string]entity.StorageLocation
	recipes   map[string]entity.Recipe
	runs      map[string]entity.ProductionRun
	movements []entity.StockMovement
	lines     map[string]entity.OrderLineItem
}

func newState() *state {
	return &state{
		items:     map[string]entity.InventoryItem{},
		locations: map[string]entity.StorageLocation{},
		recipes:   map[string]entity.Recipe{},
		runs:      map[string]entity.ProductionRun{},
		lines:     map[string]entity.OrderLineItem{},
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.items {
		c.items[k] = cloneItem(v)
	}
	for k, v := range s.locations {
		c.locations[k] = cloneLocation(v)
	}
	for k, v := range s.recipes {
		c.recipes[k] = cloneRecipe(v)
	}
	for k, v := range s.runs {
		c.runs[k] = cloneRun(v)
	}
	c.movements = append([]entity.StockMovement(nil), s.movements...)
	for k, v := range s.lines {
		c.lines[k] = v
	}
	return c
}

// Store implementa todos los repositorios y TxRunners sobre memoria.
type Store struct {
	mu     sync.Mutex
	st     *state
	faults map[string]*fault
}

type fault struct {
	err   error
	times int // < 0: siempre
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{st: newState(), faults: map[string]*fault{}}
}

// InjectFault hace que la operación op ("items.LockForUpdate", "runs.Create", ...) devuelva err
// las próximas times veces (times < 0: siempre). Solo para pruebas.
func (s *Store) InjectFault(op string, err error, times int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults[op] = &fault{err: err, times: times}
}

// ClearFaults elimina las fallas inyectadas.
func (s *Store) ClearFaults() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults = map[string]*fault{}
}

// fail se llama con s.mu tomado.
func (s *Store) fail(op string) error {
	f, ok := s.faults[op]
	if !ok || f.times == 0 {
		return nil
	}
	if f.times > 0 {
		f.times--
	}
	return f.err
}

// access da a los repos su forma de llegar al estado: confirmado (con lock por llamada)
// o la copia de una transacción en curso (el lock ya está tomado).
type access func(fn func(st *state) error) error

func (s *Store) committed() access {
	return func(fn func(st *state) error) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		return fn(s.st)
	}
}

func (s *Store) inTx(staged *state) access {
	return func(fn func(st *state) error) error { return fn(staged) }
}

// tx ejecuta fn sobre una copia del estado y la confirma si fn devuelve nil.
func (s *Store) tx(ctx context.Context, fn func(a access) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	staged := s.st.clone()
	if err := fn(s.inTx(staged)); err != nil {
		return err
	}
	if err := s.fail("tx.Commit"); err != nil {
		return err
	}
	s.st = staged
	return nil
}

// Repositorios fuera de transacción.

func (s *Store) Items() repository.InventoryItemRepository { return &itemRepo{s, s.committed()} }
func (s *Store) Locations() repository.StorageLocationRepository {
	return &locationRepo{s, s.committed()}
}
func (s *Store) Recipes() repository.RecipeRepository     { return &recipeRepo{s, s.committed()} }
func (s *Store) Runs() repository.ProductionRunRepository { return &runRepo{s, s.committed()} }
func (s *Store) Movements() repository.StockMovementRepository {
	return &movementRepo{s, s.committed()}
}
func (s *Store) OrderLines() repository.OrderLineItemRepository { return &lineRepo{s, s.committed()} }

// TxRunners.

func (s *Store) Run(ctx context.Context, fn func(repository.InventoryItemRepository, repository.StockMovementRepository) error) error {
	return s.tx(ctx, func(a access) error {
		return fn(&itemRepo{s, a}, &movementRepo{s, a})
	})
}

func (s *Store) RunLocation(ctx context.Context, fn func(repository.StorageLocationRepository, repository.InventoryItemRepository) error) error {
	return s.tx(ctx, func(a access) error {
		return fn(&locationRepo{s, a}, &itemRepo{s, a})
	})
}

func (s *Store) RunCatalog(ctx context.Context, fn func(repository.RecipeRepository, repository.ProductionRunRepository) error) error {
	return s.tx(ctx, func(a access) error {
		return fn(&recipeRepo{s, a}, &runRepo{s, a})
	})
}

func (s *Store) RunDelivery(ctx context.Context, fn func(repository.OrderLineItemRepository) error) error {
	return s.tx(ctx, func(a access) error {
		return fn(&lineRepo{s, a})
	})
}

func (s *Store) RunProduction(ctx context.Context, fn func(
	repository.RecipeRepository,
	repository.StorageLocationRepository,
	repository.InventoryItemRepository,
	repository.ProductionRunRepository,
	repository.StockMovementRepository,
) error) error {
	return s.tx(ctx, func(a access) error {
		return fn(&recipeRepo{s, a}, &locationRepo{s, a}, &itemRepo{s, a}, &runRepo{s, a}, &movementRepo{s, a})
	})
}

// Carga directa de datos (semillas y pruebas).

func (s *Store) PutItem(it entity.InventoryItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it.RecomputeValue()
	s.st.items[it.ID] = cloneItem(it)
}

func (s *Store) PutLocation(loc entity.StorageLocation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.locations[loc.ID] = cloneLocation(loc)
}

func (s *Store) PutRecipe(r entity.Recipe) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.recipes[r.ID] = cloneRecipe(r)
}

func (s *Store) PutOrderLine(l entity.OrderLineItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.lines[l.ID] = l
}

// Item devuelve una copia del ítem confirmado, o nil.
func (s *Store) Item(id string) *entity.InventoryItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.st.items[id]
	if !ok {
		return nil
	}
	c := cloneItem(it)
	return &c
}

// RunCount cuenta las producciones confirmadas.
func (s *Store) RunCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.st.runs)
}

// MovementCount cuenta los movimientos de existencias confirmados.
func (s *Store) MovementCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.st.movements)
}

func cloneItem(it entity.InventoryItem) entity.InventoryItem {
	if it.MaxCapacity != nil {
		v := *it.MaxCapacity
		it.MaxCapacity = &v
	}
	it.LocationID = cloneStr(it.LocationID)
	return it
}

func cloneLocation(l entity.StorageLocation) entity.StorageLocation {
	l.CementItemID = cloneStr(l.CementItemID)
	return l
}

func cloneRecipe(r entity.Recipe) entity.Recipe {
	r.Ingredients = append([]entity.Ingredient(nil), r.Ingredients...)
	r.ParentRecipeID = cloneStr(r.ParentRecipeID)
	return r
}

func cloneRun(r entity.ProductionRun) entity.ProductionRun {
	r.Deductions = append([]entity.Deduction(nil), r.Deductions...)
	r.ClientID = cloneStr(r.ClientID)
	r.OrderID = cloneStr(r.OrderID)
	r.OrderLineItemID = cloneStr(r.OrderLineItemID)
	return r
}

func cloneStr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
