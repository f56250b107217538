package production

import (
	"strings"

	"github.com/jhoicas/Concreto-api/internal/domain/entity"
)

// Snapshot es una StockView en memoria sobre un conjunto de ítems ya cargados
// (por ejemplo, las filas bloqueadas dentro de la transacción).
type Snapshot struct {
	byID   map[string]*entity.InventoryItem
	byName map[string]*entity.InventoryItem
}

var _ StockView = (*Snapshot)(nil)

// NewSnapshot indexa los ítems por ID y por nombre normalizado.
// Si dos ítems comparten nombre gana el primero.
func NewSnapshot(items []*entity.InventoryItem) *Snapshot {
	s := &Snapshot{
		byID:   make(map[string]*entity.InventoryItem, len(items)),
		byName: make(map[string]*entity.InventoryItem, len(items)),
	}
	for _, it := range items {
		if it == nil {
			continue
		}
		s.byID[it.ID] = it
		key := NormalizeName(it.Name)
		if _, dup := s.byName[key]; !dup {
			s.byName[key] = it
		}
	}
	return s
}

func (s *Snapshot) ItemByID(id string) *entity.InventoryItem { return s.byID[id] }

func (s *Snapshot) ItemByName(name string) *entity.InventoryItem {
	return s.byName[NormalizeName(name)]
}

// NormalizeName compara nombres sin mayúsculas ni espacios extremos.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
