package trash

import (
	"fmt"
	"time"

	"github.com/sky-orcamentos/sky-orcamentos/internal/shared"
)

// Kind tags the four entity kinds that participate in the trash lifecycle.
type Kind string

const (
	KindCliente   Kind = "cliente"
	KindOrcamento Kind = "orcamento"
	KindProduto   Kind = "produto"
	KindCategoria Kind = "categoria"
)

// ParseKind validates a wire value, returning ErrValidation for unknown tags.
func ParseKind(raw string) (Kind, error) {
	switch Kind(raw) {
	case KindCliente, KindOrcamento, KindProduto, KindCategoria:
		return Kind(raw), nil
	default:
		return "", fmt.Errorf("%w: tipo desconhecido %q", shared.ErrValidation, raw)
	}
}

// Item is a soft-deleted row as shown in the trash listing.
type Item struct {
	ID            int64          `json:"id"`
	Kind          Kind           `json:"type"`
	Name          string         `json:"name"`
	DeletedAt     time.Time      `json:"deletedAt"`
	DeletedBy     *int64         `json:"deletedBy,omitempty"`
	DeletedByName string         `json:"deletedByName"`
	OriginalData  map[string]any `json:"originalData,omitempty"`
}

// Stats aggregates trash contents per kind.
type Stats struct {
	TotalItems int `json:"totalItems"`
	Clientes   int `json:"clientes"`
	Orcamentos int `json:"orcamentos"`
	Produtos   int `json:"produtos"`
	Categorias int `json:"categorias"`
}

// Dependents partitions rows referencing an entity by trash state.
type Dependents struct {
	Active  int
	Deleted int
}

// Total returns the combined dependent count.
func (d Dependents) Total() int {
	return d.Active + d.Deleted
}

// Conflict codes returned when a permanent delete is blocked.
const (
	CodeClientHasBudgets      = "CLIENT_HAS_BUDGETS"
	CodeProductHasBudgetItems = "PRODUCT_HAS_BUDGET_ITEMS"
	CodeCategoryHasProducts   = "CATEGORY_HAS_PRODUCTS"
)

// ConflictError is returned when dependents block a permanent delete and
// force was not supplied. The operation is a fully atomic no-op.
type ConflictError struct {
	Code    string
	Message string
	Details map[string]any
}

func (e *ConflictError) Error() string {
	return e.Message
}
