package products

import "time"

// Kind discriminates products from services.
type Kind string

const (
	KindProduto Kind = "produto"
	KindServico Kind = "servico"
)

// Product is a "produto ou serviço" offered by the workspace.
type Product struct {
	ID           int64      `json:"id"`
	WorkspaceID  int64      `json:"workspaceId"`
	Name         string     `json:"nome"`
	Description  *string    `json:"descricao,omitempty"`
	Value        float64    `json:"valor"`
	Kind         Kind       `json:"tipo"`
	Unit         string     `json:"unidade"`
	CategoryID   *int64     `json:"categoriaId,omitempty"`
	CategoryName *string    `json:"categoriaNome,omitempty"`
	DeletedAt    *time.Time `json:"deletedAt,omitempty"`
	DeletedBy    *int64     `json:"deletedBy,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}
