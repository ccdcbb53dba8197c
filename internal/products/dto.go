package products

import "github.com/sky-orcamentos/sky-orcamentos/internal/shared"

// ProductForm carries create/update payloads.
type ProductForm struct {
	Name        string  `json:"nome" validate:"required,min=1,max=160"`
	Description *string `json:"descricao" validate:"omitempty,max=1000"`
	Value       float64 `json:"valor" validate:"gte=0"`
	Kind        Kind    `json:"tipo" validate:"required,oneof=produto servico"`
	Unit        string  `json:"unidade" validate:"required,max=10"`
	CategoryID  *int64  `json:"categoriaId" validate:"omitempty,gt=0"`
}

// ListRequest filters the product listing.
type ListRequest struct {
	Scope      shared.Scope
	Search     string
	Kind       *Kind
	CategoryID *int64
	Page       int
	PerPage    int
}
