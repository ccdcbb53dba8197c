package clients

import "github.com/sky-orcamentos/sky-orcamentos/internal/shared"

// ClientForm carries create/update payloads.
type ClientForm struct {
	Name       string  `json:"nome" validate:"required,min=1,max=160"`
	Document   *string `json:"documento" validate:"omitempty,max=20"`
	Email      *string `json:"email" validate:"omitempty,email"`
	Phone      *string `json:"telefone" validate:"omitempty,max=20"`
	Address    *string `json:"endereco" validate:"omitempty,max=255"`
	City       *string `json:"cidade" validate:"omitempty,max=120"`
	State      *string `json:"estado" validate:"omitempty,max=2"`
	PostalCode *string `json:"cep" validate:"omitempty,max=9"`
}

// ListRequest filters the client listing.
type ListRequest struct {
	Scope   shared.Scope
	Search  string
	Page    int
	PerPage int
}
