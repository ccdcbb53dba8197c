package quotes

import (
	"time"

	"github.com/sky-orcamentos/sky-orcamentos/internal/shared"
)

// QuoteForm carries create/update payloads. On update the client
// snapshot of the existing quote is kept even if clienteId changed
// hands meanwhile; items are replaced wholesale.
type QuoteForm struct {
	ClientID     int64         `json:"clienteId" validate:"required,gt=0"`
	Discount     float64       `json:"desconto" validate:"gte=0"`
	DiscountType *DiscountType `json:"descontoTipo" validate:"omitempty,oneof=percentual absoluto"`
	Notes        *string       `json:"observacoes" validate:"omitempty,max=2000"`
	ValidUntil   *time.Time    `json:"validade"`
	Items        []ItemForm    `json:"itens" validate:"required,min=1,dive"`
}

// ItemForm is one quote line in a create/update payload.
type ItemForm struct {
	ProductID    int64         `json:"produtoServicoId" validate:"required,gt=0"`
	Quantity     float64       `json:"quantidade" validate:"gt=0"`
	UnitValue    float64       `json:"valorUnitario" validate:"gte=0"`
	Discount     float64       `json:"desconto" validate:"gte=0"`
	DiscountType *DiscountType `json:"descontoTipo" validate:"omitempty,oneof=percentual absoluto"`
}

// StatusForm carries a status transition.
type StatusForm struct {
	Status Status `json:"status" validate:"required,oneof=rascunho enviado aprovado rejeitado cancelado"`
}

// EmailForm carries the send-quote-by-email request.
type EmailForm struct {
	To      string  `json:"para" validate:"required,email"`
	Message *string `json:"mensagem" validate:"omitempty,max=2000"`
}

// ListRequest filters the quote listing.
type ListRequest struct {
	Scope    shared.Scope
	Search   string
	Status   *Status
	ClientID *int64
	Page     int
	PerPage  int
}
