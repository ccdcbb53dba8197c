package quotes

import "time"

// Status of a quote. The original workflow is permissive: any status
// can move to any other, there is no terminal state.
type Status string

const (
	StatusRascunho  Status = "rascunho"
	StatusEnviado   Status = "enviado"
	StatusAprovado  Status = "aprovado"
	StatusRejeitado Status = "rejeitado"
	StatusCancelado Status = "cancelado"
)

// ValidStatus reports whether s is a known status value.
func ValidStatus(s Status) bool {
	switch s {
	case StatusRascunho, StatusEnviado, StatusAprovado, StatusRejeitado, StatusCancelado:
		return true
	}
	return false
}

// DiscountType discriminates percent discounts from absolute ones.
type DiscountType string

const (
	DiscountPercent  DiscountType = "percentual"
	DiscountAbsolute DiscountType = "absoluto"
)

// Quote is an "orçamento". The cliente_* columns are a snapshot taken
// when the quote is created; editing or deleting the client afterwards
// never touches them.
type Quote struct {
	ID          int64 `json:"id"`
	WorkspaceID int64 `json:"workspaceId"`
	Number      int64 `json:"numero"`

	ClientID       *int64  `json:"clienteId,omitempty"`
	ClientName     string  `json:"clienteNome"`
	ClientDocument *string `json:"clienteDocumento,omitempty"`
	ClientEmail    *string `json:"clienteEmail,omitempty"`
	ClientPhone    *string `json:"clienteTelefone,omitempty"`
	ClientAddress  *string `json:"clienteEndereco,omitempty"`

	Status       Status        `json:"status"`
	Discount     float64       `json:"desconto"`
	DiscountType *DiscountType `json:"descontoTipo,omitempty"`
	Subtotal     float64       `json:"subtotal"`
	Total        float64       `json:"total"`
	Notes        *string       `json:"observacoes,omitempty"`
	ValidUntil   *time.Time    `json:"validade,omitempty"`

	DeletedAt *time.Time `json:"deletedAt,omitempty"`
	DeletedBy *int64     `json:"deletedBy,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`

	Items []Item `json:"itens,omitempty"`
}

// Item is a quote line. Nome, tipo and unidade are snapshots of the
// product at the time the line was written.
type Item struct {
	ID        int64  `json:"id"`
	QuoteID   int64  `json:"orcamentoId"`
	ProductID *int64 `json:"produtoServicoId,omitempty"`

	Name string `json:"nome"`
	Kind string `json:"tipo"`
	Unit string `json:"unidade"`

	Quantity     float64       `json:"quantidade"`
	UnitValue    float64       `json:"valorUnitario"`
	Discount     float64       `json:"desconto"`
	DiscountType *DiscountType `json:"descontoTipo,omitempty"`
	Total        float64       `json:"total"`
}
