package clients

import "time"

// Client is a "cliente": the party a quote is issued to. Soft-deleted
// rows keep their data until purged through the trash endpoints.
type Client struct {
	ID          int64      `json:"id"`
	WorkspaceID int64      `json:"workspaceId"`
	Name        string     `json:"nome"`
	Document    *string    `json:"documento,omitempty"`
	Email       *string    `json:"email,omitempty"`
	Phone       *string    `json:"telefone,omitempty"`
	Address     *string    `json:"endereco,omitempty"`
	City        *string    `json:"cidade,omitempty"`
	State       *string    `json:"estado,omitempty"`
	PostalCode  *string    `json:"cep,omitempty"`
	DeletedAt   *time.Time `json:"deletedAt,omitempty"`
	DeletedBy   *int64     `json:"deletedBy,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}
