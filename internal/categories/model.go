package categories

import "time"

// Category groups products/services inside a workspace.
type Category struct {
	ID          int64      `json:"id"`
	WorkspaceID int64      `json:"workspaceId"`
	Name        string     `json:"nome"`
	Color       *string    `json:"cor,omitempty"`
	DeletedAt   *time.Time `json:"deletedAt,omitempty"`
	DeletedBy   *int64     `json:"deletedBy,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// CategoryForm carries create/update payloads.
type CategoryForm struct {
	Name  string  `json:"nome" validate:"required,min=1,max=120"`
	Color *string `json:"cor" validate:"omitempty,hexcolor"`
}
