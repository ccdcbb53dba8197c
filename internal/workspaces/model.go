package workspaces

import "time"

// Workspace is the tenant boundary; every domain entity belongs to one.
type Workspace struct {
	ID        int64     `json:"id"`
	Name      string    `json:"nome"`
	OwnerID   int64     `json:"ownerId"`
	Level     int       `json:"nivel,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Member is a user with access to a workspace at a permission level (1-3).
type Member struct {
	WorkspaceID int64     `json:"workspaceId"`
	UserID      int64     `json:"userId"`
	Name        string    `json:"nome"`
	Email       string    `json:"email"`
	Level       int       `json:"nivel"`
	CreatedAt   time.Time `json:"createdAt"`
}
