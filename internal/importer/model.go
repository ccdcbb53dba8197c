package importer

import (
	"fmt"
	"time"

	"github.com/sky-orcamentos/sky-orcamentos/internal/shared"
)

// Kind selects what an uploaded CSV contains.
type Kind string

const (
	KindClientes Kind = "clientes"
	KindProdutos Kind = "produtos"
)

// ParseKind validates a raw kind value.
func ParseKind(raw string) (Kind, error) {
	switch Kind(raw) {
	case KindClientes, KindProdutos:
		return Kind(raw), nil
	}
	return "", fmt.Errorf("%w: tipo de importação desconhecido %q", shared.ErrValidation, raw)
}

// Status of an import job.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusDone       Status = "done"
	StatusFailed     Status = "failed"
)

// Job is one CSV import. The raw payload stays in the row until the
// worker consumes it; it is never serialized back to the client.
type Job struct {
	ID          int64      `json:"id"`
	WorkspaceID int64      `json:"workspaceId"`
	UserID      int64      `json:"userId"`
	Kind        Kind       `json:"tipo"`
	Filename    string     `json:"arquivo"`
	Status      Status     `json:"status"`
	TotalRows   int        `json:"totalLinhas"`
	Imported    int        `json:"linhasImportadas"`
	RowErrors   []RowError `json:"erros,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	FinishedAt  *time.Time `json:"finishedAt,omitempty"`

	Payload []byte `json:"-"`
}

// RowError records why one CSV line was rejected.
type RowError struct {
	Line    int    `json:"linha"`
	Message string `json:"mensagem"`
}
