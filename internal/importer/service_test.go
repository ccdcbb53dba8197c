package importer

import (
	"context"
	"log/slog"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sky-orcamentos/sky-orcamentos/internal/clients"
	"github.com/sky-orcamentos/sky-orcamentos/internal/products"
	"github.com/sky-orcamentos/sky-orcamentos/internal/shared"
)

type memJobs struct {
	nextID int64
	jobs   map[int64]*Job
}

func newMemJobs() *memJobs {
	return &memJobs{jobs: map[int64]*Job{}}
}

func (m *memJobs) Create(ctx context.Context, job *Job) (int64, error) {
	m.nextID++
	stored := *job
	stored.ID = m.nextID
	stored.Status = StatusPending
	m.jobs[stored.ID] = &stored
	return stored.ID, nil
}

func (m *memJobs) Get(ctx context.Context, scope shared.Scope, id int64) (*Job, error) {
	job, ok := m.jobs[id]
	if !ok || job.WorkspaceID != scope.WorkspaceID {
		return nil, shared.ErrNotFound
	}
	clone := *job
	clone.Payload = nil
	return &clone, nil
}

func (m *memJobs) GetForProcessing(ctx context.Context, id int64) (*Job, error) {
	job, ok := m.jobs[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	clone := *job
	return &clone, nil
}

func (m *memJobs) MarkProcessing(ctx context.Context, id int64) error {
	job, ok := m.jobs[id]
	if !ok || job.Status != StatusPending {
		return shared.ErrNotFound
	}
	job.Status = StatusProcessing
	return nil
}

func (m *memJobs) Finish(ctx context.Context, id int64, status Status, total, imported int, rowErrors []RowError) error {
	job, ok := m.jobs[id]
	if !ok {
		return shared.ErrNotFound
	}
	job.Status = status
	job.TotalRows = total
	job.Imported = imported
	job.RowErrors = rowErrors
	job.Payload = nil
	return nil
}

type captureEnqueuer struct {
	jobIDs []int64
}

func (c *captureEnqueuer) EnqueueImport(ctx context.Context, jobID int64) error {
	c.jobIDs = append(c.jobIDs, jobID)
	return nil
}

type captureClients struct {
	forms []clients.ClientForm
}

func (c *captureClients) Create(ctx context.Context, scope shared.Scope, form clients.ClientForm) (int64, error) {
	c.forms = append(c.forms, form)
	return int64(len(c.forms)), nil
}

type captureProducts struct {
	forms []products.ProductForm
}

func (c *captureProducts) Create(ctx context.Context, scope shared.Scope, form products.ProductForm) (int64, error) {
	c.forms = append(c.forms, form)
	return int64(len(c.forms)), nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(discardWriter{}, nil))
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

func newTestService() (*Service, *memJobs, *captureEnqueuer, *captureClients, *captureProducts) {
	repo := newMemJobs()
	enq := &captureEnqueuer{}
	cw := &captureClients{}
	pw := &captureProducts{}
	svc := NewService(discardLogger(), repo, enq, cw, pw, validator.New())
	return svc, repo, enq, cw, pw
}

func uploadScope() shared.Scope {
	return shared.Scope{WorkspaceID: 1, UserID: 5, Level: shared.LevelEditor}
}

func TestUploadStoresAndEnqueues(t *testing.T) {
	svc, repo, enq, _, _ := newTestService()

	csv := "nome,documento,email\nJoão,123,joao@example.com\n"
	job, err := svc.Upload(context.Background(), uploadScope(), KindClientes, "clientes.csv", []byte(csv))
	require.NoError(t, err)

	assert.Equal(t, StatusPending, job.Status)
	assert.Equal(t, "clientes.csv", job.Filename)
	assert.Equal(t, []int64{job.ID}, enq.jobIDs)
	assert.NotEmpty(t, repo.jobs[job.ID].Payload, "raw CSV kept for the worker")
}

func TestUploadRejectsViewerAndEmptyFile(t *testing.T) {
	svc, _, _, _, _ := newTestService()

	viewer := shared.Scope{WorkspaceID: 1, UserID: 5, Level: shared.LevelViewer}
	_, err := svc.Upload(context.Background(), viewer, KindClientes, "x.csv", []byte("nome\n"))
	assert.ErrorIs(t, err, shared.ErrForbidden)

	_, err = svc.Upload(context.Background(), uploadScope(), KindClientes, "x.csv", nil)
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestProcessImportsClients(t *testing.T) {
	svc, repo, _, cw, _ := newTestService()

	csv := "nome,documento,email,telefone\n" +
		"João da Silva,123.456.789-00,joao@example.com,11 99999-0000\n" +
		"Maria,,,\n"
	job, err := svc.Upload(context.Background(), uploadScope(), KindClientes, "clientes.csv", []byte(csv))
	require.NoError(t, err)

	require.NoError(t, svc.Process(context.Background(), job.ID))

	done := repo.jobs[job.ID]
	assert.Equal(t, StatusDone, done.Status)
	assert.Equal(t, 2, done.TotalRows)
	assert.Equal(t, 2, done.Imported)
	assert.Empty(t, done.RowErrors)
	assert.Nil(t, done.Payload, "payload dropped after processing")

	require.Len(t, cw.forms, 2)
	assert.Equal(t, "João da Silva", cw.forms[0].Name)
	require.NotNil(t, cw.forms[0].Email)
	assert.Equal(t, "joao@example.com", *cw.forms[0].Email)
	assert.Nil(t, cw.forms[1].Email)
}

func TestProcessRecordsRowErrors(t *testing.T) {
	svc, repo, _, cw, _ := newTestService()

	csv := "nome,documento,email\n" +
		"João,,not-an-email\n" +
		"Maria,,maria@example.com\n"
	job, err := svc.Upload(context.Background(), uploadScope(), KindClientes, "clientes.csv", []byte(csv))
	require.NoError(t, err)

	require.NoError(t, svc.Process(context.Background(), job.ID))

	done := repo.jobs[job.ID]
	assert.Equal(t, StatusDone, done.Status)
	assert.Equal(t, 2, done.TotalRows)
	assert.Equal(t, 1, done.Imported)
	require.Len(t, done.RowErrors, 1)
	assert.Equal(t, 2, done.RowErrors[0].Line)
	require.Len(t, cw.forms, 1)
	assert.Equal(t, "Maria", cw.forms[0].Name)
}

func TestProcessImportsProducts(t *testing.T) {
	svc, repo, _, _, pw := newTestService()

	csv := "nome,descricao,valor,tipo,unidade\n" +
		"Tomada dupla,Tomada 10A,\"25,90\",produto,un\n" +
		"Instalação,,120.00,servico,h\n" +
		"Sem preço,,abc,produto,un\n"
	job, err := svc.Upload(context.Background(), uploadScope(), KindProdutos, "produtos.csv", []byte(csv))
	require.NoError(t, err)

	require.NoError(t, svc.Process(context.Background(), job.ID))

	done := repo.jobs[job.ID]
	assert.Equal(t, StatusDone, done.Status)
	assert.Equal(t, 3, done.TotalRows)
	assert.Equal(t, 2, done.Imported)
	require.Len(t, done.RowErrors, 1)
	assert.Equal(t, 4, done.RowErrors[0].Line)

	require.Len(t, pw.forms, 2)
	assert.Equal(t, 25.90, pw.forms[0].Value)
	assert.Equal(t, products.KindServico, pw.forms[1].Kind)
}

func TestProcessAllRowsFailingMarksFailed(t *testing.T) {
	svc, repo, _, _, _ := newTestService()

	csv := "nome,documento,email\n,,broken\n"
	job, err := svc.Upload(context.Background(), uploadScope(), KindClientes, "clientes.csv", []byte(csv))
	require.NoError(t, err)

	require.NoError(t, svc.Process(context.Background(), job.ID))
	assert.Equal(t, StatusFailed, repo.jobs[job.ID].Status)
}

func TestParseKindRejectsUnknown(t *testing.T) {
	_, err := ParseKind("fornecedores")
	assert.ErrorIs(t, err, shared.ErrValidation)

	kind, err := ParseKind("produtos")
	require.NoError(t, err)
	assert.Equal(t, KindProdutos, kind)
}
