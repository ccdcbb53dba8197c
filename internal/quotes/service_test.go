package quotes

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sky-orcamentos/sky-orcamentos/internal/clients"
	"github.com/sky-orcamentos/sky-orcamentos/internal/products"
	"github.com/sky-orcamentos/sky-orcamentos/internal/shared"
)

type memRepo struct {
	nextID int64
	quotes map[int64]*Quote
}

func newMemRepo() *memRepo {
	return &memRepo{quotes: map[int64]*Quote{}}
}

func (m *memRepo) List(ctx context.Context, req ListRequest) ([]Quote, int, error) {
	var out []Quote
	for _, q := range m.quotes {
		if req.Status != nil && q.Status != *req.Status {
			continue
		}
		out = append(out, *q)
	}
	return out, len(out), nil
}

func (m *memRepo) Get(ctx context.Context, scope shared.Scope, id int64) (*Quote, error) {
	q, ok := m.quotes[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	clone := *q
	clone.Items = append([]Item(nil), q.Items...)
	return &clone, nil
}

func (m *memRepo) Create(ctx context.Context, scope shared.Scope, quote *Quote) (int64, error) {
	m.nextID++
	stored := *quote
	stored.ID = m.nextID
	stored.Number = m.nextID
	stored.CreatedAt = time.Now()
	m.quotes[stored.ID] = &stored
	return stored.ID, nil
}

func (m *memRepo) Update(ctx context.Context, scope shared.Scope, id int64, quote *Quote) error {
	existing, ok := m.quotes[id]
	if !ok {
		return shared.ErrNotFound
	}
	existing.Discount = quote.Discount
	existing.DiscountType = quote.DiscountType
	existing.Subtotal = quote.Subtotal
	existing.Total = quote.Total
	existing.Notes = quote.Notes
	existing.ValidUntil = quote.ValidUntil
	existing.Items = append([]Item(nil), quote.Items...)
	return nil
}

func (m *memRepo) UpdateStatus(ctx context.Context, scope shared.Scope, id int64, status Status) error {
	q, ok := m.quotes[id]
	if !ok {
		return shared.ErrNotFound
	}
	q.Status = status
	return nil
}

type stubClients struct {
	byID map[int64]*clients.Client
}

func (s stubClients) Get(ctx context.Context, scope shared.Scope, id int64) (*clients.Client, error) {
	c, ok := s.byID[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	clone := *c
	return &clone, nil
}

type stubProducts struct {
	byID map[int64]*products.Product
}

func (s stubProducts) Get(ctx context.Context, scope shared.Scope, id int64) (*products.Product, error) {
	p, ok := s.byID[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	clone := *p
	return &clone, nil
}

type stubRenderer struct {
	lastHTML string
}

func (s *stubRenderer) RenderHTML(ctx context.Context, html string) ([]byte, error) {
	s.lastHTML = html
	return []byte("%PDF-1.4 fake"), nil
}

type stubMailer struct {
	to, subject, body string
	calls             int
}

func (s *stubMailer) EnqueueQuoteEmail(ctx context.Context, to, subject, body string) error {
	s.calls++
	s.to, s.subject, s.body = to, subject, body
	return nil
}

func strPtr(v string) *string               { return &v }
func discount(t DiscountType) *DiscountType { return &t }

func editorScope() shared.Scope {
	return shared.Scope{WorkspaceID: 1, UserID: 7, Level: shared.LevelEditor}
}

func fixtures() (stubClients, stubProducts) {
	cs := stubClients{byID: map[int64]*clients.Client{
		1: {ID: 1, WorkspaceID: 1, Name: "João da Silva", Document: strPtr("123.456.789-00"), Email: strPtr("joao@example.com")},
	}}
	ps := stubProducts{byID: map[int64]*products.Product{
		10: {ID: 10, WorkspaceID: 1, Name: "Tomada dupla", Kind: products.KindProduto, Unit: "un", Value: 25},
		11: {ID: 11, WorkspaceID: 1, Name: "Instalação elétrica", Kind: products.KindServico, Unit: "h", Value: 120},
	}}
	return cs, ps
}

func TestCreateCapturesSnapshots(t *testing.T) {
	repo := newMemRepo()
	cs, ps := fixtures()
	svc := NewService(repo, cs, ps, &stubRenderer{}, &stubMailer{})

	quote, err := svc.Create(context.Background(), editorScope(), QuoteForm{
		ClientID: 1,
		Items: []ItemForm{
			{ProductID: 10, Quantity: 4, UnitValue: 25},
			{ProductID: 11, Quantity: 2, UnitValue: 120},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "João da Silva", quote.ClientName)
	require.NotNil(t, quote.ClientDocument)
	assert.Equal(t, "123.456.789-00", *quote.ClientDocument)
	assert.Equal(t, StatusRascunho, quote.Status)

	require.Len(t, quote.Items, 2)
	assert.Equal(t, "Tomada dupla", quote.Items[0].Name)
	assert.Equal(t, "produto", quote.Items[0].Kind)
	assert.Equal(t, "un", quote.Items[0].Unit)
	assert.Equal(t, 100.0, quote.Items[0].Total)
	assert.Equal(t, 240.0, quote.Items[1].Total)
	assert.Equal(t, 340.0, quote.Subtotal)
	assert.Equal(t, 340.0, quote.Total)
}

func TestSnapshotSurvivesClientChanges(t *testing.T) {
	repo := newMemRepo()
	cs, ps := fixtures()
	svc := NewService(repo, cs, ps, &stubRenderer{}, &stubMailer{})

	quote, err := svc.Create(context.Background(), editorScope(), QuoteForm{
		ClientID: 1,
		Items:    []ItemForm{{ProductID: 10, Quantity: 1, UnitValue: 25}},
	})
	require.NoError(t, err)

	// The client record changes after the quote was issued.
	cs.byID[1].Name = "João Renomeado"

	reloaded, err := svc.Get(context.Background(), editorScope(), quote.ID)
	require.NoError(t, err)
	assert.Equal(t, "João da Silva", reloaded.ClientName)
}

func TestTotalsWithDiscounts(t *testing.T) {
	repo := newMemRepo()
	cs, ps := fixtures()
	svc := NewService(repo, cs, ps, &stubRenderer{}, &stubMailer{})

	quote, err := svc.Create(context.Background(), editorScope(), QuoteForm{
		ClientID:     1,
		Discount:     10,
		DiscountType: discount(DiscountPercent),
		Items: []ItemForm{
			// 4 * 25 = 100, minus 20 absolute = 80
			{ProductID: 10, Quantity: 4, UnitValue: 25, Discount: 20, DiscountType: discount(DiscountAbsolute)},
			// 2 * 120 = 240, minus 50% = 120
			{ProductID: 11, Quantity: 2, UnitValue: 120, Discount: 50, DiscountType: discount(DiscountPercent)},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 80.0, quote.Items[0].Total)
	assert.Equal(t, 120.0, quote.Items[1].Total)
	assert.Equal(t, 200.0, quote.Subtotal)
	assert.Equal(t, 180.0, quote.Total, "10%% global discount applied on subtotal")
}

func TestDiscountNeverGoesNegative(t *testing.T) {
	assert.Equal(t, 0.0, applyDiscount(50, 80, discount(DiscountAbsolute)))
}

func TestUpdateReplacesItemsKeepsClientSnapshot(t *testing.T) {
	repo := newMemRepo()
	cs, ps := fixtures()
	svc := NewService(repo, cs, ps, &stubRenderer{}, &stubMailer{})

	created, err := svc.Create(context.Background(), editorScope(), QuoteForm{
		ClientID: 1,
		Items:    []ItemForm{{ProductID: 10, Quantity: 1, UnitValue: 25}},
	})
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), editorScope(), created.ID, QuoteForm{
		ClientID: 999, // ignored: the snapshot is immutable
		Items:    []ItemForm{{ProductID: 11, Quantity: 3, UnitValue: 100}},
	})
	require.NoError(t, err)

	assert.Equal(t, "João da Silva", updated.ClientName)
	require.Len(t, updated.Items, 1)
	assert.Equal(t, "Instalação elétrica", updated.Items[0].Name)
	assert.Equal(t, 300.0, updated.Total)
}

func TestUpdateStatusRejectsUnknownValue(t *testing.T) {
	repo := newMemRepo()
	cs, ps := fixtures()
	svc := NewService(repo, cs, ps, &stubRenderer{}, &stubMailer{})

	created, err := svc.Create(context.Background(), editorScope(), QuoteForm{
		ClientID: 1,
		Items:    []ItemForm{{ProductID: 10, Quantity: 1, UnitValue: 25}},
	})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), editorScope(), created.ID, Status("arquivado"))
	assert.ErrorIs(t, err, shared.ErrValidation)

	quote, err := svc.UpdateStatus(context.Background(), editorScope(), created.ID, StatusAprovado)
	require.NoError(t, err)
	assert.Equal(t, StatusAprovado, quote.Status)
}

func TestViewerCannotMutate(t *testing.T) {
	repo := newMemRepo()
	cs, ps := fixtures()
	svc := NewService(repo, cs, ps, &stubRenderer{}, &stubMailer{})

	viewer := shared.Scope{WorkspaceID: 1, UserID: 7, Level: shared.LevelViewer}
	_, err := svc.Create(context.Background(), viewer, QuoteForm{ClientID: 1})
	assert.ErrorIs(t, err, shared.ErrForbidden)
}

func TestSendEmailPromotesDraft(t *testing.T) {
	repo := newMemRepo()
	cs, ps := fixtures()
	mailer := &stubMailer{}
	svc := NewService(repo, cs, ps, &stubRenderer{}, mailer)

	created, err := svc.Create(context.Background(), editorScope(), QuoteForm{
		ClientID: 1,
		Items:    []ItemForm{{ProductID: 10, Quantity: 2, UnitValue: 25}},
	})
	require.NoError(t, err)

	err = svc.SendEmail(context.Background(), editorScope(), created.ID, EmailForm{To: "joao@example.com"})
	require.NoError(t, err)

	assert.Equal(t, 1, mailer.calls)
	assert.Equal(t, "joao@example.com", mailer.to)
	assert.Contains(t, mailer.subject, "João da Silva")
	assert.Contains(t, mailer.body, "Tomada dupla")

	reloaded, err := svc.Get(context.Background(), editorScope(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusEnviado, reloaded.Status)
}

func TestExportPDFRendersQuote(t *testing.T) {
	repo := newMemRepo()
	cs, ps := fixtures()
	renderer := &stubRenderer{}
	svc := NewService(repo, cs, ps, renderer, &stubMailer{})

	created, err := svc.Create(context.Background(), editorScope(), QuoteForm{
		ClientID: 1,
		Items:    []ItemForm{{ProductID: 10, Quantity: 2, UnitValue: 25}},
	})
	require.NoError(t, err)

	pdf, quote, err := svc.ExportPDF(context.Background(), editorScope(), created.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, pdf)
	assert.Equal(t, created.ID, quote.ID)
	assert.Contains(t, renderer.lastHTML, "João da Silva")
	assert.Contains(t, renderer.lastHTML, "Tomada dupla")
}
