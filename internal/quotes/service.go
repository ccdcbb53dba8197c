package quotes

import (
	"context"
	"fmt"
	"math"

	"github.com/sky-orcamentos/sky-orcamentos/internal/clients"
	"github.com/sky-orcamentos/sky-orcamentos/internal/products"
	"github.com/sky-orcamentos/sky-orcamentos/internal/shared"
)

// ClientSource resolves the client a quote snapshot is taken from.
type ClientSource interface {
	Get(ctx context.Context, scope shared.Scope, id int64) (*clients.Client, error)
}

// ProductSource resolves products for per-item snapshots.
type ProductSource interface {
	Get(ctx context.Context, scope shared.Scope, id int64) (*products.Product, error)
}

// PDFRenderer converts rendered HTML into a PDF document.
type PDFRenderer interface {
	RenderHTML(ctx context.Context, html string) ([]byte, error)
}

// Mailer enqueues outbound quote emails for the worker.
type Mailer interface {
	EnqueueQuoteEmail(ctx context.Context, to, subject, body string) error
}

type Service struct {
	repo     Repository
	clients  ClientSource
	products ProductSource
	renderer PDFRenderer
	mailer   Mailer
}

func NewService(repo Repository, clientSource ClientSource, productSource ProductSource, renderer PDFRenderer, mailer Mailer) *Service {
	return &Service{
		repo:     repo,
		clients:  clientSource,
		products: productSource,
		renderer: renderer,
		mailer:   mailer,
	}
}

func (s *Service) List(ctx context.Context, req ListRequest) ([]Quote, shared.Pagination, error) {
	items, total, err := s.repo.List(ctx, req)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return items, shared.NewPagination(req.Page, req.PerPage, total), nil
}

func (s *Service) Get(ctx context.Context, scope shared.Scope, id int64) (*Quote, error) {
	return s.repo.Get(ctx, scope, id)
}

// Create snapshots the client and every referenced product into the
// quote row. The snapshot is taken exactly once; later edits to the
// client or products leave issued quotes untouched.
func (s *Service) Create(ctx context.Context, scope shared.Scope, form QuoteForm) (*Quote, error) {
	if !scope.CanEdit() {
		return nil, shared.ErrForbidden
	}

	client, err := s.clients.Get(ctx, scope, form.ClientID)
	if err != nil {
		return nil, fmt.Errorf("snapshot client: %w", err)
	}

	quote := &Quote{
		WorkspaceID:    scope.WorkspaceID,
		ClientID:       &client.ID,
		ClientName:     client.Name,
		ClientDocument: client.Document,
		ClientEmail:    client.Email,
		ClientPhone:    client.Phone,
		ClientAddress:  client.Address,
		Status:         StatusRascunho,
		Discount:       form.Discount,
		DiscountType:   form.DiscountType,
		Notes:          form.Notes,
		ValidUntil:     form.ValidUntil,
	}

	if err := s.fillItems(ctx, scope, quote, form.Items); err != nil {
		return nil, err
	}
	computeTotals(quote)

	id, err := s.repo.Create(ctx, scope, quote)
	if err != nil {
		return nil, fmt.Errorf("create quote: %w", err)
	}
	return s.repo.Get(ctx, scope, id)
}

// Update replaces the mutable fields and the item set. New items get a
// fresh product snapshot; the client snapshot from creation is never
// rewritten, even when clienteId in the payload differs.
func (s *Service) Update(ctx context.Context, scope shared.Scope, id int64, form QuoteForm) (*Quote, error) {
	if !scope.CanEdit() {
		return nil, shared.ErrForbidden
	}
	if _, err := s.repo.Get(ctx, scope, id); err != nil {
		return nil, err
	}

	quote := &Quote{
		WorkspaceID:  scope.WorkspaceID,
		Discount:     form.Discount,
		DiscountType: form.DiscountType,
		Notes:        form.Notes,
		ValidUntil:   form.ValidUntil,
	}
	if err := s.fillItems(ctx, scope, quote, form.Items); err != nil {
		return nil, err
	}
	computeTotals(quote)

	if err := s.repo.Update(ctx, scope, id, quote); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, scope, id)
}

func (s *Service) UpdateStatus(ctx context.Context, scope shared.Scope, id int64, status Status) (*Quote, error) {
	if !scope.CanEdit() {
		return nil, shared.ErrForbidden
	}
	if !ValidStatus(status) {
		return nil, fmt.Errorf("%w: status desconhecido", shared.ErrValidation)
	}
	if err := s.repo.UpdateStatus(ctx, scope, id, status); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, scope, id)
}

// ExportPDF renders the quote as HTML and hands it to Gotenberg.
func (s *Service) ExportPDF(ctx context.Context, scope shared.Scope, id int64) ([]byte, *Quote, error) {
	quote, err := s.repo.Get(ctx, scope, id)
	if err != nil {
		return nil, nil, err
	}
	html, err := renderHTML(quote)
	if err != nil {
		return nil, nil, fmt.Errorf("render quote html: %w", err)
	}
	pdf, err := s.renderer.RenderHTML(ctx, html)
	if err != nil {
		return nil, nil, fmt.Errorf("render quote pdf: %w", err)
	}
	return pdf, quote, nil
}

// SendEmail enqueues the quote email and promotes a draft to enviado.
func (s *Service) SendEmail(ctx context.Context, scope shared.Scope, id int64, form EmailForm) error {
	if !scope.CanEdit() {
		return shared.ErrForbidden
	}
	quote, err := s.repo.Get(ctx, scope, id)
	if err != nil {
		return err
	}

	subject := fmt.Sprintf("Orçamento #%d - %s", quote.Number, quote.ClientName)
	body, err := renderEmailHTML(quote, form.Message)
	if err != nil {
		return fmt.Errorf("render quote email: %w", err)
	}
	if err := s.mailer.EnqueueQuoteEmail(ctx, form.To, subject, body); err != nil {
		return fmt.Errorf("enqueue quote email: %w", err)
	}

	if quote.Status == StatusRascunho {
		return s.repo.UpdateStatus(ctx, scope, id, StatusEnviado)
	}
	return nil
}

func (s *Service) fillItems(ctx context.Context, scope shared.Scope, quote *Quote, forms []ItemForm) error {
	for _, f := range forms {
		product, err := s.products.Get(ctx, scope, f.ProductID)
		if err != nil {
			return fmt.Errorf("snapshot product %d: %w", f.ProductID, err)
		}
		quote.Items = append(quote.Items, Item{
			ProductID:    &product.ID,
			Name:         product.Name,
			Kind:         string(product.Kind),
			Unit:         product.Unit,
			Quantity:     f.Quantity,
			UnitValue:    f.UnitValue,
			Discount:     f.Discount,
			DiscountType: f.DiscountType,
		})
	}
	return nil
}

// computeTotals fills per-line totals, the subtotal and the grand total
// after the optional global discount.
func computeTotals(quote *Quote) {
	var subtotal float64
	for i := range quote.Items {
		it := &quote.Items[i]
		it.Total = applyDiscount(it.Quantity*it.UnitValue, it.Discount, it.DiscountType)
		subtotal += it.Total
	}
	quote.Subtotal = round2(subtotal)
	quote.Total = applyDiscount(quote.Subtotal, quote.Discount, quote.DiscountType)
}

func applyDiscount(gross, discount float64, kind *DiscountType) float64 {
	if kind == nil || discount == 0 {
		return round2(gross)
	}
	var net float64
	switch *kind {
	case DiscountPercent:
		net = gross * (1 - discount/100)
	case DiscountAbsolute:
		net = gross - discount
	default:
		net = gross
	}
	if net < 0 {
		net = 0
	}
	return round2(net)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
