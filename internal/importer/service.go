package importer

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/sky-orcamentos/sky-orcamentos/internal/clients"
	"github.com/sky-orcamentos/sky-orcamentos/internal/products"
	"github.com/sky-orcamentos/sky-orcamentos/internal/shared"
)

// Enqueuer hands a stored job to the background queue.
type Enqueuer interface {
	EnqueueImport(ctx context.Context, jobID int64) error
}

// ClientWriter inserts imported client rows.
type ClientWriter interface {
	Create(ctx context.Context, scope shared.Scope, form clients.ClientForm) (int64, error)
}

// ProductWriter inserts imported product rows.
type ProductWriter interface {
	Create(ctx context.Context, scope shared.Scope, form products.ProductForm) (int64, error)
}

const maxUploadBytes = 5 << 20

type Service struct {
	logger   *slog.Logger
	repo     Repository
	enqueuer Enqueuer
	clients  ClientWriter
	products ProductWriter
	validate *validator.Validate
}

func NewService(logger *slog.Logger, repo Repository, enqueuer Enqueuer, clientWriter ClientWriter, productWriter ProductWriter, validate *validator.Validate) *Service {
	return &Service{
		logger:   logger,
		repo:     repo,
		enqueuer: enqueuer,
		clients:  clientWriter,
		products: productWriter,
		validate: validate,
	}
}

// Upload stores the raw CSV as a pending job and enqueues it.
func (s *Service) Upload(ctx context.Context, scope shared.Scope, kind Kind, filename string, payload []byte) (*Job, error) {
	if !scope.CanEdit() {
		return nil, shared.ErrForbidden
	}
	if len(payload) == 0 {
		return nil, fmt.Errorf("%w: arquivo vazio", shared.ErrValidation)
	}
	if len(payload) > maxUploadBytes {
		return nil, fmt.Errorf("%w: arquivo excede o limite de 5MB", shared.ErrValidation)
	}

	job := &Job{
		WorkspaceID: scope.WorkspaceID,
		UserID:      scope.UserID,
		Kind:        kind,
		Filename:    filename,
		Payload:     payload,
	}
	id, err := s.repo.Create(ctx, job)
	if err != nil {
		return nil, fmt.Errorf("store import job: %w", err)
	}
	if err := s.enqueuer.EnqueueImport(ctx, id); err != nil {
		return nil, fmt.Errorf("enqueue import job: %w", err)
	}
	return s.repo.Get(ctx, scope, id)
}

func (s *Service) Status(ctx context.Context, scope shared.Scope, id int64) (*Job, error) {
	return s.repo.Get(ctx, scope, id)
}

// Process runs on the worker: parses the stored CSV, inserts valid rows
// into the job's workspace and records per-row errors. A job whose file
// cannot be parsed at all finishes as failed.
func (s *Service) Process(ctx context.Context, jobID int64) error {
	job, err := s.repo.GetForProcessing(ctx, jobID)
	if err != nil {
		return err
	}
	if err := s.repo.MarkProcessing(ctx, jobID); err != nil {
		// Already picked up or finished; nothing to do.
		s.logger.Warn("import job not pending", slog.Int64("job", jobID), slog.Any("error", err))
		return nil
	}

	scope := shared.Scope{
		WorkspaceID: job.WorkspaceID,
		UserID:      job.UserID,
		Level:       shared.LevelEditor,
	}

	records, err := readRecords(job.Payload)
	if err != nil {
		s.logger.Error("import job unreadable", slog.Int64("job", jobID), slog.Any("error", err))
		return s.repo.Finish(ctx, jobID, StatusFailed, 0, 0, []RowError{{Line: 0, Message: err.Error()}})
	}

	var imported int
	var rowErrors []RowError
	for i, record := range records {
		line := i + 2 // header occupies line 1
		var rowErr error
		switch job.Kind {
		case KindClientes:
			rowErr = s.importClient(ctx, scope, record)
		case KindProdutos:
			rowErr = s.importProduct(ctx, scope, record)
		default:
			rowErr = fmt.Errorf("tipo de importação desconhecido %q", job.Kind)
		}
		if rowErr != nil {
			rowErrors = append(rowErrors, RowError{Line: line, Message: rowErr.Error()})
			continue
		}
		imported++
	}

	status := StatusDone
	if imported == 0 && len(records) > 0 {
		status = StatusFailed
	}
	s.logger.Info("import job finished",
		slog.Int64("job", jobID),
		slog.String("status", string(status)),
		slog.Int("imported", imported),
		slog.Int("errors", len(rowErrors)))
	return s.repo.Finish(ctx, jobID, status, len(records), imported, rowErrors)
}

// readRecords parses the CSV body, skipping the header line.
func readRecords(payload []byte) ([][]string, error) {
	reader := csv.NewReader(bytes.NewReader(payload))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	if _, err := reader.Read(); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("arquivo sem cabeçalho")
		}
		return nil, err
	}

	var records [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

// importClient maps one CSV record onto the client form. Columns:
// nome, documento, email, telefone, endereco, cidade, estado, cep.
func (s *Service) importClient(ctx context.Context, scope shared.Scope, record []string) error {
	form := clients.ClientForm{Name: field(record, 0)}
	form.Document = optField(record, 1)
	form.Email = optField(record, 2)
	form.Phone = optField(record, 3)
	form.Address = optField(record, 4)
	form.City = optField(record, 5)
	form.State = optField(record, 6)
	form.PostalCode = optField(record, 7)

	if err := s.validate.Struct(form); err != nil {
		return err
	}
	_, err := s.clients.Create(ctx, scope, form)
	return err
}

// importProduct maps one CSV record onto the product form. Columns:
// nome, descricao, valor, tipo, unidade.
func (s *Service) importProduct(ctx context.Context, scope shared.Scope, record []string) error {
	rawValue := field(record, 2)
	value, err := strconv.ParseFloat(strings.ReplaceAll(rawValue, ",", "."), 64)
	if err != nil {
		return fmt.Errorf("valor inválido %q", rawValue)
	}

	form := products.ProductForm{
		Name:        field(record, 0),
		Description: optField(record, 1),
		Value:       value,
		Kind:        products.Kind(field(record, 3)),
		Unit:        field(record, 4),
	}
	if form.Unit == "" {
		form.Unit = "un"
	}
	if err := s.validate.Struct(form); err != nil {
		return err
	}
	_, err = s.products.Create(ctx, scope, form)
	return err
}

func field(record []string, idx int) string {
	if idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

func optField(record []string, idx int) *string {
	v := field(record, idx)
	if v == "" {
		return nil
	}
	return &v
}
