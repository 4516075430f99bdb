package repository

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/taskmaster/tasklist/internal/domain/entities"
	"github.com/taskmaster/tasklist/internal/infrastructure/logger"
	"github.com/taskmaster/tasklist/internal/infrastructure/metrics"
	"github.com/taskmaster/tasklist/internal/ports"
)

// DocumentRepositoryImpl stores the task document as one JSON file.
//
// Every write replaces the whole file. There is no locking: concurrent
// writers race and the last one to land wins.
type DocumentRepositoryImpl struct {
	path    string
	logger  *logger.Logger
	metrics *metrics.Metrics
}

// NewDocumentRepository creates a file-backed document repository.
// metrics may be nil.
func NewDocumentRepository(path string, appLogger *logger.Logger, m *metrics.Metrics) *DocumentRepositoryImpl {
	return &DocumentRepositoryImpl{
		path:    path,
		logger:  appLogger.WithComponent("document_repository"),
		metrics: m,
	}
}

var _ ports.DocumentRepository = (*DocumentRepositoryImpl)(nil)

// Path returns the backing file path.
func (r *DocumentRepositoryImpl) Path() string {
	return r.path
}

func (r *DocumentRepositoryImpl) ReadRaw(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	data, err := os.ReadFile(r.path)
	r.observe("read", len(data), start, err)
	if err != nil {
		return nil, &entities.IOError{Op: "read", Path: r.path, Err: err}
	}
	return data, nil
}

func (r *DocumentRepositoryImpl) Load(ctx context.Context) (*entities.Document, error) {
	data, err := r.ReadRaw(ctx)
	if err != nil {
		return nil, err
	}

	doc, err := entities.ParseDocument(data)
	if err != nil {
		perr := &entities.ParseError{Source: r.path, Err: err}
		r.logger.Errorw("Malformed task document", "path", r.path, "error", err)
		r.metrics.ObserveStore("parse", 0, perr)
		return nil, perr
	}

	return doc, nil
}

func (r *DocumentRepositoryImpl) Replace(ctx context.Context, doc *entities.Document) error {
	data, err := doc.Marshal()
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	return r.WriteRaw(ctx, data)
}

func (r *DocumentRepositoryImpl) WriteRaw(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	start := time.Now()
	err := os.WriteFile(r.path, data, 0o644)
	r.observe("write", len(data), start, err)
	if err != nil {
		return &entities.IOError{Op: "write", Path: r.path, Err: err}
	}
	return nil
}

func (r *DocumentRepositoryImpl) observe(op string, size int, start time.Time, err error) {
	r.logger.LogStoreOperation(op, r.path, size, float64(time.Since(start).Microseconds())/1000, err)
	r.metrics.ObserveStore(op, size, err)
}
