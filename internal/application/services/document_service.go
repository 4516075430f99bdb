package services

import (
	"context"
	"fmt"

	"github.com/taskmaster/tasklist/internal/domain/entities"
	"github.com/taskmaster/tasklist/internal/infrastructure/logger"
	"github.com/taskmaster/tasklist/internal/ports"
)

// DocumentService handles operations on the stored task document
type DocumentService struct {
	repo   ports.DocumentRepository
	logger *logger.Logger
}

// NewDocumentService creates a new document service
func NewDocumentService(repo ports.DocumentRepository, logger *logger.Logger) *DocumentService {
	return &DocumentService{
		repo:   repo,
		logger: logger.WithComponent("document_service"),
	}
}

// DocumentSummary describes the stored document without its contents.
type DocumentSummary struct {
	Tasks        int   `json:"tasks"`
	Active       int   `json:"active"`
	Categories   int   `json:"categories"`
	LastModified int64 `json:"lastModified"`
}

// Read returns the stored bytes once they are known to parse as a document.
func (s *DocumentService) Read(ctx context.Context) ([]byte, error) {
	data, err := s.repo.ReadRaw(ctx)
	if err != nil {
		return nil, err
	}

	if _, err := entities.ParseDocument(data); err != nil {
		return nil, &entities.ParseError{Source: "task list", Err: err}
	}

	return data, nil
}

// Write replaces the stored document with body as given.
func (s *DocumentService) Write(ctx context.Context, body []byte) error {
	if err := s.repo.WriteRaw(ctx, body); err != nil {
		return fmt.Errorf("failed to write task list: %w", err)
	}

	s.logger.Infow("Task list replaced", "bytes", len(body))
	return nil
}

// Summary loads the document and counts its contents.
func (s *DocumentService) Summary(ctx context.Context) (*DocumentSummary, error) {
	doc, err := s.repo.Load(ctx)
	if err != nil {
		return nil, err
	}

	summary := &DocumentSummary{
		Tasks:        len(doc.Tasks),
		Categories:   len(doc.Categories),
		LastModified: doc.LastModified,
	}
	for _, t := range doc.Tasks {
		if t.IsActive() {
			summary.Active++
		}
	}
	return summary, nil
}
