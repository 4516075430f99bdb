package ports

import (
	"context"

	"github.com/taskmaster/tasklist/internal/domain/entities"
)

// DocumentRepository defines the persistence operations for the task document.
// There is no per-task granularity: the whole document is read or replaced.
type DocumentRepository interface {
	// Load reads the full document. It fails with *entities.IOError when the
	// backing file is unreadable and *entities.ParseError when it is malformed.
	Load(ctx context.Context) (*entities.Document, error)
	// Replace overwrites the backing file with the serialized document.
	Replace(ctx context.Context, doc *entities.Document) error
	// WriteRaw overwrites the backing file with data verbatim.
	WriteRaw(ctx context.Context, data []byte) error
	// ReadRaw returns the backing file contents verbatim.
	ReadRaw(ctx context.Context) ([]byte, error)
}
