package ports

import (
	"context"
	"time"

	"github.com/taskmaster/tasklist/internal/domain/entities"
)

// DocumentTransport is the client-side view of the /tasks endpoint.
type DocumentTransport interface {
	// Fetch retrieves the full document from the server.
	Fetch(ctx context.Context) (*entities.Document, error)
	// Replace pushes the full document to the server.
	Replace(ctx context.Context, doc *entities.Document) error
}

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
