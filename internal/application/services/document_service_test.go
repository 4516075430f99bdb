package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskmaster/tasklist/internal/adapters/repository"
	"github.com/taskmaster/tasklist/internal/domain/entities"
	"github.com/taskmaster/tasklist/internal/infrastructure/logger"
)

func newService(t *testing.T, contents string) (*DocumentService, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "taskList.json")
	if contents != "" {
		require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	}
	repo := repository.NewDocumentRepository(path, logger.NewNop(), nil)
	return NewDocumentService(repo, logger.NewNop()), path
}

func TestRead(t *testing.T) {
	ctx := context.Background()

	t.Run("returns bytes verbatim", func(t *testing.T) {
		contents := `{"categories":{},"tasks":{}}`
		svc, _ := newService(t, contents)

		data, err := svc.Read(ctx)
		require.NoError(t, err)
		assert.Equal(t, contents, string(data))
	})

	t.Run("missing file", func(t *testing.T) {
		svc, _ := newService(t, "")

		_, err := svc.Read(ctx)
		assert.True(t, entities.IsIOError(err))
	})

	t.Run("malformed file", func(t *testing.T) {
		svc, _ := newService(t, "{oops")

		_, err := svc.Read(ctx)
		assert.True(t, entities.IsParseError(err))
	})
}

func TestWrite(t *testing.T) {
	svc, path := newService(t, `{"tasks":{}}`)

	body := []byte(`{"lastModified":9,"categories":{},"tasks":{}}`)
	require.NoError(t, svc.Write(context.Background(), body))

	stored, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, body, stored)
}

func TestSummary(t *testing.T) {
	svc, _ := newService(t, `{
		"lastModified": 77,
		"categories": {"bills": "💸", "home": "🏠"},
		"tasks": {
			"1": {"taskCreationTime": 1, "taskName": "a", "taskCompletionTime": 0},
			"2": {"taskCreationTime": 2, "taskName": "b", "taskCompletionTime": 5},
			"3": {"taskCreationTime": 3, "taskName": "c", "taskCompletionTime": 0}
		}
	}`)

	summary, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &DocumentSummary{Tasks: 3, Active: 2, Categories: 2, LastModified: 77}, summary)
}
