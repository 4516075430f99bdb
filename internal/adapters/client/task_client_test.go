package client

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskmaster/tasklist/internal/domain/entities"
	"github.com/taskmaster/tasklist/internal/infrastructure/logger"
)

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/tasks", r.URL.Path)
		assert.Equal(t, "no-store", r.Header.Get("Cache-Control"))
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"lastModified":1,"categories":{"bills":"💸"},"tasks":{"1000":{"taskCreationTime":1000,"taskName":"Pay rent","taskCategory":"bills","taskPriority":2,"taskDueTime":null,"taskCompletionTime":0,"taskNotes":"","daysToResurrect":0}}}`)
	}))
	defer srv.Close()

	c := NewTaskClient(srv.URL+"/", nil, logger.NewNop())
	doc, err := c.Fetch(context.Background())
	require.NoError(t, err)

	require.Contains(t, doc.Tasks, entities.TaskID(1000))
	assert.Equal(t, "Pay rent", doc.Tasks[1000].Name)
	assert.Equal(t, "💸", doc.Categories["bills"])
}

func TestFetchErrors(t *testing.T) {
	t.Run("server error is a network error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			io.WriteString(w, `{"error":"Failed to load tasks"}`)
		}))
		defer srv.Close()

		_, err := NewTaskClient(srv.URL, nil, logger.NewNop()).Fetch(context.Background())
		require.Error(t, err)
		assert.True(t, entities.IsNetworkError(err))
		assert.Contains(t, err.Error(), "Failed to load tasks")
	})

	t.Run("bad body is a parse error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `<html>`)
		}))
		defer srv.Close()

		_, err := NewTaskClient(srv.URL, nil, logger.NewNop()).Fetch(context.Background())
		require.Error(t, err)
		assert.True(t, entities.IsParseError(err))
	})

	t.Run("unreachable server is a network error", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		_, err := NewTaskClient(url, nil, logger.NewNop()).Fetch(context.Background())
		require.Error(t, err)
		assert.True(t, entities.IsNetworkError(err))
	})
}

func TestReplace(t *testing.T) {
	var received []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		received, _ = io.ReadAll(r.Body)
		io.WriteString(w, `{"message":"Tasks saved successfully"}`)
	}))
	defer srv.Close()

	doc := entities.NewDocument()
	doc.Tasks[7] = &entities.Task{ID: 7, Name: "x"}

	require.NoError(t, NewTaskClient(srv.URL, nil, logger.NewNop()).Replace(context.Background(), doc))

	parsed, err := entities.ParseDocument(received)
	require.NoError(t, err)
	assert.Equal(t, "x", parsed.Tasks[7].Name)
}

func TestReplaceNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	err := NewTaskClient(srv.URL, nil, logger.NewNop()).Replace(context.Background(), entities.NewDocument())
	require.Error(t, err)

	var netErr *entities.NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Equal(t, http.StatusBadGateway, netErr.StatusCode)
}
