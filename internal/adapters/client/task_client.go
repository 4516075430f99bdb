package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/taskmaster/tasklist/internal/domain/entities"
	"github.com/taskmaster/tasklist/internal/infrastructure/logger"
	"github.com/taskmaster/tasklist/internal/ports"
)

// TaskClient talks to the /tasks endpoint of a tasklist server.
type TaskClient struct {
	baseURL string
	http    *http.Client
	logger  *logger.Logger
}

// NewTaskClient creates a client for the server at baseURL. httpClient may be
// nil, in which case a client without a timeout is used.
func NewTaskClient(baseURL string, httpClient *http.Client, appLogger *logger.Logger) *TaskClient {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &TaskClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		logger:  appLogger.WithComponent("task_client"),
	}
}

var _ ports.DocumentTransport = (*TaskClient)(nil)

func (c *TaskClient) tasksURL() string {
	return c.baseURL + "/tasks"
}

// Fetch retrieves the full document, bypassing any caches.
func (c *TaskClient) Fetch(ctx context.Context) (*entities.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.tasksURL(), nil)
	if err != nil {
		return nil, &entities.NetworkError{Method: http.MethodGet, URL: c.tasksURL(), Err: err}
	}
	req.Header.Set("Cache-Control", "no-store")
	req.Header.Set("Accept", "application/json")

	body, err := c.do(req)
	if err != nil {
		return nil, err
	}

	doc, err := entities.ParseDocument(body)
	if err != nil {
		return nil, &entities.ParseError{Source: c.tasksURL(), Err: err}
	}
	return doc, nil
}

// Replace pushes the full document.
func (c *TaskClient) Replace(ctx context.Context, doc *entities.Document) error {
	payload, err := doc.Marshal()
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.tasksURL(), bytes.NewReader(payload))
	if err != nil {
		return &entities.NetworkError{Method: http.MethodPut, URL: c.tasksURL(), Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	body, err := c.do(req)
	if err != nil {
		return err
	}

	var resp struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &resp); err == nil && resp.Message != "" {
		c.logger.Info(resp.Message)
	}
	return nil
}

func (c *TaskClient) do(req *http.Request) ([]byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &entities.NetworkError{Method: req.Method, URL: req.URL.String(), Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &entities.NetworkError{Method: req.Method, URL: req.URL.String(), StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Error string `json:"error"`
		}
		netErr := &entities.NetworkError{Method: req.Method, URL: req.URL.String(), StatusCode: resp.StatusCode}
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			netErr.Err = fmt.Errorf("status %d: %s", resp.StatusCode, apiErr.Error)
		}
		return nil, netErr
	}

	return body, nil
}
