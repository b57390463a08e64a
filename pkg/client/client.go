// Package client talks to the Stepflow HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dukex/stepflow/pkg/models"
	"github.com/dukex/stepflow/pkg/services"
	"github.com/dukex/stepflow/pkg/validation"
)

const defaultTimeout = 30 * time.Second

// APIError is a problem response returned by the API.
type APIError struct {
	StatusCode int                    `json:"-"`
	Type       string                 `json:"type"`
	Title      string                 `json:"title"`
	Detail     string                 `json:"detail"`
	Errors     []validation.Violation `json:"errors,omitempty"`
}

func (e *APIError) Error() string {
	var b strings.Builder

	fmt.Fprintf(&b, "%d %s", e.StatusCode, e.Title)

	if e.Detail != "" {
		b.WriteString(": " + e.Detail)
	}

	for _, violation := range e.Errors {
		b.WriteString("\n  " + violation.String())
	}

	return b.String()
}

// IsNotFound reports whether err is a 404 problem.
func IsNotFound(err error) bool {
	var apiErr *APIError

	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// New creates a client for the API served at baseURL, e.g. http://localhost:9091.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/api/health", nil, nil)
}

func (c *Client) CreateUser(ctx context.Context, input services.CreateUserInput) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodPost, "/api/users", input, &user); err != nil {
		return nil, err
	}

	return &user, nil
}

func (c *Client) GetUser(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodGet, "/api/users/"+strconv.FormatInt(id, 10), nil, &user); err != nil {
		return nil, err
	}

	return &user, nil
}

func (c *Client) StepTypes(ctx context.Context) ([]models.RegisteredComponent, error) {
	var components []models.RegisteredComponent
	if err := c.do(ctx, http.MethodGet, "/api/step-types", nil, &components); err != nil {
		return nil, err
	}

	return components, nil
}

func (c *Client) ListWorkflows(ctx context.Context) ([]*models.Workflow, error) {
	var workflows []*models.Workflow
	if err := c.do(ctx, http.MethodGet, "/api/workflows", nil, &workflows); err != nil {
		return nil, err
	}

	return workflows, nil
}

func (c *Client) GetWorkflow(ctx context.Context, id int64) (*models.Workflow, error) {
	var workflow models.Workflow
	if err := c.do(ctx, http.MethodGet, workflowPath(id), nil, &workflow); err != nil {
		return nil, err
	}

	return &workflow, nil
}

func (c *Client) CreateWorkflow(ctx context.Context, input services.CreateWorkflowInput) (*models.Workflow, error) {
	var workflow models.Workflow
	if err := c.do(ctx, http.MethodPost, "/api/workflows", input, &workflow); err != nil {
		return nil, err
	}

	return &workflow, nil
}

func (c *Client) UpdateWorkflow(ctx context.Context, id int64, input services.UpdateWorkflowInput) (*models.Workflow, error) {
	var workflow models.Workflow
	if err := c.do(ctx, http.MethodPut, workflowPath(id), input, &workflow); err != nil {
		return nil, err
	}

	return &workflow, nil
}

func (c *Client) DeleteWorkflow(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, workflowPath(id), nil, nil)
}

func (c *Client) ExecuteWorkflow(ctx context.Context, id int64) (*models.WorkflowExecution, error) {
	var execution models.WorkflowExecution
	if err := c.do(ctx, http.MethodPost, workflowPath(id)+"/execute", nil, &execution); err != nil {
		return nil, err
	}

	return &execution, nil
}

func (c *Client) ListExecutions(ctx context.Context, id int64) ([]*models.WorkflowExecution, error) {
	var executions []*models.WorkflowExecution
	if err := c.do(ctx, http.MethodGet, workflowPath(id)+"/executions", nil, &executions); err != nil {
		return nil, err
	}

	return executions, nil
}

func workflowPath(id int64) string {
	return "/api/workflows/" + strconv.FormatInt(id, 10)
}

// do sends body as JSON and decodes a 2xx answer into out. Any other answer
// becomes an *APIError.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader

	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}

		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if json.Unmarshal(payload, apiErr) != nil || apiErr.Title == "" {
			apiErr.Title = http.StatusText(resp.StatusCode)
		}

		return apiErr
	}

	if out == nil || len(payload) == 0 {
		return nil
	}

	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
