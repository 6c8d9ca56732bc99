// Package graphql talks to the fisheries data backend: requests are checked
// against the backend schema, sent as gqlgen raw params and decoded into the
// model objects.
package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	gqlgen "github.com/99designs/gqlgen/graphql"
	"github.com/google/uuid"
	"github.com/vektah/gqlparser/v2/gqlerror"
)

// ErrConflict is returned when the backend refuses a save because the
// entity was updated by someone else.
var ErrConflict = errors.New("entity was modified on the server")

// conflictCode is the error code the backend reports for an updateDate
// mismatch.
const conflictCode = "BAD_UPDATE_DATE"

// Request is one GraphQL operation.
type Request struct {
	Query         string
	OperationName string
	Variables     map[string]any
}

// Client sends requests to the backend GraphQL endpoint.
type Client struct {
	endpoint string
	http     *http.Client
	schema   *Schema
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithSchema validates every request against schema before sending it.
func WithSchema(schema *Schema) Option {
	return func(c *Client) {
		c.schema = schema
	}
}

// NewClient creates a client for endpoint.
func NewClient(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do sends req and decodes the data of the response into out. GraphQL
// errors are returned as a gqlerror.List, wrapped in ErrConflict when the
// backend reports a concurrent update.
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	variables, err := normalizeVariables(req.Variables)
	if err != nil {
		return err
	}
	req.Variables = variables
	if c.schema != nil {
		if err := c.schema.ValidateRequest(req); err != nil {
			return err
		}
	}

	body, err := json.Marshal(gqlgen.RawParams{
		Query:         req.Query,
		OperationName: req.OperationName,
		Variables:     req.Variables,
	})
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	requestID := uuid.NewString()
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		log.Printf("[GRAPHQL] %s failed after %v: %v", operationLabel(req), time.Since(start), err)
		return fmt.Errorf("failed to send %s: %w", operationLabel(req), err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	log.Printf("[GRAPHQL] %s %d in %v (request %s)", operationLabel(req), resp.StatusCode, time.Since(start), requestID)

	var gqlResp gqlgen.Response
	if err := json.Unmarshal(payload, &gqlResp); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return fmt.Errorf("backend returned %s", resp.Status)
		}
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if len(gqlResp.Errors) > 0 {
		return responseError(gqlResp.Errors)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("backend returned %s", resp.Status)
	}
	if out == nil || len(gqlResp.Data) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(gqlResp.Data))
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s data: %w", operationLabel(req), err)
	}
	return nil
}

// normalizeVariables gives variables the shape they have on the wire, so
// validation sees what the backend will see.
func normalizeVariables(variables map[string]any) (map[string]any, error) {
	if len(variables) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(variables)
	if err != nil {
		return nil, fmt.Errorf("failed to encode variables: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to decode variables: %w", err)
	}
	return out, nil
}

func responseError(errs gqlerror.List) error {
	for _, e := range errs {
		if isConflict(e) {
			return fmt.Errorf("%w: %w", ErrConflict, errs)
		}
	}
	return errs
}

func isConflict(e *gqlerror.Error) bool {
	if e == nil {
		return false
	}
	if code, ok := e.Extensions["code"].(string); ok && code == conflictCode {
		return true
	}
	return strings.Contains(e.Message, conflictCode)
}

func operationLabel(req Request) string {
	if req.OperationName != "" {
		return req.OperationName
	}
	return "anonymous operation"
}
