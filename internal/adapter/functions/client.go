// Package functions calls the hosted serverless functions that own agent
// provisioning and vendor rating recalculation.
package functions

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/tripdesk/backoffice/internal/config"
	"github.com/tripdesk/backoffice/internal/domain"
)

const (
	createAgentPath     = "/create-agent"
	recalcRatingPath    = "/update-vendor-ratings"
	retryBackoff        = 500 * time.Millisecond
	maxErrorBodyPreview = 512
)

// ErrDisabled is returned when no functions base URL is configured.
var ErrDisabled = errors.New("functions: base url not configured")

// Client calls the serverless functions over HTTP.
type Client struct {
	baseURL    string
	serviceKey string
	maxRetries int
	httpClient *http.Client
	validate   *validator.Validate
	log        *slog.Logger
}

// NewClient creates a Client from config.
func NewClient(cfg config.FunctionsConfig, logger *slog.Logger) (*Client, error) {
	if !cfg.Enabled() {
		return nil, ErrDisabled
	}
	c := NewClientWithURL(cfg.BaseURL, cfg.ServiceKey, logger)
	c.httpClient.Timeout = cfg.Timeout
	c.maxRetries = cfg.MaxRetries
	return c, nil
}

// NewClientWithURL creates a Client with a custom base URL (for testing).
func NewClientWithURL(baseURL, serviceKey string, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		serviceKey: serviceKey,
		maxRetries: 1,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		validate:   validator.New(validator.WithRequiredStructEnabled()),
		log:        logger.With("adapter", "functions"),
	}
}

// CreateAgentInput is the payload of the create-agent function.
type CreateAgentInput struct {
	Email     string      `json:"email"     validate:"required,email"`
	Password  string      `json:"password"  validate:"required,min=8"`
	FirstName string      `json:"firstName" validate:"required"`
	LastName  string      `json:"lastName"  validate:"required"`
	Role      domain.Role `json:"role"      validate:"required,oneof=admin agent"`
}

// Agent is the user record returned by create-agent.
type Agent struct {
	ID        uuid.UUID   `json:"id"`
	Email     string      `json:"email"`
	FirstName string      `json:"firstName"`
	LastName  string      `json:"lastName"`
	Role      domain.Role `json:"role"`
}

type createAgentResponse struct {
	Success bool   `json:"success"`
	User    *Agent `json:"user"`
	Error   string `json:"error"`
}

// CreateAgent provisions an agent account. Input errors are reported as
// *domain.ValidationError before any request is made.
func (c *Client) CreateAgent(ctx context.Context, in CreateAgentInput) (*Agent, error) {
	if err := c.validateInput(in); err != nil {
		return nil, err
	}

	var out createAgentResponse
	status, err := c.post(ctx, createAgentPath, in, &out, false)
	if err != nil {
		return nil, err
	}

	if !out.Success || out.User == nil {
		msg := out.Error
		if msg == "" {
			msg = fmt.Sprintf("unexpected status %d", status)
		}
		if status == http.StatusConflict {
			return nil, fmt.Errorf("functions: create agent: %s: %w", msg, domain.ErrAlreadyExists)
		}
		return nil, fmt.Errorf("functions: create agent: %s", msg)
	}

	c.log.InfoContext(ctx, "agent created", slog.String("agent_id", out.User.ID.String()))
	return out.User, nil
}

type recalcRequest struct {
	VendorID uuid.UUID `json:"vendor_id"`
}

type recalcResponse struct {
	Success bool             `json:"success"`
	Rating  *json.RawMessage `json:"rating"`
	Error   string           `json:"error"`
}

// RecalculateVendorRating asks the rating function to recompute a vendor's
// aggregate rating from its reviews. It returns the new rating as text, or
// "" when the vendor has no reviews yet.
func (c *Client) RecalculateVendorRating(ctx context.Context, vendorID uuid.UUID) (string, error) {
	if vendorID == uuid.Nil {
		return "", domain.NewValidationError("vendor_id", "required")
	}

	var out recalcResponse
	status, err := c.post(ctx, recalcRatingPath, recalcRequest{VendorID: vendorID}, &out, true)
	if err != nil {
		return "", err
	}

	if !out.Success {
		msg := out.Error
		if msg == "" {
			msg = fmt.Sprintf("unexpected status %d", status)
		}
		if status == http.StatusNotFound {
			return "", fmt.Errorf("functions: recalc rating %s: %s: %w", vendorID, msg, domain.ErrNotFound)
		}
		return "", fmt.Errorf("functions: recalc rating %s: %s", vendorID, msg)
	}

	if out.Rating == nil || string(*out.Rating) == "null" {
		return "", nil
	}
	return strings.Trim(string(*out.Rating), `"`), nil
}

func (c *Client) validateInput(in any) error {
	err := c.validate.Struct(in)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("functions: validate input: %w", err)
	}

	fields := make([]domain.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, domain.FieldError{
			Field:   strings.ToLower(fe.Field()[:1]) + fe.Field()[1:],
			Message: fe.Tag(),
		})
	}
	return domain.NewValidationErrors(fields)
}

// post sends a JSON body and decodes a JSON reply. Non-2xx replies are still
// decoded when they carry a JSON body, so callers can read the error field.
// Only idempotent calls are retried.
func (c *Client) post(ctx context.Context, path string, body, out any, idempotent bool) (int, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return 0, fmt.Errorf("functions: encode request: %w", err)
	}

	retries := 0
	if idempotent {
		retries = c.maxRetries
	}

	resp, err := c.doWithRetry(ctx, path, payload, retries)
	if err != nil {
		c.log.ErrorContext(ctx, "functions request failed", slog.String("path", path), slog.String("error", err.Error()))
		return 0, fmt.Errorf("functions: request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("functions: read body: %w", err)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		preview := string(raw)
		if len(preview) > maxErrorBodyPreview {
			preview = preview[:maxErrorBodyPreview]
		}
		return resp.StatusCode, fmt.Errorf("functions: status %d: decode json: %w (body: %q)", resp.StatusCode, err, preview)
	}

	c.log.DebugContext(ctx, "functions response", slog.String("path", path), slog.Int("status", resp.StatusCode))
	return resp.StatusCode, nil
}

// doWithRetry retries on 5xx or network errors up to maxRetries times.
func (c *Client) doWithRetry(ctx context.Context, path string, payload []byte, maxRetries int) (*http.Response, error) {
	var (
		resp *http.Response
		err  error
	)

	for attempt := 0; ; attempt++ {
		req, reqErr := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
		if reqErr != nil {
			return nil, fmt.Errorf("create request: %w", reqErr)
		}
		req.Header.Set("Content-Type", "application/json")
		if c.serviceKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.serviceKey)
			req.Header.Set("apikey", c.serviceKey)
		}

		resp, err = c.httpClient.Do(req)

		shouldRetry := err != nil || resp.StatusCode >= 500
		if !shouldRetry || attempt >= maxRetries || ctx.Err() != nil {
			return resp, err
		}

		reason := "network error"
		if err == nil {
			reason = fmt.Sprintf("status %d", resp.StatusCode)
			resp.Body.Close()
		}
		c.log.WarnContext(ctx, "functions retry",
			slog.String("path", path),
			slog.String("reason", reason),
			slog.Int("attempt", attempt+1),
		)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryBackoff):
		}
	}
}
