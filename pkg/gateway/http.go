package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// EndpointResolver maps an operation name to the URL serving it
type EndpointResolver interface {
	Endpoint(ctx context.Context, operation string) (string, error)
}

// StaticResolver serves every operation from BaseURL/<operation>
type StaticResolver struct {
	BaseURL string
}

// Endpoint implements EndpointResolver
func (s StaticResolver) Endpoint(_ context.Context, operation string) (string, error) {
	if s.BaseURL == "" {
		return "", fmt.Errorf("no base URL configured for %s", operation)
	}
	return strings.TrimRight(s.BaseURL, "/") + "/" + operation, nil
}

// HTTPHandler calls callable-style HTTP functions: the request body is
// {"data": payload} and the response is {"result": ...} or
// {"error": {"status": ..., "message": ...}}. A body with neither key is
// read as the result itself.
type HTTPHandler struct {
	client   *http.Client
	resolver EndpointResolver
	logger   *zap.Logger
}

// NewHTTPHandler creates an HTTP transport. A nil client uses http.DefaultClient.
func NewHTTPHandler(client *http.Client, resolver EndpointResolver, logger *zap.Logger) *HTTPHandler {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPHandler{client: client, resolver: resolver, logger: logger}
}

type callableRequest struct {
	Data any `json:"data"`
}

type callableError struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Handle implements Handler
func (h *HTTPHandler) Handle(ctx context.Context, operation string, payload any) (*Response, error) {
	endpoint, err := h.resolver.Endpoint(ctx, operation)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve endpoint for %s: %w", operation, err)
	}

	body, err := json.Marshal(callableRequest{Data: payload})
	if err != nil {
		return nil, fmt.Errorf("invalid-argument: failed to encode %s payload: %v", operation, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", operation, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", operation, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", operation, err)
	}

	var fields map[string]json.RawMessage
	decodeErr := json.Unmarshal(raw, &fields)

	if e, ok := callableErrorField(fields["error"]); ok {
		return nil, callableFailure(operation, e)
	}
	if resp.StatusCode >= 300 {
		return nil, statusFailure(operation, resp.StatusCode)
	}
	if decodeErr != nil && !json.Valid(raw) {
		return nil, fmt.Errorf("%s returned malformed response: %w", operation, decodeErr)
	}

	result, ok := fields["result"]
	if !ok {
		result = raw
	}

	h.logger.Debug("callable response received",
		zap.String("operation", operation),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(raw)),
	)
	return decodeResult(result), nil
}

// decodeResult accepts both an explicit {success, data, error} envelope and
// bare result data.
func decodeResult(result json.RawMessage) *Response {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(result, &keys); err == nil {
		if _, ok := keys["success"]; ok {
			var envelope Response
			if err := json.Unmarshal(result, &envelope); err == nil {
				return &envelope
			}
		}
	}
	if len(result) == 0 || string(result) == "null" {
		return &Response{Success: true}
	}
	return &Response{Success: true, Data: result}
}

// callableErrorField reports whether raw is a {status, message} error object
func callableErrorField(raw json.RawMessage) (*callableError, bool) {
	if len(raw) == 0 {
		return nil, false
	}
	var e callableError
	if err := json.Unmarshal(raw, &e); err != nil || (e.Status == "" && e.Message == "") {
		return nil, false
	}
	return &e, true
}

func callableFailure(operation string, e *callableError) error {
	status := strings.ToLower(strings.ReplaceAll(e.Status, "_", "-"))
	msg := e.Message
	if msg == "" {
		msg = operation + " failed"
	}
	if status == "" {
		return fmt.Errorf("%s", msg)
	}
	return fmt.Errorf("%s: %s", status, msg)
}

func statusFailure(operation string, code int) error {
	switch {
	case code == http.StatusTooManyRequests:
		return fmt.Errorf("resource-exhausted: %s rate limited (HTTP %d)", operation, code)
	case code == http.StatusUnauthorized:
		return fmt.Errorf("unauthenticated: %s (HTTP %d)", operation, code)
	case code == http.StatusForbidden:
		return fmt.Errorf("permission-denied: %s (HTTP %d)", operation, code)
	case code == http.StatusGatewayTimeout:
		return fmt.Errorf("%s timed out upstream (HTTP %d)", operation, code)
	case code >= 500:
		return fmt.Errorf("%s server error (HTTP %d)", operation, code)
	default:
		return fmt.Errorf("%s failed (HTTP %d)", operation, code)
	}
}
