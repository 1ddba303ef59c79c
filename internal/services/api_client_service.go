package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"dbassist/internal/logger"
	"dbassist/pkg/dbatypes"
)

// APIClientService talks to the db-assistant REST API. It implements the
// AssistantClient, SQLExecutor, and ConnectionSource contracts consumed by
// the chat engine, and injects the bearer token on every request.
type APIClientService struct {
	initialized bool
	baseURL     string
	token       string
	timeout     time.Duration
	client      *http.Client
}

// NewAPIClientService creates a new APIClientService with a default timeout
// of 30 seconds.
func NewAPIClientService(baseURL, token string) *APIClientService {
	return &APIClientService{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		timeout: 30 * time.Second,
	}
}

// Name returns the service name "api_client" for registration.
func (a *APIClientService) Name() string {
	return "api_client"
}

// Initialize sets up the APIClientService for operation.
func (a *APIClientService) Initialize() error {
	if a.baseURL == "" {
		return fmt.Errorf("api client requires a base URL")
	}
	a.client = &http.Client{Timeout: a.timeout}
	a.initialized = true
	logger.Debug("APIClientService initialized", "base_url", a.baseURL, "timeout", a.timeout.String())
	return nil
}

// SetTimeout configures the request timeout.
func (a *APIClientService) SetTimeout(timeout time.Duration) {
	a.timeout = timeout
	if a.client != nil {
		a.client.Timeout = timeout
	}
}

// GenerateSQL submits a natural-language request to the generation endpoint.
// The engine only cares about completion or failure, so the response body is
// discarded.
func (a *APIClientService) GenerateSQL(request string) error {
	_, err := a.do("POST", "/sql/generate", nil, strings.NewReader(request), "text/plain")
	return err
}

// GetMessages fetches the ordered chat history for the given connection.
// Payloads stay loosely typed: classification is the engine's job.
func (a *APIClientService) GetMessages(connectionID int) ([]map[string]any, error) {
	query := url.Values{"connectionId": {strconv.Itoa(connectionID)}}
	body, err := a.do("GET", "/messages", query, nil, "")
	if err != nil {
		return nil, err
	}

	var payloads []map[string]any
	if err := json.Unmarshal(body, &payloads); err != nil {
		return nil, fmt.Errorf("failed to decode messages: %w", err)
	}
	return payloads, nil
}

// ClearChat deletes the server-side chat history for the active connection.
func (a *APIClientService) ClearChat() error {
	_, err := a.do("DELETE", "/messages", nil, nil, "")
	return err
}

// ExecuteSQL runs a literal SQL statement server-side and returns its
// structured result.
func (a *APIClientService) ExecuteSQL(sql string) (*dbatypes.QueryResult, error) {
	payload, err := json.Marshal(dbatypes.SQLRequest{SQL: sql})
	if err != nil {
		return nil, fmt.Errorf("failed to encode sql request: %w", err)
	}

	body, err := a.do("POST", "/sql/execute", nil, strings.NewReader(string(payload)), "application/json")
	if err != nil {
		return nil, err
	}

	var result dbatypes.QueryResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode execution result: %w", err)
	}
	return &result, nil
}

// ActiveConnection returns the user's active database connection.
func (a *APIClientService) ActiveConnection() (*dbatypes.ConnectionProfile, error) {
	body, err := a.do("GET", "/db/active", nil, nil, "")
	if err != nil {
		return nil, err
	}

	var connection dbatypes.ConnectionProfile
	if err := json.Unmarshal(body, &connection); err != nil {
		return nil, fmt.Errorf("failed to decode connection: %w", err)
	}
	return &connection, nil
}

// Schema returns the textual schema of the active connection.
func (a *APIClientService) Schema() (string, error) {
	body, err := a.do("GET", "/db/schema", nil, nil, "")
	if err != nil {
		return "", err
	}

	var response dbatypes.SchemaResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("failed to decode schema: %w", err)
	}
	return response.Schema, nil
}

// QueryHistory returns the logged queries for the authenticated user.
func (a *APIClientService) QueryHistory() ([]dbatypes.HistoryEntry, error) {
	body, err := a.do("GET", "/history", nil, nil, "")
	if err != nil {
		return nil, err
	}

	var entries []dbatypes.HistoryEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode history: %w", err)
	}
	return entries, nil
}

// do performs one request against the API, injecting the auth header and a
// correlation ID, and returns the response body. Non-2xx statuses are
// errors.
func (a *APIClientService) do(method, path string, query url.Values, body io.Reader, contentType string) ([]byte, error) {
	if !a.initialized {
		return nil, fmt.Errorf("api client service not initialized")
	}

	requestURL := a.baseURL + path
	if len(query) > 0 {
		requestURL += "?" + query.Encode()
	}

	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()

	request, err := http.NewRequestWithContext(ctx, method, requestURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.New().String()
	request.Header.Set("X-Request-Id", requestID)
	if contentType != "" {
		request.Header.Set("Content-Type", contentType)
	}
	if a.token != "" {
		request.Header.Set("Authorization", "Bearer "+a.token)
	}

	logger.Debug("API request", "method", method, "path", path, "request_id", requestID)

	response, err := a.client.Do(request)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = response.Body.Close()
	}()

	responseBody, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	logger.Debug("API response", "method", method, "path", path, "status", response.StatusCode, "bytes", len(responseBody))

	if response.StatusCode < 200 || response.StatusCode > 299 {
		return nil, fmt.Errorf("%s %s returned status %d", method, path, response.StatusCode)
	}
	return responseBody, nil
}
