package clickup

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"dealflow_backend/platform/logger"

	"golang.org/x/time/rate"
)

const baseURL = "https://api.clickup.com/api/v2"

// Client is the HTTP client for the ClickUp API.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	apiKey     string
	listID     string
	log        *logger.Logger
}

// New creates a new ClickUp API client for a single list.
func New(apiKey, listID string, log *logger.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		// ClickUp allows 100 requests per minute per token.
		limiter: rate.NewLimiter(rate.Every(time.Minute/100), 1),
		apiKey:  apiKey,
		listID:  listID,
		log:     log,
	}
}

type taskListResponse struct {
	Tasks []Task `json:"tasks"`
}

// ListTasks fetches all tasks from the configured list: archived tasks are
// excluded, closed/completed ones included, and sub-tasks excluded (they are
// checklist reminders, not deals).
func (c *Client) ListTasks(ctx context.Context) ([]Task, error) {
	params := url.Values{}
	params.Set("archived", "false")
	params.Set("include_closed", "true")
	params.Set("subtasks", "false")

	reqURL := fmt.Sprintf("%s/list/%s/task?%s", baseURL, url.PathEscape(c.listID), params.Encode())

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("clickup request failed", "error", err, "list_id", c.listID)
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("clickup api error: status %d", resp.StatusCode)
	}

	var payload taskListResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return payload.Tasks, nil
}
