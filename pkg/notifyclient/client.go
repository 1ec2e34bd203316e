// Package notifyclient polls the notification API and keeps a client-side feed.
package notifyclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/anonto42/insyd/backend/internal/delivery"
	"github.com/anonto42/insyd/backend/internal/models"
)

// Client talks to the notification endpoints of the API
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// New creates a Client for the API at baseURL (for example "http://localhost:4000")
func New(baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    baseURL,
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
}

// Fetch returns the page for recipientID after sinceID (0 for the bootstrap page)
func (c *Client) Fetch(ctx context.Context, recipientID uint, sinceID uint64) (delivery.Page, error) {
	q := url.Values{}
	q.Set("user_id", strconv.FormatUint(uint64(recipientID), 10))
	if sinceID > 0 {
		q.Set("since_id", strconv.FormatUint(sinceID, 10))
	}

	var page delivery.Page
	if err := c.do(ctx, http.MethodGet, "/api/v1/notifications?"+q.Encode(), nil, &page); err != nil {
		return delivery.Page{}, err
	}
	return page, nil
}

// MarkRead acknowledges ids on behalf of recipientID
func (c *Client) MarkRead(ctx context.Context, recipientID uint, ids []uint64) error {
	body := models.MarkReadRequest{UserID: recipientID, IDs: ids}
	return c.do(ctx, http.MethodPost, "/api/v1/notifications/read", body, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, data any) error {
	var bodyReader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return &StatusError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}
	if data == nil {
		return nil
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if err := json.Unmarshal(env.Data, data); err != nil {
		return fmt.Errorf("decode response data: %w", err)
	}
	return nil
}

// StatusError is returned for non-2xx responses
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}
