// Package search provides the HTTP client for the external semantic-search
// service used by the shortlist gate.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jonathan/group-matcher/internal/shortlist"
)

const defaultTimeout = 5 * time.Second

// Client calls the semantic-search service over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a search client for the given base URL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type searchRequest struct {
	QueryText  string `json:"query_text"`
	Type       string `json:"type"`
	SemesterID string `json:"semester_id"`
	MajorID    string `json:"major_id,omitempty"`
	Limit      int    `json:"limit"`
}

type searchResponse struct {
	IDs []string `json:"ids"`
}

// Search returns entity IDs ordered best-to-worst. An empty list is a valid
// "no shortlist" answer.
func (c *Client) Search(ctx context.Context, q shortlist.Query) ([]string, error) {
	payload, err := json.Marshal(searchRequest{
		QueryText:  q.Text,
		Type:       q.Type,
		SemesterID: q.SemesterID,
		MajorID:    q.MajorID,
		Limit:      q.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("search service returned %d: %s", resp.StatusCode, string(body))
	}

	var decoded searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}
	return decoded.IDs, nil
}
