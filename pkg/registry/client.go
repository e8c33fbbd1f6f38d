package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://data.gov.il"
	defaultTimeout = 10 * time.Second

	searchPath = "/api/3/action/datastore_search"
)

// Record is one row of an open-data dataset.
type Record map[string]any

// Client queries the government open-data datastore-search endpoint.
// No authentication; every call carries a bounded timeout via the
// underlying http.Client.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a client for the given base URL. An empty base
// URL selects the public endpoint; a non-positive timeout gets the
// default.
func NewClient(baseURL string, timeout time.Duration) *Client {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Search runs a datastore search against one dataset: equality filters,
// capped result count. An empty record list is a valid outcome.
func (c *Client) Search(ctx context.Context, resourceID string, filters map[string]string, limit int) ([]Record, error) {
	resourceID = strings.TrimSpace(resourceID)
	if resourceID == "" {
		return nil, fmt.Errorf("resource id required")
	}
	if limit <= 0 {
		limit = 1
	}
	reqBody := searchRequest{
		ResourceID: resourceID,
		Filters:    filters,
		Limit:      limit,
	}
	var resp searchResponse
	if err := c.doJSON(ctx, searchPath, reqBody, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, fmt.Errorf("datastore search unsuccessful for resource %s", resourceID)
	}
	return resp.Result.Records, nil
}

func (c *Client) doJSON(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp errorResponse
		_ = json.NewDecoder(resp.Body).Decode(&errResp)
		if errResp.Error.Message != "" {
			return fmt.Errorf("datastore api error: %s", errResp.Error.Message)
		}
		return fmt.Errorf("datastore api error: %s", resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return err
	}
	return nil
}

type searchRequest struct {
	ResourceID string            `json:"resource_id"`
	Filters    map[string]string `json:"filters,omitempty"`
	Limit      int               `json:"limit"`
}

type searchResponse struct {
	Success bool `json:"success"`
	Result  struct {
		Records []Record `json:"records"`
	} `json:"result"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}
