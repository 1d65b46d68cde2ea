package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/e-dream-ai/dreamstream/model"
)

// CurrentDreamEnvelope is the response shape of the current-dream endpoint.
// Dream is null when nothing is playing.
type CurrentDreamEnvelope struct {
	Dream *model.Dream `json:"dream"`
}

// HTTPFetcher fetches the principal's current dream from the REST API.
type HTTPFetcher struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

// NewHTTPFetcher creates a fetcher against the given API base URL.
func NewHTTPFetcher(baseURL, token string) *HTTPFetcher {
	return &HTTPFetcher{
		BaseURL: baseURL,
		Token:   token,
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// CurrentDream performs the idempotent GET for the current dream.
func (f *HTTPFetcher) CurrentDream(ctx context.Context) (*model.Dream, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.BaseURL+"/api/dreams/current", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build current dream request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+f.Token)

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("current dream request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("current dream request returned status %d", resp.StatusCode)
	}

	var envelope CurrentDreamEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("failed to decode current dream response: %w", err)
	}

	return envelope.Dream, nil
}
