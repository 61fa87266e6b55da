package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"
)

// RemoteClassifier scores rows against a model server.
//
//	POST {baseURL}/predict_proba
//	{"features": [...], "rows": [[...]]}  ->  {"probabilities": [p]}
//
// NaN numeric values travel as null. Failures are not retried.
type RemoteClassifier struct {
	baseURL    string
	features   []string
	httpClient *http.Client
}

func NewRemoteClassifier(baseURL string, features []string, timeout time.Duration) *RemoteClassifier {
	return &RemoteClassifier{
		baseURL:  strings.TrimRight(baseURL, "/"),
		features: features,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type remoteRequest struct {
	Features []string `json:"features"`
	Rows     [][]any  `json:"rows"`
}

type remoteResponse struct {
	Probabilities []float64 `json:"probabilities"`
	Error         string    `json:"error,omitempty"`
}

func (c *RemoteClassifier) PredictProba(ctx context.Context, row []any) (float64, error) {
	if len(row) != len(c.features) {
		return 0, &InternalSchemaError{Reason: fmt.Sprintf("row has %d values, model expects %d", len(row), len(c.features))}
	}
	wire := make([]any, len(row))
	for i, v := range row {
		if f, ok := v.(float64); ok && math.IsNaN(f) {
			continue
		}
		wire[i] = v
	}
	body, err := json.Marshal(remoteRequest{Features: c.features, Rows: [][]any{wire}})
	if err != nil {
		return 0, fmt.Errorf("encode model request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict_proba", bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("model server: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return 0, fmt.Errorf("model server: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("model server: status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var out remoteResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return 0, fmt.Errorf("model server: decode response: %w", err)
	}
	if len(out.Probabilities) != 1 {
		return 0, fmt.Errorf("model server: expected 1 probability, got %d", len(out.Probabilities))
	}
	return out.Probabilities[0], nil
}

// Ping checks the model server answers its health route
func (c *RemoteClassifier) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("model server: %w", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("model server: health status %d", resp.StatusCode)
	}
	return nil
}
