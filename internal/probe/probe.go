// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package probe checks that the configured embedding endpoint is reachable
// and accepts the API key. Embedding itself is out of scope; the probe
// sends one short input and reports status, latency, and vector size.
package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pdiddy/exam-engine/internal/httputil"
	"github.com/pdiddy/exam-engine/pkg/types"
)

// probeInput is the text sent to the endpoint.
const probeInput = "连通性测试"

// Result is the outcome of one probe.
type Result struct {
	Endpoint   string        `json:"endpoint" yaml:"endpoint"`
	Status     int           `json:"status" yaml:"status"`
	OK         bool          `json:"ok" yaml:"ok"`
	Latency    time.Duration `json:"latency" yaml:"latency"`
	Dimensions int           `json:"dimensions,omitempty" yaml:"dimensions,omitempty"`
	Error      string        `json:"error,omitempty" yaml:"error,omitempty"`
}

type embeddingRequest struct {
	Model string   `json:"model,omitempty"`
	Input []string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
}

// Probe posts a single embedding request to cfg.Endpoint. Failures are
// reported in the Result rather than returned, so the caller can always
// print one.
func Probe(ctx context.Context, client *http.Client, cfg types.ProbeConfig, apiKey string) Result {
	r := Result{Endpoint: cfg.Endpoint}
	if cfg.Endpoint == "" {
		r.Error = "no endpoint configured"
		return r
	}

	body, err := json.Marshal(embeddingRequest{Model: cfg.Model, Input: []string{probeInput}})
	if err != nil {
		r.Error = fmt.Sprintf("encoding request: %v", err)
		return r
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		r.Error = fmt.Sprintf("creating request: %v", err)
		return r
	}
	req.Header.Set("Content-Type", "application/json")
	if cfg.UserAgent != "" {
		req.Header.Set("User-Agent", cfg.UserAgent)
	}
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}

	start := time.Now()
	resp, err := httputil.DoWithRetry(ctx, client, req, cfg.MaxRetries)
	r.Latency = time.Since(start)
	if err != nil {
		r.Error = fmt.Sprintf("request: %v", err)
		return r
	}
	defer resp.Body.Close()
	r.Status = resp.StatusCode

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		r.Error = fmt.Sprintf("reading response: %v", err)
		return r
	}
	if resp.StatusCode != http.StatusOK {
		r.Error = fmt.Sprintf("endpoint returned HTTP %d", resp.StatusCode)
		return r
	}

	var er embeddingResponse
	if err := json.Unmarshal(data, &er); err != nil {
		r.Error = fmt.Sprintf("decoding response: %v", err)
		return r
	}
	if len(er.Data) > 0 {
		r.Dimensions = len(er.Data[0].Embedding)
	}
	r.OK = true
	return r
}
