package sim

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"drivewise/pkg/platform/circuit"
	"drivewise/pkg/platform/sentinel"
)

const defaultCallTimeout = 10 * time.Second

// HTTPClient is the production SIM provisioning client.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	breaker *circuit.Breaker
}

type HTTPOption func(*HTTPClient)

func WithCallTimeout(d time.Duration) HTTPOption {
	return func(c *HTTPClient) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithHTTPClient(hc *http.Client) HTTPOption {
	return func(c *HTTPClient) {
		if hc != nil {
			c.http = hc
		}
	}
}

func NewHTTPClient(baseURL string, opts ...HTTPOption) *HTTPClient {
	c := &HTTPClient{
		baseURL: baseURL,
		http:    &http.Client{},
		timeout: defaultCallTimeout,
		breaker: circuit.New("sim-provisioning"),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

func (c *HTTPClient) Add(ctx context.Context, req Request) error {
	if !c.breaker.Allow() {
		return fmt.Errorf("sim provisioning %s: circuit open: %w", req.Action, sentinel.ErrUnavailable)
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	raw, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encode provisioning request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/provisioning/requests", bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("build provisioning request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.breaker.RecordFailure()
		return fmt.Errorf("sim provisioning %s: %w", req.Action, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		c.breaker.RecordFailure()
	} else {
		c.breaker.RecordSuccess()
	}

	if resp.StatusCode >= 400 {
		return fmt.Errorf("sim provisioning %s: status %d: %w", req.Action, resp.StatusCode, sentinel.ErrUnavailable)
	}
	return nil
}
