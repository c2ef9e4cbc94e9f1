package cloud

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"drivewise/internal/device/models"
	"drivewise/pkg/domain"
	"drivewise/pkg/platform/sentinel"
)

const defaultCallTimeout = 10 * time.Second

// HTTPClient is the production cloud device API client.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
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
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

func (c *HTTPClient) Ping(ctx context.Context, deviceID domain.DeviceID) error {
	return c.call(ctx, http.MethodPost, "/iot/devices/"+deviceID.String()+"/ping", nil, nil)
}

func (c *HTTPClient) Reset(ctx context.Context, deviceID domain.DeviceID) error {
	return c.call(ctx, http.MethodPost, "/iot/devices/"+deviceID.String()+"/reset", nil, nil)
}

func (c *HTTPClient) GetAudio(ctx context.Context, deviceID domain.DeviceID) (*models.AudioState, error) {
	var state models.AudioState
	if err := c.call(ctx, http.MethodGet, "/iot/devices/"+deviceID.String()+"/audio", nil, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (c *HTTPClient) SetAudio(ctx context.Context, deviceID domain.DeviceID, enabled bool) error {
	body := map[string]bool{"enabled": enabled}
	return c.call(ctx, http.MethodPut, "/iot/devices/"+deviceID.String()+"/audio", body, nil)
}

func (c *HTTPClient) UpdateAudio(ctx context.Context, deviceID domain.DeviceID, state models.AudioState) error {
	return c.call(ctx, http.MethodPatch, "/iot/devices/"+deviceID.String()+"/audio", state, nil)
}

func (c *HTTPClient) call(ctx context.Context, method, path string, body, out any) error {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var raw []byte
	if body != nil {
		var err error
		raw, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode cloud request: %w", err)
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("build cloud request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("cloud %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return sentinel.ErrNotFound
	case resp.StatusCode >= 400:
		return fmt.Errorf("cloud %s %s: status %d: %w", method, path, resp.StatusCode, sentinel.ErrUnavailable)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode cloud response: %w", err)
		}
	}
	return nil
}
