package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"drivewise/internal/device/models"
	"drivewise/pkg/domain"
	"drivewise/pkg/platform/circuit"
	"drivewise/pkg/platform/sentinel"
)

const defaultCallTimeout = 10 * time.Second

// HTTPClient is the production registry client. A circuit breaker fails
// calls fast while the registry is down so best-effort saga steps do not
// stall on timeouts.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	breaker *circuit.Breaker
}

// HTTPOption configures an HTTPClient.
type HTTPOption func(*HTTPClient)

// WithCallTimeout bounds each registry call when the caller's context has no
// deadline of its own.
func WithCallTimeout(d time.Duration) HTTPOption {
	return func(c *HTTPClient) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithHTTPClient swaps the underlying http.Client (tests, custom transports).
func WithHTTPClient(hc *http.Client) HTTPOption {
	return func(c *HTTPClient) {
		if hc != nil {
			c.http = hc
		}
	}
}

// NewHTTPClient constructs a registry client against the given base URL.
func NewHTTPClient(baseURL string, opts ...HTTPOption) *HTTPClient {
	c := &HTTPClient{
		baseURL: baseURL,
		http:    &http.Client{},
		timeout: defaultCallTimeout,
		breaker: circuit.New("device-registry"),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

func (c *HTTPClient) GetDeviceBySerialNumber(ctx context.Context, serial string) (*models.Device, error) {
	var device models.Device
	path := "/devices/by-serial/" + url.PathEscape(serial)
	if err := c.call(ctx, http.MethodGet, path, nil, &device); err != nil {
		return nil, err
	}
	return &device, nil
}

func (c *HTTPClient) UpdateStatus(ctx context.Context, deviceID domain.DeviceID, status models.DeviceStatus, location models.DeviceLocation) error {
	body := map[string]string{
		"status":   string(status),
		"location": string(location),
	}
	return c.call(ctx, http.MethodPut, "/devices/"+deviceID.String()+"/status", body, nil)
}

func (c *HTTPClient) DeviceFeatures(ctx context.Context, deviceID domain.DeviceID) (*models.DeviceFeatures, error) {
	var features models.DeviceFeatures
	if err := c.call(ctx, http.MethodGet, "/devices/"+deviceID.String()+"/features", nil, &features); err != nil {
		return nil, err
	}
	return &features, nil
}

func (c *HTTPClient) Ping(ctx context.Context, deviceID domain.DeviceID) error {
	return c.call(ctx, http.MethodPost, "/devices/"+deviceID.String()+"/ping", nil, nil)
}

func (c *HTTPClient) Reset(ctx context.Context, deviceID domain.DeviceID) error {
	return c.call(ctx, http.MethodPost, "/devices/"+deviceID.String()+"/reset", nil, nil)
}

func (c *HTTPClient) GetAudio(ctx context.Context, deviceID domain.DeviceID) (*models.AudioState, error) {
	var state models.AudioState
	if err := c.call(ctx, http.MethodGet, "/devices/"+deviceID.String()+"/audio", nil, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (c *HTTPClient) SetAudio(ctx context.Context, deviceID domain.DeviceID, enabled bool) error {
	body := map[string]bool{"enabled": enabled}
	return c.call(ctx, http.MethodPut, "/devices/"+deviceID.String()+"/audio", body, nil)
}

func (c *HTTPClient) UpdateAudio(ctx context.Context, deviceID domain.DeviceID, state models.AudioState) error {
	return c.call(ctx, http.MethodPatch, "/devices/"+deviceID.String()+"/audio", state, nil)
}

func (c *HTTPClient) call(ctx context.Context, method, path string, body, out any) error {
	if !c.breaker.Allow() {
		return fmt.Errorf("registry %s %s: circuit open: %w", method, path, sentinel.ErrUnavailable)
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode registry request: %w", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build registry request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.breaker.RecordFailure()
		return fmt.Errorf("registry %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	// 4xx responses are answers from a healthy registry; only transport
	// errors and 5xx count against the circuit.
	if resp.StatusCode >= 500 {
		c.breaker.RecordFailure()
	} else {
		c.breaker.RecordSuccess()
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return sentinel.ErrNotFound
	case resp.StatusCode >= 400:
		return fmt.Errorf("registry %s %s: status %d: %w", method, path, resp.StatusCode, sentinel.ErrUnavailable)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode registry response: %w", err)
		}
	}
	return nil
}
