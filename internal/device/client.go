package device

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"fan-control-backend/config"
	"fan-control-backend/internal/store"
)

// Recorder receives every dispatch attempt. The journal store satisfies it.
type Recorder interface {
	RecordDispatch(ctx context.Context, entry store.DispatchEntry) error
}

// Client sends speed commands to a single fan controller.
type Client struct {
	address  string
	client   *http.Client
	recorder Recorder
}

// NewClient creates a client for the configured controller address. The
// recorder may be nil.
func NewClient(cfg config.DeviceConfig, recorder Recorder) *Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.HTTPProxy != "" {
		proxyURL, err := url.Parse(cfg.HTTPProxy)
		if err != nil {
			zap.S().Warnf("Invalid proxy URL %q: %v. Device client will not use a proxy.", cfg.HTTPProxy, err)
		} else {
			transport.Proxy = http.ProxyURL(proxyURL)
		}
	}

	return &Client{
		address:  cfg.Address,
		client:   &http.Client{Transport: transport},
		recorder: recorder,
	}
}

// Address returns the controller address commands are sent to.
func (c *Client) Address() string {
	return c.address
}

// Dispatch sends the command for level to the controller. Any failure is
// returned as a *DeviceError. There is no retry.
func (c *Client) Dispatch(ctx context.Context, level int) error {
	cmd := CommandFor(level)
	sentAt := time.Now()

	status, err := c.send(ctx, cmd)
	if err != nil {
		err = &DeviceError{Address: c.address, Command: cmd, StatusCode: status, Err: err}
		zap.S().Warnw("fan command failed", "address", c.address, "level", level, "command", cmd, "error", err)
	} else {
		zap.S().Debugw("fan command sent", "address", c.address, "level", level, "command", cmd)
	}

	c.record(ctx, store.DispatchEntry{
		Level:      level,
		Command:    string(cmd),
		Address:    c.address,
		StatusCode: status,
		Err:        err,
		SentAt:     sentAt,
	})
	return err
}

func (c *Client) commandURL(cmd Command) string {
	u := url.URL{
		Scheme:   "http",
		Host:     c.address,
		Path:     "/set",
		RawQuery: url.Values{"speed": {string(cmd)}}.Encode(),
	}
	return u.String()
}

// send performs the request and returns the status code it got, if any.
func (c *Client) send(ctx context.Context, cmd Command) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.commandURL(cmd), nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, fmt.Errorf("received non-2xx status code: %d", resp.StatusCode)
	}
	return resp.StatusCode, nil
}

func (c *Client) record(ctx context.Context, entry store.DispatchEntry) {
	if c.recorder == nil {
		return
	}
	// The journal entry outlives a caller that has gone away.
	if err := c.recorder.RecordDispatch(context.WithoutCancel(ctx), entry); err != nil {
		zap.S().Errorf("Error recording dispatch: %v", err)
	}
}
