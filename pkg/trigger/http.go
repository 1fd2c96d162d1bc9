package trigger

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

// HTTP fires invocations at a remote invoke endpoint, which accepts with 202
// once the invocation is queued on its side.
type HTTP struct {
	endpoint string
	client   *http.Client
	logger   *slog.Logger
}

// NewHTTP creates a trigger posting to {cfg.Endpoint}/{target}.
func NewHTTP(cfg *Config, logger *slog.Logger) *HTTP {
	return &HTTP{
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		client:   &http.Client{Timeout: cfg.TimeoutDuration()},
		logger:   logger.With("system", "trigger", "mode", ModeHTTP),
	}
}

func (h *HTTP) Fire(ctx context.Context, inv Invocation) error {
	url := h.endpoint + "/" + inv.Target

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(inv.Payload))
	if err != nil {
		return fmt.Errorf("build invoke request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("invoke %s: %w", inv.Target, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("%w: %s returned %d", ErrUnexpectedStatus, inv.Target, resp.StatusCode)
	}

	h.logger.Debug("invocation accepted", "target", inv.Target)
	return nil
}
