package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Notifier posts plain-text broadcast lifecycle messages to an NTFY-style
// endpoint. A nil Notifier is valid and drops everything, so callers don't
// branch on whether notifications are configured.
type Notifier struct {
	client   *http.Client
	endpoint string
}

// New builds a Notifier for the endpoint. Returns nil when the endpoint is
// empty (notifications disabled).
func New(endpoint string, client *http.Client) *Notifier {
	if endpoint == "" {
		return nil
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Notifier{client: client, endpoint: endpoint}
}

// StreamLive announces that a broadcast went live.
func (n *Notifier) StreamLive(ctx context.Context, codec string) error {
	if n == nil {
		return nil
	}
	return n.send(ctx, fmt.Sprintf("webcast: broadcast live (%s)", codec))
}

// StreamEnded announces that the active broadcast was reset.
func (n *Notifier) StreamEnded(ctx context.Context, codec string) error {
	if n == nil {
		return nil
	}
	return n.send(ctx, fmt.Sprintf("webcast: broadcast ended (%s)", codec))
}

func (n *Notifier) send(ctx context.Context, message string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(message))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "text/plain")

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("ntfy notification failed: status=%d", resp.StatusCode)
	}
	return nil
}
