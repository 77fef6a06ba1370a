// Package platform talks to the chat platform's gateway API. It is the
// one place that knows how roles, timeouts, bans and messages are actually
// applied; the moderation core only sees the Actuator interface.
package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/wardenbot/warden/internal/config"
	apperr "github.com/wardenbot/warden/internal/errors"
	"github.com/wardenbot/warden/internal/notify"
)

const (
	gatewayHTTPTimeout = 10 * time.Second
	gatewayMaxRetries  = 3
	gatewayRetryStep   = 300 * time.Millisecond
)

type Gateway struct {
	cfg        config.Gateway
	httpClient *http.Client
}

func NewGateway(cfg config.Gateway) *Gateway {
	return &Gateway{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: gatewayHTTPTimeout},
	}
}

func (g *Gateway) AddRole(ctx context.Context, memberID, roleID int64) error {
	path := fmt.Sprintf("/guilds/%d/members/%d/roles/%d", g.cfg.GuildID, memberID, roleID)
	return g.do(ctx, http.MethodPut, path, nil)
}

func (g *Gateway) RemoveRole(ctx context.Context, memberID, roleID int64) error {
	path := fmt.Sprintf("/guilds/%d/members/%d/roles/%d", g.cfg.GuildID, memberID, roleID)
	return g.do(ctx, http.MethodDelete, path, nil)
}

func (g *Gateway) ApplyTimeout(ctx context.Context, memberID int64, until time.Time) error {
	path := fmt.Sprintf("/guilds/%d/members/%d/timeout", g.cfg.GuildID, memberID)
	return g.do(ctx, http.MethodPut, path, map[string]any{"until": until.UTC()})
}

func (g *Gateway) BanAccount(ctx context.Context, memberID int64, reason string) error {
	path := fmt.Sprintf("/guilds/%d/bans/%d", g.cfg.GuildID, memberID)
	return g.do(ctx, http.MethodPut, path, map[string]any{"reason": reason})
}

func (g *Gateway) UnbanAccount(ctx context.Context, memberID int64) error {
	path := fmt.Sprintf("/guilds/%d/bans/%d", g.cfg.GuildID, memberID)
	return g.do(ctx, http.MethodDelete, path, nil)
}

// DirectMessage implements notify.Messenger.
func (g *Gateway) DirectMessage(ctx context.Context, memberID int64, text string) error {
	path := fmt.Sprintf("/members/%d/messages", memberID)
	return g.do(ctx, http.MethodPost, path, map[string]any{"content": text})
}

// Publish implements notify.Feed by posting the event to the staff log
// channel.
func (g *Gateway) Publish(ctx context.Context, event notify.Event) error {
	if g.cfg.LogChannelID == 0 {
		return nil
	}
	path := fmt.Sprintf("/channels/%d/messages", g.cfg.LogChannelID)
	return g.do(ctx, http.MethodPost, path, event)
}

// do issues one gateway call, retrying transient failures a few times with
// a fixed backoff. Capability and existence failures map onto the core's
// error taxonomy and are not retried.
func (g *Gateway) do(ctx context.Context, method, path string, payload any) error {
	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			return errors.Wrap(err, "marshal gateway payload")
		}
	}

	var lastErr error
	for attempt := 0; attempt < gatewayMaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(gatewayRetryStep):
			}
		}

		req, err := http.NewRequestWithContext(ctx, method, g.cfg.BaseURL+path, bytes.NewReader(body))
		if err != nil {
			return errors.Wrap(err, "create gateway request")
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if g.cfg.Token != "" {
			req.Header.Set("Authorization", "Bearer "+g.cfg.Token)
		}

		resp, err := g.httpClient.Do(req)
		if err != nil {
			lastErr = errors.Wrap(err, "gateway request")
			continue
		}
		resp.Body.Close()

		switch {
		case resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices:
			return nil
		case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
			return fmt.Errorf("%s %s: %w", method, path, apperr.ErrForbidden)
		case resp.StatusCode == http.StatusNotFound:
			return fmt.Errorf("%s %s: %w", method, path, apperr.ErrNotFound)
		case resp.StatusCode >= http.StatusInternalServerError:
			lastErr = fmt.Errorf("%s %s: unexpected status code %d", method, path, resp.StatusCode)
			continue
		default:
			return fmt.Errorf("%s %s: unexpected status code %d", method, path, resp.StatusCode)
		}
	}
	return lastErr
}
