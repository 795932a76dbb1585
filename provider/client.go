// Package provider talks to the local game-state provider sidecar over
// HTTP/1.1 or HTTP/2.
//
// Endpoints:
//
//	GET /session   -> {"connected": bool, "region": string, "message": string}
//	GET /state     -> game.MatchState JSON
//	PUT /autolock  <- {"agent": string|null}
//
// Transport failures and non-2xx replies from /session are reported as
// session.ErrProviderUnreachable. Requests carry no deadline beyond the
// transport's response-header timeout.
package provider

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"MatchLens/game"
	"MatchLens/session"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/http2"
)

// Options configures a Client.
type Options struct {
	BaseURL string
	// InsecureTLS skips certificate verification; the sidecar usually runs
	// with a self-signed certificate on loopback.
	InsecureTLS   bool
	HeaderTimeout time.Duration
}

type Client struct {
	baseURL string
	http    *http.Client
}

// New builds a client. The transport negotiates HTTP/2 over TLS when the
// provider offers it.
func New(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("provider base URL required")
	}
	transport := &http.Transport{
		TLSClientConfig:       &tls.Config{InsecureSkipVerify: opts.InsecureTLS, MinVersion: tls.VersionTLS12},
		ResponseHeaderTimeout: opts.HeaderTimeout,
		MaxIdleConns:          4,
		IdleConnTimeout:       90 * time.Second,
	}
	if err := http2.ConfigureTransport(transport); err != nil {
		return nil, fmt.Errorf("failed to configure http2 transport: %w", err)
	}
	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		http:    &http.Client{Transport: transport},
	}, nil
}

type sessionReply struct {
	Connected bool   `json:"connected"`
	Region    string `json:"region"`
	Message   string `json:"message"`
}

// InitializeSession asks the provider for a session. A reply with
// connected=false is a failure carrying the provider's message.
func (c *Client) InitializeSession(ctx context.Context) (session.Session, error) {
	var reply sessionReply
	if err := c.do(ctx, http.MethodGet, "/session", nil, &reply); err != nil {
		return session.Session{}, err
	}
	if !reply.Connected {
		msg := reply.Message
		if msg == "" {
			msg = "no session"
		}
		return session.Session{Region: reply.Region}, fmt.Errorf("%w: %s", session.ErrProviderUnreachable, msg)
	}
	logrus.WithField("region", reply.Region).Debug("provider session established")
	return session.Session{Connected: true, Region: reply.Region}, nil
}

// FetchMatchState returns the provider's current match state.
func (c *Client) FetchMatchState(ctx context.Context) (game.MatchState, error) {
	var st game.MatchState
	if err := c.do(ctx, http.MethodGet, "/state", nil, &st); err != nil {
		return game.MatchState{}, err
	}
	return st, nil
}

// SetAutoLockAgent forwards the agent name verbatim. nil turns auto-lock off.
func (c *Client) SetAutoLockAgent(ctx context.Context, agent *string) error {
	body := struct {
		Agent *string `json:"agent"`
	}{Agent: agent}
	return c.do(ctx, http.MethodPut, "/autolock", body, nil)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal %s body: %w", path, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"path":       path,
			"error":      err.Error(),
			"latency_ms": time.Since(start).Milliseconds(),
		}).Debug("provider request failed")
		return fmt.Errorf("%w: %s %s: %v", session.ErrProviderUnreachable, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: %s %s: HTTP %d: %s", session.ErrProviderUnreachable,
			method, path, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}
