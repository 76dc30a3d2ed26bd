package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/ElizabetLu/Online-Tech/internal/domain"
	"github.com/ElizabetLu/Online-Tech/internal/session"
	apperrors "github.com/ElizabetLu/Online-Tech/pkg/errors"
)

// Doer executes a prepared HTTP request. Both the plain retrying client and
// the circuit-breaker wrapper in pkg/httpclient satisfy it.
type Doer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// Client is the transport layer over the remote commerce API. It owns
// credential attachment and the refresh-and-retry policy: an authorized call
// that fails with an expired token triggers exactly one shared refresh and
// one retry, never more.
//
// Catalog reads route through a separate (circuit-breaker protected) Doer so
// a degraded API cannot hold browsing hostage to retries; cart, auth and
// rating calls use the plain retrying client.
type Client struct {
	baseURL  string
	http     Doer
	catalog  Doer
	sessions *session.Manager
	logger   *slog.Logger
	refresh  singleflight.Group
}

// New creates a transport client. catalog may equal base if breaker
// protection is not wanted.
func New(baseURL string, base, catalog Doer, sessions *session.Manager, logger *slog.Logger) *Client {
	return &Client{
		baseURL:  baseURL,
		http:     base,
		catalog:  catalog,
		sessions: sessions,
		logger:   logger,
	}
}

// call describes one logical API operation. The request is rebuilt from it on
// every attempt so a retry after refresh carries the new token and a fresh
// body.
type call struct {
	name       string // metrics label, stable across IDs in the path
	method     string
	path       string
	query      url.Values
	body       any
	authorized bool
	viaCatalog bool
}

// do executes the call, applying the one-shot refresh-and-retry policy for
// authorization failures on authorized calls. Non-auth failures pass through
// unmodified.
func (c *Client) do(ctx context.Context, cl call, out any) error {
	err := c.send(ctx, cl, out)
	if err == nil {
		return nil
	}
	if !cl.authorized || !IsAuthFailure(err) {
		return err
	}

	c.logger.DebugContext(ctx, "authorization failure, refreshing session",
		slog.String("endpoint", cl.name),
	)
	if refreshErr := c.refreshSession(ctx); refreshErr != nil {
		return refreshErr
	}

	// At most one automatic retry; a second auth failure surfaces as-is.
	return c.send(ctx, cl, out)
}

// send performs a single attempt of the call.
func (c *Client) send(ctx context.Context, cl call, out any) error {
	var reqBody io.Reader = http.NoBody
	if cl.body != nil {
		raw, err := json.Marshal(cl.body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(raw)
	}

	endpoint := c.baseURL + cl.path
	if len(cl.query) > 0 {
		endpoint += "?" + cl.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("create %s request: %w", cl.method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	// Attach the bearer credential only when the stored token is usable; an
	// invalid token means the call goes out unauthenticated and the server's
	// 401 drives the refresh path.
	if cl.authorized {
		if token, ok := c.sessions.AccessToken(ctx); ok {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	doer := c.http
	if cl.viaCatalog {
		doer = c.catalog
	}

	start := time.Now()
	resp, err := doer.Do(ctx, req)
	if err != nil {
		observeRequest(cl.method, cl.name, 0, time.Since(start).Seconds())
		return fmt.Errorf("%s %s: %w", cl.method, cl.name, err)
	}
	observeRequest(cl.method, cl.name, resp.StatusCode, time.Since(start).Seconds())

	if resp.StatusCode >= 400 {
		return decodeError(resp, cl.name)
	}

	defer func() { _ = resp.Body.Close() }()
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", cl.name, err)
	}
	return nil
}

// refreshSession runs the refresh protocol with single-flight discipline:
// concurrent callers that hit an auth failure around the same time share one
// refresh call and all observe its outcome. Each waiter's context still
// bounds its own wait.
func (c *Client) refreshSession(ctx context.Context) error {
	ch := c.refresh.DoChan("refresh", func() (any, error) {
		// The flight outlives any single caller; detach it from the
		// initiator's cancellation.
		return nil, c.doRefresh(context.WithoutCancel(ctx))
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// doRefresh exchanges the stored refresh token for a new token pair. On any
// failure the session is cleared and the caller must re-authenticate.
func (c *Client) doRefresh(ctx context.Context) error {
	refreshToken, ok := c.sessions.RefreshToken(ctx)
	if !ok {
		tokenRefreshTotal.WithLabelValues("no_token").Inc()
		_ = c.sessions.ClearAuth(ctx)
		return apperrors.SessionExpired("no refresh token available")
	}

	var tokens domain.AuthTokens
	err := c.send(ctx, call{
		name:   "auth.refresh",
		method: http.MethodPost,
		path:   "/auth/refresh",
		body:   map[string]string{"refresh_token": refreshToken},
	}, &tokens)
	if err != nil {
		tokenRefreshTotal.WithLabelValues("rejected").Inc()
		c.logger.WarnContext(ctx, "token refresh rejected, clearing session",
			slog.String("error", err.Error()),
		)
		_ = c.sessions.ClearAuth(ctx)
		return apperrors.SessionExpired("token refresh rejected")
	}
	if !session.IsValidToken(tokens.AccessToken) || !session.IsValidToken(tokens.RefreshToken) {
		tokenRefreshTotal.WithLabelValues("invalid_response").Inc()
		_ = c.sessions.ClearAuth(ctx)
		return apperrors.SessionExpired("refresh returned unusable tokens")
	}

	if err := c.sessions.SetTokens(ctx, tokens.AccessToken, tokens.RefreshToken); err != nil {
		tokenRefreshTotal.WithLabelValues("store_failed").Inc()
		return fmt.Errorf("store refreshed tokens: %w", err)
	}

	tokenRefreshTotal.WithLabelValues("success").Inc()
	c.logger.InfoContext(ctx, "access token refreshed")
	return nil
}
