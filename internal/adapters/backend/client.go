package backend

import (
	"bytes"
	"context"
	crand "crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"hotelapp_web/internal/adapters/observability"
	"hotelapp_web/internal/app"
	"hotelapp_web/internal/domain"
)

// TokenSource yields the current bearer token, or "" when logged out.
type TokenSource interface {
	Token() string
}

type Options struct {
	RPS        int
	Timeout    time.Duration
	Retries    int // extra attempts for idempotent GETs
	HTTPClient *http.Client
}

type Client struct {
	base    string
	hc      *http.Client
	tokens  TokenSource
	rl      *rate.Limiter
	timeout time.Duration
	retries int
}

func New(base string, tokens TokenSource, opts Options) (*Client, error) {
	if base == "" {
		return nil, fmt.Errorf("backend base URL is required")
	}
	if opts.RPS <= 0 {
		opts.RPS = 20
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	return &Client{
		base:    strings.TrimRight(base, "/"),
		hc:      hc,
		tokens:  tokens,
		rl:      rate.NewLimiter(rate.Limit(opts.RPS), opts.RPS),
		timeout: opts.Timeout,
		retries: opts.Retries,
	}, nil
}

// Resource clients sharing this transport.

func (c *Client) Auth() *AuthClient        { return &AuthClient{c: c} }
func (c *Client) Hotels() *HotelClient     { return &HotelClient{c: c} }
func (c *Client) Rooms() *RoomClient       { return &RoomClient{c: c} }
func (c *Client) Packages() *PackageClient { return &PackageClient{c: c} }
func (c *Client) Payments() *PaymentClient { return &PaymentClient{c: c} }

// APIs bundles the resource clients the way a workspace consumes them.
func (c *Client) APIs() app.APIs {
	return app.APIs{Auth: c.Auth(), Hotels: c.Hotels(), Rooms: c.Rooms(), Packages: c.Packages(), Payments: c.Payments()}
}

// call describes one backend request.
type call struct {
	method     string
	path       string
	route      string // metrics label, e.g. /api/hotels/{id}
	query      *Query
	body       any
	accept     string
	defaultMsg string
}

// Payload is a successful response. Raw is empty for 204 and empty bodies.
type Payload struct {
	Status int
	Raw    []byte
}

func (p Payload) Empty() bool { return len(bytes.TrimSpace(p.Raw)) == 0 }

// Value returns the decoded JSON, the raw text when the body is not JSON
// (some backend paths answer with plain strings), or nil when empty.
func (p Payload) Value() any {
	if p.Empty() {
		return nil
	}
	var v any
	if err := json.Unmarshal(p.Raw, &v); err != nil {
		return string(p.Raw)
	}
	return v
}

// Decode unmarshals into out. An empty payload, or a success answered with
// plain text (bare or JSON-quoted), leaves out at its zero value. Only JSON
// of the wrong shape is a decode failure.
func (p Payload) Decode(out any) error {
	if p.Empty() || out == nil {
		return nil
	}
	if !json.Valid(p.Raw) {
		p.logText()
		return nil
	}
	if err := json.Unmarshal(p.Raw, out); err != nil {
		if _, text := p.Value().(string); text {
			p.logText()
			return nil
		}
		return &domain.Error{Kind: domain.KindDecodeFailed, Status: p.Status,
			Message: "unexpected response from server", Body: string(p.Raw), Err: err}
	}
	return nil
}

func (p Payload) logText() {
	body := string(p.Raw)
	if len(body) > 200 {
		body = body[:200]
	}
	log.Debug().Int("status", p.Status).Str("body", body).Msg("backend answered with text")
}

func (c *Client) do(ctx context.Context, cl call) (Payload, error) {
	if err := c.rl.Wait(ctx); err != nil {
		return Payload{}, err
	}

	var body []byte
	if cl.body != nil {
		b, err := json.Marshal(cl.body)
		if err != nil {
			return Payload{}, domain.WrapError(domain.KindValidationFailed, "could not encode request", err)
		}
		body = b
	}
	url := c.base + cl.path + cl.query.Encode()
	route := cl.route
	if route == "" {
		route = cl.path
	}

	attempts := 1
	if cl.method == http.MethodGet {
		attempts += c.retries
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		p, retry, wait, err := c.once(ctx, cl, url, route, body)
		if err == nil {
			return p, nil
		}
		lastErr = err
		if !retry || i == attempts-1 {
			break
		}
		if wait == 0 {
			wait = backoff(i)
		}
		if !sleepCtx(ctx, wait) {
			return Payload{}, ctx.Err()
		}
	}
	return Payload{}, lastErr
}

// once performs a single attempt. retry reports whether the failure is
// transient (429/5xx or a transport error) and wait any Retry-After hint.
func (c *Client) once(ctx context.Context, cl call, url, route string, body []byte) (Payload, bool, time.Duration, error) {
	rctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(rctx, cl.method, url, rdr)
	if err != nil {
		return Payload{}, false, 0, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cl.accept != "" {
		req.Header.Set("Accept", cl.accept)
	} else {
		req.Header.Set("Accept", "application/json")
	}
	if c.tokens != nil {
		if tok := c.tokens.Token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}
	req.Header.Set("X-Request-ID", uuid.NewString())
	req.Header.Set("User-Agent", "hotelapp-web/1.0")

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		observability.ObserveExternal("backend", route, 0, time.Since(start))
		if ctx.Err() != nil {
			return Payload{}, false, 0, ctx.Err()
		}
		if errors.Is(rctx.Err(), context.DeadlineExceeded) {
			return Payload{}, true, 0, &domain.Error{Kind: domain.KindTimeout, Message: "network timeout", Err: err}
		}
		return Payload{}, true, 0, domain.WrapError(domain.KindRequestFailed, withDefault(cl.defaultMsg)+": backend unavailable", err)
	}
	raw, rerr := io.ReadAll(resp.Body)
	resp.Body.Close()
	observability.ObserveExternal("backend", route, resp.StatusCode, time.Since(start))
	if rerr != nil {
		if errors.Is(rctx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return Payload{}, true, 0, &domain.Error{Kind: domain.KindTimeout, Message: "network timeout", Err: rerr}
		}
		return Payload{}, false, 0, domain.WrapError(domain.KindRequestFailed, withDefault(cl.defaultMsg), rerr)
	}

	switch {
	case resp.StatusCode == http.StatusNoContent:
		return Payload{Status: resp.StatusCode}, false, 0, nil

	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return Payload{Status: resp.StatusCode, Raw: raw}, false, 0, nil

	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		log.Debug().Int("status", resp.StatusCode).Str("route", route).Msg("backend rejected credentials")
		return Payload{}, false, 0, &domain.Error{Kind: domain.KindUnauthorized, Status: resp.StatusCode,
			Message: domain.MsgUnauthorized, Body: string(raw)}
	}

	text := strings.TrimSpace(string(raw))
	msg := fmt.Sprintf("%s (%d)", withDefault(cl.defaultMsg), resp.StatusCode)
	if text != "" {
		msg += ": " + text
	}
	ferr := &domain.Error{Kind: domain.KindRequestFailed, Status: resp.StatusCode, Message: msg, Body: text}

	switch resp.StatusCode {
	case http.StatusTooManyRequests, http.StatusInternalServerError,
		http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return Payload{}, true, retryAfter(resp), ferr
	}
	return Payload{}, false, 0, ferr
}

func withDefault(msg string) string {
	if msg == "" {
		return "Request failed"
	}
	return msg
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After header (seconds or HTTP-date). Returns 0 if absent/invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff returns an exponential delay (200ms, 400ms, 800ms...) with up to
// +50% jitter.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	return base + time.Duration(0.5*f*float64(base))
}
