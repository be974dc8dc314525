package razorpay

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"hotelapp_web/internal/adapters/observability"
	"hotelapp_web/internal/app"
)

const DefaultScriptURL = "https://checkout.razorpay.com/v1/checkout.js"

// ScriptLoader fetches the checkout script once and keeps it for the
// pages that embed the widget. Concurrent Ensure calls share one fetch; a
// failed fetch is retried by the next call.
type ScriptLoader struct {
	url string
	hc  *http.Client

	group singleflight.Group
	mu    sync.RWMutex
	src   []byte
}

func NewScriptLoader(url string, hc *http.Client) *ScriptLoader {
	if url == "" {
		url = DefaultScriptURL
	}
	if hc == nil {
		hc = &http.Client{Timeout: 15 * time.Second}
	}
	return &ScriptLoader{url: url, hc: hc}
}

func (l *ScriptLoader) Loaded() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.src != nil
}

// Source returns the fetched script, if any.
func (l *ScriptLoader) Source() ([]byte, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.src, l.src != nil
}

func (l *ScriptLoader) Ensure(ctx context.Context) error {
	if l.Loaded() {
		return nil
	}
	ch := l.group.DoChan("script", func() (any, error) {
		if l.Loaded() {
			return nil, nil
		}
		b, err := l.fetch(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		l.mu.Lock()
		l.src = b
		l.mu.Unlock()
		log.Info().Str("url", l.url).Int("bytes", len(b)).Msg("razorpay: checkout script loaded")
		return nil, nil
	})
	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-ch:
		return res.Err
	}
}

func (l *ScriptLoader) fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url, nil)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	resp, err := l.hc.Do(req)
	if err != nil {
		observability.ObserveExternal("razorpay", "checkout.js", 0, time.Since(start))
		return nil, err
	}
	defer resp.Body.Close()
	observability.ObserveExternal("razorpay", "checkout.js", resp.StatusCode, time.Since(start))
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("checkout script: status %d", resp.StatusCode)
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if len(b) == 0 {
		return nil, fmt.Errorf("checkout script: empty body")
	}
	return b, nil
}

var _ app.ScriptLoader = (*ScriptLoader)(nil)
