package app

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"hotelapp_web/internal/adapters/observability"
	"hotelapp_web/internal/domain"
)

// TokenSource is what the backend clients read the bearer token from.
type TokenSource interface{ Token() string }

// APIs are the backend resource clients of one session.
type APIs struct {
	Auth     domain.AuthAPI
	Hotels   domain.HotelAPI
	Rooms    domain.RoomAPI
	Packages domain.PackageAPI
	Payments domain.PaymentAPI
}

type WorkspaceConfig struct {
	// Store returns the token store of a browsing context.
	Store func(contextID string) domain.TokenStore
	// Clients builds resource clients that authenticate with tokens.
	Clients func(tokens TokenSource) APIs
	// DetailsCache is shared by every workspace; nil disables caching.
	DetailsCache domain.Cache
	DetailsTTL   time.Duration
	Scripts      ScriptLoader
	Widget       Widget
	Fees         Fees
	Confirm      Confirmer
	// IdleTTL is how long an unused workspace is kept in memory.
	IdleTTL time.Duration
}

// Workspace is the in-memory state of one browsing context: its session
// and every page controller. Tabs of the same context share it.
type Workspace struct {
	ID         string
	Session    *Session
	APIs       APIs
	Home       *HomeSearch
	Packages   *PackageSearch
	Hotels     *HotelManager
	MyPackages *PackageManager
	Checkout   *Checkout
	Details    *DetailsLoader
	Fees       Fees
	Lock       *ScrollLock

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	lastSeen time.Time
}

func (w *Workspace) touch(now time.Time) {
	w.mu.Lock()
	w.lastSeen = now
	w.mu.Unlock()
}

func (w *Workspace) seen() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastSeen
}

// Reset drops page state and open overlays, as after a logout.
func (w *Workspace) Reset() {
	w.Hotels.Close()
	w.Hotels.Reset()
	w.Hotels.SetDraft(HotelDraft{})
	w.Home.Reset()
	w.Packages.Reset()
	w.MyPackages.Reset()
	w.MyPackages.SetDraft(PackageDraft{})
	w.MyPackages.CancelEdit()
}

func (w *Workspace) Close() {
	w.Reset()
	w.cancel()
}

// Workspaces owns the live workspaces of the server.
type Workspaces struct {
	cfg WorkspaceConfig
	now func() time.Time

	mu sync.Mutex
	m  map[string]*Workspace
}

func NewWorkspaces(cfg WorkspaceConfig) *Workspaces {
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 30 * time.Minute
	}
	if cfg.Fees == (Fees{}) {
		cfg.Fees = DefaultFees
	}
	if cfg.Confirm == nil {
		cfg.Confirm = FromContext
	}
	return &Workspaces{cfg: cfg, now: time.Now, m: map[string]*Workspace{}}
}

// Get returns the workspace of a browsing context, creating it and loading
// its persisted token on first use.
func (ws *Workspaces) Get(ctx context.Context, id string) (*Workspace, error) {
	ws.mu.Lock()
	w, ok := ws.m[id]
	ws.mu.Unlock()
	if ok {
		w.touch(ws.now())
		return w, nil
	}

	w = ws.build(id)
	if err := w.Session.Load(ctx); err != nil {
		w.cancel()
		return nil, err
	}

	ws.mu.Lock()
	if existing, raced := ws.m[id]; raced {
		ws.mu.Unlock()
		w.cancel()
		existing.touch(ws.now())
		return existing, nil
	}
	ws.m[id] = w
	n := len(ws.m)
	ws.mu.Unlock()
	observability.SetWorkspaces(n)

	w.Session.OnChange(func(token string) {
		if token == "" {
			w.Reset()
		}
	})
	if err := w.Session.Follow(w.ctx); err != nil {
		log.Warn().Err(err).Str("context", id).Msg("workspace: cannot follow session changes")
	}
	log.Debug().Str("context", id).Msg("workspace created")
	return w, nil
}

func (ws *Workspaces) build(id string) *Workspace {
	ctx, cancel := context.WithCancel(context.Background())
	s := NewSession(ws.cfg.Store(id))
	apis := ws.cfg.Clients(s)
	lock := &ScrollLock{}
	details := NewDetailsLoader(apis.Hotels, apis.Rooms, ws.cfg.DetailsCache, ws.cfg.DetailsTTL)
	home := NewHomeSearch(apis.Hotels)
	home.OnHotelChanged(func(hotelID int64) { details.Invalidate(context.Background(), hotelID) })
	return &Workspace{
		ID:       id,
		Session:  s,
		APIs:     apis,
		Home:     home,
		Packages: NewPackageSearch(apis.Packages),
		Hotels: NewHotelManager(HotelManagerDeps{
			Hotels: apis.Hotels, Rooms: apis.Rooms, Confirm: ws.cfg.Confirm, Lock: lock, Invalidator: details,
		}),
		MyPackages: NewPackageManager(apis.Packages, ws.cfg.Confirm),
		Checkout:   NewCheckout(apis.Payments, ws.cfg.Scripts, ws.cfg.Widget),
		Details:    details,
		Fees:       ws.cfg.Fees,
		Lock:       lock,
		ctx:        ctx,
		cancel:     cancel,
		lastSeen:   ws.now(),
	}
}

// Sweep closes workspaces idle for longer than the configured TTL and
// reports how many were dropped.
func (ws *Workspaces) Sweep() int {
	cutoff := ws.now().Add(-ws.cfg.IdleTTL)
	var idle []*Workspace
	ws.mu.Lock()
	for id, w := range ws.m {
		if w.seen().Before(cutoff) {
			idle = append(idle, w)
			delete(ws.m, id)
		}
	}
	n := len(ws.m)
	ws.mu.Unlock()
	observability.SetWorkspaces(n)
	for _, w := range idle {
		w.Close()
	}
	return len(idle)
}

// Run sweeps periodically until ctx is done.
func (ws *Workspaces) Run(ctx context.Context, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := ws.Sweep(); n > 0 {
				log.Debug().Int("closed", n).Msg("workspaces: swept idle contexts")
			}
		}
	}
}

func (ws *Workspaces) Len() int {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return len(ws.m)
}

// Close closes every workspace.
func (ws *Workspaces) Close() {
	ws.mu.Lock()
	all := ws.m
	ws.m = map[string]*Workspace{}
	ws.mu.Unlock()
	observability.SetWorkspaces(0)
	for _, w := range all {
		w.Close()
	}
}
