package httpserver

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"hotelapp_web/internal/adapters/observability"
	"hotelapp_web/internal/app"
	"hotelapp_web/internal/domain"
)

func Timeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler { return http.TimeoutHandler(next, d, "timeout") }
}

// statusWriter remembers the first status written.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	if w.status == 0 {
		w.status = code
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

func (w *statusWriter) Status() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

// routeOf prefers the chi pattern so ids do not explode label cardinality.
func routeOf(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return r.URL.Path
}

// ---- Metrics middleware ----

func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w}
		next.ServeHTTP(sw, r)
		observability.ObserveHTTP(routeOf(r), r.Method, sw.Status(), time.Since(start))
	})
}

// ---- Structured logging middleware ----

// Logger writes one line per request. The browsing context id is logged so a
// user's requests can be followed across tabs.
func Logger(l zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w}
			next.ServeHTTP(sw, r)

			ev := l.Info()
			if sw.Status() >= http.StatusInternalServerError {
				ev = l.Warn()
			}
			ev.Str("route", routeOf(r)).
				Str("method", r.Method).
				Int("status", sw.Status()).
				Dur("duration", time.Since(start)).
				Str("remote", remoteHost(r)).
				Str("request_id", chimw.GetReqID(r.Context())).
				Str("context", contextID(r)).
				Msg("http_request")
		})
	}
}

// remoteHost strips the port; RealIP has already applied forwarding headers.
func remoteHost(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}

// ---- browsing context ----

// ContextCookie identifies a browsing context. Tabs of one browser share
// it and therefore share a workspace and its token.
const ContextCookie = "hotelapp_ctx"

type workspaceKey struct{}

// Workspaces resolves the workspace of the request's browsing context,
// minting a context id on first visit.
func Workspaces(ws *app.Workspaces, secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := contextID(r)
			if id == "" {
				id = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name: ContextCookie, Value: id, Path: "/",
					HttpOnly: true, Secure: secure, SameSite: http.SameSiteLaxMode,
				})
			}
			wsp, err := ws.Get(r.Context(), id)
			if err != nil {
				writeError(w, domain.WrapError(domain.KindRequestFailed, "Session store unavailable", err))
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), workspaceKey{}, wsp)))
		})
	}
}

func contextID(r *http.Request) string {
	c, err := r.Cookie(ContextCookie)
	if err != nil {
		return ""
	}
	if _, err := uuid.Parse(c.Value); err != nil {
		return ""
	}
	return c.Value
}

func workspaceOf(r *http.Request) *app.Workspace {
	w, _ := r.Context().Value(workspaceKey{}).(*app.Workspace)
	return w
}

// Guard re-checks the session on every request. Page loads are redirected
// to the login page, other calls get a 401 pointing there.
func Guard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		d := app.Guard(workspaceOf(r).Session, r.URL.Path)
		if d.Allowed {
			next.ServeHTTP(w, r)
			return
		}
		if r.Method == http.MethodGet && strings.Contains(r.Header.Get("Accept"), "text/html") {
			http.Redirect(w, r, d.Redirect, http.StatusSeeOther)
			return
		}
		w.Header().Set("Location", d.Redirect)
		writeError(w, domain.NewError(domain.KindUnauthorized, domain.MsgUnauthorized))
	})
}
