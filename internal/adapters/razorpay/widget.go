package razorpay

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"hotelapp_web/internal/app"
)

const maxPending = 256

// DeferredWidget hands widget options to the browser instead of opening
// anything itself. The page polls the attempt, renders the widget from
// Options and posts its outcome back to the server.
type DeferredWidget struct {
	mu    sync.Mutex
	opts  map[string]app.WidgetOptions
	order []string
}

func NewDeferredWidget() *DeferredWidget {
	return &DeferredWidget{opts: map[string]app.WidgetOptions{}}
}

func (w *DeferredWidget) Open(_ context.Context, attemptID string, o app.WidgetOptions) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.opts[attemptID]; !ok {
		w.order = append(w.order, attemptID)
	}
	w.opts[attemptID] = o
	for len(w.order) > maxPending {
		delete(w.opts, w.order[0])
		w.order = w.order[1:]
	}
	log.Debug().Str("attempt", attemptID).Str("order_id", o.OrderID).Msg("razorpay: widget options ready")
	return nil
}

// Options returns what the browser needs to open the widget of an attempt.
func (w *DeferredWidget) Options(attemptID string) (app.WidgetOptions, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	o, ok := w.opts[attemptID]
	return o, ok
}

func (w *DeferredWidget) Forget(attemptID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.opts[attemptID]; !ok {
		return
	}
	delete(w.opts, attemptID)
	for i, id := range w.order {
		if id == attemptID {
			w.order = append(w.order[:i], w.order[i+1:]...)
			break
		}
	}
}

var _ app.Widget = (*DeferredWidget)(nil)
