package app

import "sync"

// ScrollLock is the page-level overlay guard. Each open modal holds it;
// the background is scrollable again once every holder has released.
type ScrollLock struct {
	mu    sync.Mutex
	count int
}

// Acquire takes the lock. The returned release is safe to call more than
// once, so callers can both defer it and call it on close.
func (l *ScrollLock) Acquire() (release func()) {
	l.mu.Lock()
	l.count++
	l.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			l.count--
			l.mu.Unlock()
		})
	}
}

func (l *ScrollLock) Locked() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.count > 0
}
