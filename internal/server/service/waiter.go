package service

import (
	"context"
	"fmt"
	"sync"
	"time"
)

const (
	// WaitTimeout is the maximum time a client can wait for notifications
	WaitTimeout = 25 * time.Second
)

// WaitRegistry manages long-polling and streaming clients waiting for game changes
type WaitRegistry struct {
	mu       sync.Mutex
	waiters  map[string][]*WaitRequest // gameID → waiting clients
	shutdown chan struct{}
	closed   bool
	wg       sync.WaitGroup
}

// WaitRequest represents a single client waiting for game updates
type WaitRequest struct {
	GameID  string
	Version int           // Last version the client has seen
	Notify  chan struct{} // Receives once on change, timeout, deletion or shutdown
	timer   *time.Timer
	once    sync.Once
	fired   chan struct{}
}

func (r *WaitRequest) fire() {
	r.once.Do(func() {
		r.Notify <- struct{}{}
		close(r.fired)
	})
}

// firedWait returns a wait channel that is already notified
func firedWait() <-chan struct{} {
	ch := make(chan struct{}, 1)
	ch <- struct{}{}
	return ch
}

// NewWaitRegistry creates a new wait registry
func NewWaitRegistry() *WaitRegistry {
	return &WaitRegistry{
		waiters:  make(map[string][]*WaitRequest),
		shutdown: make(chan struct{}),
	}
}

// RegisterWait returns a channel that receives once the game's version moves
// past version, the wait times out, the game is removed or ctx ends the wait
func (w *WaitRegistry) RegisterWait(ctx context.Context, gameID string, version int) <-chan struct{} {
	req := &WaitRequest{
		GameID:  gameID,
		Version: version,
		Notify:  make(chan struct{}, 1),
		fired:   make(chan struct{}),
	}

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		req.fire()
		return req.Notify
	}
	w.waiters[gameID] = append(w.waiters[gameID], req)
	w.wg.Add(1)
	w.mu.Unlock()

	req.timer = time.AfterFunc(WaitTimeout, req.fire)

	go func() {
		defer w.wg.Done()
		select {
		case <-ctx.Done():
		case <-req.fired:
		case <-w.shutdown:
			req.fire()
		}
		req.timer.Stop()
		w.removeWaiter(gameID, req)
	}()

	return req.Notify
}

// NotifyGame wakes every waiter on gameID that has not seen version
func (w *WaitRegistry) NotifyGame(gameID string, version int) {
	w.mu.Lock()
	waitList := append([]*WaitRequest(nil), w.waiters[gameID]...)
	w.mu.Unlock()

	for _, req := range waitList {
		if req.Version != version {
			req.fire()
		}
	}
}

// RemoveGame wakes all waiters for a game (called before game deletion)
func (w *WaitRegistry) RemoveGame(gameID string) {
	w.mu.Lock()
	waitList := w.waiters[gameID]
	delete(w.waiters, gameID)
	w.mu.Unlock()

	for _, req := range waitList {
		req.fire()
	}
}

// Count returns the number of registered waiters
func (w *WaitRegistry) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()

	n := 0
	for _, list := range w.waiters {
		n += len(list)
	}
	return n
}

// Shutdown wakes every waiter and waits for their goroutines
func (w *WaitRegistry) Shutdown(timeout time.Duration) error {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.shutdown)
	}
	w.mu.Unlock()

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("wait registry shutdown timed out")
	}
}

func (w *WaitRegistry) removeWaiter(gameID string, req *WaitRequest) {
	w.mu.Lock()
	defer w.mu.Unlock()

	waitList := w.waiters[gameID]
	for i, waiter := range waitList {
		if waiter == req {
			w.waiters[gameID] = append(waitList[:i], waitList[i+1:]...)
			break
		}
	}

	if len(w.waiters[gameID]) == 0 {
		delete(w.waiters, gameID)
	}
}
