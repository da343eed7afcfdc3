// Package signal turns operator interrupts into context cancellation.
//
// In raw terminal mode Ctrl-C reaches the participant input as a key, not
// as SIGINT, so the handler installed here only fires for signals sent from
// outside the session (kill, a second terminal, the process supervisor).
package signal

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// Handler records the first interrupt signal and cancels the session
// context when it arrives.
type Handler struct {
	mu       sync.Mutex
	received os.Signal
	sigCh    chan os.Signal
	done     chan struct{}
	once     sync.Once
}

// SetupSignalHandler registers SIGINT and SIGTERM handlers.
// When a signal is received, it calls onInterrupt (if non-nil) with the
// signal, then cancels the context. The listening goroutine exits when a
// signal arrives, when ctx is done, or when Stop is called.
func SetupSignalHandler(ctx context.Context, cancel context.CancelFunc, onInterrupt func(os.Signal)) *Handler {
	h := &Handler{
		sigCh: make(chan os.Signal, 1),
		done:  make(chan struct{}),
	}
	signal.Notify(h.sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(h.sigCh)
		select {
		case sig := <-h.sigCh:
			h.mu.Lock()
			h.received = sig
			h.mu.Unlock()
			if onInterrupt != nil {
				onInterrupt(sig)
			}
			cancel()
		case <-ctx.Done():
		case <-h.done:
		}
	}()
	return h
}

// Received returns the signal that interrupted the session, or nil.
func (h *Handler) Received() os.Signal {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.received
}

// Stop unregisters the handler.
func (h *Handler) Stop() {
	h.once.Do(func() { close(h.done) })
}
