package aggregate

import (
	"context"
	"fmt"
	"sync"
)

// ErrSuperseded is returned by a run that a newer run replaced. It matches
// context.Canceled.
var ErrSuperseded = fmt.Errorf("aggregation superseded: %w", context.Canceled)

// Latest serializes "refresh" style work: starting a run cancels the one in
// flight, and only the newest run may report success.
type Latest struct {
	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
}

func (l *Latest) Do(ctx context.Context, fn func(context.Context) error) error {
	runCtx, cancel := context.WithCancel(ctx)

	l.mu.Lock()
	if l.cancel != nil {
		l.cancel()
	}
	l.seq++
	seq := l.seq
	l.cancel = cancel
	l.mu.Unlock()

	err := fn(runCtx)

	l.mu.Lock()
	superseded := l.seq != seq
	if !superseded {
		l.cancel = nil
	}
	l.mu.Unlock()
	cancel()

	if superseded {
		return ErrSuperseded
	}
	return err
}
