package lock

import (
	"context"
	"sync/atomic"
)

// LocalLock guards sweeps within a single process
type LocalLock struct {
	held atomic.Bool
}

// NewLocalLock creates an in-process run lock
func NewLocalLock() *LocalLock {
	return &LocalLock{}
}

// Acquire never blocks: ok is false while another caller holds the lock
func (l *LocalLock) Acquire(ctx context.Context) (func(), bool, error) {
	if !l.held.CompareAndSwap(false, true) {
		return nil, false, nil
	}
	var once atomic.Bool
	return func() {
		if once.CompareAndSwap(false, true) {
			l.held.Store(false)
		}
	}, true, nil
}
