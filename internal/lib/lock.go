package lib

import (
	"context"
	"errors"
	"time"
)

var ErrTimeout = errors.New("lock timeout")

// Mutex is a mutex that can be acquired with a timeout or a context
type Mutex struct {
	ch chan struct{}
}

func NewMutex() Mutex {
	return Mutex{ch: make(chan struct{}, 1)}
}

func (m Mutex) Lock() {
	m.ch <- struct{}{}
}

// Unlock of an unlocked mutex is a no-op
func (m Mutex) Unlock() {
	select {
	case <-m.ch:
	default:
	}
}

func (m Mutex) LockCtx(ctx context.Context) error {
	select {
	case m.ch <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m Mutex) LockTimeout(timeout time.Duration) error {
	select {
	case m.ch <- struct{}{}:
		return nil
	default:
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case m.ch <- struct{}{}:
		return nil
	case <-timer.C:
		return ErrTimeout
	}
}
