package inventory

import (
	"context"
	"sync"
)

// Locker serializes work on a single flight. The returned unlock function
// must be called exactly once.
type Locker interface {
	LockFlight(ctx context.Context, flightID int64) (func(), error)
}

// LocalLocker serializes callers inside one process. Flights that nobody is
// holding or waiting on have no entry.
type LocalLocker struct {
	mu    sync.Mutex
	locks map[int64]*flightLock
}

type flightLock struct {
	sem  chan struct{}
	refs int
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{locks: make(map[int64]*flightLock)}
}

func (l *LocalLocker) LockFlight(ctx context.Context, flightID int64) (func(), error) {
	l.mu.Lock()
	fl, ok := l.locks[flightID]
	if !ok {
		fl = &flightLock{sem: make(chan struct{}, 1)}
		l.locks[flightID] = fl
	}
	fl.refs++
	l.mu.Unlock()

	select {
	case fl.sem <- struct{}{}:
	case <-ctx.Done():
		l.unref(flightID, fl)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-fl.sem
			l.unref(flightID, fl)
		})
	}, nil
}

func (l *LocalLocker) unref(flightID int64, fl *flightLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fl.refs--
	if fl.refs == 0 {
		delete(l.locks, flightID)
	}
}

// size is the number of flights with an active entry.
func (l *LocalLocker) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
