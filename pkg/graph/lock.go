package graph

import (
	"context"
	"sync"
)

// CaseLocker serializes the read, compare and write steps of linking for
// one case. Lock blocks until the case is free or ctx is done. The returned
// context is canceled when the lock is lost and must be used for the work
// done under the lock. unlock is safe to call more than once.
type CaseLocker interface {
	Lock(ctx context.Context, caseID int64) (lockCtx context.Context, unlock func(), err error)
}

// LocalLocker is an in-process CaseLocker keyed by case id. It only
// serializes callers sharing the same LocalLocker value. The zero value is
// ready to use.
type LocalLocker struct {
	mu    sync.Mutex
	locks map[int64]*caseLock
}

type caseLock struct {
	ch   chan struct{}
	refs int
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{}
}

func (l *LocalLocker) Lock(ctx context.Context, caseID int64) (context.Context, func(), error) {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[int64]*caseLock)
	}
	cl, ok := l.locks[caseID]
	if !ok {
		cl = &caseLock{ch: make(chan struct{}, 1)}
		l.locks[caseID] = cl
	}
	cl.refs++
	l.mu.Unlock()

	select {
	case cl.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(caseID, cl)
		return nil, nil, ctx.Err()
	}

	var once sync.Once
	return ctx, func() {
		once.Do(func() {
			<-cl.ch
			l.release(caseID, cl)
		})
	}, nil
}

func (l *LocalLocker) release(caseID int64, cl *caseLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	cl.refs--
	if cl.refs == 0 {
		delete(l.locks, caseID)
	}
}
