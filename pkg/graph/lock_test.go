package graph

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestLocalLocker_SerializesPerCase(t *testing.T) {
	var l LocalLocker
	var inside, maxInside int32
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, unlock, err := l.Lock(context.Background(), 1)
			if err != nil {
				t.Errorf("Lock: %v", err)
				return
			}
			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
			unlock()
		}()
	}
	wg.Wait()

	if maxInside != 1 {
		t.Fatalf("expected at most one holder, saw %d", maxInside)
	}
	if len(l.locks) != 0 {
		t.Fatalf("expected lock table to be empty, got %d entries", len(l.locks))
	}
}

func TestLocalLocker_DifferentCasesDoNotBlock(t *testing.T) {
	l := NewLocalLocker()
	_, unlock1, err := l.Lock(context.Background(), 1)
	if err != nil {
		t.Fatalf("Lock: %v", err)
	}
	defer unlock1()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, unlock2, err := l.Lock(ctx, 2)
	if err != nil {
		t.Fatalf("second case should not block: %v", err)
	}
	unlock2()
}

func TestLocalLocker_ContextCancelWhileWaiting(t *testing.T) {
	l := NewLocalLocker()
	_, unlock, err := l.Lock(context.Background(), 1)
	if err != nil {
		t.Fatalf("Lock: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, _, err := l.Lock(ctx, 1); err == nil {
		t.Fatal("expected context error while waiting")
	}

	unlock()
	unlock()

	_, unlock, err = l.Lock(context.Background(), 1)
	if err != nil {
		t.Fatalf("Lock after release: %v", err)
	}
	unlock()
}
