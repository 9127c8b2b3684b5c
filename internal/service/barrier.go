package service

import (
	"context"
	"sort"
	"sync"
)

// ExportedWriterBarrier is an exported alias so _test packages can test the barrier.
type ExportedWriterBarrier = writerBarrier

// ─────────────────────────────────────────────────────────────
// writerBarrier — waits for fire-and-forget writers to acknowledge
// ─────────────────────────────────────────────────────────────

// writerBarrier tracks asynchronous writers started during a theme switch.
// Each writer is registered by name; a name can only be in flight once.
type writerBarrier struct {
	mu      sync.Mutex
	running map[string]struct{}
	wg      sync.WaitGroup
}

// TryLock marks writer as in flight. Returns false if it already is.
func (b *writerBarrier) TryLock(writer string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.running == nil {
		b.running = make(map[string]struct{})
	}
	if _, ok := b.running[writer]; ok {
		return false
	}
	b.running[writer] = struct{}{}
	b.wg.Add(1)
	return true
}

// Unlock acknowledges writer. Must be called after TryLock returns true.
func (b *writerBarrier) Unlock(writer string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.running, writer)
	b.wg.Done()
}

// Go runs fn in its own goroutine under the barrier. It returns false without
// running fn when a writer of the same name is still in flight.
func (b *writerBarrier) Go(writer string, fn func()) bool {
	if !b.TryLock(writer) {
		return false
	}
	go func() {
		defer b.Unlock(writer)
		fn()
	}()
	return true
}

// Pending lists writers that have not acknowledged yet.
func (b *writerBarrier) Pending() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.running))
	for w := range b.running {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}

// WaitAll blocks until every in-flight writer acknowledged or ctx is done.
// It reports whether all writers acknowledged.
func (b *writerBarrier) WaitAll(ctx context.Context) bool {
	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return true
	case <-ctx.Done():
		return false
	}
}
