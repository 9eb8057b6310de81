package menupdf

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"testing"
	"time"
)

// ---------------------------------------------------------------------------
// TestResolvePoolSize
// ---------------------------------------------------------------------------

func TestResolvePoolSize(t *testing.T) {
	t.Parallel()

	if got := ResolvePoolSize(3); got != 3 {
		t.Errorf("ResolvePoolSize(3) = %d, want 3", got)
	}

	got := ResolvePoolSize(0)
	if got < MinPoolSize || got > MaxPoolSize {
		t.Errorf("ResolvePoolSize(0) = %d, want within [%d, %d]", got, MinPoolSize, MaxPoolSize)
	}
	want := runtime.GOMAXPROCS(0) / cpuDivisor
	want = max(MinPoolSize, min(MaxPoolSize, want))
	if got != want {
		t.Errorf("ResolvePoolSize(0) = %d, want %d", got, want)
	}
}

// ---------------------------------------------------------------------------
// TestExporterPool
// ---------------------------------------------------------------------------

func TestNewExporterPool_MinimumSize(t *testing.T) {
	t.Parallel()

	p := NewExporterPool(0)
	defer func() { _ = p.Close() }()

	if p.Size() != 1 {
		t.Errorf("Size() = %d, want 1", p.Size())
	}
}

func TestExporterPool_AcquireRelease(t *testing.T) {
	t.Parallel()

	p := NewExporterPool(2, WithOutputDir(t.TempDir()))
	defer func() { _ = p.Close() }()

	ctx := context.Background()
	a, err := p.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	b, err := p.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if a == b {
		t.Fatal("pool handed out the same exporter twice")
	}

	p.Release(a)
	c, err := p.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire() after Release error = %v", err)
	}
	if c != a {
		t.Error("released exporter should be reused")
	}
}

func TestExporterPool_AcquireWaitsForRelease(t *testing.T) {
	t.Parallel()

	p := NewExporterPool(1)
	defer func() { _ = p.Close() }()

	first, err := p.Acquire(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	var second *Exporter
	go func() {
		defer wg.Done()
		second, _ = p.Acquire(context.Background())
	}()

	time.Sleep(20 * time.Millisecond)
	p.Release(first)
	wg.Wait()

	if second != first {
		t.Error("waiting Acquire should receive the released exporter")
	}
}

func TestExporterPool_AcquireTimeout(t *testing.T) {
	t.Parallel()

	p := NewExporterPool(1)
	defer func() { _ = p.Close() }()

	if _, err := p.Acquire(context.Background()); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := p.Acquire(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Acquire() error = %v, want DeadlineExceeded", err)
	}
}

func TestExporterPool_InvalidOptions(t *testing.T) {
	t.Parallel()

	p := NewExporterPool(1, WithMode("bogus"))
	defer func() { _ = p.Close() }()

	if _, err := p.Acquire(context.Background()); !errors.Is(err, ErrInvalidMode) {
		t.Fatalf("Acquire() error = %v, want ErrInvalidMode", err)
	}
	// The failed slot is returned, so the next attempt tries again.
	if _, err := p.Acquire(context.Background()); !errors.Is(err, ErrInvalidMode) {
		t.Errorf("second Acquire() error = %v, want ErrInvalidMode", err)
	}
}

func TestExporterPool_Close(t *testing.T) {
	t.Parallel()

	p := NewExporterPool(2)
	e, err := p.Acquire(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if err := p.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}

	// Release after Close is a no-op.
	p.Release(e)

	if _, err := p.Acquire(context.Background()); !errors.Is(err, ErrPoolClosed) {
		t.Errorf("Acquire() after Close error = %v, want ErrPoolClosed", err)
	}
}

func TestExporterPool_CloseDuringCreate(t *testing.T) {
	t.Parallel()

	started := make(chan struct{})
	proceed := make(chan struct{})
	blocking := func(*Exporter) {
		close(started)
		<-proceed
	}

	p := NewExporterPool(1, blocking)

	done := make(chan error, 1)
	go func() {
		e, err := p.Acquire(context.Background())
		if e != nil {
			err = errors.New("closed pool returned an exporter")
		}
		done <- err
	}()

	<-started
	if err := p.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	close(proceed)

	if err := <-done; !errors.Is(err, ErrPoolClosed) {
		t.Errorf("Acquire() error = %v, want ErrPoolClosed", err)
	}
}
