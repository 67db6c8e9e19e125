package docx2pdf

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"testing"
	"time"
)

// newTestPool returns a pool whose converters live in a temp content root.
func newTestPool(t *testing.T, n int) *ConverterPool {
	t.Helper()

	pool := NewConverterPool(n, WithContentRoot(t.TempDir()))
	t.Cleanup(func() { pool.Close() })
	return pool
}

func TestResolvePoolSize(t *testing.T) {
	t.Parallel()

	gomaxprocs := runtime.GOMAXPROCS(0)

	tests := []struct {
		name    string
		workers int
		want    int
	}{
		{
			name:    "explicit takes priority",
			workers: 4,
			want:    4,
		},
		{
			name:    "explicit=1 for sequential",
			workers: 1,
			want:    1,
		},
		{
			name:    "explicit can exceed max",
			workers: 16,
			want:    16,
		},
		{
			name:    "zero uses auto calculation",
			workers: 0,
			want:    min(max(gomaxprocs/cpuDivisor, MinPoolSize), MaxPoolSize),
		},
		{
			name:    "negative uses auto calculation",
			workers: -3,
			want:    min(max(gomaxprocs/cpuDivisor, MinPoolSize), MaxPoolSize),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := ResolvePoolSize(tt.workers)
			if got != tt.want {
				t.Errorf("ResolvePoolSize(%d) = %d, want %d", tt.workers, got, tt.want)
			}
		})
	}
}

func TestConverterPool_AcquireRelease(t *testing.T) {
	t.Parallel()

	pool := newTestPool(t, 2)
	ctx := context.Background()

	c1, err := pool.AcquireContext(ctx)
	if err != nil {
		t.Fatalf("AcquireContext() error = %v", err)
	}
	c2, err := pool.AcquireContext(ctx)
	if err != nil {
		t.Fatalf("AcquireContext() error = %v", err)
	}
	if c1 == c2 {
		t.Error("expected different converter instances")
	}

	pool.Release(c1)
	c3, err := pool.AcquireContext(ctx)
	if err != nil {
		t.Fatalf("AcquireContext() error = %v", err)
	}
	if c3 != c1 {
		t.Error("expected to get back released converter")
	}

	pool.Release(c2)
	pool.Release(c3)
	if pool.Size() != 2 {
		t.Errorf("Size() = %d, want 2", pool.Size())
	}
}

func TestConverterPool_SaturatedHonoursContext(t *testing.T) {
	t.Parallel()

	pool := newTestPool(t, 1)
	held, err := pool.AcquireContext(context.Background())
	if err != nil {
		t.Fatalf("AcquireContext() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := pool.AcquireContext(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("AcquireContext() error = %v, want context.DeadlineExceeded", err)
	}

	// A waiter gets the converter as soon as it is released.
	got := make(chan *Converter, 1)
	go func() {
		conv, _ := pool.AcquireContext(context.Background())
		got <- conv
	}()
	time.Sleep(20 * time.Millisecond)
	pool.Release(held)

	select {
	case conv := <-got:
		if conv != held {
			t.Error("waiter received a different converter")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("waiter never received a converter")
	}
}

func TestConverterPool_CreateErrorFreesSlot(t *testing.T) {
	t.Parallel()

	pool := newTestPool(t, 1)
	calls := 0
	pool.newFunc = func(opts ...Option) (*Converter, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("boom")
		}
		return NewConverter(opts...)
	}

	if _, err := pool.AcquireContext(context.Background()); err == nil {
		t.Fatal("AcquireContext() expected error")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if _, err := pool.AcquireContext(ctx); err != nil {
		t.Errorf("AcquireContext() after failure error = %v", err)
	}
}

func TestConverterPool_Close(t *testing.T) {
	t.Parallel()

	pool := NewConverterPool(2, WithContentRoot(t.TempDir()), WithIsolatedProfile())
	conv, err := pool.AcquireContext(context.Background())
	if err != nil {
		t.Fatalf("AcquireContext() error = %v", err)
	}
	profile := conv.profileDir

	if err := pool.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := pool.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if conv.profileDir != "" || profile == "" {
		t.Error("converter not closed by pool")
	}

	// Release after Close must not panic on the closed channel.
	pool.Release(conv)

	if _, err := pool.AcquireContext(context.Background()); !errors.Is(err, ErrPoolClosed) {
		t.Errorf("AcquireContext() after Close error = %v, want ErrPoolClosed", err)
	}
}

func TestConverterPool_Concurrent(t *testing.T) {
	t.Parallel()

	pool := newTestPool(t, 3)

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			conv, err := pool.AcquireContext(context.Background())
			if err != nil {
				t.Errorf("AcquireContext() error = %v", err)
				return
			}
			time.Sleep(time.Millisecond)
			pool.Release(conv)
		}()
	}
	wg.Wait()

	if n := len(pool.converters); n > 3 {
		t.Errorf("created %d converters, want at most 3", n)
	}
}

func TestNewConverterPool_MinimumSize(t *testing.T) {
	t.Parallel()

	if got := NewConverterPool(0).Size(); got != 1 {
		t.Errorf("NewConverterPool(0).Size() = %d, want 1", got)
	}
}
