package docx2pdf

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
)

// Pool sizing constants.
const (
	// MinPoolSize ensures at least one worker is available.
	MinPoolSize = 1

	// MaxPoolSize caps concurrent LibreOffice processes (~150MB each).
	MaxPoolSize = 8

	// cpuDivisor leaves headroom for soffice child processes.
	cpuDivisor = 2
)

// ConverterPool bounds the number of concurrent conversions.
// Each converter runs at most one LibreOffice process at a time; with
// WithIsolatedProfile each one also owns a private profile.
// Converters are created lazily on first acquire to avoid startup delay.
type ConverterPool struct {
	size       int
	opts       []Option
	converters []*Converter
	sem        chan *Converter
	slots      chan struct{} // held while a converter is being created or in use
	mu         sync.Mutex
	closed     bool
	newFunc    func(...Option) (*Converter, error)
}

// NewConverterPool creates a pool with capacity for n converters built with opts.
func NewConverterPool(n int, opts ...Option) *ConverterPool {
	if n < 1 {
		n = 1
	}

	return &ConverterPool{
		size:       n,
		opts:       opts,
		converters: make([]*Converter, 0, n),
		sem:        make(chan *Converter, n),
		slots:      make(chan struct{}, n),
		newFunc:    NewConverter,
	}
}

// AcquireContext gets a converter from the pool, creating one if needed.
// Blocks until a converter is free or ctx is done.
func (p *ConverterPool) AcquireContext(ctx context.Context) (*Converter, error) {
	if p.isClosed() {
		return nil, ErrPoolClosed
	}

	// Reuse an idle converter first.
	select {
	case conv, ok := <-p.sem:
		if !ok {
			return nil, ErrPoolClosed
		}
		return conv, nil
	default:
	}

	select {
	case p.slots <- struct{}{}:
		return p.create()
	case conv, ok := <-p.sem:
		if !ok {
			return nil, ErrPoolClosed
		}
		return conv, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// create builds a converter in a slot already reserved by the caller.
func (p *ConverterPool) create() (*Converter, error) {
	conv, err := p.newFunc(p.opts...)
	if err != nil {
		<-p.slots
		return nil, fmt.Errorf("creating converter: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		_ = conv.Close()
		return nil, ErrPoolClosed
	}
	p.converters = append(p.converters, conv)
	return conv, nil
}

// Release returns a converter to the pool.
// The lock is held while sending; sem has room for every converter so the
// send never blocks.
func (p *ConverterPool) Release(conv *Converter) {
	if conv == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.sem <- conv
}

// Close releases every converter's resources.
// Returns an aggregated error if multiple converters fail to close.
func (p *ConverterPool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.sem)
	converters := p.converters
	p.mu.Unlock()

	var errs []error
	for _, conv := range converters {
		if err := conv.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Size returns the pool capacity.
func (p *ConverterPool) Size() int {
	return p.size
}

func (p *ConverterPool) isClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// ResolvePoolSize determines the optimal pool size.
// Priority: explicit workers > GOMAXPROCS-based calculation.
// Exported for use by servers and CLIs.
func ResolvePoolSize(workers int) int {
	// Explicit value takes priority
	if workers > 0 {
		return workers
	}

	// Auto-calculate based on GOMAXPROCS (adjusted by automaxprocs for containers)
	available := runtime.GOMAXPROCS(0)
	n := available / cpuDivisor

	if n < MinPoolSize {
		return MinPoolSize
	}
	if n > MaxPoolSize {
		return MaxPoolSize
	}
	return n
}
