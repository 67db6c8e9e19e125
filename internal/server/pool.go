package server

import (
	"context"

	"github.com/alnah/go-docx2pdf"
)

// Generator is the part of docx2pdf.Converter the handlers use.
type Generator interface {
	Generate(ctx context.Context, req docx2pdf.Request) (*docx2pdf.Result, error)
	ListBookmarks(name string) ([]string, error)
	Templates() ([]string, error)
}

// Pool hands out generators, bounding concurrent conversions.
type Pool interface {
	Acquire(ctx context.Context) (Generator, error)
	Release(Generator)
	Size() int
}

// Compile-time interface implementation checks.
var (
	_ Generator = (*docx2pdf.Converter)(nil)
	_ Pool      = converterPool{}
)

// converterPool adapts docx2pdf.ConverterPool to Pool.
type converterPool struct {
	pool *docx2pdf.ConverterPool
}

// FromConverterPool wraps p for use by a Server.
func FromConverterPool(p *docx2pdf.ConverterPool) Pool {
	return converterPool{pool: p}
}

func (p converterPool) Acquire(ctx context.Context) (Generator, error) {
	conv, err := p.pool.AcquireContext(ctx)
	if err != nil {
		return nil, err
	}
	return conv, nil
}

func (p converterPool) Release(g Generator) {
	if conv, ok := g.(*docx2pdf.Converter); ok {
		p.pool.Release(conv)
	}
}

func (p converterPool) Size() int {
	return p.pool.Size()
}
