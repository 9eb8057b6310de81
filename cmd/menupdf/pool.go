package main

import (
	"context"
	"fmt"

	menupdf "github.com/alnah/go-menupdf"
)

// MenuExporter is the part of *menupdf.Exporter the CLI uses.
type MenuExporter interface {
	Export(ctx context.Context, doc menupdf.MenuDocument) (*menupdf.ExportResult, error)
	BuildHTML(ctx context.Context, doc menupdf.MenuDocument) (string, error)
}

// Compile-time interface implementation check.
var _ MenuExporter = (*menupdf.Exporter)(nil)

// Pool abstracts exporter pool operations for testability.
type Pool interface {
	Acquire(ctx context.Context) (MenuExporter, error)
	Release(MenuExporter)
	Size() int
	Close() error
}

// poolFactory builds a pool of size exporters configured with opts.
type poolFactory func(size int, opts ...menupdf.Option) Pool

// newExporterPool is the production poolFactory.
func newExporterPool(size int, opts ...menupdf.Option) Pool {
	return &poolAdapter{pool: menupdf.NewExporterPool(size, opts...)}
}

// poolAdapter wraps *menupdf.ExporterPool to satisfy Pool.
type poolAdapter struct {
	pool *menupdf.ExporterPool
}

// Compile-time check that poolAdapter implements Pool.
var _ Pool = (*poolAdapter)(nil)

// Acquire gets an exporter, creating it on first use.
func (a *poolAdapter) Acquire(ctx context.Context) (MenuExporter, error) {
	e, err := a.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// Release returns an exporter to the pool.
// Panics on a foreign type: only exporters from Acquire may be released.
func (a *poolAdapter) Release(e MenuExporter) {
	exp, ok := e.(*menupdf.Exporter)
	if !ok {
		panic(fmt.Sprintf("poolAdapter.Release: unexpected type %T", e))
	}
	a.pool.Release(exp)
}

// Size returns the pool capacity.
func (a *poolAdapter) Size() int {
	return a.pool.Size()
}

// Close releases every browser the pool started.
func (a *poolAdapter) Close() error {
	return a.pool.Close()
}
