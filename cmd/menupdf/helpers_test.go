package main

// Notes:
// - Test infrastructure shared by the CLI tests: a fake exporter and pool
//   standing in for the browser-backed ones, an Environment writing to
//   buffers, and input fixtures.
// No coverage gaps: this is test infrastructure, not production code.

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	menupdf "github.com/alnah/go-menupdf"
)

// ---------------------------------------------------------------------------
// Fixtures
// ---------------------------------------------------------------------------

const samplePayload = `{"dias":[{"dia":"Segunda","refeicoes":[{"nome":"Almoço","itens":["Arroz","Feijão"]}]}]}`

const sampleEnvelope = `{"title":"Cardápio Semana 1","dateRange":"05/11-11/11","data":` + samplePayload + `}`

const sampleReply = "Aqui está!\n<MENU>{\"type\":\"menu_chip\",\"title\":\"Semana 2\",\"dateRange\":\"12/11-18/11\",\"dias\":[]}</MENU>\nBom apetite."

// fixedNow is a Tuesday; its week runs 04/11-10/11.
var fixedNow = time.Date(2024, 11, 5, 10, 0, 0, 0, time.UTC)

// setupTestDir creates a temp directory with the given file structure.
func setupTestDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for path, content := range files {
		full := filepath.Join(dir, path)
		if err := os.MkdirAll(filepath.Dir(full), 0o750); err != nil {
			t.Fatalf("creating dir for %s: %v", path, err)
		}
		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			t.Fatalf("writing %s: %v", path, err)
		}
	}
	return dir
}

// testEnv returns an Environment writing to buffers with the given
// environment variables.
func testEnv(vars map[string]string) (*Environment, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	env := &Environment{
		Now:    func() time.Time { return fixedNow },
		Stdin:  bytes.NewReader(nil),
		Stdout: &stdout,
		Stderr: &stderr,
		Getenv: func(k string) string { return vars[k] },
	}
	return env, &stdout, &stderr
}

// ---------------------------------------------------------------------------
// Fake exporter and pool
// ---------------------------------------------------------------------------

// fakeExporter writes a placeholder PDF named like the real exporter would.
type fakeExporter struct {
	outputDir string
	err       error // returned without a result
	shareErr  error // returned together with a result

	mu   sync.Mutex
	docs []menupdf.MenuDocument
}

var _ MenuExporter = (*fakeExporter)(nil)

func (f *fakeExporter) record(doc menupdf.MenuDocument) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.docs = append(f.docs, doc)
}

func (f *fakeExporter) calls() []menupdf.MenuDocument {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]menupdf.MenuDocument(nil), f.docs...)
}

func (f *fakeExporter) Export(_ context.Context, doc menupdf.MenuDocument) (*menupdf.ExportResult, error) {
	f.record(doc)
	if f.err != nil {
		return nil, f.err
	}
	name := doc.OutputName()
	path := filepath.Join(f.outputDir, name)
	if err := os.WriteFile(path, []byte("%PDF-1.4 fake"), 0o644); err != nil {
		return nil, err
	}
	return &menupdf.ExportResult{
		ID:       "test-id",
		Filename: name,
		Path:     path,
		Mode:     menupdf.ModeNative,
		Pages:    2,
		HTML:     "<html>" + doc.Title + "</html>",
	}, f.shareErr
}

func (f *fakeExporter) BuildHTML(_ context.Context, doc menupdf.MenuDocument) (string, error) {
	f.record(doc)
	if f.err != nil {
		return "", f.err
	}
	return "<html>" + doc.Title + "</html>", nil
}

// fakePool hands out one shared exporter.
type fakePool struct {
	exp        MenuExporter
	acquireErr error

	size     int
	opts     int
	acquired atomic.Int32
	released atomic.Int32
	closed   atomic.Bool
}

var _ Pool = (*fakePool)(nil)

func (p *fakePool) factory() poolFactory {
	return func(size int, opts ...menupdf.Option) Pool {
		p.size = size
		p.opts = len(opts)
		return p
	}
}

func (p *fakePool) Acquire(context.Context) (MenuExporter, error) {
	if p.acquireErr != nil {
		return nil, p.acquireErr
	}
	p.acquired.Add(1)
	return p.exp, nil
}

func (p *fakePool) Release(MenuExporter) { p.released.Add(1) }

func (p *fakePool) Size() int { return p.size }

func (p *fakePool) Close() error {
	p.closed.Store(true)
	return nil
}
