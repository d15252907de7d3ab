package rewrite

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

// decl is minimal Node used across tests.
type decl struct {
	value  string
	source string
}

func (d *decl) Value() string         { return d.value }
func (d *decl) SetValue(value string) { d.value = value }
func (d *decl) Source() string        { return d.source }

// decls is a Walker over a fixed list.
type decls []*decl

func (ds decls) WalkDecls(fn func(Node) error) error {
	for _, d := range ds {
		if err := fn(d); err != nil {
			return err
		}
	}
	return nil
}

// countingFS records operations performed through it.
type countingFS struct {
	OSFileSystem
	stats, reads, writes, mkdirs int
	writeErr                     error
}

func (c *countingFS) Stat(name string) (fs.FileInfo, error) {
	c.stats++
	return c.OSFileSystem.Stat(name)
}

func (c *countingFS) ReadFile(name string) ([]byte, error) {
	c.reads++
	return c.OSFileSystem.ReadFile(name)
}

func (c *countingFS) WriteFile(name string, data []byte, perm fs.FileMode) error {
	c.writes++
	if c.writeErr != nil {
		return c.writeErr
	}
	return c.OSFileSystem.WriteFile(name, data, perm)
}

func (c *countingFS) MkdirAll(path string, perm fs.FileMode) error {
	c.mkdirs++
	return c.OSFileSystem.MkdirAll(path, perm)
}

func (c *countingFS) total() int {
	return c.stats + c.reads + c.writes + c.mkdirs
}

func testLogger(t *testing.T) *zap.Logger {
	return zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1)))
}

// writeFile creates file of given size (or content) under root and returns
// its absolute path.
func writeFile(t *testing.T, root, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func newRewriter(t *testing.T, opts Options) *Rewriter {
	t.Helper()
	rw, err := New(opts, testLogger(t))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return rw
}

// process runs single declaration value through rewriter and returns the
// resulting value.
func process(t *testing.T, rw *Rewriter, res *Result, source, value string) string {
	t.Helper()
	d := &decl{value: value, source: source}
	if err := rw.ProcessDecl(d, res); err != nil {
		t.Fatalf("ProcessDecl(%q) error = %v", value, err)
	}
	return d.value
}
