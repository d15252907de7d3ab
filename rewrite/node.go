// Package rewrite locates url() and AlphaImageLoader(src=...) references in
// stylesheet declaration values and rebases, inlines or copies the assets they
// point to.
package rewrite

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// Node is a single stylesheet declaration which value may be rewritten.
type Node interface {
	Value() string
	SetValue(value string)
	// Source returns path of the stylesheet declaration originated from or
	// empty string when origin is unknown.
	Source() string
}

// Walker supplies declarations in document order.
type Walker interface {
	WalkDecls(fn func(Node) error) error
}

// Warning is a non-fatal diagnostic tied to the declaration which caused it.
type Warning struct {
	Text string
	Node Node
}

func (w Warning) String() string {
	if w.Node != nil && w.Node.Source() != "" {
		return fmt.Sprintf("%s: %s", w.Node.Source(), w.Text)
	}
	return w.Text
}

// Result carries run context (overall source and destination stylesheet
// paths) and accumulates warnings produced while processing.
type Result struct {
	From     string // source stylesheet path, empty if unknown
	To       string // destination stylesheet path, empty if unknown
	Warnings []Warning

	log      *zap.Logger
	resolved bool
	from, to string
}

// NewResult creates result sink for a single stylesheet run.
func NewResult(from, to string, log *zap.Logger) *Result {
	if log == nil {
		log = zap.NewNop()
	}
	return &Result{From: from, To: to, log: log}
}

// Warn records diagnostic and logs it.
func (r *Result) Warn(text string, node Node) {
	r.Warnings = append(r.Warnings, Warning{Text: text, Node: node})
	if r.log == nil {
		return
	}
	var source string
	if node != nil {
		source = node.Source()
	}
	r.log.Warn(text, zap.String("source", source))
}

// roots returns absolute from and to directories, they stay constant for the
// whole run.
func (r *Result) roots() (string, string, error) {
	if r.resolved {
		return r.from, r.to, nil
	}

	from := "."
	if r.From != "" {
		from = filepath.Dir(r.From)
	}
	from, err := filepath.Abs(from)
	if err != nil {
		return "", "", fmt.Errorf("unable to resolve source directory: %w", err)
	}

	to := from
	if r.To != "" {
		if to, err = filepath.Abs(filepath.Dir(r.To)); err != nil {
			return "", "", fmt.Errorf("unable to resolve destination directory: %w", err)
		}
	}

	r.from, r.to, r.resolved = from, to, true
	return from, to, nil
}

// declDir returns directory of the stylesheet declaration came from, current
// working directory when unknown.
func declDir(node Node) (string, error) {
	if src := node.Source(); src != "" {
		return filepath.Abs(filepath.Dir(src))
	}
	return os.Getwd()
}
