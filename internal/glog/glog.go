// Package glog is the analyzer's thin logging wrapper: a single
// log/slog.Logger configured once at process startup (cmd/gscanalyze) and
// threaded down into internal/dataflow's solver for budget warnings.
// Kept on the standard library
// rather than a third-party logger: nothing in the retrieved pack (the
// DWScript teacher included) imports a structured-logging library, and
// slog's leveled, attribute-based API already covers every need here —
// see DESIGN.md's stdlib justification.
package glog

import (
	"io"
	"log/slog"
	"os"
)

// Format selects the wire shape of emitted log records.
type Format int

const (
	Text Format = iota
	JSON
)

// Options configures New.
type Options struct {
	Format Format
	Level  slog.Level
	Writer io.Writer // defaults to os.Stderr
}

// New builds a *slog.Logger per Options, suitable for passing as
// dataflow.Context.Logger.
func New(opts Options) *slog.Logger {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}
	handlerOpts := &slog.HandlerOptions{Level: opts.Level}
	var h slog.Handler
	if opts.Format == JSON {
		h = slog.NewJSONHandler(w, handlerOpts)
	} else {
		h = slog.NewTextHandler(w, handlerOpts)
	}
	return slog.New(h)
}

// Discard returns a logger that drops every record, for tests and for
// single-shot CLI invocations that don't want solver-budget noise on
// stderr.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
