// Package obslog wires the module's ambient structured logger: the
// teacher corpus's own github.com/joeycumines/logiface core, paired
// with its reference JSON writer github.com/joeycumines/stumpy. Every
// package that needs to emit a diagnostic outside the typed error-list
// objects of spec.md §7 (build failures, plugin warnings, lifecycle
// transitions) goes through here instead of fmt.Println/log.Printf, so
// log shape stays uniform across the module.
package obslog

import (
	"io"
	"os"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// Logger is the concrete logger type used across the module.
type Logger = logiface.Logger[*stumpy.Event]

var (
	// L aliases logiface's generic option constructors for stumpy.Event,
	// so callers can write obslog.L.WithLevel(...) alongside obslog's own
	// stumpy.WithWriter wiring.
	L = logiface.LoggerFactory[*stumpy.Event]{}

	// std is the process-wide default logger, writing to stderr at
	// Informational level. Package main wires a replacement via SetDefault
	// if the embedder wants a different sink or level.
	std = New(os.Stderr, logiface.LevelInformational)
)

// New builds a Logger writing newline-delimited JSON records to w, at
// or above the given minimum level.
func New(w io.Writer, level logiface.Level) *Logger {
	return stumpy.L.New(
		stumpy.L.WithStumpy(stumpy.WithWriter(w)),
		stumpy.L.WithLevel(level),
	)
}

// Default returns the process-wide default logger.
func Default() *Logger {
	return std
}

// SetDefault replaces the process-wide default logger. Called by
// cmd/scgms-run at startup; the library packages, abi included, only
// read the default through Default.
func SetDefault(l *Logger) {
	if l != nil {
		std = l
	}
}
