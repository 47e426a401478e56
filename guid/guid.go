// Package guid provides the canonical GUID identity used for filter
// kinds, signals, models, metrics, solvers, and approximators (spec.md
// §3's GUID-typed parameter kinds). It wraps github.com/google/uuid so
// every descriptor and parameter in the module shares one parse/format/
// compare implementation instead of each package rolling its own.
package guid

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// GUID is a 128-bit identifier, canonically formatted brace-less
// ("xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx"), per spec.md §4.4.
type GUID uuid.UUID

// Nil is the zero GUID, used as a sentinel for "no model" / "no
// descriptor" fields.
var Nil GUID

// Parse accepts a canonical GUID, optionally wrapped in braces (the
// on-disk format of spec.md §6 uses "{FFFFFFFF-...}").
func Parse(s string) (GUID, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "{")
	s = strings.TrimSuffix(s, "}")
	u, err := uuid.Parse(s)
	if err != nil {
		return Nil, fmt.Errorf("guid: parse %q: %w", s, err)
	}
	return GUID(u), nil
}

// MustParse is Parse, panicking on error; intended for compile-time
// constant virtual-signal tables, not for parsing untrusted input.
func MustParse(s string) GUID {
	g, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return g
}

// New generates a fresh random GUID, used by descriptor registries that
// mint synthetic identifiers (e.g. for ad hoc produced signals).
func New() GUID {
	return GUID(uuid.New())
}

// String renders the canonical, brace-less form.
func (g GUID) String() string {
	return uuid.UUID(g).String()
}

// Braced renders the form used when emitting filter-section names in
// the on-disk configuration ("{...}"), per spec.md §6.
func (g GUID) Braced() string {
	return "{" + g.String() + "}"
}

// IsNil reports whether g is the zero GUID.
func (g GUID) IsNil() bool {
	return g == Nil
}
