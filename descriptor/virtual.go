package descriptor

import (
	"fmt"
	"strings"

	"github.com/smartcgms-go/core/guid"
)

// virtualSignalPrefix is the display-name prefix the fallback in
// Resolve_Signal_By_Name compares against ("Virtual N"), grounded on
// _examples/original_source/scgms/src/filters.cpp:246-252
// (dsSignal_Prefix_Virtual + " " + i). The exact compile-time GUID
// table and slot count weren't part of the retrieved original_source
// set; virtualSignalIDs below is a from-scratch table of the same
// shape (fixed-size, deterministically derived GUIDs), sized generously
// for a research pipeline's scratch/produced-signal slots.
const virtualSignalPrefix = "Virtual"

const virtualSignalCount = 16

// virtualSignalIDs are deterministic GUIDs built from a fixed pattern
// with the slot index in the last group, so they're stable across
// process restarts without needing to be hand-enumerated as literals.
var virtualSignalIDs = func() [virtualSignalCount]guid.GUID {
	var ids [virtualSignalCount]guid.GUID
	for i := range ids {
		ids[i] = guid.MustParse(deterministicVirtualGUID(i))
	}
	return ids
}()

// deterministicVirtualGUID synthesizes a stable, readable GUID literal
// for virtual signal slot i (not a cryptographic derivation — just
// avoids hand-typing 16 literals while keeping them fixed).
func deterministicVirtualGUID(i int) string {
	return fmt.Sprintf("00000000-0000-0000-0000-%012x", 0xF17700000000+uint64(i))
}

// VirtualSignalID returns the GUID assigned to virtual signal slot i,
// and whether i is in range.
func VirtualSignalID(i int) (guid.GUID, bool) {
	if i < 0 || i >= virtualSignalCount {
		return guid.Nil, false
	}
	return virtualSignalIDs[i], true
}

// ResolveSignalByName resolves a signal display name to its GUID,
// following _examples/original_source/scgms/src/filters.cpp's
// CLoaded_Filters::Resolve_Signal_By_Name: first a linear scan over
// registered signal descriptors by exact display-name match, then a
// fallback syntactic form "Virtual N" resolving into the compile-time
// virtual-signal table.
func (r *Registry) ResolveSignalByName(name string) (guid.GUID, bool) {
	for _, d := range r.Signals() {
		if d.DisplayName == name {
			return d.SignalID, true
		}
	}
	for i := 0; i < virtualSignalCount; i++ {
		if name == fmt.Sprintf("%s %d", virtualSignalPrefix, i) {
			return virtualSignalIDs[i], true
		}
	}
	return guid.Nil, false
}

// virtualSignalName formats the canonical display name for slot i,
// the inverse of the "Virtual N" match above.
func virtualSignalName(i int) string {
	return strings.TrimSpace(fmt.Sprintf("%s %d", virtualSignalPrefix, i))
}

// VirtualSignalDescriptors returns a synthetic SignalDescriptor for
// every compile-time virtual-signal slot, display-named via
// virtualSignalName so get_signal_descriptors callers (spec.md §4.6's
// descriptor enumeration) can discover and round-trip "Virtual N"
// signals the same way as plugin-registered ones, instead of only
// resolving them by already knowing the syntactic name.
func VirtualSignalDescriptors() []SignalDescriptor {
	out := make([]SignalDescriptor, virtualSignalCount)
	for i := range out {
		out[i] = SignalDescriptor{SignalID: virtualSignalIDs[i], DisplayName: virtualSignalName(i)}
	}
	return out
}
