package descriptor

import (
	"testing"

	"github.com/smartcgms-go/core/filterparam"
	"github.com/smartcgms-go/core/guid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryFilterRoundTrip(t *testing.T) {
	r := New()
	kind := guid.New()
	r.RegisterFilter(FilterDescriptor{
		Kind:        kind,
		DisplayName: "Test Filter",
		Params:      []ParamSpec{{Name: "Gain", Type: filterparam.TypeDouble}},
	})

	d, ok := r.Filter(kind)
	require.True(t, ok)
	assert.Equal(t, "Test Filter", d.DisplayName)

	_, ok = r.Filter(guid.New())
	assert.False(t, ok)
}

func TestResolveSignalByNameExactMatch(t *testing.T) {
	r := New()
	id := guid.New()
	r.RegisterSignal(SignalDescriptor{SignalID: id, DisplayName: "IG"})

	got, ok := r.ResolveSignalByName("IG")
	require.True(t, ok)
	assert.Equal(t, id, got)

	_, ok = r.ResolveSignalByName("not-a-signal")
	assert.False(t, ok)
}

func TestResolveSignalByNameVirtualFallback(t *testing.T) {
	r := New()

	got, ok := r.ResolveSignalByName("Virtual 3")
	require.True(t, ok)
	want, _ := VirtualSignalID(3)
	assert.Equal(t, want, got)

	_, ok = r.ResolveSignalByName("Virtual 999")
	assert.False(t, ok)
}

func TestSignalsPreservesContributionOrder(t *testing.T) {
	r := New()
	first := guid.New()
	second := guid.New()
	r.RegisterSignal(SignalDescriptor{SignalID: first, DisplayName: "First"})
	r.RegisterSignal(SignalDescriptor{SignalID: second, DisplayName: "Second"})

	sigs := r.Signals()
	require.Len(t, sigs, 2)
	assert.Equal(t, first, sigs[0].SignalID)
	assert.Equal(t, second, sigs[1].SignalID)
}

func TestInstallWiresFilterparamAndChainconfigHooks(t *testing.T) {
	r := New()
	signalID := guid.New()
	r.RegisterSignal(SignalDescriptor{SignalID: signalID, DisplayName: "Glucose"})

	filterKind := guid.New()
	r.RegisterFilter(FilterDescriptor{
		Kind:        filterKind,
		DisplayName: "Log Filter",
		Params:      []ParamSpec{{Name: "Path", Type: filterparam.TypeWideString}},
	})

	Install(r)

	resolved, ok := filterparam.ResolveSignalByName("Glucose")
	require.True(t, ok)
	assert.Equal(t, signalID, resolved)

	p := filterparam.New(filterparam.TypeSignalID, "Signal")
	require.NoError(t, p.FromString("Glucose"))
	got, err := p.GetGUID()
	require.NoError(t, err)
	assert.Equal(t, signalID, got)
}
