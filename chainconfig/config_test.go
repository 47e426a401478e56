package chainconfig

import (
	"testing"

	"github.com/smartcgms-go/core/filterparam"
	"github.com/smartcgms-go/core/guid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testFilterA = guid.MustParse("11111111-1111-1111-1111-111111111111")
	testFilterB = guid.MustParse("22222222-2222-2222-2222-222222222222")
)

func withTestDescriptors(t *testing.T) {
	t.Helper()
	prev := LookupFilterDescriptor
	LookupFilterDescriptor = func(kind guid.GUID) (FilterDescriptor, bool) {
		switch kind {
		case testFilterA:
			return FilterDescriptor{
				Kind:        testFilterA,
				DisplayName: "Test Filter A",
				Params: []ParamSpec{
					{Name: "Gain", Type: filterparam.TypeDouble},
				},
			}, true
		case testFilterB:
			return FilterDescriptor{
				Kind:        testFilterB,
				DisplayName: "Test Filter B",
				Params: []ParamSpec{
					{Name: "Label", Type: filterparam.TypeWideString},
				},
			}, true
		default:
			return FilterDescriptor{}, false
		}
	}
	t.Cleanup(func() { LookupFilterDescriptor = prev })
}

func TestLoadOrdersByZeroPaddedOrdinal(t *testing.T) {
	withTestDescriptors(t)
	text := "[Filter_002_" + testFilterB.Braced() + "]\nLabel = second\n\n" +
		"[Filter_001_" + testFilterA.Braced() + "]\nGain = 1.5\n"

	cfg, err := Load(text)
	require.NoError(t, err)
	require.Len(t, cfg.Links, 2)
	assert.Equal(t, testFilterA, cfg.Links[0].Kind)
	assert.Equal(t, testFilterB, cfg.Links[1].Kind)
}

func TestLoadUnknownGUIDIsPartialSuccess(t *testing.T) {
	withTestDescriptors(t)
	unknown := guid.New()
	text := "[Filter_001_" + unknown.Braced() + "]\nX = 1\n"

	cfg, err := Load(text)
	require.Error(t, err)
	assert.Empty(t, cfg.Links)
}

func TestLoadMissingParameterIsNonFatal(t *testing.T) {
	withTestDescriptors(t)
	text := "[Filter_001_" + testFilterA.Braced() + "]\n"

	cfg, err := Load(text)
	require.NoError(t, err)
	require.Len(t, cfg.Links, 1)
	_, ok := cfg.Links[0].Parameter("Gain")
	assert.False(t, ok)
}

func TestSaveRoundTrip(t *testing.T) {
	withTestDescriptors(t)
	cfg := New()
	link := NewLink(testFilterA)
	p := filterparam.New(filterparam.TypeDouble, "Gain")
	p.SetDouble(2.75)
	link.SetParameter(p)
	cfg.Add(link)

	text, err := cfg.Save()
	require.NoError(t, err)
	assert.Contains(t, text, "[Filter_001_"+testFilterA.Braced()+"]")
	assert.Contains(t, text, "Gain = 2.75")

	loaded, err := Load(text)
	require.NoError(t, err)
	require.Len(t, loaded.Links, 1)
	gain, ok := loaded.Links[0].Parameter("Gain")
	require.True(t, ok)
	v, err := gain.GetDouble()
	require.NoError(t, err)
	assert.Equal(t, 2.75, v)
}

func TestVariableSurvivesRoundTrip(t *testing.T) {
	withTestDescriptors(t)
	cfg := New()
	link := NewLink(testFilterA)
	p := filterparam.New(filterparam.TypeDouble, "Gain")
	require.NoError(t, p.FromString("$(GAIN_VAR)"))
	link.SetParameter(p)
	cfg.Add(link)

	text, err := cfg.Save()
	require.NoError(t, err)
	assert.Contains(t, text, "Gain = $(GAIN_VAR)")
}

func TestSetVariableRejectsUnusedSentinel(t *testing.T) {
	cfg := New()
	err := cfg.SetVariable(filterparam.UnusedVariableName, "x")
	assert.Error(t, err)
}
