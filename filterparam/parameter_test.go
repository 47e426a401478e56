package filterparam

import (
	"testing"

	"github.com/smartcgms-go/core/guid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoubleLiteralRoundTrip(t *testing.T) {
	p := New(TypeDouble, "gain")
	require.NoError(t, p.FromString("3.5"))
	v, err := p.GetDouble()
	require.NoError(t, err)
	assert.Equal(t, 3.5, v)
}

func TestVariableBinding(t *testing.T) {
	p := New(TypeInt64, "count")
	require.NoError(t, p.SetVariable("N", "42"))
	require.NoError(t, p.FromString("$(N)"))
	v, err := p.GetInt64()
	require.NoError(t, err)
	assert.Equal(t, int64(42), v)

	uninterpreted, err := p.ToString(false)
	require.NoError(t, err)
	assert.Equal(t, "$(N)", uninterpreted)
}

func TestUnusedVariableResolvesEmptyNotError(t *testing.T) {
	p := New(TypeWideString, "label")
	require.NoError(t, p.FromString("$(%unused%)"))
	v, err := p.GetWString(true)
	require.NoError(t, err)
	assert.Equal(t, "", v)
}

func TestSetVariableRejectsUnusedSentinel(t *testing.T) {
	p := New(TypeWideString, "label")
	err := p.SetVariable(UnusedVariableName, "x")
	assert.Error(t, err)
}

func TestGUIDParsesLiteralOrResolvesByName(t *testing.T) {
	p := New(TypeSignalID, "signal")
	g := guid.New()
	require.NoError(t, p.FromString(g.String()))
	got, err := p.GetGUID()
	require.NoError(t, err)
	assert.Equal(t, g, got)

	prev := ResolveSignalByName
	defer func() { ResolveSignalByName = prev }()
	virtual2 := guid.New()
	ResolveSignalByName = func(name string) (guid.GUID, bool) {
		if name == "Virtual 2" {
			return virtual2, true
		}
		return guid.Nil, false
	}
	p2 := New(TypeSignalID, "signal2")
	require.NoError(t, p2.FromString("Virtual 2"))
	got2, err := p2.GetGUID()
	require.NoError(t, err)
	assert.Equal(t, virtual2, got2)
}

func TestDoubleArrayWithPerSlotVariable(t *testing.T) {
	p := New(TypeDoubleArray, "params")
	require.NoError(t, p.SetVariable("X", "2.5"))
	require.NoError(t, p.FromString("1 $(X) 3"))
	vals, err := p.GetDoubleArray()
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2.5, 3}, vals)

	uninterpreted, err := p.ToString(false)
	require.NoError(t, err)
	assert.Equal(t, "1 $(X) 3", uninterpreted)
}

func TestInt64ArrayLiteral(t *testing.T) {
	p := New(TypeInt64Array, "segments")
	require.NoError(t, p.FromString("1 2 3"))
	vals, err := p.GetInt64Array()
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, vals)
}

func TestDeferredFileMissingIsNotSet(t *testing.T) {
	dir := t.TempDir()
	p := New(TypeWideString, "notes")
	require.NoError(t, p.SetParentPath(dir))
	// File does not exist yet: treated as empty content => E_NOT_SET.
	require.Error(t, p.FromString("$([[deferred to]] notes.txt)"))
	// A second parse of the same magic still finds no file.
	err := p.FromString("$([[deferred to]] notes.txt)")
	assert.Error(t, err)
}

func TestCloneIsDeepCopy(t *testing.T) {
	p := New(TypeDoubleArray, "params")
	require.NoError(t, p.FromString("1 2 3"))
	clone := p.Clone()
	orig, err := p.GetDoubleArray()
	require.NoError(t, err)
	clonedVals, err := clone.GetDoubleArray()
	require.NoError(t, err)
	assert.Equal(t, orig, clonedVals)

	clone.SetDoubleArray([]float64{9})
	origAfter, err := p.GetDoubleArray()
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, origAfter)
}

func TestBooleanRoundTrip(t *testing.T) {
	p := New(TypeBoolean, "flag")
	require.NoError(t, p.FromString("true"))
	v, err := p.GetBool()
	require.NoError(t, err)
	assert.True(t, v)
	s, err := p.ToString(true)
	require.NoError(t, err)
	assert.Equal(t, "true", s)
}
