package guid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRoundTrip(t *testing.T) {
	g := New()
	parsed, err := Parse(g.String())
	require.NoError(t, err)
	assert.Equal(t, g, parsed)
}

func TestParseBraced(t *testing.T) {
	const s = "FFFFFFFF-FFFF-FFFF-FFFF-FFFFFFFFFFFF"
	braced, err := Parse("{" + s + "}")
	require.NoError(t, err)
	plain, err := Parse(s)
	require.NoError(t, err)
	assert.Equal(t, plain, braced)
	assert.Equal(t, "{"+s+"}", braced.Braced())
}

func TestIsNil(t *testing.T) {
	assert.True(t, Nil.IsNil())
	assert.False(t, New().IsNil())
}

func TestParseInvalid(t *testing.T) {
	_, err := Parse("not-a-guid")
	assert.Error(t, err)
}
