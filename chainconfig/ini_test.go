package chainconfig

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseINIIgnoresCommentsAndBlankLines(t *testing.T) {
	text := "; header comment\n\n[Sect]\n; inline comment\nKey = Value\n\nKey2 = 1 2 3\n"
	sections := parseINI(text)
	require.Len(t, sections, 1)
	assert.Equal(t, "Sect", sections[0].Name)
	require.Len(t, sections[0].Entries, 2)
	assert.Equal(t, iniEntry{Key: "Key", Value: "Value"}, sections[0].Entries[0])
	assert.Equal(t, iniEntry{Key: "Key2", Value: "1 2 3"}, sections[0].Entries[1])
}

func TestWriteINIRendersComment(t *testing.T) {
	sections := []iniSection{{Name: "Sect", Entries: []iniEntry{{Key: "K", Value: "V"}}}}
	text := writeINI(sections, map[string]string{"Sect": "a filter"})
	assert.Contains(t, text, "[Sect]\n; a filter\nK = V\n")
}
