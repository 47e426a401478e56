package chainconfig

import (
	"strings"
)

// iniEntry is one "Key = Value" line within a section, optionally
// followed by an inline "; Comment" (spec.md §6's GUID-typed-parameter
// descriptor annotation).
type iniEntry struct {
	Key     string
	Value   string
	Comment string
}

// iniSection is one "[Name]" block plus its ordered key/value entries.
// The on-disk format (spec.md §6) is a bespoke INI-dialect with no
// ecosystem library modeling its exact section-naming and
// deferred-file-magic conventions, so it's hand-parsed here.
type iniSection struct {
	Name    string
	Entries []iniEntry
}

// parseINI scans text into an ordered list of sections. Lines starting
// with ';' are comments and are discarded; blank lines are ignored.
// Values are NOT trimmed of internal whitespace (array parameters are
// whitespace-significant), only of the trailing newline and leading/
// trailing space around the '=' delimiter.
func parseINI(text string) []iniSection {
	var sections []iniSection
	var current *iniSection

	for _, rawLine := range strings.Split(text, "\n") {
		line := strings.TrimRight(rawLine, "\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, ";") {
			continue
		}
		if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
			sections = append(sections, iniSection{Name: trimmed[1 : len(trimmed)-1]})
			current = &sections[len(sections)-1]
			continue
		}
		if current == nil {
			continue // stray key outside any section; ignored
		}
		eq := strings.IndexByte(line, '=')
		if eq < 0 {
			continue
		}
		key := strings.TrimSpace(line[:eq])
		value := strings.TrimSpace(line[eq+1:])
		var comment string
		if i := strings.Index(value, " ; "); i >= 0 {
			comment = strings.TrimSpace(value[i+3:])
			value = strings.TrimSpace(value[:i])
		}
		current.Entries = append(current.Entries, iniEntry{Key: key, Value: value, Comment: comment})
	}

	return sections
}

// writeINI renders sections back to the on-disk textual form, preserving
// section and entry order exactly as given (callers are responsible for
// ordering sections by chain position before calling this).
func writeINI(sections []iniSection, sectionComments map[string]string) string {
	var b strings.Builder
	for i, s := range sections {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteByte('[')
		b.WriteString(s.Name)
		b.WriteString("]\n")
		if comment, ok := sectionComments[s.Name]; ok && comment != "" {
			b.WriteString("; ")
			b.WriteString(comment)
			b.WriteByte('\n')
		}
		for _, e := range s.Entries {
			b.WriteString(e.Key)
			b.WriteString(" = ")
			b.WriteString(e.Value)
			if e.Comment != "" {
				b.WriteString(" ; ")
				b.WriteString(e.Comment)
			}
			b.WriteByte('\n')
		}
	}
	return b.String()
}
