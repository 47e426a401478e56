// Package chainconfig implements the persistent filter chain
// configuration of spec.md §3/§4.5: an ordered container of filter
// configuration links, loadable from and savable to the on-disk
// INI-dialect of §6, with parent-path propagation and variable
// injection across every contained parameter. Grounded on the section-
// naming and load/save semantics spec.md §4.5/§6 describe; the original
// C++ source's persistent configuration file (not captured in
// original_source/) is not present, so this package follows the spec's
// textual description directly, in the teacher's error-accumulation
// idiom.
package chainconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"github.com/smartcgms-go/core/filterparam"
	"github.com/smartcgms-go/core/guid"
	"github.com/smartcgms-go/core/obslog"
	"github.com/smartcgms-go/core/resultcode"
)

// sectionPattern matches "Filter_<ordinal>_{<GUID>}" section names,
// requiring at least a 3-digit zero-padded ordinal per spec.md §6.
var sectionPattern = regexp.MustCompile(`^Filter_(\d{3,})_\{([0-9A-Fa-f-]{36})\}$`)

// Configuration is an ordered container of filter configuration links
// (spec.md §3 "Persistent filter chain configuration"). The zero value
// is usable empty.
type Configuration struct {
	Links []*FilterConfigurationLink

	// filePath is the originating file path, if loaded from or saved to
	// disk; it becomes the parent path for relative references.
	filePath string
}

// New constructs an empty configuration.
func New() *Configuration {
	return &Configuration{}
}

// FilePath reports the originating file path, if any.
func (c *Configuration) FilePath() string { return c.filePath }

// Add appends link to the chain and immediately propagates the
// configuration's current parent path to it, per spec.md §4.5.
func (c *Configuration) Add(link *FilterConfigurationLink) {
	c.Links = append(c.Links, link)
	if parent := c.parentPath(); parent != "" {
		link.SetParentPath(parent)
	}
}

func (c *Configuration) parentPath() string {
	if c.filePath == "" {
		return ""
	}
	return filepath.Dir(c.filePath)
}

// SetParentPath explicitly sets the parent path and broadcasts it to
// every link and parameter.
func (c *Configuration) SetParentPath(parentPath string) error {
	if parentPath == "" {
		return resultcode.New(resultcode.InvalidArg, "parent path must not be empty")
	}
	for _, l := range c.Links {
		l.SetParentPath(parentPath)
	}
	return nil
}

// SetVariable rejects the reserved "%unused%" name and otherwise
// propagates the binding to every link and parameter (spec.md §4.5).
func (c *Configuration) SetVariable(name, value string) error {
	if name == filterparam.UnusedVariableName {
		return resultcode.New(resultcode.AmbiguousName, "cannot rebind reserved variable "+filterparam.UnusedVariableName)
	}
	vars := map[string]string{name: value}
	for _, l := range c.Links {
		l.InjectVariables(vars)
	}
	return nil
}

// LoadFile loads a configuration from disk; the file's directory
// becomes the parent path for relative references.
func LoadFile(path string) (*Configuration, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, resultcode.New(resultcode.FileNotFound, path)
		}
		return nil, resultcode.New(resultcode.CantOpenFile, err.Error())
	}
	cfg, err := Load(string(b))
	if cfg != nil {
		cfg.filePath = path
		_ = cfg.SetParentPath(filepath.Dir(path))
	}
	return cfg, err
}

// Load parses an in-memory configuration buffer, per spec.md §4.5:
// sections are enumerated and stably sorted by section name (so the
// zero-padded ordinal controls final order), unknown filter GUIDs
// produce a per-section warning and downgrade the overall result to
// S_FALSE rather than failing outright, and missing declared
// parameters produce per-parameter warnings.
//
// A fatal condition (a malformed ordinal or GUID in a filter section
// name) returns a nil configuration and a non-nil error. Sections whose
// names don't match the filter pattern are skipped. Partial success
// (one or more unknown GUIDs) returns the configuration together with a
// *resultcode.Error wrapping resultcode.False; missing parameters only
// log a warning. Diagnostics are logged through obslog.
func Load(text string) (*Configuration, error) {
	sections := parseINI(text)

	type filterSection struct {
		ordinal int
		kind    guid.GUID
		section iniSection
	}

	var filterSections []filterSection
	for _, s := range sections {
		m := sectionPattern.FindStringSubmatch(s.Name)
		if m == nil {
			continue // non-filter section; ignored
		}
		ordinal, err := strconv.Atoi(m[1])
		if err != nil {
			return nil, resultcode.New(resultcode.Fail, "malformed ordinal in section "+s.Name)
		}
		kind, err := guid.Parse(m[2])
		if err != nil {
			return nil, resultcode.New(resultcode.Fail, "malformed GUID in section "+s.Name)
		}
		filterSections = append(filterSections, filterSection{ordinal: ordinal, kind: kind, section: s})
	}

	sort.SliceStable(filterSections, func(i, j int) bool {
		return filterSections[i].section.Name < filterSections[j].section.Name
	})

	cfg := New()
	partial := false

	for _, fs := range filterSections {
		desc, ok := lookupFilterDescriptor(fs.kind)
		if !ok {
			obslog.Default().Warning().Logf("chainconfig: unknown filter GUID %s in section %s", fs.kind, fs.section.Name)
			partial = true
			continue
		}

		link := NewLink(fs.kind)
		values := make(map[string]string, len(fs.section.Entries))
		for _, e := range fs.section.Entries {
			values[e.Key] = e.Value
		}

		for _, spec := range desc.Params {
			raw, present := values[spec.Name]
			if !present {
				obslog.Default().Warning().Logf("chainconfig: missing parameter %s for filter %s in section %s", spec.Name, desc.DisplayName, fs.section.Name)
				continue
			}
			p := filterparam.New(spec.Type, spec.Name)
			if err := p.FromString(raw); err != nil {
				obslog.Default().Warning().Logf("chainconfig: parameter %s in section %s: %v", spec.Name, fs.section.Name, err)
				continue
			}
			link.SetParameter(p)
		}

		cfg.Links = append(cfg.Links, link)
	}

	if partial {
		return cfg, resultcode.New(resultcode.False, "one or more filter sections referenced an unknown filter GUID")
	}
	return cfg, nil
}

func lookupFilterDescriptor(kind guid.GUID) (FilterDescriptor, bool) {
	if LookupFilterDescriptor == nil {
		return FilterDescriptor{}, false
	}
	return LookupFilterDescriptor(kind)
}

// Save renders the configuration to the on-disk textual form (spec.md
// §6): sections named "Filter_<NNN>_{GUID}" with a 1-based, zero-padded
// 3-digit ordinal preserving current chain order, a descriptive comment
// line per section, and every parameter emitted in its non-interpreted
// form so "$(...)" references survive round-trip.
func (c *Configuration) Save() (string, error) {
	sections := make([]iniSection, 0, len(c.Links))
	comments := make(map[string]string, len(c.Links))

	for i, link := range c.Links {
		name := fmt.Sprintf("Filter_%03d_%s", i+1, link.Kind.Braced())
		section := iniSection{Name: name}

		desc, haveDesc := lookupFilterDescriptor(link.Kind)
		if haveDesc && desc.DisplayName != "" {
			comments[name] = desc.DisplayName
		}

		for _, p := range link.Parameters() {
			text, err := p.ToString(false)
			if err != nil {
				return "", resultcode.New(resultcode.Fail, "cannot emit parameter "+p.ConfigName()+": "+err.Error())
			}
			entry := iniEntry{Key: p.ConfigName(), Value: text}
			if p.Type().IsGUID() && haveDesc && desc.DisplayName != "" {
				entry.Comment = desc.DisplayName
			}
			section.Entries = append(section.Entries, entry)
		}

		sections = append(sections, section)
	}

	return writeINI(sections, comments), nil
}

// SaveFile renders and writes the configuration to path, becoming the
// new originating file path (and hence parent path) on success.
func (c *Configuration) SaveFile(path string) error {
	text, err := c.Save()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return resultcode.New(resultcode.CantOpenFile, err.Error())
	}
	c.filePath = path
	return c.SetParentPath(filepath.Dir(path))
}

