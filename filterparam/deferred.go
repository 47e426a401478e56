package filterparam

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/smartcgms-go/core/resultcode"
)

const (
	deferredMagicPrefix  = "$([[deferred to]]"
	deferredMagicPostfix = ")"
)

// isDeferredParameter reports whether str has the deferred-file magic
// shape, returning the enclosed path-or-variable text, trimmed of
// surrounding whitespace.
func isDeferredParameter(str string) (string, bool) {
	if len(str) < len(deferredMagicPrefix)+len(deferredMagicPostfix)+1 {
		return "", false
	}
	if !strings.HasPrefix(str, deferredMagicPrefix) {
		return "", false
	}
	if !strings.HasSuffix(str, deferredMagicPostfix) {
		return "", false
	}
	inner := str[len(deferredMagicPrefix) : len(str)-len(deferredMagicPostfix)]
	return strings.TrimSpace(inner), true
}

func formatDeferred(pathOrVar string) string {
	return deferredMagicPrefix + " " + pathOrVar + deferredMagicPostfix
}

// makeAbsolutePath resolves src against parentPath, the owning
// configuration's directory, unless src is already absolute.
func makeAbsolutePath(src, parentPath string) string {
	if src == "" || filepath.IsAbs(src) || parentPath == "" {
		return src
	}
	return filepath.Join(parentPath, src)
}

// resolveDeferredPath resolves mDeferredPathOrVar to its final absolute
// path, evaluating it as a variable first if it has that shape.
func (p *Parameter) resolveDeferredPath() (string, resultcode.Code) {
	effective := p.deferredPathOrVar
	if name, ok := isVariableName(p.deferredPathOrVar); ok {
		val, rc := p.evaluateVariable(name)
		if !resultcode.Succeeded(rc) {
			return "", rc
		}
		effective = val
	}
	return makeAbsolutePath(effective, p.parentPath), resultcode.OK
}

// loadFromFile reads and trims path's contents. A missing file is not
// an error — "empty file is like an empty line" in the source —
// reported as resultcode.False with empty content.
func loadFromFile(path string) (string, resultcode.Code, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", resultcode.False, nil
		}
		return "", resultcode.Fail, err
	}
	return strings.TrimSpace(string(b)), resultcode.OK, nil
}

func saveToFile(path, text string) error {
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return resultcode.New(resultcode.CantOpenFile, err.Error())
	}
	return nil
}
