// Package matcher compiles name patterns used for repository filters and
// branch or tag exclusions.
package matcher

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

const patternCompileErrorTemplateConstant = "invalid pattern %q: %w"

// Options control pattern compilation.
type Options struct {
	CaseInsensitive bool
	// Separators are characters a single "*" does not cross.
	Separators []rune
}

// Matcher reports whether a name matches any compiled pattern.
type Matcher struct {
	globs           []glob.Glob
	exactNames      map[string]struct{}
	caseInsensitive bool
}

// Compile builds a Matcher from exact names and glob patterns ("*", "?", "[...]", "{a,b}").
// An empty pattern list produces a Matcher that matches nothing.
func Compile(patterns []string, options Options) (*Matcher, error) {
	compiled := &Matcher{exactNames: map[string]struct{}{}, caseInsensitive: options.CaseInsensitive}
	for _, pattern := range patterns {
		normalizedPattern := compiled.normalize(pattern)
		if len(normalizedPattern) == 0 {
			continue
		}
		compiled.exactNames[normalizedPattern] = struct{}{}

		patternGlob, compileError := glob.Compile(normalizedPattern, options.Separators...)
		if compileError != nil {
			return nil, fmt.Errorf(patternCompileErrorTemplateConstant, pattern, compileError)
		}
		compiled.globs = append(compiled.globs, patternGlob)
	}
	return compiled, nil
}

// Empty reports whether no patterns were compiled.
func (compiled *Matcher) Empty() bool {
	return compiled == nil || len(compiled.exactNames) == 0
}

// Match reports whether name equals or matches any pattern.
func (compiled *Matcher) Match(name string) bool {
	if compiled.Empty() {
		return false
	}
	normalizedName := compiled.normalize(name)
	if _, exact := compiled.exactNames[normalizedName]; exact {
		return true
	}
	for _, patternGlob := range compiled.globs {
		if patternGlob.Match(normalizedName) {
			return true
		}
	}
	return false
}

func (compiled *Matcher) normalize(value string) string {
	trimmedValue := strings.TrimSpace(value)
	if compiled.caseInsensitive {
		return strings.ToLower(trimmedValue)
	}
	return trimmedValue
}
