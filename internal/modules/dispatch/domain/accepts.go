package domain

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	optionsdomain "dropkit/internal/modules/options/domain"
)

// Matcher is one acceptance alternative: a literal, a regular
// expression, or a plugin-authored predicate. Exactly one field is set.
type Matcher struct {
	Literal string
	Pattern *regexp.Regexp
	Func    func(item Item, options optionsdomain.Resolved) bool
}

// Matches tests the matcher against the item's natural identifying
// field: file extension for files, base name for directories, mime for
// blobs, declared type for strings, the full string for urls. Regexp
// alternatives for path-backed items run against the base name so
// patterns like `\.png$` behave the same for "a.png" and "/x/a.png".
func (m Matcher) Matches(item Item, options optionsdomain.Resolved) bool {
	if m.Func != nil {
		return m.Func(item, options)
	}
	field := item.matchField()
	if m.Pattern != nil {
		return m.Pattern.MatchString(field)
	}
	switch item.Kind {
	case ItemFile:
		return strings.EqualFold(m.Literal, strings.TrimPrefix(filepath.Ext(item.Path), "."))
	default:
		return m.Literal == field
	}
}

func (it Item) matchField() string {
	switch it.Kind {
	case ItemFile, ItemDirectory:
		return filepath.Base(it.Path)
	case ItemBlob:
		return it.MimeType
	case ItemString:
		return it.Type
	case ItemURL:
		return it.URL
	}
	return ""
}

// LiteralMatcher builds a matcher from a manifest pattern string. A
// pattern wrapped in slashes ("/\.png$/") compiles to a regexp, any
// other string is a literal.
func LiteralMatcher(pattern string) (Matcher, error) {
	if len(pattern) >= 2 && strings.HasPrefix(pattern, "/") && strings.HasSuffix(pattern, "/") {
		re, err := regexp.Compile(pattern[1 : len(pattern)-1])
		if err != nil {
			return Matcher{}, fmt.Errorf("bad accept pattern %q: %w", pattern, err)
		}
		return Matcher{Pattern: re}, nil
	}
	return Matcher{Literal: pattern}, nil
}

// Accepts declares, per item kind, the alternatives a processor accepts
// (OR semantics). An absent kind is never accepted; a zero Accepts
// means the processor takes nothing from drag-and-drop.
type Accepts struct {
	Files       []Matcher
	Directories []Matcher
	Blobs       []Matcher
	Strings     []Matcher
	URLs        []Matcher
}

func (a Accepts) alternatives(kind ItemKind) []Matcher {
	switch kind {
	case ItemFile:
		return a.Files
	case ItemDirectory:
		return a.Directories
	case ItemBlob:
		return a.Blobs
	case ItemString:
		return a.Strings
	case ItemURL:
		return a.URLs
	}
	return nil
}

func (a Accepts) Accepts(item Item, options optionsdomain.Resolved) bool {
	for _, matcher := range a.alternatives(item.Kind) {
		if matcher.Matches(item, options) {
			return true
		}
	}
	return false
}

func (a Accepts) Empty() bool {
	return len(a.Files) == 0 && len(a.Directories) == 0 && len(a.Blobs) == 0 &&
		len(a.Strings) == 0 && len(a.URLs) == 0
}
