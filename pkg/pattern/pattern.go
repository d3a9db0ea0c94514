// Package pattern holds the fixed set of structural template patterns and the
// rules used to pull names out of them.
//
// Every pattern sits behind a Matcher so callers never touch a regular
// expression directly. Swapping a pattern for a real tokenizer only has to
// keep the Match values identical.
package pattern

import (
	"regexp"

	"github.com/walteh/twigls/pkg/position"
)

// Kind tags what a Match represents.
type Kind string

const (
	KindExtends        Kind = "extends"
	KindInclude        Kind = "include"
	KindBlock          Kind = "block"
	KindBlockEnd       Kind = "endblock"
	KindBlockReference Kind = "block_reference"
	KindParentCall     Kind = "parent_call"
	KindVariable       Kind = "variable"
)

// Match is one structural occurrence found in a document.
type Match struct {
	Kind Kind
	// Full covers the whole construct, delimiters included.
	Full position.RawPosition
	// Name covers the extracted name. It is empty for parent() calls and bare
	// endblock tags.
	Name position.RawPosition
	// Chain is the span the cursor can hit. For variable reads it widens Name
	// over any member or index access, for parent() calls it is the whole call,
	// otherwise it equals Name.
	Chain position.RawPosition
}

// Matcher finds every non-overlapping occurrence of one pattern.
type Matcher interface {
	Name() string
	Kind() Kind
	FindAll(text string) []Match
}

var (
	extendsPattern    = regexp.MustCompile(`\{%\s*extends\s+['"]([^'"]*)['"]\s*%\}`)
	includePattern    = regexp.MustCompile(`\{%\s*include\s+['"]([^'"]*)['"]`)
	blockOpenPattern  = regexp.MustCompile(`\{%\s*block\s+(\w+)\s*%\}`)
	blockClosePattern = regexp.MustCompile(`\{%\s*endblock(?:\s+(\w+))?\s*%\}`)
	parentCallPattern = regexp.MustCompile(`\{\{\s*parent\(\)\s*\}\}`)
	blockCallPattern  = regexp.MustCompile(`\{\{\s*block\(\s*['"](\w+)['"]\s*\)\s*\}\}`)
	variablePattern   = regexp.MustCompile(`\{\{\s*([a-zA-Z_][a-zA-Z0-9_]*)((?:\.[a-zA-Z_][a-zA-Z0-9_]*)*(?:\[[^\]]*\])*)`)
	forPattern        = regexp.MustCompile(`\{%\s*for\s+(\w+)(?:\s*,\s*(\w+))?\s+in\s+`)
	setPattern        = regexp.MustCompile(`\{%\s*set\s+(\w+)`)
)

var (
	Extends      Matcher = newRegexMatcher("extends", KindExtends, extendsPattern, namedGroups(1))
	Include      Matcher = newRegexMatcher("include", KindInclude, includePattern, namedGroups(1))
	BlockOpen    Matcher = newRegexMatcher("block-open", KindBlock, blockOpenPattern, namedGroups(1))
	BlockClose   Matcher = newRegexMatcher("block-close", KindBlockEnd, blockClosePattern, namedGroups(1))
	ParentCall   Matcher = newRegexMatcher("parent-call", KindParentCall, parentCallPattern, wholeMatch)
	BlockCall    Matcher = newRegexMatcher("block-reference-call", KindBlockReference, blockCallPattern, namedGroups(1))
	VariableRead Matcher = newRegexMatcher("variable-reference", KindVariable, variablePattern, chainedName)
	ForBindings  Matcher = newRegexMatcher("for-loop-bindings", KindVariable, forPattern, namedGroups(1, 2))
	SetBindings  Matcher = newRegexMatcher("set-bindings", KindVariable, setPattern, namedGroups(1))
)

// LocatorOrder is the tie-break order used when several patterns cover the
// same offset: the first matcher in this list wins.
var LocatorOrder = []Matcher{
	Extends,
	Include,
	ParentCall,
	BlockCall,
	BlockOpen,
	VariableRead,
	ForBindings,
	SetBindings,
}

// Bindings are the matchers that contribute to a template's variable table.
var Bindings = []Matcher{
	VariableRead,
	ForBindings,
	SetBindings,
}

// Named returns the matches of m whose name is exactly name.
func Named(m Matcher, text, name string) []Match {
	var out []Match
	for _, match := range m.FindAll(text) {
		if match.Name.Text == name {
			out = append(out, match)
		}
	}
	return out
}
