package pattern

import (
	"regexp"

	"github.com/walteh/twigls/pkg/position"
)

// extractFunc turns one submatch index slice into zero or more matches.
type extractFunc func(text string, full position.RawPosition, loc []int) []Match

type regexMatcher struct {
	name    string
	kind    Kind
	re      *regexp.Regexp
	extract extractFunc
}

func newRegexMatcher(name string, kind Kind, re *regexp.Regexp, extract extractFunc) *regexMatcher {
	return &regexMatcher{name: name, kind: kind, re: re, extract: extract}
}

func (m *regexMatcher) Name() string { return m.name }
func (m *regexMatcher) Kind() Kind   { return m.kind }

func (m *regexMatcher) FindAll(text string) []Match {
	var out []Match
	for _, loc := range m.re.FindAllStringSubmatchIndex(text, -1) {
		full := position.NewBasicPosition(text[loc[0]:loc[1]], loc[0])
		for _, match := range m.extract(text, full, loc) {
			match.Kind = m.kind
			out = append(out, match)
		}
	}
	return out
}

func group(text string, loc []int, n int) (position.RawPosition, bool) {
	if 2*n+1 >= len(loc) || loc[2*n] < 0 {
		return position.RawPosition{}, false
	}
	return position.NewBasicPosition(text[loc[2*n]:loc[2*n+1]], loc[2*n]), true
}

// namedGroups yields one match per participating capture group.
func namedGroups(groups ...int) extractFunc {
	return func(text string, full position.RawPosition, loc []int) []Match {
		var out []Match
		for _, n := range groups {
			name, ok := group(text, loc, n)
			if !ok {
				if n == groups[0] {
					// the primary group is optional for bare endblock tags
					bare := position.NewBasicPosition("", full.End())
					out = append(out, Match{Full: full, Name: bare, Chain: bare})
				}
				continue
			}
			out = append(out, Match{Full: full, Name: name, Chain: name})
		}
		return out
	}
}

func wholeMatch(_ string, full position.RawPosition, _ []int) []Match {
	return []Match{{Full: full, Chain: full}}
}

// chainedName keeps the leading identifier as the name and widens Chain over
// the member/index access that follows it.
func chainedName(text string, full position.RawPosition, loc []int) []Match {
	name, _ := group(text, loc, 1)
	chain := name
	if rest, ok := group(text, loc, 2); ok && rest.Length() > 0 {
		chain = position.NewBasicPosition(text[name.Offset:rest.End()], name.Offset)
	}
	return []Match{{Full: full, Name: name, Chain: chain}}
}
