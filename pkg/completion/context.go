package completion

import (
	"regexp"

	"github.com/walteh/twigls/pkg/position"
)

// ContextKind says which kind of suggestion applies at the cursor.
type ContextKind int

const (
	ContextNone ContextKind = iota
	ContextTemplatePath
	ContextBlockName
	ContextVariable
	ContextTag
)

func (k ContextKind) String() string {
	switch k {
	case ContextTemplatePath:
		return "template"
	case ContextBlockName:
		return "block"
	case ContextVariable:
		return "variable"
	case ContextTag:
		return "tag"
	}
	return "none"
}

var (
	templatePathContext = regexp.MustCompile(`\{%\s*(?:extends|include)\s+['"]([^'"]*)$`)
	blockNameContext    = regexp.MustCompile(`\{\{\s*block\(\s*['"]([^'"]*)$`)
	variableContext     = regexp.MustCompile(`\{\{\s*([a-zA-Z_][a-zA-Z0-9_]*)$`)
	tagContext          = regexp.MustCompile(`\{%\s*([a-zA-Z]*)$`)
)

// CompletionContext holds information about the completion request context
type CompletionContext struct {
	// LinePrefix is the text of the cursor's line before the cursor.
	LinePrefix string
	Kind       ContextKind
	// Partial is what has been typed of the suggestion so far.
	Partial string
}

// NewCompletionContext inspects the current line up to place.
func NewCompletionContext(doc position.Document, place position.Place) *CompletionContext {
	start := doc.OffsetAt(position.Place{Line: place.Line})
	end := doc.OffsetAt(place)
	prefix := ""
	if end > start {
		prefix = doc.Text()[start:end]
	}
	return DetectContext(prefix)
}

// DetectContext classifies a line prefix. The first matching context wins.
func DetectContext(prefix string) *CompletionContext {
	ctx := &CompletionContext{LinePrefix: prefix}
	for _, c := range []struct {
		kind ContextKind
		re   *regexp.Regexp
	}{
		{ContextTemplatePath, templatePathContext},
		{ContextBlockName, blockNameContext},
		{ContextVariable, variableContext},
		{ContextTag, tagContext},
	} {
		if m := c.re.FindStringSubmatch(prefix); m != nil {
			ctx.Kind = c.kind
			ctx.Partial = m[1]
			return ctx
		}
	}
	return ctx
}
