// Package scanner extracts the structural facts of one template document.
package scanner

import (
	"sort"

	"github.com/walteh/twigls/pkg/pattern"
	"github.com/walteh/twigls/pkg/position"
)

// FactSheet is everything Scan found in a single document. It is rebuilt on
// every call and never cached.
type FactSheet struct {
	URI string

	// Extends holds the parent template name. When a document extends more
	// than once the last occurrence wins.
	Extends      string
	HasExtends   bool
	ExtendsSpans []position.Span

	// Includes keeps every include occurrence in document order, duplicates
	// included.
	Includes     []string
	IncludeSpans []position.Span

	// Blocks maps a block name to its defining tag. A redefinition replaces
	// the earlier entry.
	Blocks map[string]position.Span

	// Variables maps a root identifier to every place it is read or bound.
	Variables map[string][]position.Span

	BlockReferences map[string][]position.Span
	ParentCalls     []position.Span

	BlockStarts int
	BlockEnds   int
}

// Scan runs every structural pattern over the text of doc. Malformed or
// partial syntax simply produces fewer facts.
func Scan(doc position.Document) *FactSheet {
	text := doc.Text()

	fs := &FactSheet{
		URI:             doc.URI(),
		Blocks:          make(map[string]position.Span),
		Variables:       make(map[string][]position.Span),
		BlockReferences: make(map[string][]position.Span),
	}

	for _, m := range pattern.Extends.FindAll(text) {
		fs.Extends = m.Name.Text
		fs.HasExtends = true
		fs.ExtendsSpans = append(fs.ExtendsSpans, position.NewSpan(doc, m.Name))
	}

	for _, m := range pattern.Include.FindAll(text) {
		fs.Includes = append(fs.Includes, m.Name.Text)
		fs.IncludeSpans = append(fs.IncludeSpans, position.NewSpan(doc, m.Name))
	}

	opens := pattern.BlockOpen.FindAll(text)
	for _, m := range opens {
		fs.Blocks[m.Name.Text] = position.NewSpan(doc, m.Full)
	}
	fs.BlockStarts = len(opens)
	fs.BlockEnds = len(pattern.BlockClose.FindAll(text))

	for _, m := range pattern.ParentCall.FindAll(text) {
		fs.ParentCalls = append(fs.ParentCalls, position.NewSpan(doc, m.Full))
	}

	for _, m := range pattern.BlockCall.FindAll(text) {
		fs.BlockReferences[m.Name.Text] = append(fs.BlockReferences[m.Name.Text], position.NewSpan(doc, m.Full))
	}

	var bindings []pattern.Match
	for _, matcher := range pattern.Bindings {
		bindings = append(bindings, matcher.FindAll(text)...)
	}
	sort.SliceStable(bindings, func(i, j int) bool {
		return bindings[i].Name.Offset < bindings[j].Name.Offset
	})
	for _, m := range bindings {
		fs.Variables[m.Name.Text] = append(fs.Variables[m.Name.Text], position.NewSpan(doc, m.Name))
	}

	return fs
}

// BlockNames returns the block names ordered by where they are defined.
func (fs *FactSheet) BlockNames() []string {
	return namesBy(fs.Blocks, func(s position.Span) int { return s.Offset })
}

// VariableNames returns the variable names ordered by first occurrence.
func (fs *FactSheet) VariableNames() []string {
	return namesBy(fs.Variables, func(s []position.Span) int { return s[0].Offset })
}

// BlockReferenceNames returns the referenced block names ordered by first call.
func (fs *FactSheet) BlockReferenceNames() []string {
	return namesBy(fs.BlockReferences, func(s []position.Span) int { return s[0].Offset })
}

// HasBlock reports whether the document itself defines name.
func (fs *FactSheet) HasBlock(name string) bool {
	_, ok := fs.Blocks[name]
	return ok
}

func namesBy[V any](m map[string]V, offset func(V) int) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		oi, oj := offset(m[names[i]]), offset(m[names[j]])
		if oi != oj {
			return oi < oj
		}
		return names[i] < names[j]
	})
	return names
}
