// Package symbols builds the document outline.
package symbols

import (
	"fmt"
	"sort"
	"strings"

	"github.com/walteh/twigls/pkg/pattern"
	"github.com/walteh/twigls/pkg/position"
	"github.com/walteh/twigls/pkg/walker"
)

// Kind uses the LSP SymbolKind numbering.
type Kind int

const (
	KindFile      Kind = 1
	KindModule    Kind = 2
	KindNamespace Kind = 3
	KindClass     Kind = 5
	KindMethod    Kind = 6
	KindVariable  Kind = 13
	KindObject    Kind = 19
)

type Symbol struct {
	Name           string         `json:"name"`
	Detail         string         `json:"detail,omitempty"`
	Kind           Kind           `json:"kind"`
	Range          position.Range `json:"range"`
	SelectionRange position.Range `json:"selectionRange"`
	Children       []Symbol       `json:"children,omitempty"`
}

// DocumentSymbols returns an optional extends entry followed by the Blocks,
// Includes and Variables groups. Empty groups are left out.
func DocumentSymbols(tmpl *walker.Template) []Symbol {
	out := []Symbol{}
	doc := tmpl.Doc
	text := doc.Text()

	if tmpl.Facts.HasExtends && strings.TrimSpace(tmpl.Facts.Extends) != "" {
		if first := pattern.Extends.FindAll(text); len(first) > 0 {
			rng := position.NewSpan(doc, first[0].Full).Range
			out = append(out, Symbol{
				Name:           fmt.Sprintf("extends %q", tmpl.Facts.Extends),
				Detail:         "Template Inheritance",
				Kind:           KindNamespace,
				Range:          rng,
				SelectionRange: rng,
			})
		}
	}

	if blocks := blockSymbols(tmpl); len(blocks) > 0 {
		out = append(out, group("Blocks", fmt.Sprintf("%d block(s)", len(blocks)), KindClass, blocks))
	}
	if includes := includeSymbols(doc); len(includes) > 0 {
		out = append(out, group("Includes", fmt.Sprintf("%d include(s)", len(includes)), KindModule, includes))
	}
	if variables := variableSymbols(tmpl); len(variables) > 0 {
		out = append(out, group("Variables", fmt.Sprintf("%d variable(s)", len(variables)), KindObject, variables))
	}
	return out
}

func group(name, detail string, kind Kind, children []Symbol) Symbol {
	return Symbol{
		Name:           name,
		Detail:         detail,
		Kind:           kind,
		Range:          position.ZeroRange,
		SelectionRange: position.ZeroRange,
		Children:       children,
	}
}

// blockSymbols spans each retained block definition to its matching endblock.
func blockSymbols(tmpl *walker.Template) []Symbol {
	ends := make(map[int]int)
	for _, region := range pattern.BlockRegions(tmpl.Doc.Text()) {
		if region.Close != nil {
			ends[region.Open.Full.Offset] = region.Close.Full.End()
		}
	}

	var out []Symbol
	for _, name := range tmpl.Facts.BlockNames() {
		span := tmpl.Facts.Blocks[name]
		rng := span.Range
		if end, ok := ends[span.Offset]; ok {
			rng.End = tmpl.Doc.PositionAt(end)
		}
		out = append(out, Symbol{
			Name:           name,
			Detail:         "Twig Block",
			Kind:           KindMethod,
			Range:          rng,
			SelectionRange: span.Range,
		})
	}
	return out
}

func includeSymbols(doc position.Document) []Symbol {
	var out []Symbol
	for _, m := range pattern.Include.FindAll(doc.Text()) {
		if strings.TrimSpace(m.Name.Text) == "" {
			continue
		}
		rng := position.NewSpan(doc, m.Full).Range
		out = append(out, Symbol{
			Name:           m.Name.Text,
			Detail:         "Included Template",
			Kind:           KindFile,
			Range:          rng,
			SelectionRange: rng,
		})
	}
	return out
}

func variableSymbols(tmpl *walker.Template) []Symbol {
	names := tmpl.Facts.VariableNames()
	out := make([]Symbol, 0, len(names))
	for _, name := range names {
		spans := tmpl.Facts.Variables[name]
		out = append(out, Symbol{
			Name:           name,
			Detail:         fmt.Sprintf("Used %d time(s)", len(spans)),
			Kind:           KindVariable,
			Range:          spans[0].Range,
			SelectionRange: spans[0].Range,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return before(out[i].Range.Start, out[j].Range.Start)
	})
	return out
}

func before(a, b position.Place) bool {
	if a.Line != b.Line {
		return a.Line < b.Line
	}
	return a.Character < b.Character
}
