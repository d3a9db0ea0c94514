// Package locator classifies the structural construct under a cursor.
package locator

import (
	"github.com/walteh/twigls/pkg/pattern"
	"github.com/walteh/twigls/pkg/position"
)

// Result is the single match found at a cursor offset.
type Result struct {
	Kind pattern.Kind
	Name string
	Span position.Span

	// BlockName is the innermost block still open at a parent() call site.
	BlockName    string
	HasBlockName bool
}

// Locate runs the patterns in priority order and returns the first match whose
// name span covers offset, both ends included. It returns nil when nothing
// structural is under the cursor.
func Locate(doc position.Document, offset int) *Result {
	text := doc.Text()

	for _, matcher := range pattern.LocatorOrder {
		for _, m := range matcher.FindAll(text) {
			if m.Chain.Offset > offset {
				break
			}
			if !m.Chain.Contains(offset) {
				continue
			}
			return newResult(doc, m)
		}
	}
	return nil
}

// LocateAt is Locate for a line/character place.
func LocateAt(doc position.Document, place position.Place) *Result {
	return Locate(doc, doc.OffsetAt(place))
}

func newResult(doc position.Document, m pattern.Match) *Result {
	res := &Result{
		Kind: m.Kind,
		Name: m.Name.Text,
		Span: position.NewSpan(doc, m.Chain),
	}
	if m.Kind == pattern.KindParentCall {
		res.BlockName, res.HasBlockName = pattern.EnclosingBlock(doc.Text(), m.Full.Offset)
	}
	return res
}
