package position

import (
	"fmt"
)

// Place is a zero-based line/character pair. Characters count UTF-16 code units.
type Place struct {
	Line      int `json:"line" yaml:"line"`
	Character int `json:"character" yaml:"character"`
}

type Range struct {
	Start Place `json:"start" yaml:"start"`
	End   Place `json:"end" yaml:"end"`
}

// ZeroRange is the empty range at the very start of a document.
var ZeroRange = Range{}

// Location is a range inside a specific document.
type Location struct {
	URI   string `json:"uri" yaml:"uri"`
	Range Range  `json:"range" yaml:"range"`
}

// ZeroLocation points at the start of the document identified by uri.
func ZeroLocation(uri string) Location {
	return Location{URI: uri, Range: ZeroRange}
}

// RawPosition represents a position in the source text
type RawPosition struct {
	// Offset is the byte offset in the source text
	Offset int
	// Text is the actual text at this position
	Text string
}

// ID returns a unique identifier for this position based on offset and text
func (p RawPosition) ID() string {
	return fmt.Sprintf("%s@%d", p.Text, p.Offset)
}

// Length returns the length of the text at this position
func (p RawPosition) Length() int {
	return len(p.Text)
}

// End is the byte offset just past the text.
func (p RawPosition) End() int {
	return p.Offset + p.Length()
}

func NewBasicPosition(text string, offset int) RawPosition {
	return RawPosition{Text: text, Offset: offset}
}

// Contains reports whether offset falls inside the text, both endpoints included.
func (p RawPosition) Contains(offset int) bool {
	return offset >= p.Offset && offset <= p.End()
}

func (p RawPosition) HasRangeOverlapWith(start RawPosition) bool {
	startOffset := start.Offset
	endOffset := start.End()

	posOffset := p.Offset
	posEndOffset := p.End()

	// a zero-length position overlaps if it falls within the other range
	if p.Length() == 0 {
		return posOffset >= startOffset && posOffset <= endOffset
	}
	if start.Length() == 0 {
		return startOffset >= posOffset && startOffset <= posEndOffset
	}

	return startOffset < posEndOffset && endOffset > posOffset
}

func (p RawPosition) String() string {
	return p.ID()
}

// Span is a RawPosition that has been translated to line/character form.
type Span struct {
	RawPosition
	Range Range
}

func NewSpan(doc Document, pos RawPosition) Span {
	return Span{
		RawPosition: pos,
		Range: Range{
			Start: doc.PositionAt(pos.Offset),
			End:   doc.PositionAt(pos.End()),
		},
	}
}

// Location places the span inside doc.
func (s Span) Location(doc Document) Location {
	return Location{URI: doc.URI(), Range: s.Range}
}
