package position

import (
	"sort"
	"unicode/utf16"
)

// Document gives read access to the text of one template and converts between
// byte offsets and editor positions.
type Document interface {
	URI() string
	Text() string
	PositionAt(offset int) Place
	OffsetAt(place Place) int
}

var _ Document = (*TextDocument)(nil)

// TextDocument is an immutable Document backed by a string.
type TextDocument struct {
	uri  string
	text string
	// lineStarts holds the byte offset of the first byte of every line
	lineStarts []int
}

func NewTextDocument(uri, text string) *TextDocument {
	starts := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &TextDocument{uri: uri, text: text, lineStarts: starts}
}

func (d *TextDocument) URI() string {
	return d.uri
}

func (d *TextDocument) Text() string {
	return d.text
}

// LineCount returns the number of lines, counting a trailing empty line.
func (d *TextDocument) LineCount() int {
	return len(d.lineStarts)
}

// Line returns the text of a zero-based line without its terminator.
func (d *TextDocument) Line(line int) string {
	if line < 0 || line >= len(d.lineStarts) {
		return ""
	}
	start, end := d.lineBounds(line)
	return d.text[start:end]
}

// PositionAt clamps offset into the document before converting it.
func (d *TextDocument) PositionAt(offset int) Place {
	if offset <= 0 {
		return Place{}
	}
	if offset > len(d.text) {
		offset = len(d.text)
	}

	line := sort.Search(len(d.lineStarts), func(i int) bool {
		return d.lineStarts[i] > offset
	}) - 1

	return Place{
		Line:      line,
		Character: utf16Len(d.text[d.lineStarts[line]:offset]),
	}
}

// OffsetAt clamps place into the document before converting it.
func (d *TextDocument) OffsetAt(place Place) int {
	if place.Line < 0 {
		return 0
	}
	if place.Line >= len(d.lineStarts) {
		return len(d.text)
	}

	start, end := d.lineBounds(place.Line)
	units := 0
	for i, r := range d.text[start:end] {
		if units >= place.Character {
			return start + i
		}
		units += runeUnits(r)
	}
	return end
}

// lineBounds excludes the line terminator, \r\n included.
func (d *TextDocument) lineBounds(line int) (int, int) {
	start := d.lineStarts[line]
	end := len(d.text)
	if line+1 < len(d.lineStarts) {
		end = d.lineStarts[line+1] - 1
	}
	if end > start && d.text[end-1] == '\r' {
		end--
	}
	return start, end
}

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		n += runeUnits(r)
	}
	return n
}

func runeUnits(r rune) int {
	if l := utf16.RuneLen(r); l > 0 {
		return l
	}
	return 1
}
