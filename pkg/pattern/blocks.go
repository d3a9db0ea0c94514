package pattern

import (
	"sort"
)

// BlockRegion pairs a block-open tag with the endblock tag that closes it.
type BlockRegion struct {
	Open Match
	// Close is nil when the block is never terminated.
	Close *Match
}

// Contains reports whether offset lies after the open tag starts and before
// the close tag ends. Unterminated regions extend to the end of the text.
func (r BlockRegion) Contains(offset int) bool {
	if offset < r.Open.Full.Offset {
		return false
	}
	return r.Close == nil || offset < r.Close.Full.End()
}

// BlockRegions pairs every block-open with its endblock by replaying the tags
// in document order on a stack. Stray endblock tags are ignored.
func BlockRegions(text string) []BlockRegion {
	tags := append(BlockOpen.FindAll(text), BlockClose.FindAll(text)...)
	sort.SliceStable(tags, func(i, j int) bool {
		return tags[i].Full.Offset < tags[j].Full.Offset
	})

	regions := make([]BlockRegion, 0, len(tags)/2)
	var stack []int
	for _, tag := range tags {
		switch tag.Kind {
		case KindBlock:
			regions = append(regions, BlockRegion{Open: tag})
			stack = append(stack, len(regions)-1)
		case KindBlockEnd:
			if len(stack) == 0 {
				continue
			}
			closing := tag
			regions[stack[len(stack)-1]].Close = &closing
			stack = stack[:len(stack)-1]
		}
	}
	return regions
}

// EnclosingBlock returns the innermost block still open at offset.
func EnclosingBlock(text string, offset int) (string, bool) {
	name := ""
	found := false
	for _, region := range BlockRegions(text) {
		if region.Open.Full.Offset >= offset {
			break
		}
		if region.Close != nil && region.Close.Full.Offset < offset {
			continue
		}
		// later opens that still cover offset are nested deeper
		name = region.Open.Name.Text
		found = true
	}
	return name, found
}
