package extractor

import (
	"fmt"
	"sort"
	"unicode/utf8"
)

// LineIndex maps byte offsets in a text to line and column numbers.
type LineIndex struct {
	text   string
	starts []int
}

func NewLineIndex(text string) *LineIndex {
	starts := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &LineIndex{text: text, starts: starts}
}

// Position returns the 1-based line and column of offset. Columns count runes.
func (li *LineIndex) Position(offset int) (line, col int) {
	if offset < 0 {
		offset = 0
	}
	if offset > len(li.text) {
		offset = len(li.text)
	}
	idx := sort.Search(len(li.starts), func(i int) bool { return li.starts[i] > offset }) - 1
	return idx + 1, utf8.RuneCountInString(li.text[li.starts[idx]:offset]) + 1
}

// Locate describes the span of value at offset, e.g. "Line 3, Column 8-18".
func (li *LineIndex) Locate(offset int, value string) string {
	line, col := li.Position(offset)
	end := col + utf8.RuneCountInString(value) - 1
	if end < col {
		end = col
	}
	return fmt.Sprintf("Line %d, Column %d-%d", line, col, end)
}
