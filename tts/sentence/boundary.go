// Package sentence splits speakable text into sentence and paragraph
// boundaries and maps character offsets back onto them.
//
// Offsets are byte offsets into the text that was segmented.
package sentence

import "sort"

// Boundary is a half-open byte range [Start, End) of one unit of text.
type Boundary struct {
	Start int
	End   int
}

// Len returns the number of bytes in the boundary.
func (b Boundary) Len() int {
	return b.End - b.Start
}

// Contains reports whether offset falls inside the boundary.
func (b Boundary) Contains(offset int) bool {
	return offset >= b.Start && offset < b.End
}

// Text returns the slice of text covered by b, clamped to the text.
func (b Boundary) Text(text string) string {
	start, end := clamp(b.Start, 0, len(text)), clamp(b.End, 0, len(text))
	if start >= end {
		return ""
	}
	return text[start:end]
}

// Locate returns the index of the first boundary containing offset. When no
// boundary contains it, for instance at the end of the text or inside a
// paragraph gap, Locate falls back to 0.
func Locate(boundaries []Boundary, offset int) int {
	// Ends are non-decreasing, so the first end past offset is the only
	// candidate.
	i := sort.Search(len(boundaries), func(i int) bool {
		return boundaries[i].End > offset
	})
	if i < len(boundaries) && boundaries[i].Contains(offset) {
		return i
	}
	return 0
}

// PercentRead returns how far offset is through boundaries[index], in [0, 1].
// A zero-length boundary, or an index with no boundary, counts as fully read.
func PercentRead(boundaries []Boundary, index, offset int) float64 {
	if index < 0 || index >= len(boundaries) {
		return 1
	}
	b := boundaries[index]
	if b.Len() <= 0 {
		return 1
	}
	pct := float64(offset-b.Start) / float64(b.Len())
	if pct < 0 {
		return 0
	}
	if pct > 1 {
		return 1
	}
	return pct
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
