package sentence

import (
	"unicode"
	"unicode/utf8"
)

// WordStarts returns the byte offset of the first rune of every
// whitespace-separated word in text.
func WordStarts(text string) []int {
	var starts []int
	inWord := false
	for i, r := range text {
		space := unicode.IsSpace(r)
		if !space && !inWord {
			starts = append(starts, i)
		}
		inWord = !space
	}
	return starts
}

// WordAt returns the start of the word that byte fraction frac of the way
// through text falls in. Backends that only know playback progress use it
// to estimate word events.
func WordAt(text string, starts []int, frac float64) int {
	if len(starts) == 0 {
		return 0
	}
	if frac <= 0 {
		return starts[0]
	}
	if frac >= 1 {
		return starts[len(starts)-1]
	}
	pos := int(frac * float64(utf8.RuneCountInString(text)))
	// Convert the rune position to a byte offset.
	byteOff := 0
	for n := 0; n < pos && byteOff < len(text); n++ {
		_, size := utf8.DecodeRuneInString(text[byteOff:])
		byteOff += size
	}
	w := starts[0]
	for _, s := range starts {
		if s > byteOff {
			break
		}
		w = s
	}
	return w
}
