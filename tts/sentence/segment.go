package sentence

import (
	"regexp"
	"unicode"
	"unicode/utf8"
)

// Sentences splits text into contiguous sentence boundaries.
//
// A sentence ends after a run of '.', '!' or '?' that is followed by
// whitespace or the end of the text; the whitespace belongs to the sentence
// it follows. A newline directly followed by an uppercase letter or an
// opening quote also ends a sentence, which catches headings and list items
// without punctuation. Text after the last break is the final sentence.
//
// The result is never empty and always ends at len(text).
func Sentences(text string) []Boundary {
	var out []Boundary
	start, n := 0, len(text)

	for i := 0; i < n; {
		switch c := text[i]; {
		case isTerminal(c):
			j := i
			for j < n && isTerminal(text[j]) {
				j++
			}
			if j < n && !isSpace(text[j]) {
				i = j
				continue
			}
			for j < n && isSpace(text[j]) {
				j++
			}
			out = append(out, Boundary{Start: start, End: j})
			start, i = j, j
		case c == '\n':
			i++
			if opensSentence(text[i:]) {
				out = append(out, Boundary{Start: start, End: i})
				start = i
			}
		default:
			i++
		}
	}

	if start < n || len(out) == 0 {
		out = append(out, Boundary{Start: start, End: n})
	}
	return out
}

var paragraphDelimiter = regexp.MustCompile(`\n\s*\n|\n`)

// Paragraphs splits text on blank lines and single newlines. Delimiter runs
// are not part of any paragraph, except that a delimiter at the very end of
// the text is folded into the last paragraph so the result always ends at
// len(text). Empty paragraphs are dropped. The result is never empty.
func Paragraphs(text string) []Boundary {
	var out []Boundary
	start := 0

	for _, loc := range paragraphDelimiter.FindAllStringIndex(text, -1) {
		if loc[0] > start {
			out = append(out, Boundary{Start: start, End: loc[0]})
		}
		start = loc[1]
	}
	if start < len(text) {
		out = append(out, Boundary{Start: start, End: len(text)})
	}

	if len(out) == 0 {
		return []Boundary{{Start: 0, End: len(text)}}
	}
	out[len(out)-1].End = len(text)
	return out
}

func isTerminal(c byte) bool {
	return c == '.' || c == '!' || c == '?'
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}
	return false
}

// opensSentence reports whether s starts with an uppercase letter or an
// opening quotation mark.
func opensSentence(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	switch r {
	case '"', '\'', '“', '‘':
		return true
	}
	return unicode.IsUpper(r)
}
