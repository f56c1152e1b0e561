package sentence

import (
	"reflect"
	"strings"
	"testing"

	"github.com/dgnsrekt/readaloud/tts/normalize"
)

func texts(text string, bs []Boundary) []string {
	out := make([]string, len(bs))
	for i, b := range bs {
		out[i] = b.Text(text)
	}
	return out
}

func TestSentences(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty", "", []string{""}},
		{"single character", "a", []string{"a"}},
		{"whitespace", "   ", []string{"   "}},
		{"no terminator", "hello world", []string{"hello world"}},
		{"simple", "Hello world. How are you? Fine!", []string{"Hello world. ", "How are you? ", "Fine!"}},
		{"punctuation run", "What?! Really... Yes.", []string{"What?! ", "Really... ", "Yes."}},
		{"trailing whitespace", "One. Two.  ", []string{"One. ", "Two.  "}},
		{"no space after period", "Version 1.5 is out. Get it.", []string{"Version 1.5 is out. ", "Get it."}},
		{"newline before uppercase", "Heading\nBody text", []string{"Heading\n", "Body text"}},
		{"newline before quote", "He said\n\"stop\"", []string{"He said\n", "\"stop\""}},
		{"newline before lowercase", "line one\nline two", []string{"line one\nline two"}},
		{"no letters", "123 456 !!!", []string{"123 456 !!!"}},
		{"only punctuation", "...", []string{"..."}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := texts(tt.input, Sentences(tt.input))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Sentences(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParagraphs(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Boundary
	}{
		{"empty", "", []Boundary{{0, 0}}},
		{"single", "one", []Boundary{{0, 3}}},
		{"blank line", "one\n\ntwo", []Boundary{{0, 3}, {5, 8}}},
		{"single newline", "one\ntwo", []Boundary{{0, 3}, {4, 7}}},
		{"whitespace line", "one\n  \ntwo", []Boundary{{0, 3}, {7, 10}}},
		{"leading delimiter", "\n\none", []Boundary{{2, 5}}},
		{"trailing delimiter", "one\n\n", []Boundary{{0, 5}}},
		{"only newlines", "\n\n\n", []Boundary{{0, 3}}},
		{"adjacent delimiters", "one\n\n\ntwo", []Boundary{{0, 3}, {6, 9}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Paragraphs(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Paragraphs(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

// Every segmentation is non-empty, ordered and ends at the end of the text.
func TestSegmentationShape(t *testing.T) {
	inputs := []string{
		"",
		" ",
		"x",
		"\n",
		"\n\n",
		"Hello. World.",
		"A\nB\nC",
		"Title\n\nFirst paragraph. It has two sentences.\n\nSecond one!\n",
		"no punctuation at all",
		"£€ ñ ü? ok.",
		strings.Repeat("Sentence. ", 50),
	}

	for _, in := range inputs {
		for name, segment := range map[string]func(string) []Boundary{
			"Sentences":  Sentences,
			"Paragraphs": Paragraphs,
		} {
			bs := segment(in)
			if len(bs) == 0 {
				t.Errorf("%s(%q) returned no boundaries", name, in)
				continue
			}
			if last := bs[len(bs)-1].End; last != len(in) {
				t.Errorf("%s(%q) ends at %d, want %d", name, in, last, len(in))
			}
			for i, b := range bs {
				if b.Start > b.End {
					t.Errorf("%s(%q)[%d] = %v, start after end", name, in, i, b)
				}
				if i > 0 && b.Start < bs[i-1].End {
					t.Errorf("%s(%q)[%d] = %v overlaps %v", name, in, i, b, bs[i-1])
				}
				if name == "Sentences" && i > 0 && b.Start != bs[i-1].End {
					t.Errorf("Sentences(%q)[%d] = %v not contiguous with %v", in, i, b, bs[i-1])
				}
			}
		}
	}
}

func TestNormalizedSentences(t *testing.T) {
	text := normalize.Normalize("Dr. Smith went home. He was tired.")
	got := texts(text, Sentences(text))
	want := []string{"Doctor Smith went home. ", "He was tired."}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Sentences() = %q, want %q", got, want)
	}
}
