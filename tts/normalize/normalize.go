package normalize

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Rule is a single named text transformation.
type Rule struct {
	Name  string
	Apply func(string) string
}

// replace builds a rule body from a regular expression and a template.
func replace(pattern, repl string) func(string) string {
	re := regexp.MustCompile(pattern)
	return func(s string) string {
		return re.ReplaceAllString(s, repl)
	}
}

// chain runs several rule bodies left to right.
func chain(fns ...func(string) string) func(string) string {
	return func(s string) string {
		for _, fn := range fns {
			s = fn(s)
		}
		return s
	}
}

// Rules is the normalization pipeline in application order.
var Rules = []Rule{
	{Name: "whitespace", Apply: chain(
		replace(`\r\n?`, "\n"),
		replace(`[ \t\f\v\x{00A0}]+`, " "),
		replace(`\n(?:[ \t]*\n)+`, "\n\n"),
	)},
	{Name: "abbreviations", Apply: expandAbbreviations(Abbreviations)},
	{Name: "links", Apply: chain(rewriteURLs, rewriteEmails)},
	{Name: "symbols", Apply: chain(
		replace(`[ \t]*&[ \t]*`, " and "),
		replace(`\B@(\w+)`, "at $1"),
		replace(`\B#([A-Za-z]\w*)`, "hashtag $1"),
		replace(`\+(\d)`, "plus $1"),
		replace(`(\d)%`, "$1 percent"),
		replace(`\$(\d)`, "dollars $1"),
		replace(`€(\d)`, "euros $1"),
		replace(`£(\d)`, "pounds $1"),
	)},
	{Name: "headings", Apply: punctuateHeadings},
	{Name: "ellipsis", Apply: replace(`\.{3,}`, "...")},
	{Name: "dashes", Apply: chain(
		replace(`[ \t]*[—–][ \t]*`, ", "),
		replace(`[ \t]+--?[ \t]+`, ", "),
	)},
	{Name: "parentheses", Apply: replace(`[ \t]*[()][ \t]*`, ", ")},
	{Name: "quotes", Apply: strings.NewReplacer(
		"“", `"`, "”", `"`, "„", `"`,
		"‘", "'", "’", "'", "‚", "'",
	).Replace},
	{Name: "punctuation", Apply: chain(
		replace(`,(?:[ \t]*,)+`, ","),
		replace(`\.(?:[ \t]+\.)+`, "."),
		replace(`,[ \t]*\.`, "."),
		replace(`(?m)^[ \t]*,[ \t]*`, ""),
	)},
	{Name: "numbers", Apply: chain(
		stripThousands,
		replace(`\b(\d+)/(\d+)\b`, "$1 of $2"),
	)},
	{Name: "trim", Apply: strings.TrimSpace},
}

// Normalize rewrites raw text into speakable text. Blank input yields "".
func Normalize(raw string) string {
	return Trace(raw, nil)
}

// Trace is Normalize with a hook that sees the output of every rule.
func Trace(raw string, fn func(rule, out string)) string {
	s := raw
	for _, r := range Rules {
		s = r.Apply(s)
		if fn != nil {
			fn(r.Name, s)
		}
	}
	return s
}

var (
	urlPattern = regexp.MustCompile(
		`https?://(?:www\.)?([A-Za-z0-9-]+(?:\.[A-Za-z0-9-]+)*)(?::\d+)?` +
			`(?:[/?#](?:[^\s]*[^\s.,;:!?)\]"'])?)?`)
	emailPattern = regexp.MustCompile(
		`([A-Za-z0-9._%+-]+)@([A-Za-z0-9-]+(?:\.[A-Za-z0-9-]+)+)`)
	thousandsPattern = regexp.MustCompile(`\b\d{1,3}(?:,\d{3})+\b`)
)

func spokenDots(s string) string {
	return strings.ReplaceAll(s, ".", " dot ")
}

// rewriteURLs keeps only the host of a link.
func rewriteURLs(s string) string {
	return urlPattern.ReplaceAllStringFunc(s, func(m string) string {
		host := urlPattern.FindStringSubmatch(m)[1]
		return "link to " + spokenDots(host)
	})
}

func rewriteEmails(s string) string {
	return emailPattern.ReplaceAllStringFunc(s, func(m string) string {
		parts := emailPattern.FindStringSubmatch(m)
		return spokenDots(parts[1]) + " at " + spokenDots(parts[2])
	})
}

func stripThousands(s string) string {
	return thousandsPattern.ReplaceAllStringFunc(s, func(m string) string {
		return strings.ReplaceAll(m, ",", "")
	})
}

// punctuateHeadings ends a line with a period when it has no closing
// punctuation and the next non-blank line starts with an uppercase letter.
// Headings and list items then read as sentences of their own.
func punctuateHeadings(s string) string {
	lines := strings.Split(s, "\n")
	if len(lines) == 1 {
		return s
	}

	// next[i] is the first non-blank line after i, or -1.
	next := make([]int, len(lines))
	following := -1
	for i := len(lines) - 1; i >= 0; i-- {
		next[i] = following
		if strings.TrimSpace(lines[i]) != "" {
			following = i
		}
	}

	for i, line := range lines {
		j := next[i]
		if j < 0 {
			break
		}
		trimmed := strings.TrimRight(line, " \t")
		if trimmed == "" || !startsUpper(lines[j]) {
			continue
		}
		last, _ := utf8.DecodeLastRuneInString(trimmed)
		if strings.ContainsRune(".!?:;,", last) {
			continue
		}
		lines[i] = trimmed + "."
	}
	return strings.Join(lines, "\n")
}

func startsUpper(line string) bool {
	r, _ := utf8.DecodeRuneInString(line)
	return unicode.IsUpper(r)
}
