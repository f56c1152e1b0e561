package normalize

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Abbreviation maps a written token to its spoken form.
type Abbreviation struct {
	Token  string // Written form, trailing period included
	Spoken string // Spoken replacement
	Unit   bool   // Only expand directly after a number ("5 kg")
}

// Abbreviations is the English expansion table, applied once in this order.
var Abbreviations = []Abbreviation{
	// Titles
	{Token: "Mr.", Spoken: "Mister"},
	{Token: "Mrs.", Spoken: "Missus"},
	{Token: "Ms.", Spoken: "Miz"},
	{Token: "Dr.", Spoken: "Doctor"},
	{Token: "Prof.", Spoken: "Professor"},
	{Token: "Sr.", Spoken: "Senior"},
	{Token: "Jr.", Spoken: "Junior"},

	// Addresses
	{Token: "St.", Spoken: "Street"},
	{Token: "Ave.", Spoken: "Avenue"},
	{Token: "Blvd.", Spoken: "Boulevard"},
	{Token: "Rd.", Spoken: "Road"},
	{Token: "Apt.", Spoken: "Apartment"},

	// Latin and common
	{Token: "e.g.", Spoken: "for example"},
	{Token: "i.e.", Spoken: "that is"},
	{Token: "etc.", Spoken: "et cetera"},
	{Token: "vs.", Spoken: "versus"},
	{Token: "approx.", Spoken: "approximately"},
	{Token: "cf.", Spoken: "compare"},

	// Time
	{Token: "a.m.", Spoken: "AM"},
	{Token: "p.m.", Spoken: "PM"},

	// Units
	{Token: "kg", Spoken: "kilograms", Unit: true},
	{Token: "km", Spoken: "kilometers", Unit: true},
	{Token: "cm", Spoken: "centimeters", Unit: true},
	{Token: "mm", Spoken: "millimeters", Unit: true},
	{Token: "lbs.", Spoken: "pounds", Unit: true},
	{Token: "lb.", Spoken: "pounds", Unit: true},
	{Token: "oz.", Spoken: "ounces", Unit: true},
	{Token: "ft.", Spoken: "feet", Unit: true},
	{Token: "mph", Spoken: "miles per hour", Unit: true},
	{Token: "hrs.", Spoken: "hours", Unit: true},
	{Token: "min.", Spoken: "minutes", Unit: true},
	{Token: "sec.", Spoken: "seconds", Unit: true},
}

// pattern builds the matcher for a table entry. Only the first letter is
// matched case-insensitively; the rest of the token is literal.
func (a Abbreviation) pattern() *regexp.Regexp {
	first, size := utf8.DecodeRuneInString(a.Token)
	class := "[" + regexp.QuoteMeta(string(unicode.ToUpper(first))+string(unicode.ToLower(first))) + "]"
	expr := class + regexp.QuoteMeta(a.Token[size:])

	last, _ := utf8.DecodeLastRuneInString(a.Token)
	if unicode.IsLetter(last) || unicode.IsDigit(last) {
		expr += `\b`
	}
	if a.Unit {
		return regexp.MustCompile(`(\d) ?` + expr)
	}
	return regexp.MustCompile(`\b` + expr)
}

// rule compiles the entry into a pipeline step.
func (a Abbreviation) rule() func(string) string {
	re := a.pattern()
	if a.Unit {
		repl := "${1} " + a.Spoken
		return func(s string) string { return re.ReplaceAllString(s, repl) }
	}
	return func(s string) string {
		return re.ReplaceAllStringFunc(s, func(match string) string {
			r, _ := utf8.DecodeRuneInString(match)
			if unicode.IsUpper(r) {
				return capitalize(a.Spoken)
			}
			return a.Spoken
		})
	}
}

// expandAbbreviations applies every table entry exactly once, in order.
func expandAbbreviations(table []Abbreviation) func(string) string {
	rules := make([]func(string) string, len(table))
	for i, a := range table {
		rules[i] = a.rule()
	}
	return func(s string) string {
		for _, apply := range rules {
			s = apply(s)
		}
		return s
	}
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return strings.ToUpper(string(r)) + s[size:]
}
