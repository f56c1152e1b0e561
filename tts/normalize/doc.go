// Package normalize rewrites raw text into a form a speech synthesizer reads
// naturally.
//
// Normalization is an ordered pipeline of pure text rules. The order matters:
// whitespace is collapsed before the heading heuristic looks at line ends,
// and URLs and email addresses are rewritten before the generic symbol rules
// get a chance to see their "@" and "." characters.
//
// All rules are English-only. Text in other languages runs through the same
// rules and may come out mangled.
package normalize
