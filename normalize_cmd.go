package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dgnsrekt/readaloud/tts/normalize"
	"github.com/dgnsrekt/readaloud/tts/sentence"
)

var (
	showSentences  bool
	showParagraphs bool
	showTrace      bool

	normalizeCmd = &cobra.Command{
		Use:     "normalize [FILE|-]",
		Short:   "Print text the way it will be spoken",
		Long:    paragraph(fmt.Sprintf("\n%s the text after URLs, emails, numbers, abbreviations and headings have been rewritten for speech, optionally split into the sentences and paragraphs navigation uses.", keyword("Print"))),
		Example: paragraph("readaloud normalize notes.txt\nreadaloud normalize --sentences README.md\necho 'Dr. Smith paid $1,000.' | readaloud normalize --trace"),
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			piped, err := stdinIsPipe()
			if err != nil {
				return err
			}
			src, _, err := textSource(args, piped)
			if err != nil {
				return err
			}
			text, err := src.Text(cmd.Context())
			if err != nil {
				return err
			}
			return writeNormalized(cmd.OutOrStdout(), text)
		},
	}
)

func init() {
	normalizeCmd.Flags().BoolVarP(&showSentences, "sentences", "s", false, "print one sentence per line")
	normalizeCmd.Flags().BoolVarP(&showParagraphs, "paragraphs", "P", false, "print one paragraph per line")
	normalizeCmd.Flags().BoolVar(&showTrace, "trace", false, "print the text after every rewrite rule")
	normalizeCmd.Flags().BoolVarP(&markdown, "markdown", "m", false, "treat the text as markdown")
	normalizeCmd.Flags().BoolVarP(&clipboard, "clipboard", "c", false, "read the clipboard")
	normalizeCmd.MarkFlagsMutuallyExclusive("sentences", "paragraphs")
}

func writeNormalized(w io.Writer, raw string) error {
	var text string
	if showTrace {
		text = normalize.Trace(raw, func(rule, out string) {
			_, _ = fmt.Fprintf(w, "# %s\n%s\n\n", rule, out)
		})
	} else {
		text = normalize.Normalize(raw)
	}

	var units []sentence.Boundary
	switch {
	case showSentences:
		units = sentence.Sentences(text)
	case showParagraphs:
		units = sentence.Paragraphs(text)
	default:
		if showTrace {
			return nil
		}
		_, err := fmt.Fprintln(w, text)
		return err
	}

	for i, b := range units {
		if _, err := fmt.Fprintf(w, "%d\t[%d:%d]\t%q\n", i+1, b.Start, b.End, b.Text(text)); err != nil {
			return err
		}
	}
	return nil
}
