package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"

	"github.com/dgnsrekt/readaloud/internal/prefs"
	"github.com/dgnsrekt/readaloud/internal/source"
	"github.com/dgnsrekt/readaloud/tts"
	"github.com/dgnsrekt/readaloud/tts/engines"
)

// testPhrase is spoken by "voices --test".
const testPhrase = "This is a test of the text to speech reader."

var testVoice bool

var voicesCmd = &cobra.Command{
	Use:     "voices",
	Short:   "List the English voices of the speech engine",
	Long:    paragraph(fmt.Sprintf("\n%s the English voices the selected engine offers, local voices first. The voice in use is marked with a *.", keyword("List"))),
	Example: paragraph("readaloud voices\nreadaloud voices --engine command --test"),
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer cancel()

		if testVoice {
			r, err := newReader(ctx)
			if err != nil {
				return err
			}
			defer r.Close() //nolint:errcheck
			fmt.Printf("Speaking with the %s engine: %q\n", r.engine.Name, testPhrase)
			return speakAndWait(ctx, r.session, func() {
				r.session.ReadFrom(ctx, source.String(testPhrase))
			})
		}

		cfg, err := tts.LoadConfigFromViper()
		if err != nil {
			return err
		}
		selected, err := engines.New(cfg, engines.Options{Logger: log.Default()})
		if err != nil {
			return err
		}
		lister, ok := selected.Engine.(tts.VoiceLister)
		if !ok {
			fmt.Printf("The %s engine does not list voices.\n", selected.Name)
			return nil
		}
		voices, err := lister.Voices(ctx)
		if err != nil {
			return fmt.Errorf("unable to list voices: %w", err)
		}

		current := storedVoice()
		for _, v := range tts.EnglishVoices(voices) {
			mark := " "
			if v.Name == current {
				mark = "*"
			}
			fmt.Println(mark, v.Label())
		}
		return nil
	},
}

func init() {
	voicesCmd.Flags().BoolVarP(&testVoice, "test", "t", false, "speak a test phrase with the stored preferences")
}

// storedVoice returns the preferred voice name, empty when unset.
func storedVoice() string {
	path, err := prefsPath()
	if err != nil {
		return ""
	}
	p, err := prefs.NewFileStore(path).Get(tts.DefaultPreferences())
	if err != nil {
		return ""
	}
	return p.VoiceName
}

// resolveVoiceName matches query against the English voices of synth. An
// empty query selects the backend default; a synth that cannot list voices
// gets the query as typed.
func resolveVoiceName(ctx context.Context, synth tts.Synthesizer, query string) (string, error) {
	if query == "" {
		return "", nil
	}
	lister, ok := synth.(tts.VoiceLister)
	if !ok {
		return query, nil
	}
	voices, err := lister.Voices(ctx)
	if err != nil {
		log.Warn("unable to list voices, using voice as given", "voice", query, "err", err)
		return query, nil
	}
	v, err := matchVoice(query, tts.EnglishVoices(voices))
	if err != nil {
		return "", err
	}
	if v.Name != query {
		log.Info("matched voice", "query", query, "voice", v.Name)
	}
	return v.Name, nil
}

// matchVoice prefers an exact, case-insensitive name match, then the best
// fuzzy match.
func matchVoice(query string, voices []tts.Voice) (tts.Voice, error) {
	names := make([]string, len(voices))
	for i, v := range voices {
		if strings.EqualFold(v.Name, query) {
			return v, nil
		}
		names[i] = v.Name
	}
	matches := fuzzy.Find(query, names)
	if len(matches) == 0 {
		return tts.Voice{}, fmt.Errorf("%w: %q", tts.ErrVoiceNotFound, query)
	}
	return voices[matches[0].Index], nil
}
