package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/dgnsrekt/readaloud/internal/prefs"
	"github.com/dgnsrekt/readaloud/tts"
	"github.com/dgnsrekt/readaloud/tts/engines"
)

var (
	prefsVoice string
	prefsRate  float64
	prefsPitch float64

	prefsCmd = &cobra.Command{
		Use:     "prefs",
		Short:   "Show the stored voice preferences",
		Long:    paragraph(fmt.Sprintf("\n%s the voice, rate and pitch used when reading. Changes made while reading apply to the next sentence.", keyword("Show"))),
		Example: paragraph("readaloud prefs\nreadaloud prefs set --voice lessac --rate 1.2\nreadaloud prefs reset"),
		Args:    cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			store, err := openPrefs()
			if err != nil {
				return err
			}
			p, err := store.Get(tts.DefaultPreferences())
			if err != nil {
				return err
			}
			voice := p.VoiceName
			if voice == "" {
				voice = "(engine default)"
			}
			fmt.Printf("voice: %s\nrate:  %.2f\npitch: %.2f\nfile:  %s\n", voice, p.Rate, p.Pitch, store.Path())
			return nil
		},
	}

	prefsSetCmd = &cobra.Command{
		Use:   "set",
		Short: "Change the stored voice preferences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			update, err := prefsUpdate(cmd)
			if err != nil {
				return err
			}
			if update.IsEmpty() {
				return errors.New("nothing to set: use --voice, --rate or --pitch")
			}
			store, err := openPrefs()
			if err != nil {
				return err
			}
			if err := store.Set(update); err != nil {
				return err
			}
			fmt.Println("Wrote preferences to:", store.Path())
			return nil
		},
	}

	prefsResetCmd = &cobra.Command{
		Use:   "reset",
		Short: "Forget the stored voice preferences",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			store, err := openPrefs()
			if err != nil {
				return err
			}
			if err := store.Reset(); err != nil {
				return err
			}
			fmt.Println("Preferences reset to defaults.")
			return nil
		},
	}
)

func init() {
	prefsSetCmd.Flags().StringVar(&prefsVoice, "voice", "", "voice name (fuzzy matched, empty for the engine default)")
	prefsSetCmd.Flags().Float64Var(&prefsRate, "rate", 1.0, "speech rate multiplier")
	prefsSetCmd.Flags().Float64Var(&prefsPitch, "pitch", 1.0, "speech pitch (1.0 is normal)")
	prefsCmd.AddCommand(prefsSetCmd, prefsResetCmd)
}

func openPrefs() (*prefs.FileStore, error) {
	path, err := prefsPath()
	if err != nil {
		return nil, err
	}
	return prefs.NewFileStore(path), nil
}

// prefsUpdate collects the flags given to "prefs set". The voice is
// resolved against the voices of the configured engine.
func prefsUpdate(cmd *cobra.Command) (tts.PreferencesUpdate, error) {
	var update tts.PreferencesUpdate
	if cmd.Flags().Changed("voice") {
		name := prefsVoice
		if name != "" {
			cfg, err := tts.LoadConfigFromViper()
			if err != nil {
				return update, err
			}
			selected, err := engines.New(cfg, engines.Options{Logger: log.Default()})
			if err != nil {
				return update, err
			}
			name, err = resolveVoiceName(context.Background(), selected.Engine, prefsVoice)
			if err != nil {
				return update, err
			}
		}
		update.VoiceName = &name
	}
	if cmd.Flags().Changed("rate") {
		if err := validateRate(prefsRate); err != nil {
			return update, err
		}
		update.Rate = &prefsRate
	}
	if cmd.Flags().Changed("pitch") {
		if err := validatePitch(prefsPitch); err != nil {
			return update, err
		}
		update.Pitch = &prefsPitch
	}
	return update, nil
}
