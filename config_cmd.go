package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/charmbracelet/x/editor"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const defaultConfig = `# log debug messages
debug: false
# mouse support (TUI-mode only)
mouse: false
# log file (TUI mode logs to the cache dir when unset)
# log_file: "~/readaloud.log"
# preference file (default: preferences.yml in the user config dir)
# preferences: "~/.config/readaloud/preferences.yml"

tts:
  # speech engine: auto, piper, command or mock
  engine: "auto"
  # language sent with every utterance
  locale: "en-US"

  # restart commands jump back one more unit when repeated within this window
  rapid_repeat_window: "1.5s"
  # fraction of a unit read below which a restart goes to the previous unit
  near_start_threshold: 0.25

  piper:
    binary: "piper"
    model: "en_US-lessac-medium"
    # model_dir: "~/.local/share/piper"
    speaker_id: 0
    sample_rate: 22050
    noise_scale: 0.667
    noise_w: 0.8
    volume: 1.0
    timeout: "30s"
    # piper start-ups allowed per second while navigating quickly
    launches_per_second: 4
    word_update_every: "100ms"

  # espeak-ng, espeak, say or spd-say; empty picks the first one installed
  command:
    # binary: "espeak-ng"
    words_per_minute: 175

  mock:
    word_delay: "250ms"

  # synthesized audio cache (piper only)
  cache:
    enabled: true
    # dir: "~/.cache/readaloud/audio"
    memory_bytes: 67108864
    disk_bytes: 536870912
    ttl: "168h"
    compression_level: 3
`

var configCmd = &cobra.Command{
	Use:     "config",
	Hidden:  false,
	Short:   "Edit the readaloud config file",
	Long:    paragraph(fmt.Sprintf("\n%s the readaloud config file. We’ll use EDITOR to determine which editor to use. If the config file doesn't exist, it will be created.", keyword("Edit"))),
	Example: paragraph("readaloud config\nreadaloud config --config path/to/config.yml"),
	Args:    cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		if err := ensureConfigFile(); err != nil {
			return err
		}

		c, err := editor.Cmd("readaloud", configFile)
		if err != nil {
			return fmt.Errorf("unable to set config file: %w", err)
		}
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		if err := c.Run(); err != nil {
			return fmt.Errorf("unable to run command: %w", err)
		}

		fmt.Println("Wrote config file to:", configFile)
		return nil
	},
}

func ensureConfigFile() error {
	if configFile == "" {
		configFile = viper.GetViper().ConfigFileUsed()
		if err := os.MkdirAll(filepath.Dir(configFile), 0o755); err != nil { //nolint:gosec
			return fmt.Errorf("could not write configuration file: %w", err)
		}
	}

	if ext := path.Ext(configFile); ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("'%s' is not a supported configuration type: use '%s' or '%s'", ext, ".yaml", ".yml")
	}

	if _, err := os.Stat(configFile); errors.Is(err, fs.ErrNotExist) {
		// File doesn't exist yet, create all necessary directories and
		// write the default config file
		if err := os.MkdirAll(filepath.Dir(configFile), 0o700); err != nil {
			return fmt.Errorf("unable create directory: %w", err)
		}

		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("unable to create config file: %w", err)
		}
		defer func() { _ = f.Close() }()

		if _, err := f.WriteString(defaultConfig); err != nil {
			return fmt.Errorf("unable to write config file: %w", err)
		}
	} else if err != nil { // some other error occurred
		return fmt.Errorf("unable to stat config file: %w", err)
	}
	return nil
}
