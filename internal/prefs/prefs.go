// Package prefs persists voice preferences in a YAML file.
package prefs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	gap "github.com/muesli/go-app-paths"
	"gopkg.in/yaml.v3"

	"github.com/dgnsrekt/readaloud/tts"
)

// FileName is the preference file name inside the config directory.
const FileName = "preferences.yml"

// DefaultPath returns the preference file location in the user config dir.
func DefaultPath() (string, error) {
	scope := gap.NewScope(gap.User, "readaloud")
	dirs, err := scope.ConfigDirs()
	if err != nil {
		return "", fmt.Errorf("could not find config directory: %w", err)
	}
	return filepath.Join(dirs[0], FileName), nil
}

// stored mirrors the file. Absent keys stay nil so defaults can fill them.
type stored struct {
	VoiceName *string  `yaml:"voiceName,omitempty"`
	Rate      *float64 `yaml:"rate,omitempty"`
	Pitch     *float64 `yaml:"pitch,omitempty"`
}

// FileStore implements tts.PreferenceStore on a YAML file.
type FileStore struct {
	path   string
	mu     sync.Mutex
	logger *log.Logger
}

// NewFileStore creates a store for the file at path. The file is created on
// the first Set.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path, logger: log.Default().WithPrefix("prefs")}
}

// Path returns the preference file location.
func (s *FileStore) Path() string { return s.path }

// Get returns the stored preferences, filling absent keys from defaults.
func (s *FileStore) Get(defaults tts.Preferences) (tts.Preferences, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.read()
	if err != nil {
		return defaults, err
	}
	p := tts.PreferencesUpdate{VoiceName: st.VoiceName, Rate: st.Rate, Pitch: st.Pitch}.Apply(defaults)
	if err := p.Validate(); err != nil {
		return defaults, err
	}
	return p, nil
}

// Set merges update into the file. Invalid results are rejected and the
// file is left unchanged.
func (s *FileStore) Set(update tts.PreferencesUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.read()
	if err != nil {
		return err
	}
	if update.VoiceName != nil {
		st.VoiceName = update.VoiceName
	}
	if update.Rate != nil {
		st.Rate = update.Rate
	}
	if update.Pitch != nil {
		st.Pitch = update.Pitch
	}
	merged := tts.PreferencesUpdate{VoiceName: st.VoiceName, Rate: st.Rate, Pitch: st.Pitch}.Apply(tts.DefaultPreferences())
	if err := merged.Validate(); err != nil {
		return err
	}
	return s.write(st)
}

// Reset removes the file, restoring defaults.
func (s *FileStore) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove preferences: %w", err)
	}
	return nil
}

func (s *FileStore) read() (stored, error) {
	var st stored
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return st, nil
	}
	if err != nil {
		return st, fmt.Errorf("failed to read preferences: %w", err)
	}
	if err := yaml.Unmarshal(data, &st); err != nil {
		return st, fmt.Errorf("%w: %s: %v", tts.ErrInvalidPreferences, s.path, err)
	}
	return st, nil
}

func (s *FileStore) write(st stored) error {
	data, err := yaml.Marshal(st)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create preferences directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".preferences-*.yml")
	if err != nil {
		return fmt.Errorf("failed to write preferences: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write preferences: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write preferences: %w", err)
	}
	return os.Rename(tmp.Name(), s.path)
}

// Watch calls fn with the reloaded preferences whenever the file changes,
// until ctx is done. Invalid edits are logged and skipped.
func (s *FileStore) Watch(ctx context.Context, defaults tts.Preferences, fn func(tts.Preferences)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("error creating fsnotify watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory; editors replace files by renaming.
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("error adding dir to fsnotify watcher: %w", err)
	}
	s.logger.Debug("fsnotify watching dir", "dir", dir)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(s.path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) {
				continue
			}
			s.logger.Debug("fsnotify event", "file", event.Name, "event", event.Op)
			p, err := s.Get(defaults)
			if err != nil {
				s.logger.Warn("ignoring invalid preferences", "err", err)
				continue
			}
			fn(p)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Debug("fsnotify error", "dir", dir, "error", err)
		}
	}
}
