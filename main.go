// Package main provides the entry point for the readaloud CLI application.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/dgnsrekt/readaloud/internal/cache"
	"github.com/dgnsrekt/readaloud/internal/prefs"
	"github.com/dgnsrekt/readaloud/internal/source"
	"github.com/dgnsrekt/readaloud/tts"
	"github.com/dgnsrekt/readaloud/tts/engines"
	"github.com/dgnsrekt/readaloud/tts/normalize"
	"github.com/dgnsrekt/readaloud/ui"
)

const appName = "readaloud"

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile string
	engineName string
	voiceName  string
	rate       float64
	pitch      float64
	clipboard  bool
	markdown   bool
	noTUI      bool
	mouse      bool
	debug      bool
	logFile    string

	rootCmd = &cobra.Command{
		Use:   "readaloud [FILE|-]",
		Short: "Read text aloud in the terminal",
		Long: paragraph(
			fmt.Sprintf("\nRead text aloud, %s as it goes.", keyword("following along sentence by sentence")),
		),
		Example:          paragraph("readaloud notes.txt\ncat article.md | readaloud --markdown\nreadaloud --clipboard --rate 1.3"),
		SilenceErrors:    false,
		SilenceUsage:     true,
		TraverseChildren: true,
		Args:             cobra.MaximumNArgs(1),
		ValidArgsFunction: func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
			return nil, cobra.ShellCompDirectiveDefault
		},
	}
)

func validateOptions(cmd *cobra.Command) error {
	if cmd.Flags().Changed("config") {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("unable to read config file: %w", err)
		}
	}

	// grab config values from Viper
	mouse = viper.GetBool("mouse")
	debug = viper.GetBool("debug")
	if logFile == "" {
		logFile = viper.GetString("log_file")
	}

	if cmd == rootCmd {
		if clipboard && cmd.Flags().NArg() > 0 {
			return errors.New("cannot use both a FILE argument and --clipboard")
		}
		if err := validateRate(rate); cmd.Flags().Changed("rate") && err != nil {
			return err
		}
		if err := validatePitch(pitch); cmd.Flags().Changed("pitch") && err != nil {
			return err
		}
	}

	// The TUI owns the terminal, so only headless runs log to stderr.
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		noTUI = true
	}
	return setupLog(cmd == rootCmd && !noTUI)
}

func validateRate(r float64) error {
	if r < tts.MinRate || r > tts.MaxRate {
		return fmt.Errorf("%w: --rate must be between %.1f and %.1f", tts.ErrInvalidPreferences, tts.MinRate, tts.MaxRate)
	}
	return nil
}

func validatePitch(p float64) error {
	if p < tts.MinPitch || p > tts.MaxPitch {
		return fmt.Errorf("%w: --pitch must be between %.1f and %.1f", tts.ErrInvalidPreferences, tts.MinPitch, tts.MaxPitch)
	}
	return nil
}

// textSource picks where the text comes from: the clipboard, a FILE
// argument, or piped stdin.
func textSource(args []string, stdinPiped bool) (tts.TextSource, string, error) {
	var (
		src   tts.TextSource
		title string
	)
	switch {
	case clipboard:
		src, title = source.NewClipboard(), "clipboard"
	case len(args) == 1:
		src, title = source.File{Path: args[0]}, args[0]
		if args[0] == "-" {
			title = "stdin"
		}
	case stdinPiped:
		src, title = source.File{Path: "-"}, "stdin"
	default:
		return nil, "", fmt.Errorf("%w: pass a FILE, pipe text on stdin or use --clipboard", tts.ErrNothingToRead)
	}

	if markdown || isMarkdownFile(title) {
		src = source.Markdown{Src: src}
	}
	return src, filepath.Base(title), nil
}

func isMarkdownFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".md", ".markdown", ".mdown", ".mkdn":
		return true
	}
	return false
}

func stdinIsPipe() (bool, error) {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false, fmt.Errorf("unable to open file: %w", err)
	}
	if stat.Mode()&os.ModeCharDevice == 0 || stat.Size() > 0 {
		return true, nil
	}
	return false, nil
}

func execute(cmd *cobra.Command, args []string) error {
	piped, err := stdinIsPipe()
	if err != nil {
		return err
	}
	src, title, err := textSource(args, piped)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer cancel()

	text, err := src.Text(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", tts.ErrTextUnavailable, err)
	}
	if normalize.Normalize(text) == "" {
		return tts.ErrNothingToRead
	}

	r, err := newReader(ctx)
	if err != nil {
		return err
	}
	defer r.Close() //nolint:errcheck

	if noTUI {
		return speakAndWait(ctx, r.session, func() { r.session.StartReading(text) })
	}
	return runTUI(r.session, title, text)
}

// reader bundles a session with the collaborators it reads through.
type reader struct {
	session *tts.Session
	engine  engines.Selected
	store   *prefs.FileStore
	cache   *cache.Manager
}

// newReader builds the engine, cache and preference store from the loaded
// configuration. Preference edits made while reading are applied live.
func newReader(ctx context.Context) (*reader, error) {
	cfg, err := tts.LoadConfigFromViper()
	if err != nil {
		return nil, err
	}

	r := &reader{}
	opts := engines.Options{Logger: log.Default()}
	if cfg.Cache.Enabled {
		m, err := openCache(cfg.Cache)
		if err != nil {
			log.Warn("audio cache disabled", "err", err)
		} else {
			r.cache = m
			opts.Cache = m
		}
	}

	r.engine, err = engines.New(cfg, opts)
	if err != nil {
		_ = r.Close()
		return nil, err
	}

	path, err := prefsPath()
	if err != nil {
		_ = r.Close()
		return nil, err
	}
	r.store = prefs.NewFileStore(path)

	update, err := flagPreferences(ctx, r.engine.Engine)
	if err != nil {
		_ = r.Close()
		return nil, err
	}

	r.session = tts.NewSession(r.engine.Engine, cfg.SessionConfig())
	r.session.SetLogger(log.Default().WithPrefix("session"))
	r.session.SetPreferenceStore(overrideStore{PreferenceStore: r.store, update: update})

	go func() {
		err := r.store.Watch(ctx, tts.DefaultPreferences(), func(p tts.Preferences) {
			log.Debug("preferences changed", "voice", p.VoiceName, "rate", p.Rate, "pitch", p.Pitch)
			r.session.SetPreferences(update.Apply(p))
		})
		if err != nil {
			log.Warn("not watching preferences", "err", err)
		}
	}()
	return r, nil
}

// Close stops playback and flushes the cache.
func (r *reader) Close() error {
	if r.session != nil {
		r.session.Stop()
	}
	if r.cache != nil {
		return r.cache.Close()
	}
	return nil
}

// flagPreferences turns --voice, --rate and --pitch into an update that
// applies to this run only.
func flagPreferences(ctx context.Context, synth tts.Synthesizer) (tts.PreferencesUpdate, error) {
	var update tts.PreferencesUpdate
	if rootCmd.Flags().Changed("voice") {
		name, err := resolveVoiceName(ctx, synth, voiceName)
		if err != nil {
			return update, err
		}
		update.VoiceName = &name
	}
	if rootCmd.Flags().Changed("rate") {
		update.Rate = &rate
	}
	if rootCmd.Flags().Changed("pitch") {
		update.Pitch = &pitch
	}
	return update, nil
}

// overrideStore layers a per-run update over the stored preferences.
type overrideStore struct {
	tts.PreferenceStore
	update tts.PreferencesUpdate
}

func (s overrideStore) Get(defaults tts.Preferences) (tts.Preferences, error) {
	p, err := s.PreferenceStore.Get(defaults)
	if err != nil {
		log.Warn("could not load preferences, using defaults", "err", err)
		p = defaults
	}
	return s.update.Apply(p), nil
}

// speakAndWait runs start and blocks until the session stops or ctx is
// done.
func speakAndWait(ctx context.Context, session *tts.Session, start func()) error {
	done := make(chan struct{}, 1)
	session.OnChange(func(snap tts.Snapshot) {
		if snap.State == tts.StateStopped {
			select {
			case done <- struct{}{}:
			default:
			}
		}
	})

	start()
	// start may pass through stopped before speaking; only a stop after it
	// returns ends the wait.
	select {
	case <-done:
	default:
	}
	if session.State() == tts.StateStopped {
		return nil
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		session.Stop()
		return nil
	}
}

func runTUI(session *tts.Session, title, text string) error {
	// Read environment to get debugging stuff
	cfg, err := env.ParseAs[ui.Config]()
	if err != nil {
		return fmt.Errorf("error parsing config: %v", err)
	}
	cfg.Title = title
	cfg.EnableMouse = mouse

	if _, err := ui.NewProgram(cfg, session, text).Run(); err != nil {
		return fmt.Errorf("unable to run tui program: %w", err)
	}
	return nil
}

func openCache(cfg tts.CacheConfig) (*cache.Manager, error) {
	dir := cfg.Dir
	if dir == "" {
		d, err := gap.NewScope(gap.User, appName).CacheDir()
		if err != nil {
			return nil, fmt.Errorf("could not find cache directory: %w", err)
		}
		dir = filepath.Join(d, "audio")
	}
	return cache.NewManager(cache.Options{
		Dir:              dir,
		MemoryBytes:      cfg.MemoryBytes,
		DiskBytes:        cfg.DiskBytes,
		TTL:              cfg.TTL,
		CompressionLevel: cfg.CompressionLevel,
		Logger:           log.Default().WithPrefix("cache"),
	})
}

func prefsPath() (string, error) {
	if p := viper.GetString("preferences"); p != "" {
		return p, nil
	}
	return prefs.DefaultPath()
}

func main() {
	err := rootCmd.Execute()
	_ = closeLog()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	// assigned here to avoid an initialization cycle
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		return validateOptions(cmd)
	}
	rootCmd.RunE = execute
	tryLoadConfigFromDefaultPlaces()
	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", fmt.Sprintf("config file (default %s)", viper.GetViper().ConfigFileUsed()))
	rootCmd.PersistentFlags().StringVarP(&engineName, "engine", "e", "", "speech engine: auto, piper, command or mock")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "log debug messages")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "write logs to this file")
	rootCmd.Flags().StringVar(&voiceName, "voice", "", "voice to read with (fuzzy matched)")
	rootCmd.Flags().Float64VarP(&rate, "rate", "r", 1.0, "speech rate multiplier")
	rootCmd.Flags().Float64VarP(&pitch, "pitch", "p", 1.0, "speech pitch (1.0 is normal)")
	rootCmd.Flags().BoolVarP(&clipboard, "clipboard", "c", false, "read the clipboard")
	rootCmd.Flags().BoolVarP(&markdown, "markdown", "m", false, "treat the text as markdown")
	rootCmd.Flags().BoolVar(&noTUI, "no-tui", false, "read without the interactive view")
	rootCmd.Flags().BoolVar(&mouse, "mouse", false, "enable mouse wheel (TUI-mode only)")
	_ = rootCmd.Flags().MarkHidden("mouse")

	// Config bindings
	_ = viper.BindPFlag("tts.engine", rootCmd.PersistentFlags().Lookup("engine"))
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("log_file", rootCmd.PersistentFlags().Lookup("log-file"))
	_ = viper.BindPFlag("mouse", rootCmd.Flags().Lookup("mouse"))

	tts.SetDefaults()
	viper.SetDefault("debug", false)
	viper.SetDefault("mouse", false)

	rootCmd.AddCommand(configCmd, manCmd, voicesCmd, prefsCmd, cacheCmd, normalizeCmd)
}

func tryLoadConfigFromDefaultPlaces() {
	scope := gap.NewScope(gap.User, appName)
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Println("Could not load find configuration directory.")
		os.Exit(1)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, appName)}, dirs...)
	}

	if c := os.Getenv("READALOUD_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName(appName)
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix(appName)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Warn("Could not parse configuration file", "err", err)
		}
	}

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", used)
		return
	}
	configFile = filepath.Join(dirs[0], appName+".yml")
}
