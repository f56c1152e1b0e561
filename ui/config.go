package ui

// Config contains TUI-specific configuration.
type Config struct {
	// Title shown in the status bar, usually the file name.
	Title string

	EnableMouse bool

	// For debugging the UI
	HighPerformancePager bool   `env:"READALOUD_HIGH_PERFORMANCE_PAGER" envDefault:"false"`
	HighlightColor       string `env:"READALOUD_HIGHLIGHT_COLOR"        envDefault:"226"`
	Width                int    `env:"READALOUD_WIDTH"                  envDefault:"0"` // 0 wraps at the window width
}
