package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/dgnsrekt/readaloud/internal/cache"
	"github.com/dgnsrekt/readaloud/tts"
)

var (
	cacheCmd = &cobra.Command{
		Use:     "cache",
		Short:   "Show the synthesized audio cache",
		Long:    paragraph(fmt.Sprintf("\n%s where synthesized audio is kept and how much room it takes.", keyword("Show"))),
		Example: paragraph("readaloud cache\nreadaloud cache clear"),
		Args:    cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			m, err := cacheFromConfig()
			if err != nil {
				return err
			}
			defer m.Close() //nolint:errcheck

			fmt.Println("dir:", m.Dir())
			for _, s := range m.Stats() {
				if s.Level != cache.LevelDisk {
					continue
				}
				fmt.Println(formatStats(s))
			}
			return nil
		},
	}

	cacheClearCmd = &cobra.Command{
		Use:   "clear",
		Short: "Delete all cached audio",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			m, err := cacheFromConfig()
			if err != nil {
				return err
			}
			defer m.Close() //nolint:errcheck

			if err := m.Clear(); err != nil {
				return fmt.Errorf("unable to clear cache: %w", err)
			}
			fmt.Println("Cleared", m.Dir())
			return nil
		},
	}
)

func init() {
	cacheCmd.AddCommand(cacheClearCmd)
}

func cacheFromConfig() (*cache.Manager, error) {
	cfg, err := tts.LoadConfigFromViper()
	if err != nil {
		return nil, err
	}
	return openCache(cfg.Cache)
}

// formatStats renders a level as "disk: 3 clips, 1.2 MB of 512 MB".
func formatStats(s cache.Stats) string {
	clips := "clips"
	if s.Items == 1 {
		clips = "clip"
	}
	return fmt.Sprintf("%s: %s %s, %s of %s",
		s.Level,
		humanize.Comma(s.Items),
		clips,
		humanize.Bytes(uint64(max(s.Size, 0))),     //nolint:gosec
		humanize.Bytes(uint64(max(s.Capacity, 0))), //nolint:gosec
	)
}
