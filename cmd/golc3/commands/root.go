package commands

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "golc3",
	Short: "LC3 audio encoder",
	Long: `golc3 - encode PCM audio with the LC3 low-complexity codec.

The encoder accepts WAV and MP3 input at 8, 16, 24, 32, 44.1 or 48 kHz
and produces .lc3 files or live RTP/websocket streams. Inputs at other
rates can be resampled with --rate.

Examples:
  # Encode at 64 kbit/s per channel, 10 ms frames
  golc3 encode speech.wav -o speech.lc3

  # Fixed frame budget, 7.5 ms frames
  golc3 encode music.mp3 --frame-bytes 120 --duration 7.5ms

  # Inspect an encoded file
  golc3 info speech.lc3

  # Stream over RTP
  golc3 stream music.mp3 --udp 239.0.0.1:5004`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initLogging)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

func initLogging() {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
}
