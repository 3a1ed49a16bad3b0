package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/sonido-fx/effects/config"
	"github.com/RyanBlaney/sonido-fx/logging"
	"github.com/RyanBlaney/sonido-fx/transcode"
)

var (
	// Global flags
	cfgFile    string
	logLevel   string
	noColor    bool
	outputJSON bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "sonidofx",
	Short: "Voice effect processor",
	Long: `sonidofx transforms recorded speech with one of eight voice effects:
robotic, male, female, baby, cartoon, echo, distorted and anonymized.

Input may be WAV (decoded natively) or any format ffmpeg can read within the
configured extension list. Output is always 16-bit WAV.

Examples:
  # Make a clip sound robotic, writing clip_robotic.wav
  sonidofx apply clip.wav --effect robotic

  # List effects as JSON
  sonidofx effects --json

  # Inspect pitch and levels
  sonidofx analyze clip.mp3
`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogging()
	},
}

// Command returns the root cobra command
func Command() *cobra.Command {
	return rootCmd
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "YAML config file (defaults are used when empty)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored log output")
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "print results as JSON")

	rootCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(effectsCmd)
	rootCmd.AddCommand(analyzeCmd)
}

// loadConfig returns the file config or the defaults
func loadConfig() (*config.PipelineConfig, error) {
	if cfgFile == "" {
		return config.DefaultPipelineConfig(), nil
	}
	return config.Load(cfgFile)
}

// decode reads path as mono PCM. Files other than WAV need ffmpeg, which
// is checked up front for a clearer error.
func decode(cmd *cobra.Command, cfg *config.PipelineConfig, path string) (*transcode.AudioData, error) {
	decoder := transcode.NewDecoder(&cfg.Decoder)
	if err := decoder.ValidateFile(path); err != nil {
		return nil, err
	}

	if !strings.EqualFold(filepath.Ext(path), ".wav") {
		if err := decoder.CheckFFmpeg(); err != nil {
			return nil, fmt.Errorf("cannot decode %s: %w", path, err)
		}
	}

	return decoder.DecodeFileContext(cmd.Context(), path)
}

func setupLogging() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	name := cfg.Logging.Level
	if logLevel != "" {
		name = logLevel
	}
	level, err := logging.ParseLevel(name)
	if err != nil {
		return err
	}

	logger := logging.NewDefaultLogger()
	logger.SetLevel(level)
	logging.SetGlobalLogger(logger)
	if noColor || cfg.Logging.NoColor {
		logging.DisableColors()
	}
	return nil
}

// printJSON writes v as indented JSON
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}
