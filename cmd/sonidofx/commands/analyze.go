package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/sonido-fx/algorithms/spectral"
	"github.com/RyanBlaney/sonido-fx/algorithms/temporal"
	"github.com/RyanBlaney/sonido-fx/effects"
	"github.com/RyanBlaney/sonido-fx/transcode"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <input>",
	Short: "Estimate speaker gender and levels of an audio file",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyze,
}

// analysis is what analyze prints
type analysis struct {
	Input      string                   `json:"input"`
	SampleRate int                      `json:"sample_rate"`
	Duration   time.Duration            `json:"duration"`
	Gender     effects.GenderEstimate   `json:"gender"`
	Levels     temporal.LevelStats      `json:"levels"`
	Brightness spectral.Brightness      `json:"brightness"`
	Metadata   *transcode.AudioMetadata `json:"metadata,omitempty"`
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	audio, err := decode(cmd, cfg, args[0])
	if err != nil {
		return err
	}

	report := analysis{
		Input:      args[0],
		SampleRate: audio.SampleRate,
		Duration:   audio.Duration,
		Gender:     effects.New(cfg).EstimateGender(audio.PCM, audio.SampleRate),
		Levels:     temporal.NewDynamicRange().ComputeStatistics(audio.PCM),
		Metadata:   audio.Metadata,
	}

	if len(audio.PCM) > 0 {
		spec, err := spectral.NewSTFT().Forward(audio.PCM, cfg.Spectral.WindowSize, cfg.Spectral.HopSize, audio.SampleRate)
		if err != nil {
			return fmt.Errorf("spectral analysis: %w", err)
		}
		report.Brightness = spectral.MeasureBrightness(spec)
	}

	if outputJSON {
		return printJSON(cmd.OutOrStdout(), report)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "file:        %s\n", report.Input)
	fmt.Fprintf(out, "sample rate: %d Hz\n", report.SampleRate)
	fmt.Fprintf(out, "duration:    %s\n", report.Duration)
	fmt.Fprintf(out, "gender:      %s (mean f0 %.1f Hz, %d voiced frames", report.Gender.Gender, report.Gender.MeanF0, report.Gender.Voiced)
	if report.Gender.Fallback {
		fmt.Fprint(out, ", fallback")
	}
	fmt.Fprintln(out, ")")
	fmt.Fprintf(out, "peak:        %.3f\n", report.Levels.Peak)
	fmt.Fprintf(out, "rms:         %.3f\n", report.Levels.RMS)
	fmt.Fprintf(out, "crest:       %.2f\n", report.Levels.CrestFactor)
	fmt.Fprintf(out, "range:       %.1f dB\n", report.Levels.DynamicRangeDB)
	fmt.Fprintf(out, "centroid:    %.0f Hz\n", report.Brightness.Centroid)
	fmt.Fprintf(out, "rolloff:     %.0f Hz\n", report.Brightness.Rolloff)
	return nil
}
