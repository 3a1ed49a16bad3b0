package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/sonido-fx/effects"
	"github.com/RyanBlaney/sonido-fx/logging"
	"github.com/RyanBlaney/sonido-fx/transcode"
)

var (
	effectName string
	outputPath string
	bitDepth   int
)

var applyCmd = &cobra.Command{
	Use:   "apply <input>",
	Short: "Apply a voice effect to an audio file",
	Long: `Decode the input, run it through one effect and write a WAV file.

Without --output the result is written next to the input as
<stem>_<effect>.wav; an existing file is never overwritten, a counter is
appended instead (<stem>_<effect>_1.wav, ...).

Examples:
  sonidofx apply clip.wav --effect echo
  sonidofx apply clip.mp3 -e anonymized -o anon.wav`,
	Args: cobra.ExactArgs(1),
	RunE: runApply,
}

func init() {
	applyCmd.Flags().StringVarP(&effectName, "effect", "e", "", "effect name (see 'sonidofx effects')")
	applyCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output WAV path")
	applyCmd.Flags().IntVar(&bitDepth, "bit-depth", transcode.DefaultBitDepth, "output bit depth: 16, 24 or 32")
	_ = applyCmd.MarkFlagRequired("effect")
}

// applySummary is what apply prints
type applySummary struct {
	Input  string          `json:"input"`
	Output string          `json:"output"`
	Effect string          `json:"effect"`
	Result *effects.Result `json:"result"`
}

func runApply(cmd *cobra.Command, args []string) error {
	input := args[0]
	logger := logging.WithFields(logging.Fields{
		"component": "cli",
		"function":  "apply",
	})

	effect, err := effects.ParseEffect(effectName)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	audio, err := decode(cmd, cfg, input)
	if err != nil {
		return err
	}

	result, err := effects.New(cfg).ApplyEffect(cmd.Context(), audio.PCM, audio.SampleRate, effect)
	if err != nil {
		return err
	}

	dest := outputPath
	if dest == "" {
		dest, err = transcode.UniqueName(transcode.OutputName(input, effect.String()))
		if err != nil {
			return err
		}
	}

	if err := transcode.WriteWAVFile(dest, result.Samples, result.SampleRate, bitDepth); err != nil {
		return err
	}

	logger.Info("Effect written", logging.Fields{
		"input":    input,
		"output":   dest,
		"effect":   effect.String(),
		"fallback": result.Fallback,
	})

	if outputJSON {
		return printJSON(cmd.OutOrStdout(), applySummary{
			Input:  input,
			Output: dest,
			Effect: effect.String(),
			Result: result,
		})
	}

	fmt.Fprintln(cmd.OutOrStdout(), dest)
	if result.Fallback {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", result.Note)
	}
	return nil
}
