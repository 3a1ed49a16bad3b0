package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/sonido-fx/effects"
	"github.com/RyanBlaney/sonido-fx/transcode"
)

var effectsCmd = &cobra.Command{
	Use:   "effects",
	Short: "List available effects and input formats",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		infos := effects.Describe()
		if outputJSON {
			return printJSON(cmd.OutOrStdout(), infos)
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		for _, info := range infos {
			fmt.Fprintf(w, "%s\t%s\t%s\n", info.Name, info.Title, info.Description)
		}
		if err := w.Flush(); err != nil {
			return err
		}

		formats := transcode.NewDecoder(&cfg.Decoder).GetSupportedFormats()
		fmt.Fprintf(cmd.OutOrStdout(), "\ninput formats: %s\n", strings.Join(formats, ", "))
		return nil
	},
}
