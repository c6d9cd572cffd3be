package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"covmerge.dev/pkg/covmerge/internal/domain"
	m "covmerge.dev/pkg/covmerge/internal/model"
)

var scanPatternFlag string

// scanCmd represents the scan command.
var scanCmd = newScanCmd()

func newScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [dir]",
		Short: "Find and merge coverage databases under a directory",
		Long: `Recursively search a directory (default: the current directory) for
coverage database files and merge them. The output defaults to
` + domain.DefaultOutputName + ` inside the search directory and is excluded
from the discovered inputs.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := m.Path(".")
			if len(args) == 1 {
				root = m.Path(args[0])
			}

			// Only an explicit -o overrides the per-directory default name.
			var output m.Path
			if flag := cmd.Flag(outputFlagName); flag != nil && flag.Changed {
				output = m.Path(viper.GetString(outputFlagName))
			}

			return workflow.Scan(cmd.Context(), domain.ScanArgs{
				Root:     root,
				Output:   output,
				Pattern:  viper.GetString(patternConfigKey),
				Parallel: viper.GetInt(parallelConfigKey),
			})
		},
	}

	configureScanFlags(cmd)

	return cmd
}

func configureScanFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&scanPatternFlag, patternFlagName, viper.GetString(patternConfigKey), "glob matched against candidate file names")
	bindFlagToConfig(cmd.Flags().Lookup(patternFlagName), patternConfigKey)
}

func init() {
	rootCmd.AddCommand(scanCmd)
}
