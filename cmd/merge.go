package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"covmerge.dev/pkg/covmerge/internal/domain"
	m "covmerge.dev/pkg/covmerge/internal/model"
)

// mergeCmd represents the merge command.
var mergeCmd = newMergeCmd()

func newMergeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "merge [files...]",
		Short: "Merge the listed coverage databases",
		Long: `Merge the listed coverage database files into one output database.
Files whose root element is not a coverage database are skipped; the run
fails if no input qualifies.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return workflow.Merge(cmd.Context(), domain.MergeArgs{
				Inputs:   parsePaths(args),
				Output:   m.Path(viper.GetString(outputFlagName)),
				Parallel: viper.GetInt(parallelConfigKey),
			})
		},
	}
}

func init() {
	rootCmd.AddCommand(mergeCmd)
}
