package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"covmerge.dev/pkg/covmerge/internal/controller"
	"covmerge.dev/pkg/covmerge/internal/domain"
	m "covmerge.dev/pkg/covmerge/internal/model"
)

var reportFormatFlag string
var reportInteractiveFlag bool

// reportCmd represents the report command.
var reportCmd = newReportCmd()

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report FILE",
		Short: "Show weighted coverage percentages for a database",
		Long: `Compute the weighted hit/miss breakdown and percentage coverage of every
coverpoint and cross in a coverage database, rolled up per instance and per
covergroup type. The database is only read, never modified.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wf := workflow

			if reportInteractiveFlag {
				tui := controller.NewReportTUI(
					controller.NewSimpleUI(cmd.Root(), controller.IsTTY(os.Stdout)),
					os.Stdout,
				)
				wf = domain.NewWorkflow(documentStore, documentFS, tui)
			}

			return wf.Report(cmd.Context(), domain.ReportArgs{
				Input:  m.Path(args[0]),
				Format: viper.GetString(formatConfigKey),
			})
		},
	}

	configureReportFlags(cmd)

	return cmd
}

func configureReportFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&reportFormatFlag, formatFlagName, "f", viper.GetString(formatConfigKey), "report format: table or yaml")
	bindFlagToConfig(cmd.Flags().Lookup(formatFlagName), formatConfigKey)

	cmd.Flags().BoolVarP(&reportInteractiveFlag, interactiveFlagName, "i", false, "browse the report in an interactive table")
}

func init() {
	rootCmd.AddCommand(reportCmd)
}
