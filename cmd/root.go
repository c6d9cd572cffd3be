// Package cmd provides the root command and CLI setup for covmerge.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"covmerge.dev/pkg/covmerge/internal/adapter"
	"covmerge.dev/pkg/covmerge/internal/controller"
	"covmerge.dev/pkg/covmerge/internal/domain"
	m "covmerge.dev/pkg/covmerge/internal/model"
)

var documentStore adapter.DocumentStore
var documentFS adapter.DocumentFS
var ui controller.UI
var workflow domain.Workflow

// outputFlag is a root-level flag shared by commands that write the merged
// database.
var outputFlag string

// parallelFlag caps how many input documents are parsed concurrently.
var parallelFlag int

var verboseFlag bool
var logFileFlag string

const rootLongDescription = `covmerge consolidates functional-coverage XML databases produced by
independent test runs into a single database whose hit counts are the sum
across all inputs. Matching is by coverage identity (covergroup type,
instance, coverpoint, bin name, cross-bin index tuple), never by document
position.

It can also report weighted coverage percentages for any database.`

// rootCmd represents the base command when called without any subcommands.
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "covmerge",
		Short: "Merge functional coverage databases",
		Long:  rootLongDescription,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			configureLogger(viper.GetString(logFilenameKey), viper.GetBool(logVerboseKey))
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	configureRootFlags(cmd)

	return cmd
}

func init() {
	// Initialize shared dependencies.
	ui = controller.NewSimpleUI(rootCmd, controller.IsTTY(os.Stdout))
	documentStore = adapter.NewXMLDocumentStore()
	documentFS = adapter.NewLocalDocumentFS()
	workflow = domain.NewWorkflow(documentStore, documentFS, ui)
}

func configureRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().
		StringVarP(
			&outputFlag, outputFlagName, "o",
			viper.GetString(outputFlagName),
			"path of the merged output database",
		)
	bindFlagToConfig(cmd.PersistentFlags().Lookup(outputFlagName), outputFlagName)

	cmd.PersistentFlags().IntVarP(&parallelFlag, parallelFlagName, "p", viper.GetInt(parallelConfigKey), "number of input documents parsed in parallel")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(parallelFlagName), parallelConfigKey)

	cmd.PersistentFlags().BoolVar(&verboseFlag, verboseFlagName, viper.GetBool(logVerboseKey), "log at debug level")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(verboseFlagName), logVerboseKey)

	cmd.PersistentFlags().StringVar(&logFileFlag, logFileFlagName, viper.GetString(logFilenameKey), "log file path")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(logFileFlagName), logFilenameKey)
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func parsePaths(args []string) []m.Path {
	paths := make([]m.Path, 0, len(args))
	for _, arg := range args {
		paths = append(paths, m.Path(arg))
	}

	return paths
}
