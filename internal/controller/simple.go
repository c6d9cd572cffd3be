package controller

import (
	"bytes"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	m "covmerge.dev/pkg/covmerge/internal/model"
)

var (
	fullCoverage    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	partialCoverage = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	noCoverage      = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// SimpleUI prints through the cobra command so tests can capture output.
type SimpleUI struct {
	cmd   *cobra.Command
	color bool
}

// NewSimpleUI creates a SimpleUI. Percentage coloring is applied only when
// color is true (i.e. the output is a terminal).
func NewSimpleUI(cmd *cobra.Command, color bool) *SimpleUI {
	return &SimpleUI{cmd: cmd, color: color}
}

// DisplayDocumentMerged reports one input folded into the accumulator.
func (s *SimpleUI) DisplayDocumentMerged(path m.Path) {
	s.cmd.Printf("merged %s\n", path)
}

// DisplaySkippedDocument reports an input that is not a coverage database.
func (s *SimpleUI) DisplaySkippedDocument(path m.Path) {
	s.cmd.Printf("skipped %s (not a coverage database)\n", path)
}

// DisplayMergeSummary reports the finished run.
func (s *SimpleUI) DisplayMergeSummary(inputs []m.Path, output m.Path) {
	s.cmd.Printf("\nMerged %d coverage database(s) into %s\n", len(inputs), output)

	for _, path := range inputs {
		s.cmd.Printf("  %s\n", path)
	}
}

// DisplayReport renders the coverage roll-up as a table, or as YAML for
// machine consumption.
func (s *SimpleUI) DisplayReport(summary *m.Summary, format string) error {
	switch format {
	case FormatYAML:
		data, err := yaml.Marshal(summary)
		if err != nil {
			return err
		}

		s.cmd.Print(string(data))

		return nil
	case FormatTable, "":
		s.cmd.Print(renderSummaryTable(summary, s.percent))
		return nil
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
}

func (s *SimpleUI) percent(value float64) string {
	text := fmt.Sprintf("%.2f%%", value)
	if !s.color {
		return text
	}

	switch {
	case value >= 100:
		return fullCoverage.Render(text)
	case value > 0:
		return partialCoverage.Render(text)
	default:
		return noCoverage.Render(text)
	}
}

func renderSummaryTable(summary *m.Summary, percent func(float64) string) string {
	var buf bytes.Buffer

	table := tablewriter.NewWriter(&buf)
	table.SetHeader([]string{"Module", "Instance", "Item", "Kind", "Weight", "Bins", "Hit", "Coverage"})
	table.SetBorder(false)
	table.SetCenterSeparator("")

	for _, mod := range summary.Modules {
		for _, inst := range mod.Instances {
			for _, item := range inst.Items {
				table.Append([]string{
					mod.Name,
					inst.Name,
					item.Name,
					string(item.Kind),
					fmt.Sprintf("%d", item.Weight),
					fmt.Sprintf("%d", item.BinCount),
					fmt.Sprintf("%d", len(item.Hits)),
					percent(item.Percent),
				})
			}

			table.Append([]string{
				mod.Name, inst.Name, "(instance)", "",
				fmt.Sprintf("%d", inst.Weight), "", "",
				percent(inst.Percent),
			})
		}
	}

	table.SetFooter([]string{"Total", "", "", "", "", "", "", percent(summary.Percent)})
	table.Render()

	return buf.String()
}
