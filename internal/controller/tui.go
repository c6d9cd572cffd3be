package controller

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	m "covmerge.dev/pkg/covmerge/internal/model"
)

// Lines taken up by title, footer and table chrome around the rows.
const reportChromeLines = 6

var (
	reportTitleStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	reportFooterStyle = lipgloss.NewStyle().Faint(true).Padding(0, 1)
)

// ReportTUI is the interactive coverage report view. Merge progress falls
// back to plain printing; interactivity only pays off when browsing a
// finished summary.
type ReportTUI struct {
	*SimpleUI
	output io.Writer
}

// NewReportTUI wraps a SimpleUI with an interactive report table.
func NewReportTUI(simple *SimpleUI, output io.Writer) *ReportTUI {
	return &ReportTUI{SimpleUI: simple, output: output}
}

// DisplayReport runs a scrollable table of per-item coverage. Summaries that
// fit the terminal print directly, matching the plain UI.
func (t *ReportTUI) DisplayReport(summary *m.Summary, format string) error {
	if format == FormatYAML {
		return t.SimpleUI.DisplayReport(summary, format)
	}

	rows := summaryRows(summary)

	height := 0
	if f, ok := t.output.(*os.File); ok {
		if _, h, err := term.GetSize(int(f.Fd())); err == nil {
			height = h
		}
	}

	if height == 0 || len(rows) <= height-reportChromeLines {
		return t.SimpleUI.DisplayReport(summary, format)
	}

	model := newReportModel(rows, summary.Percent, height)

	program := tea.NewProgram(model, tea.WithOutput(t.output), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return err
	}

	return nil
}

type reportModel struct {
	table    table.Model
	percent  float64
	quitting bool
}

func newReportModel(rows []table.Row, percent float64, height int) reportModel {
	columns := []table.Column{
		{Title: "Module", Width: 18},
		{Title: "Instance", Width: 18},
		{Title: "Item", Width: 18},
		{Title: "Kind", Width: 6},
		{Title: "Bins", Width: 6},
		{Title: "Hit", Width: 6},
		{Title: "Coverage", Width: 10},
	}

	tbl := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(max(height-reportChromeLines, 3)),
	)

	return reportModel{table: tbl, percent: percent}
}

func (rm reportModel) Init() tea.Cmd {
	return nil
}

func (rm reportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			rm.quitting = true
			return rm, tea.Quit
		}
	case tea.WindowSizeMsg:
		rm.table.SetHeight(max(msg.Height-reportChromeLines, 3))
	}

	var cmd tea.Cmd
	rm.table, cmd = rm.table.Update(msg)

	return rm, cmd
}

func (rm reportModel) View() string {
	if rm.quitting {
		return ""
	}

	title := reportTitleStyle.Render("Coverage report")
	footer := reportFooterStyle.Render(fmt.Sprintf("overall %.2f%%  ·  up/down scroll  ·  q quit", rm.percent))

	return title + "\n" + rm.table.View() + "\n" + footer + "\n"
}

func summaryRows(summary *m.Summary) []table.Row {
	var rows []table.Row

	for _, mod := range summary.Modules {
		for _, inst := range mod.Instances {
			for _, item := range inst.Items {
				rows = append(rows, table.Row{
					mod.Name,
					inst.Name,
					item.Name,
					string(item.Kind),
					fmt.Sprintf("%d", item.BinCount),
					fmt.Sprintf("%d", len(item.Hits)),
					fmt.Sprintf("%.2f%%", item.Percent),
				})
			}
		}
	}

	return rows
}
