// Package controller provides output adapters for merge progress and
// coverage reports.
package controller

import (
	"os"

	"golang.org/x/term"

	m "covmerge.dev/pkg/covmerge/internal/model"
)

// Report output formats accepted by DisplayReport.
const (
	FormatTable = "table"
	FormatYAML  = "yaml"
)

// UI is the presentation port. Implementations can print plainly or run an
// interactive view; the workflow never cares which.
type UI interface {
	DisplayDocumentMerged(path m.Path)
	DisplaySkippedDocument(path m.Path)
	DisplayMergeSummary(inputs []m.Path, output m.Path)
	DisplayReport(summary *m.Summary, format string) error
}

// IsTTY reports whether f is an interactive terminal.
func IsTTY(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
