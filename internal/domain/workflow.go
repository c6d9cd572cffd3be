package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"covmerge.dev/pkg/covmerge/internal/adapter"
	"covmerge.dev/pkg/covmerge/internal/controller"
	m "covmerge.dev/pkg/covmerge/internal/model"
)

// DefaultOutputName is the merged database file name used by scan mode.
const DefaultOutputName = "coverage_merged_db.xml"

// DefaultPattern matches candidate coverage database files during scans.
const DefaultPattern = "*.xml"

// MergeArgs contains the arguments for merging an explicit file list.
type MergeArgs struct {
	Inputs   []m.Path
	Output   m.Path
	Parallel int
}

// ScanArgs contains the arguments for the directory-scan merge mode. Zero
// values fall back to the current directory, *.xml and a default output name
// inside Root.
type ScanArgs struct {
	Root     m.Path
	Output   m.Path
	Pattern  string
	Parallel int
}

// ReportArgs contains the arguments for the coverage report.
type ReportArgs struct {
	Input  m.Path
	Format string
}

// Workflow wires the adapters, the merge engine and the UI together.
type Workflow interface {
	Merge(ctx context.Context, args MergeArgs) error
	Scan(ctx context.Context, args ScanArgs) error
	Report(ctx context.Context, args ReportArgs) error
}

type workflow struct {
	adapter.DocumentStore
	adapter.DocumentFS
	controller.UI
}

// NewWorkflow creates a Workflow instance with the provided dependencies.
func NewWorkflow(store adapter.DocumentStore, fs adapter.DocumentFS, ui controller.UI) Workflow {
	return &workflow{
		DocumentStore: store,
		DocumentFS:    fs,
		UI:            ui,
	}
}

// Merge consolidates the input databases, in input order, into one output
// document. Inputs whose root element is not a coverage database are
// reported skipped and the run continues; a structural error aborts the run
// and nothing is written.
func (w *workflow) Merge(ctx context.Context, args MergeArgs) error {
	logger := slog.With("run_id", uuid.NewString())
	logger.Info("merge run started", "inputs", len(args.Inputs), "output", args.Output)

	docs, err := w.loadAll(ctx, args.Inputs, args.Parallel)
	if err != nil {
		return err
	}

	var merger *Merger

	merged := make([]m.Path, 0, len(args.Inputs))

	for i, doc := range docs {
		path := args.Inputs[i]

		if doc == nil {
			w.DisplaySkippedDocument(path)
			logger.Warn("skipped non-coverage document", "path", path)

			continue
		}

		if merger == nil {
			// The first valid database is adopted wholesale as the accumulator.
			logger.Info("accumulator adopted", "path", path)
			merger = NewMerger(doc)
		} else if err := merger.MergeDocument(doc); err != nil {
			return fmt.Errorf("merge %s: %w", path, err)
		}

		w.DisplayDocumentMerged(path)
		merged = append(merged, path)
	}

	if merger == nil {
		return m.ErrNoInputDocuments
	}

	if err := w.Save(args.Output, merger.Database()); err != nil {
		return err
	}

	w.DisplayMergeSummary(merged, args.Output)
	logger.Info("merge run finished", "merged", len(merged))

	return nil
}

// Scan discovers coverage databases under args.Root and merges them. The
// output file is excluded from the discovered inputs so reruns do not fold
// a previous merge into itself.
func (w *workflow) Scan(ctx context.Context, args ScanArgs) error {
	root := args.Root
	if root == "" {
		root = "."
	}

	pattern := args.Pattern
	if pattern == "" {
		pattern = DefaultPattern
	}

	output := args.Output
	if output == "" {
		output = w.Join(string(root), DefaultOutputName)
	}

	inputs, err := w.FindDocuments(root, pattern, output)
	if err != nil {
		return err
	}

	if len(inputs) == 0 {
		return fmt.Errorf("%w under %s", m.ErrNoInputDocuments, root)
	}

	return w.Merge(ctx, MergeArgs{Inputs: inputs, Output: output, Parallel: args.Parallel})
}

// Report loads one database and hands its coverage roll-up to the UI. Unlike
// merging, an unsupported root is an error here: the caller named the file
// explicitly.
func (w *workflow) Report(ctx context.Context, args ReportArgs) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	doc, err := w.Load(args.Input)
	if err != nil {
		return fmt.Errorf("report %s: %w", args.Input, err)
	}

	summary, err := BuildSummary(doc)
	if err != nil {
		return fmt.Errorf("report %s: %w", args.Input, err)
	}

	return w.DisplayReport(summary, args.Format)
}

// loadAll parses the inputs, in parallel when parallel > 1, slotting results
// by input index so merge order is always input order. Unsupported documents
// leave a nil slot for the caller to report.
func (w *workflow) loadAll(ctx context.Context, inputs []m.Path, parallel int) ([]*m.Database, error) {
	docs := make([]*m.Database, len(inputs))

	group, ctx := errgroup.WithContext(ctx)
	if parallel > 0 {
		group.SetLimit(parallel)
	}

	for i, path := range inputs {
		i, path := i, path
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			doc, err := w.Load(path)
			if errors.Is(err, m.ErrUnsupportedDocument) {
				return nil
			}

			if err != nil {
				return err
			}

			docs[i] = doc

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	return docs, nil
}
