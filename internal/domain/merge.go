// Package domain implements the hierarchical identity-matching merge engine
// for coverage databases and the read-only percentage roll-up.
package domain

import (
	"fmt"
	"log/slog"

	m "covmerge.dev/pkg/covmerge/internal/model"
)

// Merger folds source coverage databases into a single accumulator. The
// first database of a run is adopted wholesale as the accumulator and every
// later one is merged into it in place.
//
// Per-level policy when a node exists in the source but not the accumulator:
// modules and instances are inserted as whole subtrees, bins are unioned in,
// cross bins join the merged tuple set, and a missing coverpoint or cross is
// a structural mismatch — the accumulator defines the coverage structure.
type Merger struct {
	acc *m.Database
}

// NewMerger wraps the adopted accumulator database.
func NewMerger(acc *m.Database) *Merger {
	return &Merger{acc: acc}
}

// Database returns the accumulator.
func (g *Merger) Database() *m.Database {
	return g.acc
}

// MergeDocument merges one source database into the accumulator. Hit
// counters of matched nodes are summed; counters are never overwritten.
//
// Accumulator nodes are re-resolved from the root through their identity
// path at every level instead of holding node handles across mutations, so
// inserts done for earlier siblings never invalidate the walk.
func (g *Merger) MergeDocument(src *m.Database) error {
	for _, mod := range src.Modules {
		if g.acc.FindModule(mod.Name) == nil {
			slog.Info("new covergroup type", "module", mod.Name)
			g.acc.AppendModule(mod)

			continue
		}

		slog.Debug("merging covergroup type", "module", mod.Name)

		if err := g.mergeModule(mod); err != nil {
			return err
		}
	}

	return nil
}

func (g *Merger) mergeModule(src *m.Module) error {
	if src.Covergroup == nil {
		return nil
	}

	for _, inst := range src.Covergroup.Instances {
		accMod := g.acc.FindModule(src.Name)

		if accMod.FindInstance(inst.Name) == nil {
			slog.Info("new covergroup instance", "module", src.Name, "instance", inst.Name)
			accMod.AppendInstance(inst)

			continue
		}

		slog.Debug("merging covergroup instance", "module", src.Name, "instance", inst.Name)

		if err := g.mergeInstance(src.Name, inst); err != nil {
			return err
		}
	}

	return nil
}

func (g *Merger) mergeInstance(moduleName string, src *m.Instance) error {
	instPath := moduleName + "/" + src.Name

	for _, cvp := range src.Coverpoints {
		path := instPath + "/" + cvp.Name

		acc := g.findInstance(moduleName, src.Name).FindCoverpoint(cvp.Name)
		if acc == nil {
			return &m.StructuralMismatchError{Path: path, Reason: "coverpoint not present in the accumulator"}
		}

		if err := mergeCoverpoint(path, acc, cvp); err != nil {
			return err
		}
	}

	for _, cross := range src.Crosses {
		path := instPath + "/" + cross.Name

		acc := g.findInstance(moduleName, src.Name).FindCross(cross.Name)
		if acc == nil {
			return &m.StructuralMismatchError{Path: path, Reason: "cross not present in the accumulator"}
		}

		if err := mergeCrossBins(path, acc, cross); err != nil {
			return err
		}
	}

	return nil
}

// findInstance re-derives the accumulator instance through its identity path.
func (g *Merger) findInstance(moduleName, instName string) *m.Instance {
	mod := g.acc.FindModule(moduleName)
	if mod == nil {
		return nil
	}

	return mod.FindInstance(instName)
}

func mergeCoverpoint(path string, acc, src *m.Coverpoint) error {
	for _, bin := range src.Bins {
		accBin := acc.FindBin(bin.Name)
		if accBin == nil {
			slog.Debug("new bin", "path", path, "bin", bin.Name)
			acc.AppendBin(bin)

			continue
		}

		if err := mergeBin(path+"/"+bin.Name, accBin, bin); err != nil {
			return err
		}
	}

	return nil
}

// mergeBin validates that two same-named bins describe the same value ranges
// and kind, then sums the per-range hit counters positionally. Ranges are
// never auto-inserted: a range count difference in either direction is a
// structural mismatch. The alias attribute is rewritten to the bin total in
// the same pass, keeping the viewer-facing counter in step with the
// canonical ones.
func mergeBin(path string, acc, src *m.Bin) error {
	if acc.Kind != src.Kind {
		return &m.StructuralMismatchError{
			Path:   path,
			Reason: fmt.Sprintf("bin type differs: %q vs %q", acc.Kind, src.Kind),
		}
	}

	if len(acc.Ranges) != len(src.Ranges) {
		return &m.StructuralMismatchError{
			Path:   path,
			Reason: fmt.Sprintf("bin has %d range(s) in the accumulator but %d in the source", len(acc.Ranges), len(src.Ranges)),
		}
	}

	var total uint64

	for i, srcRange := range src.Ranges {
		accRange := acc.Ranges[i]

		accFrom, accTo, err := accRange.Bounds()
		if err != nil {
			return m.At(err, path)
		}

		srcFrom, srcTo, err := srcRange.Bounds()
		if err != nil {
			return m.At(err, path)
		}

		if accFrom != srcFrom || accTo != srcTo {
			return &m.StructuralMismatchError{
				Path:   path,
				Reason: fmt.Sprintf("range (%d,%d) does not match (%d,%d)", srcFrom, srcTo, accFrom, accTo),
			}
		}

		accHits, err := accRange.Contents.Hits()
		if err != nil {
			return m.At(err, path)
		}

		srcHits, err := srcRange.Contents.Hits()
		if err != nil {
			return m.At(err, path)
		}

		sum := accHits + srcHits
		accRange.Contents.SetHits(sum)
		total += sum
	}

	acc.SetAlias(total)

	slog.Debug("merged bin", "path", path, "kind", acc.Kind, "hits", total)

	return nil
}
