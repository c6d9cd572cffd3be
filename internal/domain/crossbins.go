package domain

import (
	"fmt"
	"log/slog"

	m "covmerge.dev/pkg/covmerge/internal/model"
)

// mergeCrossBins reconciles the combinatorial bins of two same-named crosses.
//
// Cross bins cannot be matched positionally: each document may enumerate a
// different subset of the combination space, in a different order. The
// accumulator's bins are drained into a tuple-keyed hit map, the source's
// bins are folded in on top, and the bin list is rebuilt from the map in
// first-seen order (accumulator tuples first, then newly observed ones) so
// the output stays deterministic.
func mergeCrossBins(path string, acc, src *m.Cross) error {
	if len(src.Bins) == 0 {
		slog.Debug("source cross has no bins, skipping", "path", path)
		return nil
	}

	dims := len(acc.Exprs)

	order := make([]m.IndexTuple, 0, len(acc.Bins)+len(src.Bins))
	hits := make(map[string]uint64, len(acc.Bins)+len(src.Bins))

	fold := func(bins []*m.CrossBin) error {
		for _, cb := range bins {
			tuple, err := cb.Tuple()
			if err != nil {
				return m.At(err, path)
			}

			if len(tuple) != dims {
				return &m.StructuralMismatchError{
					Path:   path,
					Reason: fmt.Sprintf("cross bin has %d indices but the cross spans %d coverpoints", len(tuple), dims),
				}
			}

			count, err := cb.Contents.Hits()
			if err != nil {
				return m.At(err, path)
			}

			key := tuple.Key()
			if _, seen := hits[key]; !seen {
				order = append(order, tuple)
			}

			hits[key] += count
		}

		return nil
	}

	if err := fold(acc.Bins); err != nil {
		return err
	}

	if err := fold(src.Bins); err != nil {
		return err
	}

	rebuilt := make([]*m.CrossBin, 0, len(order))
	for _, tuple := range order {
		rebuilt = append(rebuilt, m.NewCrossBin(tuple, hits[tuple.Key()]))
	}

	// The full set is rebuilt rather than patched in place; the userAttr
	// annotation is a dedicated field on Cross, so it keeps its position
	// after the bins when serialized.
	acc.Bins = rebuilt

	slog.Debug("merged cross bins", "path", path, "tuples", len(rebuilt))

	return nil
}
