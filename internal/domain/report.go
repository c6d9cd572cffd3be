package domain

import (
	"fmt"
	"strings"

	m "covmerge.dev/pkg/covmerge/internal/model"
)

// BuildSummary computes the weighted coverage roll-up for one database. It
// only reads the tree; merge state is never touched.
//
// Percentages roll up as the weighted average of children's percentages. A
// missing or non-numeric weight attribute is a malformed document, not a
// silent default.
func BuildSummary(db *m.Database) (*m.Summary, error) {
	summary := &m.Summary{}

	for _, mod := range db.Modules {
		modSummary := m.ModuleSummary{Name: mod.Name, Weight: 1}

		if mod.Covergroup != nil {
			for _, inst := range mod.Covergroup.Instances {
				instSummary, err := buildInstanceSummary(mod.Name, inst)
				if err != nil {
					return nil, err
				}

				modSummary.Instances = append(modSummary.Instances, *instSummary)
			}
		}

		weights := make([]int, len(modSummary.Instances))
		percents := make([]float64, len(modSummary.Instances))

		for i, inst := range modSummary.Instances {
			weights[i] = inst.Weight
			percents[i] = inst.Percent
		}

		pct, err := weightedPercent(mod.Name, weights, percents)
		if err != nil {
			return nil, err
		}

		modSummary.Percent = pct
		summary.Modules = append(summary.Modules, modSummary)
	}

	weights := make([]int, len(summary.Modules))
	percents := make([]float64, len(summary.Modules))

	for i, mod := range summary.Modules {
		weights[i] = mod.Weight
		percents[i] = mod.Percent
	}

	pct, err := weightedPercent("", weights, percents)
	if err != nil {
		return nil, err
	}

	summary.Percent = pct

	return summary, nil
}

func buildInstanceSummary(moduleName string, inst *m.Instance) (*m.InstanceSummary, error) {
	path := moduleName + "/" + inst.Name

	weight, err := inst.Options.Weight()
	if err != nil {
		return nil, m.At(err, path)
	}

	instSummary := &m.InstanceSummary{Name: inst.Name, Weight: weight}

	// Bin names per coverpoint, in document order; cross items resolve their
	// per-dimension bin indices against these lists.
	binNames := make(map[string][]string, len(inst.Coverpoints))

	for _, cvp := range inst.Coverpoints {
		item, names, err := buildCoverpointSummary(path, cvp)
		if err != nil {
			return nil, err
		}

		binNames[cvp.Name] = names
		instSummary.Items = append(instSummary.Items, item)
	}

	for _, cross := range inst.Crosses {
		item, err := buildCrossSummary(path, cross, binNames)
		if err != nil {
			return nil, err
		}

		instSummary.Items = append(instSummary.Items, item)
	}

	weights := make([]int, len(instSummary.Items))
	percents := make([]float64, len(instSummary.Items))

	for i, item := range instSummary.Items {
		weights[i] = item.Weight
		percents[i] = item.Percent
	}

	pct, err := weightedPercent(path, weights, percents)
	if err != nil {
		return nil, err
	}

	instSummary.Percent = pct

	return instSummary, nil
}

func buildCoverpointSummary(parent string, cvp *m.Coverpoint) (m.ItemSummary, []string, error) {
	path := parent + "/" + cvp.Name

	weight, err := cvp.Options.Weight()
	if err != nil {
		return m.ItemSummary{}, nil, m.At(err, path)
	}

	if len(cvp.Bins) == 0 {
		return m.ItemSummary{}, nil, fmt.Errorf("%s: coverpoint has no bins", path)
	}

	item := m.ItemSummary{
		Name:     cvp.Name,
		Kind:     m.ItemPoint,
		Weight:   weight,
		BinCount: len(cvp.Bins),
	}

	names := make([]string, 0, len(cvp.Bins))

	for _, bin := range cvp.Bins {
		names = append(names, bin.Name)

		hits, err := bin.Hits()
		if err != nil {
			return m.ItemSummary{}, nil, m.At(err, path+"/"+bin.Name)
		}

		if hits > 0 {
			item.Hits = append(item.Hits, bin.Name)
		} else {
			item.Misses = append(item.Misses, bin.Name)
		}
	}

	item.Percent = 100 * float64(item.BinCount-len(item.Misses)) / float64(item.BinCount)

	return item, names, nil
}

// buildCrossSummary measures a cross against its full Cartesian combination
// space. This enumeration exists only for the report denominator; the merge
// path never materializes unobserved tuples.
func buildCrossSummary(parent string, cross *m.Cross, binNames map[string][]string) (m.ItemSummary, error) {
	path := parent + "/" + cross.Name

	weight, err := cross.Options.Weight()
	if err != nil {
		return m.ItemSummary{}, m.At(err, path)
	}

	var dims [][]string

	for _, name := range cross.CoverpointNames() {
		names, ok := binNames[name]
		if !ok {
			return m.ItemSummary{}, &m.StructuralMismatchError{
				Path:   path,
				Reason: fmt.Sprintf("cross references unknown coverpoint %q", name),
			}
		}

		dims = append(dims, names)
	}

	if len(dims) == 0 {
		return m.ItemSummary{}, fmt.Errorf("%s: cross declares no coverpoints", path)
	}

	observed := make(map[string]uint64, len(cross.Bins))

	for _, cb := range cross.Bins {
		tuple, err := cb.Tuple()
		if err != nil {
			return m.ItemSummary{}, m.At(err, path)
		}

		if len(tuple) != len(dims) {
			return m.ItemSummary{}, &m.StructuralMismatchError{
				Path:   path,
				Reason: fmt.Sprintf("cross bin has %d indices but the cross spans %d coverpoints", len(tuple), len(dims)),
			}
		}

		hits, err := cb.Contents.Hits()
		if err != nil {
			return m.ItemSummary{}, m.At(err, path)
		}

		observed[tuple.Key()] += hits
	}

	item := m.ItemSummary{Name: cross.Name, Kind: m.ItemCross, Weight: weight}

	// Odometer over the declared dimensions, last dimension fastest. Kept
	// iterative so deep crosses cannot exhaust the stack.
	tuple := make(m.IndexTuple, len(dims))

	for {
		item.BinCount++

		label := crossBinLabel(dims, tuple)
		if observed[tuple.Key()] > 0 {
			item.Hits = append(item.Hits, label)
		} else {
			item.Misses = append(item.Misses, label)
		}

		i := len(tuple) - 1
		for i >= 0 {
			tuple[i]++
			if tuple[i] < len(dims[i]) {
				break
			}

			tuple[i] = 0
			i--
		}

		if i < 0 {
			break
		}
	}

	item.Percent = 100 * float64(item.BinCount-len(item.Misses)) / float64(item.BinCount)

	return item, nil
}

// crossBinLabel names a combination by its per-dimension bin names, last
// dimension first, matching the FC4SC report convention.
func crossBinLabel(dims [][]string, tuple m.IndexTuple) string {
	parts := make([]string, len(tuple))
	for i, idx := range tuple {
		parts[len(tuple)-1-i] = dims[i][idx]
	}

	return strings.Join(parts, " : ")
}

func weightedPercent(path string, weights []int, percents []float64) (float64, error) {
	var (
		total    int
		weighted float64
	)

	for i := range weights {
		total += weights[i]
		weighted += float64(weights[i]) * percents[i]
	}

	if total == 0 {
		if path == "" {
			return 0, fmt.Errorf("no weighted coverage items to roll up")
		}

		return 0, fmt.Errorf("%s: no weighted coverage items to roll up", path)
	}

	return weighted / float64(total), nil
}
