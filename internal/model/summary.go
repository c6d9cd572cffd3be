package model

// ItemKind distinguishes scalar coverpoints from crosses in a summary.
type ItemKind string

// Summary item kinds.
const (
	ItemPoint ItemKind = "point"
	ItemCross ItemKind = "cross"
)

// ItemSummary is the hit/miss breakdown for one coverpoint or cross. For a
// cross, BinCount is the full Cartesian combination space, not just the
// observed bins.
type ItemSummary struct {
	Name     string   `yaml:"name"`
	Kind     ItemKind `yaml:"kind"`
	Weight   int      `yaml:"weight"`
	BinCount int      `yaml:"bins"`
	Hits     []string `yaml:"hits,omitempty"`
	Misses   []string `yaml:"misses,omitempty"`
	Percent  float64  `yaml:"percent"`
}

// InstanceSummary rolls up one covergroup instance as the weighted average
// of its items' percentages.
type InstanceSummary struct {
	Name    string        `yaml:"name"`
	Weight  int           `yaml:"weight"`
	Percent float64       `yaml:"percent"`
	Items   []ItemSummary `yaml:"items"`
}

// ModuleSummary rolls up one covergroup type across its instances.
type ModuleSummary struct {
	Name      string            `yaml:"module"`
	Weight    int               `yaml:"weight"`
	Percent   float64           `yaml:"percent"`
	Instances []InstanceSummary `yaml:"instances"`
}

// Summary is the read-only coverage roll-up for one database.
type Summary struct {
	Percent float64         `yaml:"percent"`
	Modules []ModuleSummary `yaml:"modules"`
}
