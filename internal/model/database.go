// Package model defines the in-memory tree of a UCIS functional-coverage
// database and the identity-keyed lookups the merge engine matches on.
//
// Identity within the tree is semantic, not positional: modules match by
// covergroup type name, instances/coverpoints/crosses/bins by name within
// their parent, and cross bins by their ordered tuple of per-coverpoint bin
// indices. Document order is otherwise irrelevant except for index ordering
// inside a cross bin.
package model

import (
	"encoding/xml"
	"strconv"
	"strings"
)

// Path represents a file system path.
type Path string

// Bin kinds carried in the coverpointBin "type" attribute.
const (
	BinDefault = "default"
	BinIgnore  = "ignore"
	BinIllegal = "illegal"
)

// Database is the root of one coverage run, or the merge accumulator.
// Attributes on the root element are preserved verbatim.
type Database struct {
	XMLName xml.Name   `xml:"UCIS"`
	Attrs   []xml.Attr `xml:",any,attr"`
	Modules []*Module  `xml:"instanceCoverages"`
}

// FindModule returns the covergroup type with the given name, or nil.
func (d *Database) FindModule(name string) *Module {
	for _, mod := range d.Modules {
		if mod.Name == name {
			return mod
		}
	}

	return nil
}

// AppendModule inserts a module subtree as the last child of the root.
func (d *Database) AppendModule(mod *Module) {
	d.Modules = append(d.Modules, mod)
}

// Module is one covergroup type (a reusable coverage model).
type Module struct {
	Name       string      `xml:"moduleName,attr"`
	Attrs      []xml.Attr  `xml:",any,attr"`
	Covergroup *Covergroup `xml:"covergroupCoverage"`
}

// Covergroup groups the instances of one module.
type Covergroup struct {
	Attrs     []xml.Attr  `xml:",any,attr"`
	Instances []*Instance `xml:"cgInstance"`
}

// FindInstance returns the covergroup instance with the given name, or nil.
func (m *Module) FindInstance(name string) *Instance {
	if m.Covergroup == nil {
		return nil
	}

	for _, inst := range m.Covergroup.Instances {
		if inst.Name == name {
			return inst
		}
	}

	return nil
}

// AppendInstance inserts an instance subtree under the module's covergroup.
func (m *Module) AppendInstance(inst *Instance) {
	if m.Covergroup == nil {
		m.Covergroup = &Covergroup{}
	}

	m.Covergroup.Instances = append(m.Covergroup.Instances, inst)
}

// Instance is one instantiation of a module.
type Instance struct {
	Name        string        `xml:"name,attr"`
	Attrs       []xml.Attr    `xml:",any,attr"`
	Options     *Options      `xml:"options"`
	Coverpoints []*Coverpoint `xml:"coverpoint"`
	Crosses     []*Cross      `xml:"cross"`
}

// FindCoverpoint returns the coverpoint with the given name, or nil.
func (i *Instance) FindCoverpoint(name string) *Coverpoint {
	for _, cvp := range i.Coverpoints {
		if cvp.Name == name {
			return cvp
		}
	}

	return nil
}

// FindCross returns the cross with the given name, or nil.
func (i *Instance) FindCross(name string) *Cross {
	for _, cross := range i.Crosses {
		if cross.Name == name {
			return cross
		}
	}

	return nil
}

// Options carries a UCIS options element. Only weight is interpreted by this
// tool; every other attribute is preserved verbatim.
type Options struct {
	WeightAttr string     `xml:"weight,attr,omitempty"`
	Attrs      []xml.Attr `xml:",any,attr"`
}

// Weight parses the weight attribute. A missing or non-numeric weight is a
// MalformedDocumentError, never a silent default.
func (o *Options) Weight() (int, error) {
	if o == nil || o.WeightAttr == "" {
		return 0, &MalformedDocumentError{Attr: "weight"}
	}

	w, err := strconv.Atoi(o.WeightAttr)
	if err != nil {
		return 0, &MalformedDocumentError{Attr: "weight", Value: o.WeightAttr}
	}

	return w, nil
}

// Coverpoint is one scalar coverage axis partitioned into named bins.
type Coverpoint struct {
	Name    string     `xml:"name,attr"`
	Attrs   []xml.Attr `xml:",any,attr"`
	Options *Options   `xml:"options"`
	Bins    []*Bin     `xml:"coverpointBin"`
}

// FindBin returns the bin with the given name, or nil.
func (c *Coverpoint) FindBin(name string) *Bin {
	for _, bin := range c.Bins {
		if bin.Name == name {
			return bin
		}
	}

	return nil
}

// AppendBin inserts a bin as the last child of the coverpoint.
func (c *Coverpoint) AppendBin(bin *Bin) {
	c.Bins = append(c.Bins, bin)
}

// Bin is one named value range of a coverpoint. The alias attribute mirrors
// the bin's total hit count for the FC4SC HTML viewer and must be updated
// together with the canonical per-range counters.
type Bin struct {
	Name   string     `xml:"name,attr"`
	Kind   string     `xml:"type,attr"`
	Alias  string     `xml:"alias,attr,omitempty"`
	Attrs  []xml.Attr `xml:",any,attr"`
	Ranges []*Range   `xml:"range"`
}

// SetAlias writes the viewer-facing hit total.
func (b *Bin) SetAlias(total uint64) {
	b.Alias = strconv.FormatUint(total, 10)
}

// Hits sums the canonical per-range hit counters.
func (b *Bin) Hits() (uint64, error) {
	var total uint64

	for _, r := range b.Ranges {
		n, err := r.Contents.Hits()
		if err != nil {
			return 0, err
		}

		total += n
	}

	return total, nil
}

// Range is one (from,to) interval of a bin with its hit counter.
type Range struct {
	From     string     `xml:"from,attr"`
	To       string     `xml:"to,attr"`
	Attrs    []xml.Attr `xml:",any,attr"`
	Contents Contents   `xml:"contents"`
}

// Bounds parses the numeric interval limits.
func (r *Range) Bounds() (int64, int64, error) {
	from, err := strconv.ParseInt(r.From, 10, 64)
	if err != nil {
		return 0, 0, &MalformedDocumentError{Attr: "from", Value: r.From}
	}

	to, err := strconv.ParseInt(r.To, 10, 64)
	if err != nil {
		return 0, 0, &MalformedDocumentError{Attr: "to", Value: r.To}
	}

	return from, to, nil
}

// Contents holds a hit counter as the coverageCount attribute.
type Contents struct {
	Count string     `xml:"coverageCount,attr"`
	Attrs []xml.Attr `xml:",any,attr"`
}

// Hits parses the hit counter.
func (c *Contents) Hits() (uint64, error) {
	if c.Count == "" {
		return 0, &MalformedDocumentError{Attr: "coverageCount"}
	}

	n, err := strconv.ParseUint(c.Count, 10, 64)
	if err != nil {
		return 0, &MalformedDocumentError{Attr: "coverageCount", Value: c.Count}
	}

	return n, nil
}

// SetHits writes the hit counter back.
func (c *Contents) SetHits(n uint64) {
	c.Count = strconv.FormatUint(n, 10)
}

// Cross is a coverage axis over the Cartesian combination of two or more
// coverpoints. The crossExpr children name the crossed coverpoints in the
// order cross-bin index tuples refer to them.
type Cross struct {
	Name     string      `xml:"name,attr"`
	Attrs    []xml.Attr  `xml:",any,attr"`
	Options  *Options    `xml:"options"`
	Exprs    []CrossExpr `xml:"crossExpr"`
	Bins     []*CrossBin `xml:"crossBin"`
	UserAttr *UserAttr   `xml:"userAttr"`
}

// CoverpointNames returns the crossed coverpoint names in declared order.
func (c *Cross) CoverpointNames() []string {
	names := make([]string, 0, len(c.Exprs))
	for _, expr := range c.Exprs {
		names = append(names, strings.TrimSpace(expr.Text))
	}

	return names
}

// CrossExpr names one crossed coverpoint.
type CrossExpr struct {
	Text string `xml:",chardata"`
}

// UserAttr is an opaque annotation attached to a cross. It is preserved and
// always serialized after the cross bins.
type UserAttr struct {
	Attrs []xml.Attr `xml:",any,attr"`
	Text  string     `xml:",chardata"`
}

// CrossBin is one observed combination of per-coverpoint bin indices. Its
// identity is the index tuple, never the name attribute.
type CrossBin struct {
	Name     string     `xml:"name,attr"`
	Key      string     `xml:"key,attr,omitempty"`
	Kind     string     `xml:"type,attr,omitempty"`
	Attrs    []xml.Attr `xml:",any,attr"`
	Indexes  []Index    `xml:"index"`
	Contents Contents   `xml:"contents"`
}

// Index holds one bin index as element text.
type Index struct {
	Text string `xml:",chardata"`
}

// Tuple parses the per-dimension bin indices in document order.
func (cb *CrossBin) Tuple() (IndexTuple, error) {
	tuple := make(IndexTuple, 0, len(cb.Indexes))

	for _, idx := range cb.Indexes {
		n, err := strconv.Atoi(strings.TrimSpace(idx.Text))
		if err != nil {
			return nil, &MalformedDocumentError{Attr: "index", Value: idx.Text}
		}

		tuple = append(tuple, n)
	}

	return tuple, nil
}

// NewCrossBin synthesizes a cross bin for a tuple with the given hit count,
// shaped the way FC4SC emits them.
func NewCrossBin(tuple IndexTuple, hits uint64) *CrossBin {
	cb := &CrossBin{Name: "", Key: "0", Kind: BinDefault}

	for _, v := range tuple {
		cb.Indexes = append(cb.Indexes, Index{Text: strconv.Itoa(v)})
	}

	cb.Contents.SetHits(hits)

	return cb
}

// IndexTuple is the identity of a cross bin: one bin index per crossed
// coverpoint, in the cross's declared order.
type IndexTuple []int

// Key renders the tuple as a stable map key.
func (t IndexTuple) Key() string {
	parts := make([]string, len(t))
	for i, v := range t {
		parts[i] = strconv.Itoa(v)
	}

	return strings.Join(parts, ",")
}
