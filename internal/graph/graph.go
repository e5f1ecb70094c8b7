// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package graph derives a deduplicated node/edge structure from a
// collection of term records.
package graph

import (
	"github.com/pdiddy/termgraph/pkg/types"
)

// Node is one visual vertex. ID and Label are both the source record's
// label; Articles is carried through unchanged.
type Node struct {
	ID       string             `json:"id" yaml:"id"`
	Label    string             `json:"label" yaml:"label"`
	Articles []types.ArticleRef `json:"articles" yaml:"articles"`
}

// Edge is an unordered pair of node IDs. Source and Target keep the
// orientation of the first declaration but carry no direction.
type Edge struct {
	Source string `json:"source" yaml:"source"`
	Target string `json:"target" yaml:"target"`
}

// IsSelfLoop reports whether both endpoints are the same node.
func (e Edge) IsSelfLoop() bool { return e.Source == e.Target }

// Key returns the sorted pair used for unordered identity.
func (e Edge) Key() [2]string { return pairKey(e.Source, e.Target) }

// Data is the aggregate graph. Nodes keep input order.
type Data struct {
	Nodes []Node `json:"nodes" yaml:"nodes"`
	Edges []Edge `json:"edges" yaml:"edges"`

	index map[string]int
}

// BuildOptions adjusts Build.
type BuildOptions struct {
	// DropSelfLoops excludes edges whose endpoints are the same label.
	DropSelfLoops bool
}

// Build converts records into a graph: one node per distinct label, one
// edge per unordered pair of labels related by any record. Relations to
// labels outside records are discarded. Self-loops are kept.
func Build(records []types.TermRecord) *Data {
	return BuildWith(records, BuildOptions{})
}

// BuildWith is Build with options.
func BuildWith(records []types.TermRecord, opts BuildOptions) *Data {
	d := &Data{
		Nodes: make([]Node, 0, len(records)),
		Edges: []Edge{},
		index: make(map[string]int, len(records)),
	}

	for _, r := range records {
		if _, dup := d.index[r.Label]; dup {
			continue
		}
		d.index[r.Label] = len(d.Nodes)
		d.Nodes = append(d.Nodes, Node{ID: r.Label, Label: r.Label, Articles: r.Articles})
	}

	seen := make(map[[2]string]bool)
	for _, r := range records {
		for _, rel := range r.Relations {
			if _, ok := d.index[rel]; !ok {
				continue
			}
			if opts.DropSelfLoops && rel == r.Label {
				continue
			}
			key := pairKey(r.Label, rel)
			if seen[key] {
				continue
			}
			seen[key] = true
			d.Edges = append(d.Edges, Edge{Source: r.Label, Target: rel})
		}
	}

	return d
}

func pairKey(a, b string) [2]string {
	if b < a {
		a, b = b, a
	}
	return [2]string{a, b}
}

// Len returns the number of nodes.
func (d *Data) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Nodes)
}

// Node returns the node with the given ID.
func (d *Data) Node(id string) (Node, bool) {
	if d == nil {
		return Node{}, false
	}
	d.ensureIndex()
	i, ok := d.index[id]
	if !ok {
		return Node{}, false
	}
	return d.Nodes[i], true
}

// Neighbors returns the IDs adjacent to id in edge order, excluding id itself.
func (d *Data) Neighbors(id string) []string {
	if d == nil {
		return nil
	}
	var out []string
	for _, e := range d.Edges {
		switch {
		case e.IsSelfLoop():
		case e.Source == id:
			out = append(out, e.Target)
		case e.Target == id:
			out = append(out, e.Source)
		}
	}
	return out
}

// Degree returns the number of distinct neighbors of id.
func (d *Data) Degree(id string) int {
	return len(d.Neighbors(id))
}

// ensureIndex rebuilds the ID index for Data values decoded from JSON or YAML.
func (d *Data) ensureIndex() {
	if d.index != nil && len(d.index) == len(d.Nodes) {
		return
	}
	d.index = make(map[string]int, len(d.Nodes))
	for i, n := range d.Nodes {
		d.index[n.ID] = i
	}
}
