package dom

import (
	"slices"
	"sync"

	"github.com/roach88/appdom/internal/fracindex"
)

// CurrentVersion is the schema version of Dom values written by this package.
const CurrentVersion = 1

// Dom is an immutable document: a map of node records, a root id and a
// schema version. Every operation returns a new *Dom and leaves its input
// untouched, so older values stay valid for undo and diffing.
//
// Node records are shared by reference between a Dom and the values derived
// from it. Comparing two records with == tells whether a node changed.
type Dom struct {
	nodes   map[NodeID]*Node
	root    NodeID
	version int

	// The child index is derived from nodes on first use and lives exactly
	// as long as this value.
	indexOnce sync.Once
	index     map[NodeID]map[string][]*Node
}

// FromNodes builds a Dom without checking invariants. Decoders call Verify
// on the result; the patch engine relies on patches being consistent.
func FromNodes(root NodeID, version int, nodes []*Node) *Dom {
	m := make(map[NodeID]*Node, len(nodes))
	for _, n := range nodes {
		m[n.ID] = n
	}
	return &Dom{nodes: m, root: root, version: version}
}

func newDom(root NodeID, version int, nodes map[NodeID]*Node) *Dom {
	return &Dom{nodes: nodes, root: root, version: version}
}

// with returns a copy of d with set inserted or replaced, then unset removed.
// Unchanged records are shared with d.
func (d *Dom) with(set []*Node, unset []NodeID) *Dom {
	nodes := make(map[NodeID]*Node, len(d.nodes)+len(set))
	for id, n := range d.nodes {
		nodes[id] = n
	}
	for _, n := range set {
		nodes[n.ID] = n
	}
	for _, id := range unset {
		delete(nodes, id)
	}
	return newDom(d.root, d.version, nodes)
}

// Root returns the root id.
func (d *Dom) Root() NodeID { return d.root }

// RootNode returns the root record, or nil for an empty Dom.
func (d *Dom) RootNode() *Node { return d.nodes[d.root] }

// Version returns the schema version.
func (d *Dom) Version() int { return d.version }

// Len returns the number of nodes.
func (d *Dom) Len() int { return len(d.nodes) }

// IDs returns every node id in sorted order.
func (d *Dom) IDs() []NodeID {
	ids := make([]NodeID, 0, len(d.nodes))
	for id := range d.nodes {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Nodes returns a copy of the node map. The records themselves are shared.
func (d *Dom) Nodes() map[NodeID]*Node {
	out := make(map[NodeID]*Node, len(d.nodes))
	for id, n := range d.nodes {
		out[id] = n
	}
	return out
}

// Has reports whether id is present.
func (d *Dom) Has(id NodeID) bool {
	_, ok := d.nodes[id]
	return ok
}

// Get returns the node with the given id.
func (d *Dom) Get(id NodeID) (*Node, error) {
	n, ok := d.nodes[id]
	if !ok {
		return nil, notFound(id)
	}
	return n, nil
}

// GetKind returns the node with the given id and checks its kind.
func (d *Dom) GetKind(id NodeID, kind Kind) (*Node, error) {
	n, err := d.Get(id)
	if err != nil {
		return nil, err
	}
	if n.Kind != kind {
		return nil, kindMismatch(id, kind, n.Kind)
	}
	return n, nil
}

// Lookup returns the node with the given id, if present.
func (d *Dom) Lookup(id NodeID) (*Node, bool) {
	n, ok := d.nodes[id]
	return n, ok
}

// LookupKind is Lookup with a kind check. A missing node is (nil, nil).
func (d *Dom) LookupKind(id NodeID, kind Kind) (*Node, error) {
	n, ok := d.nodes[id]
	if !ok {
		return nil, nil
	}
	if n.Kind != kind {
		return nil, kindMismatch(id, kind, n.Kind)
	}
	return n, nil
}

// Parent returns the parent of n, or nil for a root.
func (d *Dom) Parent(n *Node) (*Node, error) {
	if n.ParentID == "" {
		return nil, nil
	}
	return d.Get(n.ParentID)
}

// Ancestors returns the ancestors of n, root first, excluding n. The walk
// stops after Len steps so a corrupt parent chain cannot loop forever.
func (d *Dom) Ancestors(n *Node) []*Node {
	var out []*Node
	cur := n
	for steps := 0; cur.ParentID != "" && steps < len(d.nodes); steps++ {
		p, ok := d.nodes[cur.ParentID]
		if !ok {
			break
		}
		out = append(out, p)
		cur = p
	}
	slices.Reverse(out)
	return out
}

// Descendants returns every node below n in pre-order, excluding n.
// Children are visited by relation name, then by order key.
func (d *Dom) Descendants(n *Node) []*Node {
	var out []*Node
	stack := d.childrenFlat(n.ID)
	slices.Reverse(stack)
	seen := map[NodeID]bool{n.ID: true}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[cur.ID] {
			continue
		}
		seen[cur.ID] = true
		out = append(out, cur)

		kids := d.childrenFlat(cur.ID)
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, kids[i])
		}
	}
	return out
}

// Siblings returns the nodes sharing n's parent and relation, in order,
// excluding n. A root has no siblings.
func (d *Dom) Siblings(n *Node) []*Node {
	if n.ParentID == "" {
		return nil
	}
	group := d.childIndex()[n.ParentID][n.ParentRelation]
	out := make([]*Node, 0, len(group))
	for _, s := range group {
		if s.ID != n.ID {
			out = append(out, s)
		}
	}
	return out
}

// Children returns the children of parent grouped by relation, each group in
// order. The returned map and slices belong to the caller.
func (d *Dom) Children(parent NodeID) map[string][]*Node {
	groups := d.childIndex()[parent]
	out := make(map[string][]*Node, len(groups))
	for rel, kids := range groups {
		out[rel] = slices.Clone(kids)
	}
	return out
}

// ChildrenOf returns the ordered children of parent under relation. A
// relation with no children yields an empty slice.
func (d *Dom) ChildrenOf(parent NodeID, relation string) []*Node {
	kids := d.childIndex()[parent][relation]
	if kids == nil {
		return []*Node{}
	}
	return slices.Clone(kids)
}

// childrenFlat returns all children of parent, relations in name order.
func (d *Dom) childrenFlat(parent NodeID) []*Node {
	groups := d.childIndex()[parent]
	if len(groups) == 0 {
		return nil
	}
	rels := make([]string, 0, len(groups))
	for rel := range groups {
		rels = append(rels, rel)
	}
	slices.Sort(rels)

	var out []*Node
	for _, rel := range rels {
		out = append(out, groups[rel]...)
	}
	return out
}

// childIndex builds the parent -> relation -> ordered children index once.
// The index is read-only after construction and safe for concurrent readers.
func (d *Dom) childIndex() map[NodeID]map[string][]*Node {
	d.indexOnce.Do(func() {
		idx := make(map[NodeID]map[string][]*Node)
		for _, n := range d.nodes {
			if n.ParentID == "" {
				continue
			}
			groups, ok := idx[n.ParentID]
			if !ok {
				groups = make(map[string][]*Node)
				idx[n.ParentID] = groups
			}
			groups[n.ParentRelation] = append(groups[n.ParentRelation], n)
		}
		for _, groups := range idx {
			for _, kids := range groups {
				slices.SortFunc(kids, compareSiblings)
			}
		}
		d.index = idx
	})
	return d.index
}

// compareSiblings orders by order key, then by id so that a corrupt Dom with
// duplicate keys still has a deterministic order.
func compareSiblings(a, b *Node) int {
	if c := fracindex.Compare(a.OrderKey, b.OrderKey); c != 0 {
		return c
	}
	switch {
	case a.ID < b.ID:
		return -1
	case a.ID > b.ID:
		return 1
	}
	return 0
}
