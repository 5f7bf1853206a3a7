package dom

import (
	"github.com/roach88/appdom/internal/naming"
)

// Naming scopes:
//   - element, query and mutation names are unique among all such nodes
//     below the nearest enclosing page
//   - every other kind is unique among its siblings (same parent and
//     relation)
//
// A scoped node with no page above it (an element fragment) uses its
// topmost ancestor, or itself, as the scope root.

// scopeRoot returns the node whose subtree forms n's naming scope.
func (d *Dom) scopeRoot(n *Node) *Node {
	ancestors := d.Ancestors(n)
	for i := len(ancestors) - 1; i >= 0; i-- {
		if ancestors[i].Kind == KindPage {
			return ancestors[i]
		}
	}
	if len(ancestors) > 0 {
		return ancestors[0]
	}
	return n
}

// scopeKey identifies n's naming scope. Two nodes share a scope exactly
// when their keys are equal.
func (d *Dom) scopeKey(n *Node) string {
	if scopedKind(n.Kind) {
		return "page:" + string(d.scopeRoot(n).ID)
	}
	return "siblings:" + string(n.ParentID) + "/" + n.ParentRelation
}

// scopeMembers returns the other nodes of n's naming scope.
func (d *Dom) scopeMembers(n *Node) []*Node {
	if !scopedKind(n.Kind) {
		return d.Siblings(n)
	}

	top := d.scopeRoot(n)
	var out []*Node
	if top.Kind == KindPage {
		// Pages do not nest, so every scoped descendant shares the scope.
		for _, m := range d.Descendants(top) {
			if m.ID != n.ID && scopedKind(m.Kind) {
				out = append(out, m)
			}
		}
		return out
	}

	key := d.scopeKey(n)
	candidates := append([]*Node{top}, d.Descendants(top)...)
	for _, m := range candidates {
		if m.ID == n.ID || !scopedKind(m.Kind) {
			continue
		}
		if d.scopeKey(m) == key {
			out = append(out, m)
		}
	}
	return out
}

// scopeNames returns the names used in n's naming scope, excluding n.
func (d *Dom) scopeNames(n *Node) map[string]bool {
	taken := make(map[string]bool)
	for _, m := range d.scopeMembers(n) {
		taken[m.Name] = true
	}
	return taken
}

// settleNames gives each node in order a name unique within its scope,
// keeping the current name when it is free. Nodes later in order do not
// block earlier ones, so a subtree keeps its names when it lands in an
// empty scope.
func settleNames(d *Dom, order []NodeID) *Dom {
	pending := make(map[NodeID]bool, len(order))
	for _, id := range order {
		pending[id] = true
	}

	names := make(map[NodeID]string, len(order))
	var renamed []*Node
	for _, id := range order {
		delete(pending, id)
		n := d.nodes[id]

		taken := make(map[string]bool)
		for _, m := range d.scopeMembers(n) {
			if pending[m.ID] {
				continue
			}
			if name, ok := names[m.ID]; ok {
				taken[name] = true
				continue
			}
			taken[m.Name] = true
		}

		name := naming.Propose(n.Name, taken)
		names[id] = name
		if name != n.Name {
			c := n.clone()
			c.Name = name
			renamed = append(renamed, c)
		}
	}

	if len(renamed) == 0 {
		return d
	}
	return d.with(renamed, nil)
}
