package dom

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/roach88/appdom/internal/fracindex"
)

// Violation is one broken invariant found by Verify.
type Violation struct {
	NodeID  NodeID
	Message string
}

// String formats the violation for logs and error messages.
func (v Violation) String() string {
	if v.NodeID == "" {
		return v.Message
	}
	return fmt.Sprintf("%s: %s", v.NodeID, v.Message)
}

// Verify checks the structural invariants of d:
//   - exactly one parentless node, the root, and every parent chain reaches it
//   - every parent exists and accepts the child kind under its relation
//   - sibling order keys are valid and distinct
//   - names are unique within each naming scope
//   - record ids, kinds and attributes agree
//
// Naming is only checked when the structure is sound, since scopes are
// derived from it. Violations are sorted by node id.
func Verify(d *Dom) []Violation {
	var out []Violation
	add := func(id NodeID, format string, args ...any) {
		out = append(out, Violation{NodeID: id, Message: fmt.Sprintf(format, args...)})
	}

	root, ok := d.nodes[d.root]
	if !ok {
		add(d.root, "root does not exist")
		return out
	}
	if !root.Detached() {
		add(root.ID, "root has a parent")
	}

	ids := d.IDs()
	for _, id := range ids {
		n := d.nodes[id]
		if n == nil {
			add(id, "nil record")
			continue
		}
		if n.ID != id {
			add(id, "record id %q does not match its key", n.ID)
		}
		if !n.Kind.Valid() {
			add(id, "unknown kind %q", n.Kind)
			continue
		}
		if n.Attributes == nil || n.Attributes.Kind() != n.Kind {
			add(id, "attributes do not match kind %s", n.Kind)
		}
		if err := checkFields(n.Kind, id, n.Props, n.Params, n.Layout); err != nil {
			add(id, "%s", err.(*Error).Message)
		}

		if id == d.root {
			continue
		}
		if n.Detached() {
			add(id, "node has no parent but is not the root")
			continue
		}
		parent, ok := d.nodes[n.ParentID]
		if !ok {
			add(id, "parent %s does not exist", n.ParentID)
			continue
		}
		if parent.Kind.Valid() && !Accepts(parent.Kind, n.ParentRelation, n.Kind) {
			add(id, "%s.%s cannot hold %s", parent.Kind, n.ParentRelation, n.Kind)
		}
		if err := fracindex.Validate(n.OrderKey); err != nil {
			add(id, "order key: %v", err)
		}
		if !d.reachesRoot(n) {
			add(id, "parent chain does not reach the root")
		}
	}

	idx := d.childIndex()
	for _, parentID := range sortedKeys(idx) {
		groups := idx[parentID]
		for _, rel := range sortedKeys(groups) {
			kids := groups[rel]
			for i := 1; i < len(kids); i++ {
				if kids[i].OrderKey == kids[i-1].OrderKey {
					add(kids[i].ID, "order key %q duplicates sibling %s", kids[i].OrderKey, kids[i-1].ID)
				}
			}
		}
	}

	if len(out) == 0 {
		seen := make(map[string]NodeID)
		for _, id := range ids {
			n := d.nodes[id]
			key := d.scopeKey(n) + "\x00" + n.Name
			if other, dup := seen[key]; dup {
				add(id, "name %q already used by %s", n.Name, other)
				continue
			}
			seen[key] = id
		}
	}

	slices.SortStableFunc(out, func(a, b Violation) int {
		return cmp.Compare(a.NodeID, b.NodeID)
	})
	return out
}

// reachesRoot walks parent links from n for at most Len steps.
func (d *Dom) reachesRoot(n *Node) bool {
	cur := n
	for steps := 0; steps <= len(d.nodes); steps++ {
		if cur.ID == d.root {
			return true
		}
		p, ok := d.nodes[cur.ParentID]
		if !ok {
			return false
		}
		cur = p
	}
	return false
}

func sortedKeys[K cmp.Ordered, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
