package dom

import (
	"slices"
	"strings"
)

// Patch is the difference between two node maps. Set holds records to
// insert or replace verbatim; Unset holds ids to delete.
type Patch struct {
	Set   []*Node
	Unset []NodeID
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return len(p.Set) == 0 && len(p.Unset) == 0
}

// Len returns the number of entries in the patch.
func (p Patch) Len() int {
	return len(p.Set) + len(p.Unset)
}

// Diff compares node records by pointer. A record that was copied without
// changing any field still counts as changed; operations in this package
// avoid such copies. Both lists are sorted by id.
func Diff(from, to *Dom) Patch {
	return diff(from, to, func(a, b *Node) bool { return a == b })
}

// DiffContent compares records field by field. Use it for documents that
// share no records, such as two decoded files.
func DiffContent(from, to *Dom) Patch {
	return diff(from, to, func(a, b *Node) bool { return a == b || a.Equal(b) })
}

func diff(from, to *Dom, same func(a, b *Node) bool) Patch {
	var p Patch
	for id, n := range to.nodes {
		if old, ok := from.nodes[id]; !ok || !same(old, n) {
			p.Set = append(p.Set, n)
		}
	}
	for id := range from.nodes {
		if _, ok := to.nodes[id]; !ok {
			p.Unset = append(p.Unset, id)
		}
	}
	slices.SortFunc(p.Set, func(a, b *Node) int { return strings.Compare(string(a.ID), string(b.ID)) })
	slices.Sort(p.Unset)
	return p
}

// ApplyPatch inserts every Set record and deletes every Unset id without
// relinking or validation. Root and version are kept from d. An empty patch
// returns d itself.
func ApplyPatch(d *Dom, p Patch) *Dom {
	if p.Empty() {
		return d
	}
	return d.with(p.Set, p.Unset)
}

// Invert returns the patch that undoes p when applied to the result of
// ApplyPatch(base, p).
func (p Patch) Invert(base *Dom) Patch {
	var inv Patch
	for _, n := range p.Set {
		if old, ok := base.nodes[n.ID]; ok {
			inv.Set = append(inv.Set, old)
		} else {
			inv.Unset = append(inv.Unset, n.ID)
		}
	}
	for _, id := range p.Unset {
		if old, ok := base.nodes[id]; ok {
			inv.Set = append(inv.Set, old)
		}
	}
	slices.SortFunc(inv.Set, func(a, b *Node) int { return strings.Compare(string(a.ID), string(b.ID)) })
	slices.Sort(inv.Unset)
	return inv
}
