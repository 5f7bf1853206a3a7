// Package render derives the view of a Dom that may be handed to an
// untrusted rendering context.
//
// The allow-list in Visible and the field strip in publicNode are the only
// places that decide what is secret.
package render

import (
	"fmt"

	"github.com/roach88/appdom/internal/dom"
)

// Tree is a projected Dom. It uses the Dom wire shape.
type Tree struct {
	dom *dom.Dom
}

// Visible reports whether nodes of kind k appear in a render tree.
// Connections carry credentials; code components are compiled separately.
func Visible(k dom.Kind) bool {
	switch k {
	case dom.KindApp, dom.KindPage, dom.KindElement, dom.KindQuery, dom.KindMutation, dom.KindTheme:
		return true
	case dom.KindConnection, dom.KindCodeComponent:
		return false
	default:
		panic(fmt.Sprintf("render: unknown kind %q", k))
	}
}

// Project filters d down to visible kinds and strips the query field of
// queries and mutations. Nodes below a hidden node are hidden too. Records
// that need no change are shared with d.
func Project(d *dom.Dom) *Tree {
	var kept []*dom.Node
	changed := false
	for _, id := range d.IDs() {
		n, _ := d.Lookup(id)
		if !visibleWithAncestors(d, n) {
			changed = true
			continue
		}
		pub := publicNode(n)
		if pub != n {
			changed = true
		}
		kept = append(kept, pub)
	}

	if !changed {
		return &Tree{dom: d}
	}
	return &Tree{dom: dom.FromNodes(d.Root(), d.Version(), kept)}
}

func visibleWithAncestors(d *dom.Dom, n *dom.Node) bool {
	if !Visible(n.Kind) {
		return false
	}
	for _, a := range d.Ancestors(n) {
		if !Visible(a.Kind) {
			return false
		}
	}
	return true
}

// publicNode returns n without secret-bearing fields, or n itself when it
// has none.
func publicNode(n *dom.Node) *dom.Node {
	switch attrs := n.Attributes.(type) {
	case dom.QueryAttributes:
		if attrs.Query == nil {
			return n
		}
		attrs.Query = nil
		c := *n
		c.Attributes = attrs
		return &c
	case dom.MutationAttributes:
		if attrs.Query == nil {
			return n
		}
		attrs.Query = nil
		c := *n
		c.Attributes = attrs
		return &c
	default:
		return n
	}
}

// Dom returns the projected document for renderers that walk it with the
// dom accessors.
func (t *Tree) Dom() *dom.Dom {
	return t.dom
}

// MarshalJSON encodes the tree canonically, in the Dom wire shape.
func (t *Tree) MarshalJSON() ([]byte, error) {
	return dom.Encode(t.dom)
}

// Hash returns the content hash of the tree.
func (t *Tree) Hash() (string, error) {
	return dom.Hash(t.dom)
}
