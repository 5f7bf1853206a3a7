package dom

import (
	"github.com/roach88/appdom/internal/ident"
)

// CloneFragment copies the subtree rooted at id into a standalone Dom. Every
// node gets a fresh id from gen; parent links and id-valued attributes that
// point inside the subtree are rewritten. The fragment root is detached.
func CloneFragment(d *Dom, gen ident.Generator, id NodeID) (*Dom, error) {
	node, err := d.Get(id)
	if err != nil {
		return nil, err
	}

	subtree := append([]*Node{node}, d.Descendants(node)...)
	ids := make(map[NodeID]NodeID, len(subtree))
	for _, n := range subtree {
		ids[n.ID] = NodeID(gen.Generate())
	}

	nodes := make(map[NodeID]*Node, len(subtree))
	for _, n := range subtree {
		c := n.clone()
		c.ID = ids[n.ID]
		if n.ID == id {
			c.ParentID = ""
			c.ParentRelation = ""
			c.OrderKey = ""
		} else {
			c.ParentID = ids[n.ParentID]
		}
		c.Attributes = rewriteRefs(n.Attributes, ids)
		nodes[c.ID] = c
	}
	return newDom(ids[id], d.version, nodes), nil
}

// MergeFragment attaches a fragment's root under parentID and inserts the
// rest of its subtree. Each incoming name is disambiguated against its
// destination naming scope, as Attach does.
func MergeFragment(d, fragment *Dom, parentID NodeID, relation, orderKey string) (*Dom, error) {
	froot := fragment.RootNode()
	if froot == nil {
		return nil, notFound(fragment.Root())
	}
	if !froot.Detached() {
		return nil, &Error{Code: ErrCodeAlreadyAttached, Message: "fragment root already has a parent", NodeID: froot.ID}
	}
	for id := range fragment.nodes {
		if d.Has(id) {
			return nil, &Error{Code: ErrCodeAlreadyAttached, Message: "fragment node already in document", NodeID: id}
		}
	}

	parent, err := d.Get(parentID)
	if err != nil {
		return nil, err
	}
	if !Accepts(parent.Kind, relation, froot.Kind) {
		return nil, incompatible(parent, relation, froot.Kind)
	}
	key, err := d.placeKey(parentID, relation, orderKey, "")
	if err != nil {
		return nil, err
	}

	r := froot.clone()
	r.ParentID = parentID
	r.ParentRelation = relation
	r.OrderKey = key

	set := []*Node{r}
	order := []NodeID{r.ID}
	for _, n := range fragment.Descendants(froot) {
		set = append(set, n)
		order = append(order, n.ID)
	}
	return settleNames(d.with(set, nil), order), nil
}

// Duplicate clones the subtree at id and inserts the copy directly after the
// original. It returns the new Dom and the id of the copy.
func Duplicate(d *Dom, gen ident.Generator, id NodeID) (*Dom, NodeID, error) {
	node, err := d.Get(id)
	if err != nil {
		return nil, "", err
	}
	if node.Detached() {
		return nil, "", &Error{Code: ErrCodeNoParent, Message: "cannot duplicate the root", NodeID: id}
	}

	fragment, err := CloneFragment(d, gen, id)
	if err != nil {
		return nil, "", err
	}
	key, err := d.KeyAfter(node.ParentID, node.ParentRelation, id)
	if err != nil {
		return nil, "", err
	}
	out, err := MergeFragment(d, fragment, node.ParentID, node.ParentRelation, key)
	if err != nil {
		return nil, "", err
	}
	return out, fragment.Root(), nil
}
