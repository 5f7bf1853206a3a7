package dom

import (
	"fmt"
	"strings"

	"github.com/roach88/appdom/internal/fracindex"
	"github.com/roach88/appdom/internal/ident"
	"github.com/roach88/appdom/internal/ir"
	"github.com/roach88/appdom/internal/naming"
)

// NodeInit carries the caller-supplied fields of a new node.
type NodeInit struct {
	// Name is a free-form label, slugified into the node name. An empty
	// label falls back to the kind.
	Name string

	// Attributes defaults to ZeroAttributes(kind).
	Attributes Attributes

	Props  ir.IRObject
	Params ir.IRObject
	Layout *Layout

	// DisallowedNames are treated as taken when choosing the name.
	DisallowedNames map[string]bool
}

// NewApp returns a Dom holding only an app root.
func NewApp(gen ident.Generator, name string) (*Dom, error) {
	root, err := Create(gen, KindApp, NodeInit{Name: name})
	if err != nil {
		return nil, err
	}
	return newDom(root.ID, CurrentVersion, map[NodeID]*Node{root.ID: root}), nil
}

// Create builds a detached node with a fresh id. It does not touch any Dom.
func Create(gen ident.Generator, kind Kind, init NodeInit) (*Node, error) {
	if !kind.Valid() {
		return nil, &Error{Code: ErrCodeKindMismatch, Message: fmt.Sprintf("unknown kind %q", kind), Kind: kind}
	}

	base := naming.Slugify(init.Name)
	if strings.TrimSpace(init.Name) == "" {
		base = string(kind)
	}
	if base == "" {
		return nil, &naming.ValidationError{
			Field:   "name",
			Message: fmt.Sprintf("%q contains no letters or digits", init.Name),
			Code:    naming.ErrNameInvalid,
		}
	}
	name := naming.Propose(base, init.DisallowedNames)
	if verr := naming.Validate(name); verr != nil {
		return nil, verr
	}

	attrs := init.Attributes
	if attrs == nil {
		attrs = ZeroAttributes(kind)
	}
	if attrs.Kind() != kind {
		return nil, kindMismatch("", kind, attrs.Kind())
	}
	if err := checkFields(kind, "", init.Props, init.Params, init.Layout); err != nil {
		return nil, err
	}

	n := &Node{
		ID:         NodeID(gen.Generate()),
		Kind:       kind,
		Name:       name,
		Attributes: attrs,
		Props:      init.Props.Clone(),
		Params:     init.Params.Clone(),
	}
	if init.Layout != nil {
		l := *init.Layout
		n.Layout = &l
	}
	return n, nil
}

// checkFields rejects props, params or layout on kinds that do not carry them.
func checkFields(kind Kind, id NodeID, props, params ir.IRObject, layout *Layout) error {
	switch {
	case len(props) > 0 && !hasProps(kind):
		return &Error{Code: ErrCodeIncompatible, Message: fmt.Sprintf("%s nodes have no props", kind), NodeID: id, Kind: kind}
	case len(params) > 0 && !hasParams(kind):
		return &Error{Code: ErrCodeIncompatible, Message: fmt.Sprintf("%s nodes have no params", kind), NodeID: id, Kind: kind}
	case layout != nil && kind != KindElement:
		return &Error{Code: ErrCodeIncompatible, Message: fmt.Sprintf("%s nodes have no layout", kind), NodeID: id, Kind: kind}
	}
	return nil
}

// Attach inserts a detached node under parentID. An empty orderKey appends
// after the last sibling. A name already used in the destination naming
// scope gets a numeric suffix.
func Attach(d *Dom, node *Node, parentID NodeID, relation, orderKey string) (*Dom, error) {
	if !node.Detached() {
		return nil, &Error{Code: ErrCodeAlreadyAttached, Message: "node already has a parent", NodeID: node.ID}
	}
	if d.Has(node.ID) {
		return nil, &Error{Code: ErrCodeAlreadyAttached, Message: "node already in document", NodeID: node.ID}
	}
	if node.Attributes == nil || node.Attributes.Kind() != node.Kind {
		got := Kind("")
		if node.Attributes != nil {
			got = node.Attributes.Kind()
		}
		return nil, kindMismatch(node.ID, node.Kind, got)
	}

	parent, err := d.Get(parentID)
	if err != nil {
		return nil, err
	}
	if !Accepts(parent.Kind, relation, node.Kind) {
		return nil, incompatible(parent, relation, node.Kind)
	}
	key, err := d.placeKey(parentID, relation, orderKey, "")
	if err != nil {
		return nil, err
	}

	n := node.clone()
	n.ParentID = parentID
	n.ParentRelation = relation
	n.OrderKey = key
	return settleNames(d.with([]*Node{n}, nil), []NodeID{n.ID}), nil
}

// Move relinks an attached node and its subtree. The subtree's names are
// re-checked against the destination scopes.
func Move(d *Dom, id, parentID NodeID, relation, orderKey string) (*Dom, error) {
	node, err := d.Get(id)
	if err != nil {
		return nil, err
	}
	if node.Detached() {
		return nil, &Error{Code: ErrCodeNoParent, Message: "cannot move the root", NodeID: id}
	}
	parent, err := d.Get(parentID)
	if err != nil {
		return nil, err
	}
	if parentID == id {
		return nil, &Error{Code: ErrCodeCycle, Message: "cannot move a node below itself", NodeID: id}
	}
	for _, a := range d.Ancestors(parent) {
		if a.ID == id {
			return nil, &Error{Code: ErrCodeCycle, Message: "cannot move a node below itself", NodeID: id}
		}
	}
	if !Accepts(parent.Kind, relation, node.Kind) {
		return nil, incompatible(parent, relation, node.Kind)
	}

	if node.ParentID == parentID && node.ParentRelation == relation {
		if orderKey == node.OrderKey {
			return d, nil
		}
		if orderKey == "" {
			kids := d.childIndex()[parentID][relation]
			if kids[len(kids)-1].ID == id {
				return d, nil
			}
		}
	}

	key, err := d.placeKey(parentID, relation, orderKey, id)
	if err != nil {
		return nil, err
	}

	n := node.clone()
	n.ParentID = parentID
	n.ParentRelation = relation
	n.OrderKey = key
	next := d.with([]*Node{n}, nil)

	order := []NodeID{id}
	for _, m := range next.Descendants(n) {
		order = append(order, m.ID)
	}
	return settleNames(next, order), nil
}

// Remove deletes a node and all of its descendants in one step.
func Remove(d *Dom, id NodeID) (*Dom, error) {
	node, err := d.Get(id)
	if err != nil {
		return nil, err
	}
	if node.Detached() {
		return nil, &Error{Code: ErrCodeNoParent, Message: "cannot remove the root", NodeID: id}
	}

	unset := []NodeID{id}
	for _, m := range d.Descendants(node) {
		unset = append(unset, m.ID)
	}
	return d.with(nil, unset), nil
}

// placeKey resolves the order key for a node entering (parentID, relation).
// self is excluded from the siblings, so a node can be moved within its own
// group.
func (d *Dom) placeKey(parentID NodeID, relation, orderKey string, self NodeID) (string, error) {
	kids := d.childIndex()[parentID][relation]

	if orderKey == "" {
		last := ""
		for i := len(kids) - 1; i >= 0; i-- {
			if kids[i].ID != self {
				last = kids[i].OrderKey
				break
			}
		}
		key, err := fracindex.KeyBetween(last, "")
		if err != nil {
			return "", &Error{Code: ErrCodeInvalidOrderKey, Message: fmt.Sprintf("append after %q: %v", last, err), NodeID: parentID}
		}
		return key, nil
	}

	if err := fracindex.Validate(orderKey); err != nil {
		return "", &Error{Code: ErrCodeInvalidOrderKey, Message: err.Error(), NodeID: parentID}
	}
	for _, k := range kids {
		if k.ID != self && k.OrderKey == orderKey {
			return "", &Error{
				Code:    ErrCodeInvalidOrderKey,
				Message: fmt.Sprintf("order key %q already used by %s", orderKey, k.ID),
				NodeID:  parentID,
			}
		}
	}
	return orderKey, nil
}

// KeyAfter returns an order key placing a new child of (parentID, relation)
// directly after the sibling after, or first when after is empty.
func (d *Dom) KeyAfter(parentID NodeID, relation string, after NodeID) (string, error) {
	kids := d.childIndex()[parentID][relation]
	low, high := "", ""
	if after == "" {
		if len(kids) > 0 {
			high = kids[0].OrderKey
		}
	} else {
		found := false
		for i, k := range kids {
			if k.ID == after {
				found = true
				low = k.OrderKey
				if i+1 < len(kids) {
					high = kids[i+1].OrderKey
				}
				break
			}
		}
		if !found {
			return "", notFound(after)
		}
	}
	key, err := fracindex.KeyBetween(low, high)
	if err != nil {
		return "", &Error{Code: ErrCodeInvalidOrderKey, Message: err.Error(), NodeID: parentID}
	}
	return key, nil
}
