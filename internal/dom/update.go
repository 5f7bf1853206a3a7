package dom

import (
	"fmt"

	"github.com/roach88/appdom/internal/ir"
	"github.com/roach88/appdom/internal/naming"
)

// The field updates below return their input unchanged when the new value
// equals the current one, so callers can detect no-ops with ==.

// SetName renames a node. Unlike Attach, a collision in the naming scope is
// reported rather than suffixed, since the user typed the name.
func SetName(d *Dom, id NodeID, name string) (*Dom, error) {
	node, err := d.Get(id)
	if err != nil {
		return nil, err
	}
	if node.Name == name {
		return d, nil
	}
	if verr := naming.Validate(name); verr != nil {
		return nil, verr
	}
	if d.scopeNames(node)[name] {
		return nil, naming.Taken(name)
	}

	c := node.clone()
	c.Name = name
	return d.with([]*Node{c}, nil), nil
}

// SetAttributes replaces a node's attributes. A nil value resets them to the
// zero record of the kind.
func SetAttributes(d *Dom, id NodeID, attrs Attributes) (*Dom, error) {
	node, err := d.Get(id)
	if err != nil {
		return nil, err
	}
	if attrs == nil {
		attrs = ZeroAttributes(node.Kind)
	}
	if attrs.Kind() != node.Kind {
		return nil, kindMismatch(id, node.Kind, attrs.Kind())
	}
	if AttributesEqual(node.Attributes, attrs) {
		return d, nil
	}

	c := node.clone()
	c.Attributes = attrs
	return d.with([]*Node{c}, nil), nil
}

// SetProp sets one prop. A nil value removes it.
func SetProp(d *Dom, id NodeID, key string, value ir.IRValue) (*Dom, error) {
	return setEntry(d, id, key, value, propsField)
}

// RemoveProp deletes one prop.
func RemoveProp(d *Dom, id NodeID, key string) (*Dom, error) {
	return setEntry(d, id, key, nil, propsField)
}

// SetParam sets one param. A nil value removes it.
func SetParam(d *Dom, id NodeID, key string, value ir.IRValue) (*Dom, error) {
	return setEntry(d, id, key, value, paramsField)
}

// RemoveParam deletes one param.
func RemoveParam(d *Dom, id NodeID, key string) (*Dom, error) {
	return setEntry(d, id, key, nil, paramsField)
}

type entryField int

const (
	propsField entryField = iota
	paramsField
)

func setEntry(d *Dom, id NodeID, key string, value ir.IRValue, field entryField) (*Dom, error) {
	node, err := d.Get(id)
	if err != nil {
		return nil, err
	}

	var cur ir.IRObject
	switch field {
	case propsField:
		if !hasProps(node.Kind) {
			return nil, &Error{Code: ErrCodeIncompatible, Message: fmt.Sprintf("%s nodes have no props", node.Kind), NodeID: id, Kind: node.Kind}
		}
		cur = node.Props
	case paramsField:
		if !hasParams(node.Kind) {
			return nil, &Error{Code: ErrCodeIncompatible, Message: fmt.Sprintf("%s nodes have no params", node.Kind), NodeID: id, Kind: node.Kind}
		}
		cur = node.Params
	}

	old, present := cur[key]
	if value == nil {
		if !present {
			return d, nil
		}
	} else if present && ir.Equal(old, value) {
		return d, nil
	}

	next := cur.Clone()
	if next == nil {
		next = ir.IRObject{}
	}
	if value == nil {
		delete(next, key)
	} else {
		next[key] = value
	}

	c := node.clone()
	if field == propsField {
		c.Props = next
	} else {
		c.Params = next
	}
	return d.with([]*Node{c}, nil), nil
}

// SetLayout replaces an element's layout. nil clears it.
func SetLayout(d *Dom, id NodeID, layout *Layout) (*Dom, error) {
	node, err := d.Get(id)
	if err != nil {
		return nil, err
	}
	if node.Kind != KindElement {
		return nil, &Error{Code: ErrCodeIncompatible, Message: fmt.Sprintf("%s nodes have no layout", node.Kind), NodeID: id, Kind: node.Kind}
	}
	if layoutEqual(node.Layout, layout) {
		return d, nil
	}

	c := node.clone()
	c.Layout = nil
	if layout != nil {
		l := *layout
		c.Layout = &l
	}
	return d.with([]*Node{c}, nil), nil
}
