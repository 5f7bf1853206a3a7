package dom

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/appdom/internal/ir"
)

// Document is the wire shape of a Dom:
//
//	{ "version": int, "root": id, "nodes": { id: NodeRecord } }
//
// Migrations operate on Documents before a Dom is built from them.
type Document struct {
	Version int                   `json:"version"`
	Root    NodeID                `json:"root"`
	Nodes   map[NodeID]NodeRecord `json:"nodes"`
}

// NodeRecord is the wire shape of a Node. Attributes are a kind-specific
// object; the parent fields are omitted (or null) for the root.
type NodeRecord struct {
	ID             NodeID      `json:"id"`
	Kind           Kind        `json:"kind"`
	Name           string      `json:"name"`
	ParentID       NodeID      `json:"parentId,omitempty"`
	ParentRelation string      `json:"parentRelation,omitempty"`
	OrderKey       string      `json:"orderKey,omitempty"`
	Attributes     ir.IRObject `json:"attributes"`
	Props          ir.IRObject `json:"props,omitempty"`
	Params         ir.IRObject `json:"params,omitempty"`
	Layout         *Layout     `json:"layout,omitempty"`
}

// Migration upgrades a Document by one or more schema versions.
type Migration func(*Document) (*Document, error)

// Record converts a node to its wire shape.
func Record(n *Node) NodeRecord {
	return NodeRecord{
		ID:             n.ID,
		Kind:           n.Kind,
		Name:           n.Name,
		ParentID:       n.ParentID,
		ParentRelation: n.ParentRelation,
		OrderKey:       n.OrderKey,
		Attributes:     attributesToObject(n.Attributes),
		Props:          n.Props,
		Params:         n.Params,
		Layout:         n.Layout,
	}
}

// Node converts a wire record to a node. It checks the kind and attribute
// shape only; tree invariants are checked by Verify.
func (r NodeRecord) Node() (*Node, error) {
	if !r.Kind.Valid() {
		return nil, &Error{Code: ErrCodeCorrupt, Message: fmt.Sprintf("unknown kind %q", r.Kind), NodeID: r.ID}
	}
	attrs, err := ParseAttributes(r.Kind, r.Attributes)
	if err != nil {
		return nil, &Error{Code: ErrCodeCorrupt, Message: err.Error(), NodeID: r.ID, Kind: r.Kind}
	}
	n := &Node{
		ID:             r.ID,
		Kind:           r.Kind,
		Name:           r.Name,
		ParentID:       r.ParentID,
		ParentRelation: r.ParentRelation,
		OrderKey:       r.OrderKey,
		Attributes:     attrs,
		Props:          r.Props,
		Params:         r.Params,
	}
	if r.Layout != nil {
		l := *r.Layout
		n.Layout = &l
	}
	return n, nil
}

// canonical returns the record as a value MarshalCanonical accepts.
func (r NodeRecord) canonical() map[string]any {
	m := map[string]any{
		"id":         string(r.ID),
		"kind":       string(r.Kind),
		"name":       r.Name,
		"attributes": r.Attributes,
	}
	if r.ParentID != "" {
		m["parentId"] = string(r.ParentID)
	}
	if r.ParentRelation != "" {
		m["parentRelation"] = r.ParentRelation
	}
	if r.OrderKey != "" {
		m["orderKey"] = r.OrderKey
	}
	if len(r.Props) > 0 {
		m["props"] = r.Props
	}
	if len(r.Params) > 0 {
		m["params"] = r.Params
	}
	if r.Layout != nil {
		m["layout"] = map[string]any{
			"x":      r.Layout.X,
			"y":      r.Layout.Y,
			"width":  r.Layout.Width,
			"height": r.Layout.Height,
		}
	}
	return m
}

// ToDocument converts d to its wire shape.
func ToDocument(d *Dom) *Document {
	doc := &Document{
		Version: d.version,
		Root:    d.root,
		Nodes:   make(map[NodeID]NodeRecord, len(d.nodes)),
	}
	for id, n := range d.nodes {
		doc.Nodes[id] = Record(n)
	}
	return doc
}

// FromDocument builds a Dom from a Document and verifies it.
func FromDocument(doc *Document) (*Dom, error) {
	if doc.Version > CurrentVersion {
		return nil, &Error{Code: ErrCodeCorrupt, Message: fmt.Sprintf("version %d is newer than %d", doc.Version, CurrentVersion)}
	}
	nodes := make([]*Node, 0, len(doc.Nodes))
	for key, rec := range doc.Nodes {
		if rec.ID == "" {
			rec.ID = key
		}
		n, err := rec.Node()
		if err != nil {
			return nil, err
		}
		if key != n.ID {
			return nil, &Error{Code: ErrCodeCorrupt, Message: fmt.Sprintf("record id %q stored under %q", n.ID, key), NodeID: key}
		}
		nodes = append(nodes, n)
	}

	d := FromNodes(doc.Root, doc.Version, nodes)
	if vs := Verify(d); len(vs) > 0 {
		msg := vs[0].String()
		if len(vs) > 1 {
			msg = fmt.Sprintf("%s (and %d more)", msg, len(vs)-1)
		}
		return nil, &Error{Code: ErrCodeCorrupt, Message: msg}
	}
	return d, nil
}

// Encode writes d as canonical JSON.
func Encode(d *Dom) ([]byte, error) {
	nodes := make(map[string]any, len(d.nodes))
	for id, n := range d.nodes {
		nodes[string(id)] = Record(n).canonical()
	}
	data, err := ir.MarshalCanonical(map[string]any{
		"version": d.version,
		"root":    string(d.root),
		"nodes":   nodes,
	})
	if err != nil {
		return nil, fmt.Errorf("encode dom: %w", err)
	}
	return data, nil
}

// Decode parses a Dom, runs migrations in order, and verifies the result.
func Decode(data []byte, migrations ...Migration) (*Dom, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode dom: %w", err)
	}
	cur := &doc
	for i, m := range migrations {
		next, err := m(cur)
		if err != nil {
			return nil, fmt.Errorf("migration %d: %w", i, err)
		}
		cur = next
	}
	return FromDocument(cur)
}

// Hash returns the content hash of d's canonical encoding.
func Hash(d *Dom) (string, error) {
	data, err := Encode(d)
	if err != nil {
		return "", err
	}
	return ir.HashBytes(ir.DomainSnapshot, data), nil
}

// MarshalJSON encodes d canonically.
func (d *Dom) MarshalJSON() ([]byte, error) {
	return Encode(d)
}

type wirePatch struct {
	Set   []NodeRecord `json:"set"`
	Unset []NodeID     `json:"unset"`
}

// EncodePatch writes p as canonical JSON: {"set": [records], "unset": [ids]}.
func EncodePatch(p Patch) ([]byte, error) {
	set := make([]any, len(p.Set))
	for i, n := range p.Set {
		set[i] = Record(n).canonical()
	}
	unset := make([]string, len(p.Unset))
	for i, id := range p.Unset {
		unset[i] = string(id)
	}
	data, err := ir.MarshalCanonical(map[string]any{"set": set, "unset": unset})
	if err != nil {
		return nil, fmt.Errorf("encode patch: %w", err)
	}
	return data, nil
}

// DecodePatch parses a patch written by EncodePatch.
func DecodePatch(data []byte) (Patch, error) {
	var wp wirePatch
	if err := json.Unmarshal(data, &wp); err != nil {
		return Patch{}, fmt.Errorf("decode patch: %w", err)
	}
	p := Patch{Unset: wp.Unset}
	for _, rec := range wp.Set {
		n, err := rec.Node()
		if err != nil {
			return Patch{}, fmt.Errorf("decode patch: %w", err)
		}
		p.Set = append(p.Set, n)
	}
	return p, nil
}

// HashPatch returns the content hash of p's canonical encoding.
func HashPatch(p Patch) (string, error) {
	data, err := EncodePatch(p)
	if err != nil {
		return "", err
	}
	return ir.HashBytes(ir.DomainPatch, data), nil
}
