// Package harness runs editing scenarios against a session and checks the
// resulting document.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: add_button
//	description: "A button lands on the home page"
//	app: Shop
//	steps:
//	  - op: add
//	    as: home
//	    kind: page
//	    name: Home
//	    parent: root
//	    relation: pages
//	  - op: add
//	    as: buy
//	    kind: element
//	    name: Buy
//	    parent: home
//	    relation: children
//	    attributes: { component: Button }
//	    props: { label: "Buy now" }
//	  - op: rename
//	    node: buy
//	    name: home
//	    expect_error: E205
//	assertions:
//	  - type: name
//	    node: buy
//	    equals: buy
//	  - type: replay
//
// Steps refer to nodes by label. A step's "as" binds the node it produced;
// "root" is always bound to the app root. A label that was never bound is
// used as a literal node id.
//
// # Assertion Types
//
//   - valid: the document passes dom.Verify
//   - count: number of nodes, optionally of one kind
//   - name: a node's name
//   - children: ordered names under a node and relation
//   - parent: a node's parent label and relation
//   - absent, present: whether a node exists
//   - prop, param: one entry of a node, compared as an IR value
//   - rendered: whether a node survives render projection
//   - seq: the session clock
//   - replay: the store reloads to the same document
//
// # Deterministic Testing
//
// Every run uses a fresh in-memory store and sequential node ids with the
// "n" prefix, so traces and render trees are stable for golden comparison.
package harness
