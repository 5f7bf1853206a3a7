package dom

import (
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func page(id, name, key string) *Node {
	return &Node{ID: NodeID(id), Kind: KindPage, Name: name, ParentID: "app", ParentRelation: RelPages, OrderKey: key, Attributes: PageAttributes{}}
}

func appRoot() *Node {
	return &Node{ID: "app", Kind: KindApp, Name: "app", Attributes: AppAttributes{}}
}

func TestVerify(t *testing.T) {
	tests := []struct {
		name  string
		root  NodeID
		nodes []*Node
		want  string
	}{
		{
			name:  "missing root",
			root:  "nope",
			nodes: []*Node{appRoot()},
			want:  "root does not exist",
		},
		{
			name:  "missing parent",
			root:  "app",
			nodes: []*Node{appRoot(), {ID: "p", Kind: KindPage, Name: "p", ParentID: "ghost", ParentRelation: RelPages, OrderKey: "a0", Attributes: PageAttributes{}}},
			want:  "parent ghost does not exist",
		},
		{
			name: "cycle",
			root: "app",
			nodes: []*Node{
				appRoot(),
				{ID: "x", Kind: KindElement, Name: "x", ParentID: "y", ParentRelation: "slot", OrderKey: "a0", Attributes: ElementAttributes{}},
				{ID: "y", Kind: KindElement, Name: "y", ParentID: "x", ParentRelation: "slot", OrderKey: "a0", Attributes: ElementAttributes{}},
			},
			want: "parent chain does not reach the root",
		},
		{
			name:  "second root",
			root:  "app",
			nodes: []*Node{appRoot(), {ID: "p", Kind: KindPage, Name: "p", Attributes: PageAttributes{}}},
			want:  "node has no parent but is not the root",
		},
		{
			name:  "incompatible",
			root:  "app",
			nodes: []*Node{appRoot(), {ID: "e", Kind: KindElement, Name: "e", ParentID: "app", ParentRelation: RelPages, OrderKey: "a0", Attributes: ElementAttributes{}}},
			want:  "app.pages cannot hold element",
		},
		{
			name:  "duplicate order key",
			root:  "app",
			nodes: []*Node{appRoot(), page("a", "a", "a0"), page("b", "b", "a0")},
			want:  `order key "a0" duplicates sibling a`,
		},
		{
			name:  "bad order key",
			root:  "app",
			nodes: []*Node{appRoot(), page("a", "a", "a00")},
			want:  "order key:",
		},
		{
			name:  "duplicate sibling name",
			root:  "app",
			nodes: []*Node{appRoot(), page("a", "home", "a0"), page("b", "home", "a1")},
			want:  `name "home" already used by a`,
		},
		{
			name: "duplicate page-scoped name",
			root: "app",
			nodes: []*Node{
				appRoot(),
				page("p", "home", "a0"),
				{ID: "e", Kind: KindElement, Name: "x", ParentID: "p", ParentRelation: RelChildren, OrderKey: "a0", Attributes: ElementAttributes{}},
				{ID: "q", Kind: KindQuery, Name: "x", ParentID: "p", ParentRelation: RelQueries, OrderKey: "a0", Attributes: QueryAttributes{}},
			},
			want: `name "x" already used by e`,
		},
		{
			name:  "attributes of another kind",
			root:  "app",
			nodes: []*Node{appRoot(), {ID: "p", Kind: KindPage, Name: "p", ParentID: "app", ParentRelation: RelPages, OrderKey: "a0", Attributes: ElementAttributes{}}},
			want:  "attributes do not match kind page",
		},
		{
			name:  "root with parent",
			root:  "p",
			nodes: []*Node{appRoot(), page("p", "p", "a0")},
			want:  "root has a parent",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vs := Verify(FromNodes(tt.root, CurrentVersion, tt.nodes))
			if !assert.NotEmpty(t, vs) {
				return
			}
			var msgs []string
			for _, v := range vs {
				msgs = append(msgs, v.String())
			}
			assert.True(t, slices.ContainsFunc(msgs, func(m string) bool {
				return strings.Contains(m, tt.want)
			}), "want %q in %v", tt.want, msgs)
		})
	}
}

func TestVerifyAcceptsSameNameInDifferentPages(t *testing.T) {
	nodes := []*Node{
		appRoot(),
		page("p1", "home", "a0"),
		page("p2", "about", "a1"),
		{ID: "e1", Kind: KindElement, Name: "x", ParentID: "p1", ParentRelation: RelChildren, OrderKey: "a0", Attributes: ElementAttributes{}},
		{ID: "e2", Kind: KindElement, Name: "x", ParentID: "p2", ParentRelation: RelChildren, OrderKey: "a0", Attributes: ElementAttributes{}},
	}
	assert.Empty(t, Verify(FromNodes("app", CurrentVersion, nodes)))
}
