package dom

import (
	"fmt"
	"slices"
)

// NodeID identifies a node. The empty string means "no node" and is used for
// the parent of the root.
type NodeID string

// Kind is the tag of a node.
type Kind string

const (
	KindApp           Kind = "app"
	KindConnection    Kind = "connection"
	KindTheme         Kind = "theme"
	KindPage          Kind = "page"
	KindElement       Kind = "element"
	KindCodeComponent Kind = "codeComponent"
	KindQuery         Kind = "query"
	KindMutation      Kind = "mutation"
)

// Kinds lists every node kind.
var Kinds = []Kind{
	KindApp,
	KindConnection,
	KindTheme,
	KindPage,
	KindElement,
	KindCodeComponent,
	KindQuery,
	KindMutation,
}

// Valid reports whether k is one of Kinds.
func (k Kind) Valid() bool {
	return slices.Contains(Kinds, k)
}

// Relation names used by the fixed part of the compatibility table.
const (
	RelConnections    = "connections"
	RelThemes         = "themes"
	RelPages          = "pages"
	RelCodeComponents = "codeComponents"
	RelChildren       = "children"
	RelQueries        = "queries"
	RelMutations      = "mutations"
)

// fixedRelations is the compatibility table for kinds with a closed set of
// relations. Elements accept elements under any relation name and are
// handled in Accepts.
var fixedRelations = map[Kind]map[string]Kind{
	KindApp: {
		RelConnections:    KindConnection,
		RelThemes:         KindTheme,
		RelPages:          KindPage,
		RelCodeComponents: KindCodeComponent,
	},
	KindPage: {
		RelChildren:  KindElement,
		RelQueries:   KindQuery,
		RelMutations: KindMutation,
	},
}

// Accepts reports whether a parent of kind parent may hold a child of kind
// child under relation.
func Accepts(parent Kind, relation string, child Kind) bool {
	switch parent {
	case KindApp, KindPage:
		want, ok := fixedRelations[parent][relation]
		return ok && want == child
	case KindElement:
		// Element props can hold elements under any slot name.
		return relation != "" && child == KindElement
	case KindConnection, KindTheme, KindCodeComponent, KindQuery, KindMutation:
		return false
	default:
		panic(fmt.Sprintf("dom: unknown kind %q", parent))
	}
}

// Relations returns the fixed relation names of kind k in sorted order.
// Elements return nil because any relation name is accepted.
func Relations(k Kind) []string {
	rels := fixedRelations[k]
	out := make([]string, 0, len(rels))
	for r := range rels {
		out = append(out, r)
	}
	slices.Sort(out)
	return out
}

// scopedKind reports whether nodes of kind k share a page-wide naming scope
// rather than a sibling scope.
func scopedKind(k Kind) bool {
	switch k {
	case KindElement, KindQuery, KindMutation:
		return true
	case KindApp, KindConnection, KindTheme, KindPage, KindCodeComponent:
		return false
	default:
		panic(fmt.Sprintf("dom: unknown kind %q", k))
	}
}

// hasProps reports whether nodes of kind k carry bindable props.
func hasProps(k Kind) bool {
	return k == KindElement || k == KindCodeComponent
}

// hasParams reports whether nodes of kind k carry bindable params.
func hasParams(k Kind) bool {
	return k == KindPage || k == KindQuery || k == KindMutation
}
