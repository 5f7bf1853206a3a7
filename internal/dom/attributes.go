package dom

import (
	"fmt"
	"slices"

	"github.com/roach88/appdom/internal/ir"
)

// Attributes is the kind-specific record of a node. It is a sealed interface:
// exactly one struct per Kind implements it and Kind reports which.
type Attributes interface {
	Kind() Kind
	attributes()
}

// AppAttributes describes the application root.
type AppAttributes struct {
	Description string
}

// ConnectionAttributes configures a data source. Params may carry
// credentials and never leave the authoring side.
type ConnectionAttributes struct {
	DataSource string
	Params     ir.IRObject
	Status     string
}

// ThemeAttributes holds design tokens.
type ThemeAttributes struct {
	Mode   string
	Tokens ir.IRObject
}

// PageAttributes describes a routable page.
type PageAttributes struct {
	Title string
	Route string
}

// ElementAttributes names the UI component an element renders.
type ElementAttributes struct {
	Component string
}

// CodeComponentAttributes holds the source of a user-written component.
type CodeComponentAttributes struct {
	Code string
}

// QueryAttributes configures a data read. Query is the data-source specific
// request and may embed connection configuration; nil means absent.
type QueryAttributes struct {
	DataSource   string
	ConnectionID NodeID
	Query        ir.IRValue
	Trigger      string
}

// MutationAttributes configures a data write. Query follows the same rules
// as QueryAttributes.Query.
type MutationAttributes struct {
	DataSource   string
	ConnectionID NodeID
	Query        ir.IRValue
}

func (AppAttributes) Kind() Kind           { return KindApp }
func (ConnectionAttributes) Kind() Kind    { return KindConnection }
func (ThemeAttributes) Kind() Kind         { return KindTheme }
func (PageAttributes) Kind() Kind          { return KindPage }
func (ElementAttributes) Kind() Kind       { return KindElement }
func (CodeComponentAttributes) Kind() Kind { return KindCodeComponent }
func (QueryAttributes) Kind() Kind         { return KindQuery }
func (MutationAttributes) Kind() Kind      { return KindMutation }

func (AppAttributes) attributes()           {}
func (ConnectionAttributes) attributes()    {}
func (ThemeAttributes) attributes()         {}
func (PageAttributes) attributes()          {}
func (ElementAttributes) attributes()       {}
func (CodeComponentAttributes) attributes() {}
func (QueryAttributes) attributes()         {}
func (MutationAttributes) attributes()      {}

// ZeroAttributes returns the empty attribute record of kind k.
func ZeroAttributes(k Kind) Attributes {
	switch k {
	case KindApp:
		return AppAttributes{}
	case KindConnection:
		return ConnectionAttributes{}
	case KindTheme:
		return ThemeAttributes{}
	case KindPage:
		return PageAttributes{}
	case KindElement:
		return ElementAttributes{}
	case KindCodeComponent:
		return CodeComponentAttributes{}
	case KindQuery:
		return QueryAttributes{}
	case KindMutation:
		return MutationAttributes{}
	default:
		panic(fmt.Sprintf("dom: unknown kind %q", k))
	}
}

// AttributesEqual reports whether a and b hold the same values. Attribute
// structs contain maps, so == cannot be used on them.
func AttributesEqual(a, b Attributes) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch av := a.(type) {
	case AppAttributes:
		return av == b.(AppAttributes)
	case ConnectionAttributes:
		bv := b.(ConnectionAttributes)
		return av.DataSource == bv.DataSource && av.Status == bv.Status &&
			ir.EqualObjects(av.Params, bv.Params)
	case ThemeAttributes:
		bv := b.(ThemeAttributes)
		return av.Mode == bv.Mode && ir.EqualObjects(av.Tokens, bv.Tokens)
	case PageAttributes:
		return av == b.(PageAttributes)
	case ElementAttributes:
		return av == b.(ElementAttributes)
	case CodeComponentAttributes:
		return av == b.(CodeComponentAttributes)
	case QueryAttributes:
		bv := b.(QueryAttributes)
		return av.DataSource == bv.DataSource && av.ConnectionID == bv.ConnectionID &&
			av.Trigger == bv.Trigger && queryEqual(av.Query, bv.Query)
	case MutationAttributes:
		bv := b.(MutationAttributes)
		return av.DataSource == bv.DataSource && av.ConnectionID == bv.ConnectionID &&
			queryEqual(av.Query, bv.Query)
	default:
		panic(fmt.Sprintf("dom: unknown attributes %T", a))
	}
}

func queryEqual(a, b ir.IRValue) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return ir.Equal(a, b)
}

// rewriteRefs maps id-valued attribute fields through ids. References to
// nodes outside ids are kept.
func rewriteRefs(a Attributes, ids map[NodeID]NodeID) Attributes {
	switch av := a.(type) {
	case QueryAttributes:
		if to, ok := ids[av.ConnectionID]; ok {
			av.ConnectionID = to
		}
		return av
	case MutationAttributes:
		if to, ok := ids[av.ConnectionID]; ok {
			av.ConnectionID = to
		}
		return av
	case AppAttributes, ConnectionAttributes, ThemeAttributes, PageAttributes,
		ElementAttributes, CodeComponentAttributes:
		return a
	default:
		panic(fmt.Sprintf("dom: unknown attributes %T", a))
	}
}

// attributesToObject converts attributes to their wire form. Empty fields are
// omitted.
func attributesToObject(a Attributes) ir.IRObject {
	obj := ir.IRObject{}
	putStr := func(key, v string) {
		if v != "" {
			obj[key] = ir.Str(v)
		}
	}
	putObj := func(key string, v ir.IRObject) {
		if len(v) > 0 {
			obj[key] = v
		}
	}
	switch av := a.(type) {
	case AppAttributes:
		putStr("description", av.Description)
	case ConnectionAttributes:
		putStr("dataSource", av.DataSource)
		putObj("params", av.Params)
		putStr("status", av.Status)
	case ThemeAttributes:
		putStr("mode", av.Mode)
		putObj("tokens", av.Tokens)
	case PageAttributes:
		putStr("title", av.Title)
		putStr("route", av.Route)
	case ElementAttributes:
		putStr("component", av.Component)
	case CodeComponentAttributes:
		putStr("code", av.Code)
	case QueryAttributes:
		putStr("dataSource", av.DataSource)
		putStr("connectionId", string(av.ConnectionID))
		if av.Query != nil {
			obj["query"] = av.Query
		}
		putStr("trigger", av.Trigger)
	case MutationAttributes:
		putStr("dataSource", av.DataSource)
		putStr("connectionId", string(av.ConnectionID))
		if av.Query != nil {
			obj["query"] = av.Query
		}
	default:
		panic(fmt.Sprintf("dom: unknown attributes %T", a))
	}
	return obj
}

// attributeFields lists the wire keys accepted per kind.
var attributeFields = map[Kind][]string{
	KindApp:           {"description"},
	KindConnection:    {"dataSource", "params", "status"},
	KindTheme:         {"mode", "tokens"},
	KindPage:          {"title", "route"},
	KindElement:       {"component"},
	KindCodeComponent: {"code"},
	KindQuery:         {"dataSource", "connectionId", "query", "trigger"},
	KindMutation:      {"dataSource", "connectionId", "query"},
}

// ParseAttributes builds kind k attributes from their wire object. Unknown keys
// and mistyped values are errors.
func ParseAttributes(k Kind, obj ir.IRObject) (Attributes, error) {
	for key := range obj {
		if !slices.Contains(attributeFields[k], key) {
			return nil, fmt.Errorf("unknown %s attribute %q", k, key)
		}
	}

	r := objectReader{obj: obj}
	var out Attributes
	switch k {
	case KindApp:
		out = AppAttributes{Description: r.str("description")}
	case KindConnection:
		out = ConnectionAttributes{
			DataSource: r.str("dataSource"),
			Params:     r.object("params"),
			Status:     r.str("status"),
		}
	case KindTheme:
		out = ThemeAttributes{Mode: r.str("mode"), Tokens: r.object("tokens")}
	case KindPage:
		out = PageAttributes{Title: r.str("title"), Route: r.str("route")}
	case KindElement:
		out = ElementAttributes{Component: r.str("component")}
	case KindCodeComponent:
		out = CodeComponentAttributes{Code: r.str("code")}
	case KindQuery:
		out = QueryAttributes{
			DataSource:   r.str("dataSource"),
			ConnectionID: NodeID(r.str("connectionId")),
			Query:        r.value("query"),
			Trigger:      r.str("trigger"),
		}
	case KindMutation:
		out = MutationAttributes{
			DataSource:   r.str("dataSource"),
			ConnectionID: NodeID(r.str("connectionId")),
			Query:        r.value("query"),
		}
	default:
		panic(fmt.Sprintf("dom: unknown kind %q", k))
	}
	if r.err != nil {
		return nil, fmt.Errorf("%s attributes: %w", k, r.err)
	}
	return out, nil
}

// objectReader reads typed fields from an IRObject and keeps the first error.
type objectReader struct {
	obj ir.IRObject
	err error
}

func (r *objectReader) str(key string) string {
	v, ok := r.obj[key]
	if !ok {
		return ""
	}
	s, ok := v.(ir.IRString)
	if !ok {
		r.fail(key, "string", v)
		return ""
	}
	return string(s)
}

func (r *objectReader) object(key string) ir.IRObject {
	v, ok := r.obj[key]
	if !ok {
		return nil
	}
	o, ok := v.(ir.IRObject)
	if !ok {
		r.fail(key, "object", v)
		return nil
	}
	return o
}

func (r *objectReader) value(key string) ir.IRValue {
	v, ok := r.obj[key]
	if !ok {
		return nil
	}
	if _, isNull := v.(ir.IRNull); isNull {
		return nil
	}
	return v
}

func (r *objectReader) fail(key, want string, got ir.IRValue) {
	if r.err == nil {
		r.err = fmt.Errorf("%q: expected %s, got %T", key, want, got)
	}
}
