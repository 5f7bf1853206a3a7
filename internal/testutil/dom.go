// Package testutil holds document fixtures shared by package tests.
package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/appdom/internal/dom"
	"github.com/roach88/appdom/internal/ir"
)

// Shop returns a small app with one node of every kind except mutation.
// Ids are fixed: r (app), c (connection), t (theme), k (code component),
// p (page), e (element) and q (query).
//
// The connection and the query carry the secret "hunter2".
func Shop(t testing.TB) *dom.Dom {
	t.Helper()
	d := dom.FromNodes("r", dom.CurrentVersion, []*dom.Node{
		{ID: "r", Kind: dom.KindApp, Name: "shop", Attributes: dom.AppAttributes{}},
		{
			ID: "c", Kind: dom.KindConnection, Name: "db",
			ParentID: "r", ParentRelation: dom.RelConnections, OrderKey: "a0",
			Attributes: dom.ConnectionAttributes{
				DataSource: "postgres",
				Params:     ir.IRObject{"password": ir.Str("hunter2")},
			},
		},
		{
			ID: "t", Kind: dom.KindTheme, Name: "dark",
			ParentID: "r", ParentRelation: dom.RelThemes, OrderKey: "a0",
			Attributes: dom.ThemeAttributes{Mode: "dark"},
		},
		{
			ID: "k", Kind: dom.KindCodeComponent, Name: "chart",
			ParentID: "r", ParentRelation: dom.RelCodeComponents, OrderKey: "a0",
			Attributes: dom.CodeComponentAttributes{Code: "export default Chart"},
		},
		{
			ID: "p", Kind: dom.KindPage, Name: "home",
			ParentID: "r", ParentRelation: dom.RelPages, OrderKey: "a0",
			Attributes: dom.PageAttributes{Title: "Home", Route: "/"},
		},
		{
			ID: "e", Kind: dom.KindElement, Name: "button",
			ParentID: "p", ParentRelation: dom.RelChildren, OrderKey: "a0",
			Attributes: dom.ElementAttributes{Component: "Button"},
			Props:      ir.IRObject{"label": ir.Str("Buy")},
		},
		{
			ID: "q", Kind: dom.KindQuery, Name: "products",
			ParentID: "p", ParentRelation: dom.RelQueries, OrderKey: "a0",
			Attributes: dom.QueryAttributes{
				DataSource:   "postgres",
				ConnectionID: "c",
				Query:        ir.IRObject{"sql": ir.Str("select * from products where password = 'hunter2'")},
				Trigger:      "auto",
			},
			Params: ir.IRObject{"limit": ir.Int(10)},
		},
	})
	require.Empty(t, dom.Verify(d))
	return d
}

// Hash returns dom.Hash(d), failing the test on error.
func Hash(t testing.TB, d *dom.Dom) string {
	t.Helper()
	h, err := dom.Hash(d)
	require.NoError(t, err)
	return h
}

// RequireSameDom fails unless want and got have the same content.
func RequireSameDom(t testing.TB, want, got *dom.Dom) {
	t.Helper()
	require.Equal(t, want.Root(), got.Root())
	require.Equal(t, want.Len(), got.Len())
	require.Equal(t, Hash(t, want), Hash(t, got))
}
