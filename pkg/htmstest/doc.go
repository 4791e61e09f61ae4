// Package htmstest provides helpers for testing fragment servers and
// pages with bound forms.
//
// A Server answers a handler's fragment as is when the request carries
// the fragment marker header, and wraps it in a full layout otherwise,
// the way fragment-aware servers usually render:
//
//	srv := htmstest.NewServer(t, htmstest.Layout(`<form x-get="/search" x-replace="results">...</form>`))
//	srv.Fragment("/search", func(r *http.Request) (string, int) {
//		return `<div id="results">` + r.URL.Query().Get("q") + `</div>`, http.StatusOK
//	})
//
//	p := htmstest.StartPage(t)
//	htmstest.Load(t, p, srv.URL+"/search")
//	htmstest.Change(t, p, 0, "q=foo")
//	htmstest.ExpectOuterHTML(t, p, "results", `<div id="results">foo</div>`)
package htmstest
