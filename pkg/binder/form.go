package binder

import (
	"fmt"
	"net/http"

	"golang.org/x/net/html"

	"github.com/vango-dev/htms/internal/config"
	"github.com/vango-dev/htms/pkg/dom"
	"github.com/vango-dev/htms/pkg/formdata"
	"github.com/vango-dev/htms/pkg/merge"
)

// Form is the configuration of one bound form, read at bind time.
type Form struct {
	// Index is the form's position among bound forms, in document order.
	Index int

	// Node is the form element in the live document.
	Node *html.Node

	// Method is http.MethodPost when the POST marker is present, else GET.
	Method string

	// Path is the GET marker's value when present, else the POST marker's.
	Path string

	// Targets holds the replace ids from the replace marker. Update ids
	// have no markup attribute and stay empty.
	Targets merge.Targets

	// PushURL is set by the presence of the push-url marker.
	PushURL bool
}

// String describes the form for logs and the CLI.
func (f *Form) String() string {
	return fmt.Sprintf("#%d %s %s", f.Index, f.Method, f.Path)
}

// Discover returns the bound forms of doc in document order.
func Discover(doc *dom.Document, attrs config.AttributesConfig) ([]*Form, error) {
	nodes, err := doc.QueryAll(fmt.Sprintf("//form[@%s or @%s]", attrs.Get, attrs.Post))
	if err != nil {
		return nil, err
	}

	forms := make([]*Form, 0, len(nodes))
	doc.Read(func(*html.Node) {
		for i, n := range nodes {
			forms = append(forms, read(i, n, attrs))
		}
	})
	return forms, nil
}

func read(index int, n *html.Node, attrs config.AttributesConfig) *Form {
	f := &Form{Index: index, Node: n, Method: http.MethodGet}

	getPath, hasGet := dom.Attr(n, attrs.Get)
	postPath, hasPost := dom.Attr(n, attrs.Post)
	if hasPost {
		f.Method = http.MethodPost
	}
	if hasGet {
		f.Path = getPath
	} else {
		f.Path = postPath
	}

	if v, ok := dom.Attr(n, attrs.Replace); ok {
		f.Targets.Replace = dom.Tokens(v)
	}
	f.PushURL = dom.HasAttr(n, attrs.PushURL)
	return f
}

// Query serializes the form's current field values. The caller must hold
// the document's read lock.
func (f *Form) Query() string {
	return formdata.Encode(formdata.Collect(f.Node))
}

// RequestURL builds the request URL for the given query.
func (f *Form) RequestURL(query string) string {
	return f.Path + "?" + query
}
