package dom

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"

	herrors "github.com/vango-dev/htms/internal/errors"
)

// ErrNotFound is returned when no element matches a lookup.
var ErrNotFound = errors.New("dom: element not found")

// Document is a parsed HTML document guarded by a read/write lock.
type Document struct {
	mu   sync.RWMutex
	root *html.Node
}

// New wraps an existing root node.
func New(root *html.Node) *Document {
	return &Document{root: root}
}

// Parse reads a full HTML document from r.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, herrors.New("E140").Wrap(err)
	}
	return New(root), nil
}

// ParseString parses s as a full HTML document.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// Read runs fn with the read lock held.
func (d *Document) Read(fn func(root *html.Node)) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	fn(d.root)
}

// Mutate runs fn with the write lock held.
func (d *Document) Mutate(fn func(root *html.Node)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fn(d.root)
}

// ByID returns the first element whose id attribute equals id.
func (d *Document) ByID(id string) (*html.Node, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if n := FindByID(d.root, id); n != nil {
		return n, nil
	}
	return nil, ErrNotFound
}

// QueryAll returns every node matching the XPath expression.
func (d *Document) QueryAll(expr string) ([]*html.Node, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	nodes, err := htmlquery.QueryAll(d.root, expr)
	if err != nil {
		return nil, herrors.New("E141").Wrap(err)
	}
	return nodes, nil
}

// Render writes the whole document to w.
func (d *Document) Render(w io.Writer) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return html.Render(w, d.root)
}

// String renders the whole document.
func (d *Document) String() string {
	var buf bytes.Buffer
	if err := d.Render(&buf); err != nil {
		return ""
	}
	return buf.String()
}

// OuterHTML renders the element with the given id, or "" when absent.
func (d *Document) OuterHTML(id string) string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	n := FindByID(d.root, id)
	if n == nil {
		return ""
	}
	return htmlquery.OutputHTML(n, true)
}
