// Package dom wraps an x/net/html tree as a live document.
//
// A Document owns a root node and a read/write lock. Mutations go through
// Mutate so a reader never observes a half-applied change. Lookups use
// XPath through htmlquery.
//
// The tree stores form state in attributes: an input's current value is its
// value attribute, a checked box carries checked, a chosen option carries
// selected. Package formdata reads and edits that state.
package dom
