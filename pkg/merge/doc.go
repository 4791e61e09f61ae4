// Package merge splices elements of a fetched HTML document into a live
// document.
//
// The response text is parsed into its own tree; the live document is
// never the parse target, so duplicate ids cannot collide during parsing.
// Each target id is then looked up on both sides:
//
//   - replace: the live element is swapped for the fetched one, tag,
//     attributes and descendants included.
//   - update: the live element keeps its own tag but loses all children;
//     the fetched element itself becomes its only child.
//
// An id missing on either side is skipped and reported, never an error.
// Both modes are idempotent: applying the same response twice leaves the
// same document as applying it once.
package merge
