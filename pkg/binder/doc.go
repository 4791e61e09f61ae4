// Package binder connects marked forms to the request and merge pipeline.
//
// Discover reads every form carrying the GET or POST marker once and turns
// its attributes into a Form record. A change on that form then runs the
// same handler for every form:
//
//  1. serialize the current field values into a query string
//  2. build path + "?" + query
//  3. replace the current history entry when the form has the push-url marker
//  4. send the request on a worker goroutine
//  5. queue the merge back onto the control goroutine
//
// Requests are never cancelled by a later change on the same form. When two
// responses race, the one settling last is merged last.
package binder
