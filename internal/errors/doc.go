// Package errors provides structured, actionable error messages for htms.
//
// Errors carry a stable code, a category, a short message and optional
// detail, suggestion and source location. The location is used for
// configuration files: a YAML or JSON syntax error points at the offending
// line of htms.yaml / htms.json and Format renders the surrounding lines.
//
// # Error Categories
//
//   - config: configuration file errors
//   - transport: request construction and network failures
//   - dom: document parsing and query errors
//   - merge: fragment parsing errors
//   - cli: command line usage errors
//
// # Usage
//
//	err := errors.New("E101").
//	    WithLocation("htms.yaml", 4, 3).
//	    WithSuggestion("Attribute names must be non-empty")
//
//	fmt.Println(err.Format())
package errors
