// Package formdata builds the entry list of a form and encodes it as an
// application/x-www-form-urlencoded query string.
//
// Entries are collected in tree order from the form's descendants, skipping
// disabled controls, unnamed controls, buttons, unchecked boxes and
// controls inside a datalist. Set, Check and Uncheck edit control state the
// way a user would before a change event fires.
package formdata
