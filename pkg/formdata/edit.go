package formdata

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/vango-dev/htms/pkg/dom"
)

// ErrNoControl is returned when no control in the form matches an edit.
var ErrNoControl = fmt.Errorf("formdata: no matching control: %w", dom.ErrNotFound)

// Edit is one simulated user change to a form control.
//
// For text-like inputs, textareas and selects Value becomes the control's
// value. For checkboxes and radios the box whose value equals Value is
// checked, or unchecked when Uncheck is set.
type Edit struct {
	Name    string
	Value   string
	Uncheck bool
}

// ParseEdit parses "name=value" into an Edit. A leading '!' on the name
// marks an uncheck.
func ParseEdit(s string) (Edit, error) {
	name, value, ok := strings.Cut(s, "=")
	if !ok || name == "" || name == "!" {
		return Edit{}, fmt.Errorf("formdata: invalid edit %q, want name=value", s)
	}
	if strings.HasPrefix(name, "!") {
		return Edit{Name: name[1:], Value: value, Uncheck: true}, nil
	}
	return Edit{Name: name, Value: value}, nil
}

// Apply performs edits in order. The caller must hold the document's write
// lock.
func Apply(form *html.Node, edits ...Edit) error {
	for _, e := range edits {
		if err := apply(form, e); err != nil {
			return fmt.Errorf("%w: %s", err, e.Name)
		}
	}
	return nil
}

func apply(form *html.Node, e Edit) error {
	controls := named(form, e.Name)
	if len(controls) == 0 {
		return ErrNoControl
	}

	first := controls[0]
	switch {
	case first.Data == "textarea":
		dom.SetText(first, e.Value)
		return nil
	case first.Data == "select":
		return choose(first, e.Value, e.Uncheck)
	}

	switch inputType(first) {
	case "checkbox", "radio":
		for _, c := range controls {
			if !dom.IsElement(c, "input") || checkValue(c) != e.Value {
				continue
			}
			if e.Uncheck {
				dom.RemoveAttr(c, "checked")
				return nil
			}
			if inputType(c) == "radio" {
				for _, other := range controls {
					dom.RemoveAttr(other, "checked")
				}
			}
			dom.SetAttr(c, "checked", "")
			return nil
		}
		return ErrNoControl
	}

	dom.SetAttr(first, "value", e.Value)
	return nil
}

func checkValue(n *html.Node) string {
	if v, ok := dom.Attr(n, "value"); ok {
		return v
	}
	return "on"
}

// choose marks the option with the given value as selected. Single selects
// drop any previous selection.
func choose(sel *html.Node, value string, unselect bool) error {
	var target *html.Node
	for _, o := range options(sel) {
		if optionValue(o) == value {
			target = o
			break
		}
	}
	if target == nil {
		return ErrNoControl
	}
	if unselect {
		dom.RemoveAttr(target, "selected")
		return nil
	}
	if !dom.HasAttr(sel, "multiple") {
		for _, o := range options(sel) {
			dom.RemoveAttr(o, "selected")
		}
	}
	dom.SetAttr(target, "selected", "")
	return nil
}

// named returns the input, select and textarea descendants of form whose
// name attribute equals name.
func named(form *html.Node, name string) []*html.Node {
	var out []*html.Node
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.Data {
			case "input", "select", "textarea":
				if v, _ := dom.Attr(c, "name"); v == name {
					out = append(out, c)
				}
			}
			walk(c)
		}
	}
	walk(form)
	return out
}
