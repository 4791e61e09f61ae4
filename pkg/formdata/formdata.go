package formdata

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/vango-dev/htms/pkg/dom"
)

// Field is one name/value entry of a form.
type Field struct {
	Name  string
	Value string
}

// Collect returns the form's entry list in tree order.
func Collect(form *html.Node) []Field {
	var fields []Field
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			if c.Data == "datalist" {
				continue
			}
			if c.Data == "fieldset" && dom.HasAttr(c, "disabled") {
				walkLegend(c, &fields)
				continue
			}
			fields = appendControl(fields, c)
			if c.Data != "select" && c.Data != "textarea" {
				walk(c)
			}
		}
	}
	walk(form)
	return fields
}

// walkLegend collects controls of the first legend of a disabled fieldset,
// which stay enabled.
func walkLegend(fieldset *html.Node, fields *[]Field) {
	for c := fieldset.FirstChild; c != nil; c = c.NextSibling {
		if dom.IsElement(c, "legend") {
			*fields = append(*fields, Collect(c)...)
			return
		}
	}
}

func appendControl(fields []Field, n *html.Node) []Field {
	switch n.Data {
	case "input", "select", "textarea":
	default:
		return fields
	}
	name, _ := dom.Attr(n, "name")
	if name == "" || dom.HasAttr(n, "disabled") {
		return fields
	}

	switch n.Data {
	case "textarea":
		return append(fields, Field{name, dom.Text(n)})
	case "select":
		for _, opt := range selectedOptions(n) {
			fields = append(fields, Field{name, optionValue(opt)})
		}
		return fields
	}

	value, _ := dom.Attr(n, "value")
	switch inputType(n) {
	case "submit", "image", "reset", "button":
		return fields
	case "checkbox", "radio":
		if !dom.HasAttr(n, "checked") {
			return fields
		}
		if !dom.HasAttr(n, "value") {
			value = "on"
		}
	case "hidden":
		if strings.EqualFold(name, "_charset_") && value == "" {
			value = "UTF-8"
		}
	}
	return append(fields, Field{name, value})
}

func inputType(n *html.Node) string {
	t, _ := dom.Attr(n, "type")
	t = strings.ToLower(strings.TrimSpace(t))
	if t == "" {
		return "text"
	}
	return t
}

// options returns the option elements of a select, including those nested
// in optgroups.
func options(sel *html.Node) []*html.Node {
	var out []*html.Node
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			switch {
			case dom.IsElement(c, "option"):
				out = append(out, c)
			case dom.IsElement(c, "optgroup"):
				walk(c)
			}
		}
	}
	walk(sel)
	return out
}

// selectedOptions returns the options whose selectedness is true. A
// single-select with nothing marked falls back to its first enabled option.
func selectedOptions(sel *html.Node) []*html.Node {
	opts := options(sel)
	var selected []*html.Node
	for _, o := range opts {
		if dom.HasAttr(o, "selected") && !dom.HasAttr(o, "disabled") {
			selected = append(selected, o)
		}
	}
	if dom.HasAttr(sel, "multiple") {
		return selected
	}
	if len(selected) > 0 {
		return selected[len(selected)-1:]
	}
	for _, o := range opts {
		if !dom.HasAttr(o, "disabled") {
			return []*html.Node{o}
		}
	}
	return nil
}

func optionValue(o *html.Node) string {
	if v, ok := dom.Attr(o, "value"); ok {
		return v
	}
	return strings.Join(strings.Fields(dom.Text(o)), " ")
}
