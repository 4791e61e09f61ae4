package merge

import (
	"github.com/microcosm-cc/bluemonday"

	"github.com/vango-dev/htms/internal/config"
)

// Policy returns a user-generated-content policy that also keeps form
// controls, ids, classes and the marker attributes, so sanitized fragments
// stay bindable.
func Policy(attrs config.AttributesConfig) *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowStyling()
	p.AllowElements("form", "input", "select", "option", "optgroup", "textarea",
		"button", "label", "fieldset", "legend", "datalist")
	p.AllowAttrs("name", "value", "type", "checked", "selected", "disabled",
		"multiple", "placeholder", "for", "label").Globally()
	p.AllowAttrs(attrs.Get, attrs.Post, attrs.Replace, attrs.PushURL).OnElements("form")
	return p
}
