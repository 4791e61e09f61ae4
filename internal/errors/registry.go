package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Config Errors (E100-E119)
	// ============================================

	"E100": {
		Category: CategoryConfig,
		Message:  "Invalid configuration file",
		Detail:   "The htms configuration file could not be read or decoded.",
	},
	"E101": {
		Category: CategoryConfig,
		Message:  "Invalid attribute name",
		Detail:   "Marker attribute names must be non-empty, lower case and free of whitespace.",
	},
	"E102": {
		Category: CategoryConfig,
		Message:  "Duplicate attribute name",
		Detail:   "Each marker attribute must have a distinct name.",
	},
	"E103": {
		Category: CategoryConfig,
		Message:  "Invalid header name",
		Detail:   "The fragment request header must be a valid HTTP header token.",
	},
	"E104": {
		Category: CategoryConfig,
		Message:  "Invalid timeout",
		Detail:   "Timeouts are Go durations (e.g. \"5s\"); zero means no timeout.",
	},
	"E105": {
		Category: CategoryConfig,
		Message:  "Unsupported configuration format",
		Detail:   "Configuration files must end in .json, .yaml or .yml.",
	},

	// ============================================
	// Transport Errors (E120-E139)
	// ============================================

	"E120": {
		Category: CategoryTransport,
		Message:  "Invalid request",
		Detail:   "The request method or URL could not be turned into an HTTP request.",
	},
	"E121": {
		Category: CategoryTransport,
		Message:  "Network failure",
		Detail:   "The request did not complete. No response was received from the server.",
	},
	"E122": {
		Category: CategoryTransport,
		Message:  "Page load rejected",
		Detail:   "The server answered the initial page load with a non-success status.",
	},

	// ============================================
	// DOM Errors (E140-E159)
	// ============================================

	"E140": {
		Category: CategoryDOM,
		Message:  "HTML parse failed",
		Detail:   "The document could not be parsed as HTML.",
	},
	"E141": {
		Category: CategoryDOM,
		Message:  "Invalid query",
		Detail:   "The XPath expression could not be compiled.",
	},

	// ============================================
	// Merge Errors (E160-E179)
	// ============================================

	"E160": {
		Category: CategoryMerge,
		Message:  "Fragment parse failed",
		Detail:   "The response body could not be parsed into a document.",
	},

	// ============================================
	// CLI Errors (E180-E199)
	// ============================================

	"E180": {
		Category: CategoryCLI,
		Message:  "Invalid field assignment",
		Detail:   "Field assignments use the form name=value.",
	},
	"E181": {
		Category: CategoryCLI,
		Message:  "No such form",
		Detail:   "The form index does not match any bound form on the page.",
	},
	"E182": {
		Category: CategoryCLI,
		Message:  "Invalid output mode",
		Detail:   "The --print flag accepts html, url or both.",
	},
	"E183": {
		Category: CategoryCLI,
		Message:  "Invalid log level",
		Detail:   "The --log-level flag accepts debug, info, warn or error.",
	},
}

// GetAllCodes returns all registered error codes.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds a new error template to the registry.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
