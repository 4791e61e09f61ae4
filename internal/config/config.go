package config

import (
	"encoding/json"
	stderrors "errors"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/http/httpguts"
	"gopkg.in/yaml.v3"

	"github.com/vango-dev/htms/internal/errors"
)

const (
	// ConfigFileName is the name of the JSON configuration file.
	ConfigFileName = "htms.json"

	// YAMLConfigFileName is the name of the YAML configuration file.
	YAMLConfigFileName = "htms.yaml"

	// DefaultGetAttr marks a form whose change event issues a GET.
	DefaultGetAttr = "x-get"

	// DefaultPostAttr marks a form whose change event issues a POST.
	DefaultPostAttr = "x-post"

	// DefaultReplaceAttr lists the element ids replaced from the response.
	DefaultReplaceAttr = "x-replace"

	// DefaultPushURLAttr enables history URL replacement before the request.
	DefaultPushURLAttr = "x-push-url"

	// DefaultRequestHeader tells the server the request wants a fragment.
	DefaultRequestHeader = "X-Request"

	// DefaultContentType is sent on every fragment request.
	DefaultContentType = "application/json"

	// DefaultNamespace is the Prometheus metrics namespace.
	DefaultNamespace = "htms"

	// DefaultTracerName is the OpenTelemetry tracer name.
	DefaultTracerName = "htms"
)

// Config represents the complete htms configuration.
type Config struct {
	// Attributes names the marker attributes read at bind time.
	Attributes AttributesConfig `json:"attributes,omitempty" yaml:"attributes,omitempty"`

	// Transport configures fragment requests.
	Transport TransportConfig `json:"transport,omitempty" yaml:"transport,omitempty"`

	// Merge configures how fetched fragments are applied.
	Merge MergeConfig `json:"merge,omitempty" yaml:"merge,omitempty"`

	// Telemetry configures metrics and tracing names.
	Telemetry TelemetryConfig `json:"telemetry,omitempty" yaml:"telemetry,omitempty"`

	configPath string
}

// AttributesConfig names the marker attributes.
type AttributesConfig struct {
	Get     string `json:"get,omitempty" yaml:"get,omitempty"`
	Post    string `json:"post,omitempty" yaml:"post,omitempty"`
	Replace string `json:"replace,omitempty" yaml:"replace,omitempty"`
	PushURL string `json:"pushUrl,omitempty" yaml:"pushUrl,omitempty"`
}

// TransportConfig configures the HTTP side of a fragment request.
type TransportConfig struct {
	// RequestHeader is sent with the value "true" on every fragment request.
	RequestHeader string `json:"requestHeader,omitempty" yaml:"requestHeader,omitempty"`

	// ContentType is the Content-Type header of every fragment request.
	ContentType string `json:"contentType,omitempty" yaml:"contentType,omitempty"`

	// Timeout bounds a single request (e.g. "10s"). Empty or "0s" means none.
	Timeout string `json:"timeout,omitempty" yaml:"timeout,omitempty"`

	// UserAgent overrides the Go default User-Agent when set.
	UserAgent string `json:"userAgent,omitempty" yaml:"userAgent,omitempty"`
}

// MergeConfig configures the merger.
type MergeConfig struct {
	// Sanitize runs fetched HTML through a UGC sanitization policy before merging.
	Sanitize bool `json:"sanitize,omitempty" yaml:"sanitize,omitempty"`
}

// TelemetryConfig configures metric and tracer names.
type TelemetryConfig struct {
	Namespace  string `json:"namespace,omitempty" yaml:"namespace,omitempty"`
	TracerName string `json:"tracerName,omitempty" yaml:"tracerName,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads configuration from the specified directory. It looks for
// htms.json, then htms.yaml, then htms.yml. When none exists the
// defaults are returned.
func Load(dir string) (*Config, error) {
	for _, name := range []string{ConfigFileName, YAMLConfigFileName, "htms.yml"} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	return New(), nil
}

// LoadFile reads configuration from the specified file path. The format is
// chosen by extension.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("E100").
			WithDetail("Could not read " + path).
			Wrap(err)
	}

	cfg := &Config{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, jsonError(path, data, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, yamlError(path, err)
		}
	default:
		return nil, errors.New("E105").
			WithSuggestion("Rename the file to htms.json or htms.yaml")
	}

	cfg.configPath = path
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// jsonError converts a decode error into a located HTMSError.
func jsonError(path string, data []byte, err error) error {
	he := errors.New("E100").Wrap(err).
		WithSuggestion("Check that " + filepath.Base(path) + " is valid JSON")

	var syntax *json.SyntaxError
	if stderrors.As(err, &syntax) {
		line, col := position(data, syntax.Offset)
		he.WithLocation(path, line, col)
	}
	return he
}

var yamlLine = regexp.MustCompile(`line (\d+)`)

// yamlError converts a yaml.v3 error into a located HTMSError.
func yamlError(path string, err error) error {
	he := errors.New("E100").Wrap(err).
		WithSuggestion("Check that " + filepath.Base(path) + " is valid YAML")

	if m := yamlLine.FindStringSubmatch(err.Error()); m != nil {
		if line, convErr := strconv.Atoi(m[1]); convErr == nil {
			he.WithLocation(path, line, 0)
		}
	}
	return he
}

// position converts a byte offset into a 1-based line and column.
func position(data []byte, offset int64) (int, int) {
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	line, col := 1, 1
	for _, b := range data[:offset] {
		if b == '\n' {
			line++
			col = 1
			continue
		}
		col++
	}
	return line, col
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Attributes.Get == "" {
		c.Attributes.Get = DefaultGetAttr
	}
	if c.Attributes.Post == "" {
		c.Attributes.Post = DefaultPostAttr
	}
	if c.Attributes.Replace == "" {
		c.Attributes.Replace = DefaultReplaceAttr
	}
	if c.Attributes.PushURL == "" {
		c.Attributes.PushURL = DefaultPushURLAttr
	}

	if c.Transport.RequestHeader == "" {
		c.Transport.RequestHeader = DefaultRequestHeader
	}
	if c.Transport.ContentType == "" {
		c.Transport.ContentType = DefaultContentType
	}

	if c.Telemetry.Namespace == "" {
		c.Telemetry.Namespace = DefaultNamespace
	}
	if c.Telemetry.TracerName == "" {
		c.Telemetry.TracerName = DefaultTracerName
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	seen := make(map[string]string, 4)
	for _, attr := range []struct{ field, name string }{
		{"attributes.get", c.Attributes.Get},
		{"attributes.post", c.Attributes.Post},
		{"attributes.replace", c.Attributes.Replace},
		{"attributes.pushUrl", c.Attributes.PushURL},
	} {
		if !validAttrName(attr.name) {
			return errors.New("E101").
				WithSuggestion(attr.field + " is " + strconv.Quote(attr.name))
		}
		if prev, dup := seen[attr.name]; dup {
			return errors.New("E102").
				WithSuggestion(prev + " and " + attr.field + " both use " + strconv.Quote(attr.name))
		}
		seen[attr.name] = attr.field
	}

	if !httpguts.ValidHeaderFieldName(c.Transport.RequestHeader) {
		return errors.New("E103").
			WithSuggestion("transport.requestHeader is " + strconv.Quote(c.Transport.RequestHeader))
	}

	if _, err := c.Timeout(); err != nil {
		return err
	}
	return nil
}

// Timeout returns the parsed transport timeout. Zero means no timeout.
func (c *Config) Timeout() (time.Duration, error) {
	if c.Transport.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Transport.Timeout)
	if err != nil {
		return 0, errors.New("E104").Wrap(err)
	}
	if d < 0 {
		return 0, errors.New("E104").
			WithSuggestion("transport.timeout must not be negative")
	}
	return d, nil
}

// validAttrName reports whether name can be used as an HTML attribute name
// by the html tokenizer, which lower-cases attribute names.
func validAttrName(name string) bool {
	if name == "" || name != strings.ToLower(name) {
		return false
	}
	return !strings.ContainsAny(name, " \t\n\f\r\"'>/=")
}
