package api

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// LoadConfig reads a configuration file, renders it, sets Dir/FilePath,
// applies defaults and validates it.
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg, err := ParseConfig(filepath.Base(filename), data)
	if err != nil {
		return nil, err
	}

	absPath, err := filepath.Abs(filename)
	if err != nil {
		return nil, fmt.Errorf("resolving absolute path: %w", err)
	}
	cfg.FilePath = absPath
	cfg.Dir = filepath.Dir(absPath)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config %s: %w", filename, err)
	}

	return cfg, nil
}

// ParseConfig decodes configuration bytes. The raw text is executed as a
// template with sprig functions first, so values like
// {{ env "SF_PASSWORD" }} are resolved before decoding. Files named
// *.json or *.jsonc may carry comments and trailing commas.
func ParseConfig(name string, data []byte) (*Config, error) {
	rendered, err := renderConfig(name, data)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(name)) {
	case ".json", ".jsonc":
		rendered = jsonc.ToJSON(rendered)
	}

	var cfg Config
	if err := yaml.Unmarshal(rendered, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.ApplyDefaults()
	return &cfg, nil
}

func renderConfig(name string, data []byte) ([]byte, error) {
	tmpl, err := template.New(name).Funcs(sprig.TxtFuncMap()).Option("missingkey=error").Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf(`parsing config template (write a literal "{{" as {{ "{{" }}): %w`, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, nil); err != nil {
		return nil, fmt.Errorf("rendering config template: %w", err)
	}
	return buf.Bytes(), nil
}

// ApplyDefaults fills in optional fields left empty.
func (c *Config) ApplyDefaults() {
	if c.Salesforce.LoginURL == "" {
		c.Salesforce.LoginURL = DefaultLoginURL
	}
	if c.Salesforce.APIVersion == "" {
		c.Salesforce.APIVersion = DefaultAPIVersion
	}
	for i := range c.Resources {
		if c.Resources[i].CacheControl == "" {
			c.Resources[i].CacheControl = DefaultCacheControl
		}
	}
}
