package api

import (
	"errors"
	"fmt"
	"net/url"
)

var validCacheControl = map[string]bool{
	CacheControlPublic:  true,
	CacheControlPrivate: true,
}

// Validate checks the configuration for errors. Every failure is a
// *ConfigurationError.
func (c *Config) Validate() error {
	if c.Salesforce.Username == "" {
		return &ConfigurationError{Err: errors.New("salesforce.username is required")}
	}
	if c.Salesforce.Password == "" {
		return &ConfigurationError{Err: errors.New("salesforce.password is required")}
	}
	if c.Salesforce.LoginURL != "" {
		u, err := url.Parse(c.Salesforce.LoginURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return &ConfigurationError{Err: fmt.Errorf("salesforce.loginUrl %q is not an absolute URL", c.Salesforce.LoginURL)}
		}
	}

	names := make(map[string]int)
	for i, r := range c.Resources {
		if r.Name == "" {
			return &ConfigurationError{Err: fmt.Errorf("resource %d: name is required", i)}
		}
		if prev, exists := names[r.Name]; exists {
			return &ConfigurationError{
				Resource: r.Name,
				Err:      fmt.Errorf("duplicate resource name (first defined at resource %d)", prev),
			}
		}
		names[r.Name] = i

		if len(r.Files) == 0 {
			return &ConfigurationError{Resource: r.Name, Err: errors.New("files is required")}
		}
		if r.CacheControl != "" && !validCacheControl[r.CacheControl] {
			return &ConfigurationError{
				Resource: r.Name,
				Err:      fmt.Errorf("cacheControl %q is not valid (valid: %s, %s)", r.CacheControl, CacheControlPublic, CacheControlPrivate),
			}
		}
	}

	return nil
}
