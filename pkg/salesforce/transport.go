// Package salesforce implements the publish transport over the Salesforce
// SOAP partner (login) and metadata (upsertMetadata) APIs.
package salesforce

import (
	"net/http"
	"strings"

	"github.com/systemstart/sfpublish/pkg/api"
	"github.com/systemstart/sfpublish/pkg/publish"
)

var _ publish.Transport = (*Transport)(nil)

// Transport talks to one Salesforce login endpoint.
type Transport struct {
	loginURL   string
	apiVersion string
	client     *http.Client
}

// Option configures a Transport.
type Option func(*Transport)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(t *Transport) { t.client = client }
}

// New creates a Transport for cfg.LoginURL and cfg.APIVersion.
func New(cfg api.SalesforceConfig, opts ...Option) *Transport {
	t := &Transport{
		loginURL:   strings.TrimRight(cfg.LoginURL, "/"),
		apiVersion: cfg.APIVersion,
		client:     NewHTTPClient(DefaultHTTPConfig()),
	}
	if t.loginURL == "" {
		t.loginURL = api.DefaultLoginURL
	}
	if t.apiVersion == "" {
		t.apiVersion = api.DefaultAPIVersion
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}
