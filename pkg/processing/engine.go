// Package processing runs the publish pipeline once per build.
package processing

import (
	"context"
	"errors"
	"log/slog"
	"slices"

	"github.com/systemstart/sfpublish/pkg/api"
	"github.com/systemstart/sfpublish/pkg/mapping"
	"github.com/systemstart/sfpublish/pkg/packaging"
	"github.com/systemstart/sfpublish/pkg/publish"
	"github.com/systemstart/sfpublish/pkg/salesforce"
)

// Pipeline maps, packages and publishes the configured resources.
type Pipeline struct {
	cfg       api.Config
	root      string
	debug     bool
	transport publish.Transport
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithTransport replaces the Salesforce SOAP transport.
func WithTransport(t publish.Transport) Option {
	return func(p *Pipeline) { p.transport = t }
}

// WithRoot sets the directory relative globs are resolved against.
func WithRoot(dir string) Option {
	return func(p *Pipeline) { p.root = dir }
}

// WithDebug overrides the configuration's debug flag.
func WithDebug(enabled bool) Option {
	return func(p *Pipeline) { p.debug = enabled }
}

// NewPipeline validates cfg and builds a Pipeline. Nothing touches the
// filesystem or network until Run.
func NewPipeline(cfg *api.Config, opts ...Option) (*Pipeline, error) {
	if cfg == nil {
		return nil, &api.ConfigurationError{Err: errors.New("configuration is required")}
	}

	c := *cfg
	c.Resources = slices.Clone(cfg.Resources)
	c.ApplyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}

	p := &Pipeline{
		cfg:   c,
		root:  c.Dir,
		debug: c.Debug,
	}
	if p.root == "" {
		p.root = "."
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.transport == nil {
		p.transport = salesforce.New(c.Salesforce)
	}
	return p, nil
}

// Run executes one pass: resolve every resource, package every resource,
// log in and upsert the whole batch. Packaging errors abort before any
// network call. The login happens even with no resources so bad
// credentials still fail the build. Errors are returned unmodified.
func (p *Pipeline) Run(ctx context.Context) error {
	if len(p.cfg.Resources) == 0 {
		slog.Warn("no resources configured, checking credentials only")
	}

	resources, err := mapping.New(p.root).ResolveAll(p.cfg.Resources)
	if err != nil {
		return err
	}

	artifacts, err := packaging.New(p.root, packaging.WithDebug(p.debug)).PackageAll(resources)
	if err != nil {
		return err
	}

	client := publish.NewClient(p.transport, p.cfg.Salesforce)
	if err := client.Authenticate(ctx); err != nil {
		return err
	}
	if err := client.PublishAll(ctx, artifacts); err != nil {
		return err
	}

	slog.Info("upload completed", "resources", len(artifacts))
	return nil
}

// AfterBuild is the build hook entry point: it runs the pipeline and calls
// done exactly once, with nil on success or the first error.
func (p *Pipeline) AfterBuild(ctx context.Context, done func(error)) {
	done(p.Run(ctx))
}
