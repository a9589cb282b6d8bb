package publish

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/systemstart/sfpublish/pkg/api"
)

// Client moves from unauthenticated to authenticated once and never back.
// One Client serves one run and is not safe for concurrent use.
type Client struct {
	transport Transport
	username  string
	secret    string
	session   *Session
}

// NewClient creates an unauthenticated client for the given credentials.
func NewClient(transport Transport, creds api.SalesforceConfig) *Client {
	return &Client{
		transport: transport,
		username:  creds.Username,
		secret:    creds.Secret(),
	}
}

// Authenticated reports whether a session has been established.
func (c *Client) Authenticated() bool {
	return c.session != nil
}

// Authenticate performs a single login. On failure the client stays
// unauthenticated and the transport error is wrapped unchanged.
func (c *Client) Authenticate(ctx context.Context) error {
	slog.Info("logging in to Salesforce", "username", c.username)

	session, err := c.transport.Login(ctx, c.username, c.secret)
	if err != nil {
		return &api.AuthenticationError{Err: err}
	}

	c.session = &session
	slog.Info("connected to Salesforce", "userId", session.UserID, "server", session.ServerURL)
	return nil
}

// PublishAll upserts every artifact in one batch. It requires a prior
// successful Authenticate and rejects if any record failed.
func (c *Client) PublishAll(ctx context.Context, artifacts []api.Artifact) error {
	if c.session == nil {
		return api.ErrNotAuthenticated
	}
	if len(artifacts) == 0 {
		slog.Warn("no resources to upload")
		return nil
	}

	slog.Info("uploading resources", "count", len(artifacts))

	resp, err := c.transport.Upsert(ctx, *c.session, api.MetadataTypeStaticResource, artifacts)
	if err != nil {
		return &api.PublishError{Reason: "request failed", Err: err}
	}

	return interpret(resp)
}

func interpret(resp Response) error {
	switch resp.Kind {
	case ResponseAbsent:
		return &api.PublishError{Reason: "no results"}
	case ResponseSingle:
		if resp.Single.Success {
			logResult(resp.Single)
			return nil
		}
		logFailure(resp.Single)
		return &api.PublishError{
			Reason:   "rejected",
			Detail:   resp.Single,
			Failures: []api.FailedItem{failedItem(resp.Single)},
		}
	case ResponseList:
		var failures []api.FailedItem
		for _, r := range resp.List {
			if r.Success {
				logResult(r)
				continue
			}
			logFailure(r)
			failures = append(failures, failedItem(r))
		}
		if len(failures) > 0 {
			return &api.PublishError{Reason: "with errors", Failures: failures}
		}
		return nil
	default:
		return &api.PublishError{Reason: fmt.Sprintf("unexpected response shape %s", resp.Kind)}
	}
}

func failedItem(r Result) api.FailedItem {
	return api.FailedItem{FullName: r.FullName, Messages: r.Messages()}
}

func logResult(r Result) {
	slog.Debug("resource uploaded", "resource", r.FullName, "created", r.Created)
}

func logFailure(r Result) {
	slog.Error("resource upload failed", "resource", r.FullName, "errors", r.Messages())
}
