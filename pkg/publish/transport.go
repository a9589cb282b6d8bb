// Package publish owns the authenticated session and pushes artifacts to
// the remote endpoint.
package publish

import (
	"context"

	"github.com/systemstart/sfpublish/pkg/api"
)

// Session is the handle returned by a successful login.
type Session struct {
	ID                string
	UserID            string
	ServerURL         string
	MetadataServerURL string
}

// Transport performs the two remote calls. Implementations make exactly one
// request per call and do not retry.
type Transport interface {
	Login(ctx context.Context, username, secret string) (Session, error)
	Upsert(ctx context.Context, session Session, metadataType string, artifacts []api.Artifact) (Response, error)
}
