package salesforce

import (
	"context"
	"encoding/xml"
	"errors"
	"strings"

	"github.com/systemstart/sfpublish/pkg/publish"
)

type loginRequest struct {
	XMLName  xml.Name `xml:"urn:partner.soap.sforce.com login"`
	Username string   `xml:"username"`
	Password string   `xml:"password"`
}

type loginResult struct {
	MetadataServerURL string `xml:"metadataServerUrl"`
	ServerURL         string `xml:"serverUrl"`
	SessionID         string `xml:"sessionId"`
	UserID            string `xml:"userId"`
}

// LoginURL is the partner SOAP endpoint used for login.
func (t *Transport) LoginURL() string {
	return t.loginURL + "/services/Soap/u/" + t.apiVersion
}

// Login exchanges username and secret (password followed by the security
// token) for a session.
func (t *Transport) Login(ctx context.Context, username, secret string) (publish.Session, error) {
	env, err := t.call(ctx, t.LoginURL(), "login", nil, loginRequest{
		Username: username,
		Password: secret,
	})
	if err != nil {
		return publish.Session{}, err
	}

	res := env.Body.Login
	if res == nil || res.SessionID == "" {
		return publish.Session{}, errors.New("login response carried no session")
	}

	metadataURL := res.MetadataServerURL
	if metadataURL == "" {
		metadataURL = strings.Replace(res.ServerURL, "/Soap/u/", "/Soap/m/", 1)
	}

	return publish.Session{
		ID:                res.SessionID,
		UserID:            res.UserID,
		ServerURL:         res.ServerURL,
		MetadataServerURL: metadataURL,
	}, nil
}
