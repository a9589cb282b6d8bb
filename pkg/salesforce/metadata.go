package salesforce

import (
	"context"
	"encoding/xml"
	"errors"

	"github.com/systemstart/sfpublish/pkg/api"
	"github.com/systemstart/sfpublish/pkg/publish"
)

type sessionHeader struct {
	XMLName   xml.Name `xml:"http://soap.sforce.com/2006/04/metadata SessionHeader"`
	SessionID string   `xml:"sessionId"`
}

type upsertRequest struct {
	XMLName  xml.Name         `xml:"http://soap.sforce.com/2006/04/metadata upsertMetadata"`
	Metadata []metadataRecord `xml:"metadata"`
}

// metadataRecord is a StaticResource. Element order follows the WSDL.
type metadataRecord struct {
	Type         string `xml:"xsi:type,attr"`
	FullName     string `xml:"fullName"`
	CacheControl string `xml:"cacheControl,omitempty"`
	Content      string `xml:"content"`
	ContentType  string `xml:"contentType"`
}

type upsertResponse struct {
	Results []upsertResult `xml:"result"`
}

type upsertResult struct {
	Created  bool          `xml:"created"`
	FullName string        `xml:"fullName"`
	Success  bool          `xml:"success"`
	Errors   []upsertError `xml:"errors"`
}

type upsertError struct {
	StatusCode string   `xml:"statusCode"`
	Message    string   `xml:"message"`
	Fields     []string `xml:"fields"`
}

// Upsert sends all artifacts in one upsertMetadata call and shapes the
// results: no response element or no results is absent, one result is a
// single object, more is a list.
func (t *Transport) Upsert(ctx context.Context, session publish.Session, metadataType string, artifacts []api.Artifact) (publish.Response, error) {
	if session.MetadataServerURL == "" {
		return publish.Response{}, errors.New("session has no metadata server URL")
	}

	records := make([]metadataRecord, 0, len(artifacts))
	for _, a := range artifacts {
		records = append(records, metadataRecord{
			Type:         metadataType,
			FullName:     a.FullName,
			CacheControl: a.CacheControl,
			Content:      a.Content,
			ContentType:  a.ContentType,
		})
	}

	env, err := t.call(ctx, session.MetadataServerURL, "upsertMetadata",
		sessionHeader{SessionID: session.ID},
		upsertRequest{Metadata: records})
	if err != nil {
		return publish.Response{}, err
	}

	if env.Body.Upsert == nil {
		return publish.Response{Kind: publish.ResponseAbsent}, nil
	}

	results := make([]publish.Result, 0, len(env.Body.Upsert.Results))
	for _, r := range env.Body.Upsert.Results {
		res := publish.Result{FullName: r.FullName, Created: r.Created, Success: r.Success}
		for _, e := range r.Errors {
			res.Errors = append(res.Errors, publish.ResultError{
				StatusCode: e.StatusCode,
				Message:    e.Message,
				Fields:     e.Fields,
			})
		}
		results = append(results, res)
	}
	return publish.FromResults(results), nil
}
