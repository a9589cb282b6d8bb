package salesforce

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const (
	soapEnvelopeNS = "http://schemas.xmlsoap.org/soap/envelope/"
	xsiNS          = "http://www.w3.org/2001/XMLSchema-instance"

	// maxErrorBody bounds how much of an unparseable response ends up in an error.
	maxErrorBody = 512
)

// FaultError is a SOAP fault returned by the server.
type FaultError struct {
	Code    string
	Message string
}

func (e *FaultError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

type requestEnvelope struct {
	XMLName xml.Name       `xml:"soapenv:Envelope"`
	SoapEnv string         `xml:"xmlns:soapenv,attr"`
	XSI     string         `xml:"xmlns:xsi,attr"`
	Header  *requestHeader `xml:"soapenv:Header,omitempty"`
	Body    requestBody    `xml:"soapenv:Body"`
}

type requestHeader struct {
	Content any
}

type requestBody struct {
	Content any
}

type responseEnvelope struct {
	Body struct {
		Fault  *soapFault      `xml:"Fault"`
		Login  *loginResult    `xml:"loginResponse>result"`
		Upsert *upsertResponse `xml:"upsertMetadataResponse"`
	} `xml:"Body"`
}

type soapFault struct {
	Code   string `xml:"faultcode"`
	String string `xml:"faultstring"`
}

// call posts one SOAP request and decodes the envelope. It never retries.
func (t *Transport) call(ctx context.Context, url, action string, header, body any) (*responseEnvelope, error) {
	env := requestEnvelope{
		SoapEnv: soapEnvelopeNS,
		XSI:     xsiNS,
		Body:    requestBody{Content: body},
	}
	if header != nil {
		env.Header = &requestHeader{Content: header}
	}

	payload, err := xml.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("encoding %s request: %w", action, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(append([]byte(xml.Header), payload...)))
	if err != nil {
		return nil, fmt.Errorf("building %s request: %w", action, err)
	}
	req.Header.Set("Content-Type", "text/xml; charset=UTF-8")
	req.Header.Set("SOAPAction", action)

	start := time.Now()
	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request: %w", action, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s response: %w", action, err)
	}

	slog.Debug("soap call", "action", action, "url", url, "status", resp.StatusCode, "bytes", len(data), "duration", time.Since(start))

	var out responseEnvelope
	if err := xml.Unmarshal(data, &out); err != nil {
		if resp.StatusCode >= http.StatusMultipleChoices {
			return nil, fmt.Errorf("%s: HTTP %d: %s", action, resp.StatusCode, truncate(data))
		}
		return nil, fmt.Errorf("decoding %s response: %w", action, err)
	}

	if out.Body.Fault != nil {
		return nil, &FaultError{Code: out.Body.Fault.Code, Message: out.Body.Fault.String}
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("%s: HTTP %d: %s", action, resp.StatusCode, truncate(data))
	}

	return &out, nil
}

func truncate(data []byte) string {
	if len(data) > maxErrorBody {
		return string(data[:maxErrorBody]) + "..."
	}
	return string(data)
}
