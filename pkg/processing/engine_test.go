package processing

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/klauspost/compress/zip"
	"github.com/systemstart/sfpublish/pkg/api"
	"github.com/systemstart/sfpublish/pkg/publish"
)

type fakeTransport struct {
	loginErr error
	response func([]api.Artifact) publish.Response

	calls []string
	sent  []api.Artifact
}

func (f *fakeTransport) Login(context.Context, string, string) (publish.Session, error) {
	f.calls = append(f.calls, "login")
	if f.loginErr != nil {
		return publish.Session{}, f.loginErr
	}
	return publish.Session{ID: "SID", MetadataServerURL: "https://example.invalid/m"}, nil
}

func (f *fakeTransport) Upsert(_ context.Context, _ publish.Session, _ string, artifacts []api.Artifact) (publish.Response, error) {
	f.calls = append(f.calls, "upsert")
	f.sent = artifacts
	if f.response != nil {
		return f.response(artifacts), nil
	}
	results := make([]publish.Result, 0, len(artifacts))
	for _, a := range artifacts {
		results = append(results, publish.Result{FullName: a.FullName, Success: true})
	}
	return publish.FromResults(results), nil
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	p := filepath.Join(dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(p), 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func testConfig(dir string, resources ...api.ResourceSpec) *api.Config {
	return &api.Config{
		Dir: dir,
		Salesforce: api.SalesforceConfig{
			Username: "deploy@example.com",
			Password: "pw",
		},
		Resources: resources,
	}
}

func unzip(t *testing.T, a api.Artifact) map[string]string {
	t.Helper()
	raw, err := base64.StdEncoding.DecodeString(a.Content)
	if err != nil {
		t.Fatal(err)
	}
	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		t.Fatal(err)
	}
	out := make(map[string]string)
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatal(err)
		}
		data, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			t.Fatal(err)
		}
		out[f.Name] = string(data)
	}
	return out
}

func TestNewPipeline_Validation(t *testing.T) {
	if _, err := NewPipeline(nil); !api.IsConfigurationError(err) {
		t.Fatalf("expected configuration error for nil config, got %v", err)
	}

	cfg := testConfig(t.TempDir())
	cfg.Salesforce.Username = ""
	if _, err := NewPipeline(cfg); !api.IsConfigurationError(err) {
		t.Fatalf("expected configuration error for missing username, got %v", err)
	}

	cfg = testConfig(t.TempDir(), api.ResourceSpec{Files: []string{"*.css"}})
	if _, err := NewPipeline(cfg); !api.IsConfigurationError(err) {
		t.Fatalf("expected configuration error for unnamed resource, got %v", err)
	}
}

func TestNewPipeline_DoesNotMutateConfig(t *testing.T) {
	cfg := testConfig(t.TempDir(), api.ResourceSpec{Name: "styles", Files: []string{"*.css"}})
	if _, err := NewPipeline(cfg, WithTransport(&fakeTransport{})); err != nil {
		t.Fatal(err)
	}
	if cfg.Resources[0].CacheControl != "" || cfg.Salesforce.LoginURL != "" {
		t.Fatalf("caller's config was modified: %+v", cfg)
	}
}

func TestRun_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "css/a.css", "a{}")
	writeFile(t, dir, "css/b.css", "b{}")
	writeFile(t, dir, "js/app.js", "app()")

	ft := &fakeTransport{}
	p, err := NewPipeline(testConfig(dir, api.ResourceSpec{
		Name:     "styles",
		Files:    []string{"css/*.css"},
		BasePath: "css/",
	}), WithTransport(ft))
	if err != nil {
		t.Fatal(err)
	}

	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if diff := cmp.Diff([]string{"login", "upsert"}, ft.calls); diff != "" {
		t.Fatalf("call order mismatch (-want +got):\n%s", diff)
	}
	if len(ft.sent) != 1 {
		t.Fatalf("expected one artifact, got %d", len(ft.sent))
	}
	a := ft.sent[0]
	if a.FullName != "styles" || a.ContentType != "application/zip" {
		t.Fatalf("unexpected artifact %s / %s", a.FullName, a.ContentType)
	}
	if diff := cmp.Diff(map[string]string{"a.css": "a{}", "b.css": "b{}"}, unzip(t, a)); diff != "" {
		t.Fatalf("archive mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_NoMatchesAbortsBeforeNetwork(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "css/a.css", "a{}")

	ft := &fakeTransport{}
	p, err := NewPipeline(testConfig(dir,
		api.ResourceSpec{Name: "styles", Files: []string{"css/*.css"}},
		api.ResourceSpec{Name: "fonts", Files: []string{"fonts/*.woff2"}},
	), WithTransport(ft))
	if err != nil {
		t.Fatal(err)
	}

	err = p.Run(context.Background())
	var ce *api.ConfigurationError
	if !errors.As(err, &ce) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if ce.Resource != "fonts" {
		t.Fatalf("expected resource fonts, got %q", ce.Resource)
	}
	if len(ft.calls) != 0 {
		t.Fatalf("expected no network calls, got %v", ft.calls)
	}
}

func TestRun_AuthenticationFailure(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.js", "a")

	cause := errors.New("INVALID_LOGIN")
	ft := &fakeTransport{loginErr: cause}
	p, err := NewPipeline(testConfig(dir, api.ResourceSpec{Name: "js", Files: []string{"*.js"}}), WithTransport(ft))
	if err != nil {
		t.Fatal(err)
	}

	err = p.Run(context.Background())
	if !api.IsAuthenticationError(err) || !errors.Is(err, cause) {
		t.Fatalf("expected authentication error wrapping cause, got %v", err)
	}
	if diff := cmp.Diff([]string{"login"}, ft.calls); diff != "" {
		t.Fatalf("publish must not follow a failed login (-want +got):\n%s", diff)
	}
}

func TestRun_PublishFailure(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.js", "a")
	writeFile(t, dir, "b.css", "b")

	ft := &fakeTransport{response: func(artifacts []api.Artifact) publish.Response {
		return publish.FromResults([]publish.Result{
			{FullName: artifacts[0].FullName, Success: true},
			{FullName: artifacts[1].FullName, Errors: []publish.ResultError{{Message: "bad"}}},
		})
	}}
	p, err := NewPipeline(testConfig(dir,
		api.ResourceSpec{Name: "js", Files: []string{"*.js"}},
		api.ResourceSpec{Name: "css", Files: []string{"*.css"}},
	), WithTransport(ft))
	if err != nil {
		t.Fatal(err)
	}

	var pe *api.PublishError
	if err := p.Run(context.Background()); !errors.As(err, &pe) {
		t.Fatalf("expected publish error, got %v", err)
	}
	if pe.Reason != "with errors" || len(pe.Failures) != 1 || pe.Failures[0].FullName != "css" {
		t.Fatalf("unexpected publish error %+v", pe)
	}
}

func TestRun_NoResources(t *testing.T) {
	tests := []struct {
		name     string
		ft       *fakeTransport
		wantAuth bool
	}{
		{"valid credentials", &fakeTransport{}, false},
		{"bad credentials", &fakeTransport{loginErr: errors.New("INVALID_LOGIN")}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewPipeline(testConfig(t.TempDir()), WithTransport(tt.ft))
			if err != nil {
				t.Fatal(err)
			}

			err = p.Run(context.Background())
			if api.IsAuthenticationError(err) != tt.wantAuth {
				t.Fatalf("Run() error = %v, want authentication error = %v", err, tt.wantAuth)
			}
			if !tt.wantAuth && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff([]string{"login"}, tt.ft.calls); diff != "" {
				t.Fatalf("expected a login and no upload (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRun_DebugWritesArchive(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "css/a.css", "a{}")

	ft := &fakeTransport{}
	p, err := NewPipeline(testConfig(dir, api.ResourceSpec{Name: "styles", Files: []string{"css/*.css"}}),
		WithTransport(ft), WithDebug(true))
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(dir, "tmp", "styles.zip"))
	if err != nil {
		t.Fatalf("expected debug archive: %v", err)
	}
	if base64.StdEncoding.EncodeToString(raw) != ft.sent[0].Content {
		t.Fatal("debug archive does not match the published artifact")
	}
}

func TestAfterBuild_CallsDoneOnce(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.js", "a")

	tests := []struct {
		name    string
		ft      *fakeTransport
		wantErr bool
	}{
		{"success", &fakeTransport{}, false},
		{"failure", &fakeTransport{loginErr: errors.New("down")}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewPipeline(testConfig(dir, api.ResourceSpec{Name: "js", Files: []string{"*.js"}}), WithTransport(tt.ft))
			if err != nil {
				t.Fatal(err)
			}

			var calls int
			var got error
			p.AfterBuild(context.Background(), func(err error) {
				calls++
				got = err
			})

			if calls != 1 {
				t.Fatalf("expected done to be called once, got %d", calls)
			}
			if (got != nil) != tt.wantErr {
				t.Fatalf("done(%v), wantErr = %v", got, tt.wantErr)
			}
		})
	}
}
