package openapi_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/guarayo/cuentos/pkg/openapi"
)

func TestNewSpec(t *testing.T) {
	spec := openapi.NewSpec("Test API", "1.0.0")

	if spec.OpenAPI != "3.1.0" {
		t.Errorf("openapi version: got %s, want 3.1.0", spec.OpenAPI)
	}
	if spec.Info.Title != "Test API" || spec.Info.Version != "1.0.0" {
		t.Errorf("info: got %+v", spec.Info)
	}
	if spec.Components == nil || spec.Paths == nil {
		t.Fatal("components and paths should be initialized")
	}
}

func TestDefaultComponents(t *testing.T) {
	c := openapi.NewComponents()

	for _, name := range []string{"BadRequest", "Unauthorized", "Forbidden", "NotFound", "Conflict", "BadGateway", "Unavailable"} {
		if _, ok := c.Responses[name]; !ok {
			t.Errorf("missing default response %s", name)
		}
	}
	if _, ok := c.Schemas["Error"]; !ok {
		t.Error("missing Error schema")
	}
	if s := c.SecuritySchemes["bearer"]; s == nil || s.Scheme != "bearer" {
		t.Errorf("bearer scheme = %+v", s)
	}
}

func TestAddSchemas(t *testing.T) {
	c := openapi.NewComponents()
	c.AddSchemas(map[string]*openapi.Schema{"Story": {Type: "object"}})

	if _, ok := c.Schemas["Story"]; !ok {
		t.Error("Story schema not added")
	}
	if _, ok := c.Schemas["Error"]; !ok {
		t.Error("default Error schema should still exist")
	}
}

func TestAddOperation(t *testing.T) {
	spec := openapi.NewSpec("Test", "1.0.0")
	list := &openapi.Operation{Summary: "List"}
	create := &openapi.Operation{Summary: "Create"}
	media := &openapi.Operation{Summary: "Media"}

	spec.AddOperation("GET", "/stories", list)
	spec.AddOperation("POST", "/stories", create)
	spec.AddOperation("GET", "/media/{key...}", media)

	item := spec.Paths["/stories"]
	if item.Get != list || item.Post != create {
		t.Errorf("operations not attached to /stories: %+v", item)
	}
	if got := spec.Paths["/media/{key}"]; got == nil || got.Get != media {
		t.Error("wildcard pattern should be rewritten to {key}")
	}
}

func TestHelpers(t *testing.T) {
	if ref := openapi.SchemaRef("Story"); ref.Ref != "#/components/schemas/Story" {
		t.Errorf("SchemaRef: got %s", ref.Ref)
	}
	if ref := openapi.ResponseRef("NotFound"); ref.Ref != "#/components/responses/NotFound" {
		t.Errorf("ResponseRef: got %s", ref.Ref)
	}

	body := openapi.RequestBodyMultipart("StoryForm", true)
	if _, ok := body.Content["multipart/form-data"]; !ok || !body.Required {
		t.Errorf("RequestBodyMultipart: got %+v", body)
	}

	p := openapi.PathParam("id", "Story ID")
	if p.In != "path" || !p.Required || p.Schema.Format != "uuid" {
		t.Errorf("PathParam: got %+v", p)
	}

	q := openapi.QueryParam("q", "string", "Search text", false)
	if q.In != "query" || q.Required || q.Schema.Type != "string" {
		t.Errorf("QueryParam: got %+v", q)
	}
}

func TestNewDocument(t *testing.T) {
	spec := openapi.NewSpec("Test", "1.0.0")
	spec.AddOperation("DELETE", "/stories/{id}", &openapi.Operation{
		Security:  openapi.Bearer,
		Responses: map[int]*openapi.Response{204: openapi.ResponseEmpty("Deleted")},
	})

	doc, err := openapi.NewDocument(spec)
	if err != nil {
		t.Fatalf("NewDocument() error: %v", err)
	}

	var parsed struct {
		OpenAPI string `json:"openapi"`
		Paths   map[string]struct {
			Delete struct {
				Security  []map[string][]string `json:"security"`
				Responses map[string]any        `json:"responses"`
			} `json:"delete"`
		} `json:"paths"`
	}
	if err := json.Unmarshal(doc.Bytes(), &parsed); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	op := parsed.Paths["/stories/{id}"].Delete
	if _, ok := op.Responses["204"]; !ok {
		t.Errorf("responses = %v, want 204", op.Responses)
	}
	if len(op.Security) != 1 {
		t.Errorf("security = %v, want bearer", op.Security)
	}

	other, _ := openapi.NewDocument(openapi.NewSpec("Test", "1.0.1"))
	if doc.ETag() == other.ETag() {
		t.Error("different documents share an ETag")
	}
}

func TestDocumentServeHTTP(t *testing.T) {
	doc, err := openapi.NewDocument(openapi.NewSpec("Test", "1.0.0"))
	if err != nil {
		t.Fatalf("NewDocument() error: %v", err)
	}

	t.Run("full response", func(t *testing.T) {
		rec := httptest.NewRecorder()
		doc.ServeHTTP(rec, httptest.NewRequest("GET", "/openapi.json", nil))

		if rec.Code != http.StatusOK {
			t.Errorf("status: got %d, want 200", rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
			t.Errorf("content-type: got %s", ct)
		}
		if rec.Header().Get("ETag") != doc.ETag() {
			t.Errorf("etag: got %s, want %s", rec.Header().Get("ETag"), doc.ETag())
		}
		if rec.Body.String() != string(doc.Bytes()) {
			t.Error("body differs from document bytes")
		}
	})

	t.Run("not modified", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/openapi.json", nil)
		req.Header.Set("If-None-Match", doc.ETag())
		rec := httptest.NewRecorder()
		doc.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotModified {
			t.Errorf("status: got %d, want 304", rec.Code)
		}
		if rec.Body.Len() != 0 {
			t.Errorf("body: got %d bytes, want none", rec.Body.Len())
		}
	})
}

func TestConfigFinalize(t *testing.T) {
	cfg := openapi.Config{}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}
	if cfg.Title != "Cuentos de Guarayo API" {
		t.Errorf("title: got %s", cfg.Title)
	}

	t.Setenv("TEST_TITLE", "Custom API")
	env := &openapi.ConfigEnv{Title: "TEST_TITLE"}
	if err := cfg.Finalize(env); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}
	if cfg.Title != "Custom API" {
		t.Errorf("title: got %s, want Custom API", cfg.Title)
	}

	cfg.Merge(&openapi.Config{Description: "Overlay", ContactEmail: "cuentos@example.org"})
	if cfg.Description != "Overlay" || cfg.Title != "Custom API" || cfg.ContactEmail != "cuentos@example.org" {
		t.Errorf("merge: got %+v", cfg)
	}
}

func TestConfigApply(t *testing.T) {
	cfg := openapi.Config{ContactName: "Biblioteca Guarayo"}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	spec := openapi.NewSpec("placeholder", "1.0.0")
	cfg.Apply(spec)

	if spec.Info.Title != "Cuentos de Guarayo API" || spec.Info.Version != "1.0.0" {
		t.Errorf("info: got %+v", spec.Info)
	}
	if spec.Info.Contact == nil || spec.Info.Contact.Name != "Biblioteca Guarayo" {
		t.Errorf("contact: got %+v", spec.Info.Contact)
	}
	if spec.Info.License == nil || spec.Info.License.Identifier != "CC-BY-4.0" {
		t.Errorf("license: got %+v", spec.Info.License)
	}

	bare := openapi.NewSpec("x", "1")
	(&openapi.Config{Title: "x"}).Apply(bare)
	if bare.Info.Contact != nil || bare.Info.License != nil {
		t.Errorf("empty metadata should be omitted: %+v", bare.Info)
	}
}
