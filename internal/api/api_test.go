package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/starford/eleph/internal/library"
	"github.com/starford/eleph/internal/metadata"
	"github.com/starford/eleph/internal/testutil"
)

// testEnv sets up a temp library, SQLite DB, service, and router for testing.
// An empty authToken means disabled mode; otherwise token mode.
func testEnv(t *testing.T, authToken string) (*library.Service, http.Handler) {
	t.Helper()
	return testEnvWithSSE(t, authToken != "", authToken, nil)
}

func testEnvWithSSE(t *testing.T, authEnabled bool, authToken string, sseHandler http.Handler) (*library.Service, http.Handler) {
	t.Helper()
	svc, store := testutil.TestService(t)
	meta := metadata.NewStore(store.Root(), testutil.Logger())
	router := NewRouter(svc, meta, authEnabled, authToken, sseHandler)
	return svc, router
}

func do(t *testing.T, router http.Handler, method, target string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, rd)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func createNote(t *testing.T, router http.Handler, body map[string]any) NoteDetail {
	t.Helper()
	w := do(t, router, http.MethodPost, "/notes", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", w.Code, w.Body.String())
	}
	var d NoteDetail
	_ = json.Unmarshal(w.Body.Bytes(), &d)
	return d
}

func TestCreateAndGetNote(t *testing.T) {
	_, router := testEnv(t, "")

	created := createNote(t, router, map[string]any{"content": "# Hello\nWorld", "tags": []string{"greeting"}})
	if created.ID == "" {
		t.Fatal("created note has no id")
	}

	w := do(t, router, http.MethodGet, "/notes/"+created.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
	var note NoteDetail
	_ = json.Unmarshal(w.Body.Bytes(), &note)
	if note.Title != "Hello" {
		t.Errorf("title = %q, want Hello", note.Title)
	}
	if note.Content != "# Hello\nWorld" {
		t.Errorf("content = %q", note.Content)
	}
	if len(note.Tags) != 1 || note.Tags[0] != "greeting" {
		t.Errorf("tags = %v", note.Tags)
	}
	if etag := w.Header().Get("ETag"); etag != `"`+note.Checksum+`"` {
		t.Errorf("etag = %q", etag)
	}
}

func TestCreateNote_EmptyBodyUsesDefaults(t *testing.T) {
	_, router := testEnv(t, "")

	w := do(t, router, http.MethodPost, "/notes", nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("create = %d, body = %s", w.Code, w.Body.String())
	}
	var d NoteDetail
	_ = json.Unmarshal(w.Body.Bytes(), &d)
	if d.Title != "Untitled Document" || !strings.HasPrefix(d.Content, "# Untitled Document") {
		t.Errorf("detail = %+v", d)
	}
}

func TestCreateNote_ValidationErrors(t *testing.T) {
	_, router := testEnv(t, "")

	cases := []map[string]any{
		{"title": "two\nlines"},
		{"tags": []string{"ok", ""}},
		{"tags": []string{"a,b"}},
		{"tags": []string{`quo"te`}},
		{"title": "Q1---Q2"},
		{"tags": []string{"a---b"}},
	}
	for _, body := range cases {
		w := do(t, router, http.MethodPost, "/notes", body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("create %v = %d, want 400", body, w.Code)
		}
	}

	req := httptest.NewRequest(http.MethodPost, "/notes", strings.NewReader("{not json"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("invalid json = %d, want 400", w.Code)
	}
}

func TestUpdateWithOptimisticLocking(t *testing.T) {
	_, router := testEnv(t, "")
	created := createNote(t, router, map[string]any{"content": "v1"})

	// Update with correct checksum.
	update := map[string]any{"content": "v2"}
	w := do(t, router, http.MethodPut, "/notes/"+created.ID, update, "If-Match", `"`+created.Checksum+`"`)
	if w.Code != http.StatusOK {
		t.Fatalf("update with correct checksum = %d, body = %s", w.Code, w.Body.String())
	}

	// Update with stale checksum → 409.
	w = do(t, router, http.MethodPut, "/notes/"+created.ID, update, "If-Match", created.Checksum)
	if w.Code != http.StatusConflict {
		t.Errorf("update with stale checksum = %d, want 409", w.Code)
	}
}

func TestUpdateWithoutIfMatch(t *testing.T) {
	_, router := testEnv(t, "")
	created := createNote(t, router, map[string]any{"content": "v1"})

	// Update without If-Match should succeed (no locking enforced).
	w := do(t, router, http.MethodPut, "/notes/"+created.ID, map[string]any{"title": "Renamed", "tags": []string{}})
	if w.Code != http.StatusOK {
		t.Fatalf("update without If-Match = %d, want 200", w.Code)
	}
	var d NoteDetail
	_ = json.Unmarshal(w.Body.Bytes(), &d)
	if d.Title != "Renamed" || d.Content != "v1" {
		t.Errorf("detail = %+v", d)
	}
}

func TestUpdateNote_RejectsDelimiter(t *testing.T) {
	_, router := testEnv(t, "")
	created := createNote(t, router, map[string]any{"title": "Plan", "content": "hello body", "tags": []string{"work"}})

	w := do(t, router, http.MethodPut, "/notes/"+created.ID, map[string]any{"title": "Q1---Q2"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("update = %d, want 400", w.Code)
	}

	w = do(t, router, http.MethodGet, "/notes/"+created.ID, nil)
	var d NoteDetail
	_ = json.Unmarshal(w.Body.Bytes(), &d)
	if d.Title != "Plan" || d.Content != "hello body" || len(d.Tags) != 1 || d.Tags[0] != "work" {
		t.Errorf("stored note changed: %+v", d)
	}
}

func TestDeleteNote(t *testing.T) {
	_, router := testEnv(t, "")
	created := createNote(t, router, map[string]any{"content": "gone"})

	w := do(t, router, http.MethodDelete, "/notes/"+created.ID, nil)
	if w.Code != http.StatusNoContent {
		t.Errorf("delete = %d, want 204", w.Code)
	}

	// GET should now 404.
	w = do(t, router, http.MethodGet, "/notes/"+created.ID, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("get after delete = %d, want 404", w.Code)
	}

	w = do(t, router, http.MethodDelete, "/notes/"+created.ID, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("second delete = %d, want 404", w.Code)
	}
}

func TestListNotes(t *testing.T) {
	_, router := testEnv(t, "")

	createNote(t, router, map[string]any{"content": "# A", "tags": []string{"x"}})
	createNote(t, router, map[string]any{"content": "# B"})

	w := do(t, router, http.MethodGet, "/notes?limit=10", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list = %d", w.Code)
	}
	var resp NoteListResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Notes) != 2 || resp.Total != 2 {
		t.Errorf("list = %+v", resp)
	}

	w = do(t, router, http.MethodGet, "/notes?tag=x&sort=title", nil)
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Notes) != 1 || resp.Notes[0].Title != "A" {
		t.Errorf("filtered list = %+v", resp)
	}
}

func TestExport(t *testing.T) {
	_, router := testEnv(t, "")
	createNote(t, router, map[string]any{"content": "# A"})
	createNote(t, router, map[string]any{"content": "# B", "tags": []string{"y"}})

	w := do(t, router, http.MethodGet, "/export", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("export = %d", w.Code)
	}
	var resp ExportResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Notes) != 2 {
		t.Fatalf("notes = %+v", resp.Notes)
	}
	for _, n := range resp.Notes {
		if n.ID == "" || n.Content == "" {
			t.Errorf("incomplete note %+v", n)
		}
	}
}

func TestNoteHTMLAndPreview(t *testing.T) {
	_, router := testEnv(t, "")
	created := createNote(t, router, map[string]any{"content": "# Title\n\nFirst *para*.\n- item"})

	w := do(t, router, http.MethodGet, "/notes/"+created.ID+"/html", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("html = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("content type = %q", ct)
	}
	body := w.Body.String()
	for _, want := range []string{"<!DOCTYPE html>", "<h1>Title</h1>", "<p><em>First para.</em></p>", "<li>item</li>"} {
		if !strings.Contains(body, want) {
			t.Errorf("html missing %q:\n%s", want, body)
		}
	}

	w = do(t, router, http.MethodGet, "/notes/"+created.ID+"/preview", nil)
	var p PreviewResponse
	_ = json.Unmarshal(w.Body.Bytes(), &p)
	if p.Title != "Title" || p.Preview != "First para. - item" {
		t.Errorf("preview = %+v", p)
	}

	w = do(t, router, http.MethodGet, "/notes/missing/html", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("missing html = %d, want 404", w.Code)
	}
}

func TestSearchEndpoint(t *testing.T) {
	_, router := testEnv(t, "")
	createNote(t, router, map[string]any{"content": "uniquetoken here"})

	w := do(t, router, http.MethodGet, "/search?q=uniquetoken", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("search = %d, body = %s", w.Code, w.Body.String())
	}
	var resp SearchResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Results) != 1 {
		t.Errorf("search results = %d, want 1", len(resp.Results))
	}
}

func TestSearchMissingQuery(t *testing.T) {
	_, router := testEnv(t, "")

	w := do(t, router, http.MethodGet, "/search", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("search no query = %d, want 400", w.Code)
	}
}

func TestTagsEndpoint(t *testing.T) {
	_, router := testEnv(t, "")
	createNote(t, router, map[string]any{"tags": []string{"go", "draft"}})
	createNote(t, router, map[string]any{"tags": []string{"go"}})

	w := do(t, router, http.MethodGet, "/tags", nil)
	var resp TagsResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Tags) != 2 || resp.Tags[0].Tag != "go" || resp.Tags[0].Count != 2 {
		t.Errorf("tags = %+v", resp.Tags)
	}
}

func TestSidebar(t *testing.T) {
	_, router := testEnv(t, "")

	w := do(t, router, http.MethodGet, "/sidebar", nil)
	var sb SidebarResponse
	_ = json.Unmarshal(w.Body.Bytes(), &sb)
	if len(sb.Folders) != 4 || sb.Folders[0] != "All Notes" || len(sb.Tags) != 4 {
		t.Fatalf("default sidebar = %+v", sb)
	}

	w = do(t, router, http.MethodPost, "/sidebar/folders", map[string]string{"name": "Recipes"})
	if w.Code != http.StatusOK {
		t.Fatalf("add folder = %d, body = %s", w.Code, w.Body.String())
	}
	w = do(t, router, http.MethodPost, "/sidebar/folders", map[string]string{"name": "Recipes"})
	_ = json.Unmarshal(w.Body.Bytes(), &sb)
	if len(sb.Folders) != 5 {
		t.Errorf("folders after duplicate add = %v", sb.Folders)
	}

	w = do(t, router, http.MethodDelete, "/sidebar/folders/All%20Notes", nil)
	_ = json.Unmarshal(w.Body.Bytes(), &sb)
	if len(sb.Folders) != 4 || sb.Folders[0] != "Personal" {
		t.Errorf("folders after remove = %v", sb.Folders)
	}

	w = do(t, router, http.MethodPost, "/sidebar/tags", map[string]string{"name": "urgent"})
	_ = json.Unmarshal(w.Body.Bytes(), &sb)
	if len(sb.Tags) != 5 {
		t.Errorf("tags after add = %v", sb.Tags)
	}
	w = do(t, router, http.MethodDelete, "/sidebar/tags/nonexistent", nil)
	if w.Code != http.StatusOK {
		t.Errorf("remove absent tag = %d, want 200", w.Code)
	}

	w = do(t, router, http.MethodPost, "/sidebar/tags", map[string]string{"name": ""})
	if w.Code != http.StatusBadRequest {
		t.Errorf("empty tag = %d, want 400", w.Code)
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	_, router := testEnv(t, "secret123")

	w := do(t, router, http.MethodPost, "/notes", map[string]any{"content": "test"}, "Authorization", "Bearer secret123")
	if w.Code != http.StatusCreated {
		t.Errorf("authed create = %d, want 201", w.Code)
	}
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	_, router := testEnv(t, "secret123")

	w := do(t, router, http.MethodGet, "/notes", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("unauthed = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_WrongToken(t *testing.T) {
	_, router := testEnv(t, "secret123")

	w := do(t, router, http.MethodGet, "/notes", nil, "Authorization", "Bearer wrong")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_Disabled(t *testing.T) {
	_, router := testEnv(t, "")

	w := do(t, router, http.MethodGet, "/notes", nil)
	if w.Code != http.StatusOK {
		t.Errorf("no auth = %d, want 200", w.Code)
	}
}

func TestGetNote_NotFound(t *testing.T) {
	_, router := testEnv(t, "")

	w := do(t, router, http.MethodGet, "/notes/nope", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("missing note = %d, want 404", w.Code)
	}
}

func TestGetNote_InvalidID(t *testing.T) {
	_, router := testEnv(t, "")

	w := do(t, router, http.MethodGet, "/notes/.hidden", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("invalid id = %d, want 400", w.Code)
	}
}

func TestUpdateNote_NotFound(t *testing.T) {
	_, router := testEnv(t, "")

	w := do(t, router, http.MethodPut, "/notes/ghost", map[string]any{"content": "x"})
	if w.Code != http.StatusNotFound {
		t.Errorf("update missing = %d, want 404", w.Code)
	}
}

// SSE endpoint auth tests.

// blockingSSE writes headers and blocks until the request context is done.
var blockingSSE = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.WriteHeader(http.StatusOK)
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
	<-r.Context().Done()
})

func TestSSEEvents_AuthProtected(t *testing.T) {
	_, router := testEnvWithSSE(t, true, "secret", blockingSSE)

	// No token → 401.
	w := do(t, router, http.MethodGet, "/events", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("SSE no auth = %d, want 401", w.Code)
	}
}

func TestSSEEvents_AuthDisabled(t *testing.T) {
	_, router := testEnvWithSSE(t, false, "", blockingSSE)

	// Disabled mode → should not 401. SSE handler will write 200 and block,
	// so we cancel the context after a short time.
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code == http.StatusUnauthorized {
		t.Error("SSE should not require auth when disabled")
	}
}

func TestSSEEvents_ValidToken(t *testing.T) {
	_, router := testEnvWithSSE(t, true, "tok", blockingSSE)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	req.Header.Set("Authorization", "Bearer tok")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code == http.StatusUnauthorized {
		t.Error("SSE with valid token should not 401")
	}
}
