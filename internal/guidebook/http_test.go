package guidebook

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aisa-it/guidebook/guidebook.go/internal/guidebook/apierrors"
	"github.com/aisa-it/guidebook/guidebook.go/internal/guidebook/config"
	"github.com/aisa-it/guidebook/guidebook.go/internal/guidebook/preview"
)

const sampleDoc = `<ul><li class="interactive" data-targetaction="button" data-reftarget="Save">Click Save</li></ul>` +
	`<p>Text <span class="interactive" data-targetaction="highlight" data-reftarget=".panel">panel</span></p>`

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.Default()
	cfg.MetricsAddr = ""
	cfg.PreviewFormat = preview.FormatRaw
	s, err := NewServer(cfg)
	require.NoError(t, err)
	t.Cleanup(s.Sessions().Close)
	return s
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func createSession(t *testing.T, s *Server, content, format string) string {
	t.Helper()
	body, err := json.Marshal(DocumentRequest{Content: content, Format: format})
	require.NoError(t, err)
	rec := do(t, s, http.MethodPost, "/api/sessions/", string(body))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[SessionResponse](t, rec).ID
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/api/_health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Guidebook", rec.Header().Get("Server"))
}

func TestSessionLifecycle(t *testing.T) {
	s := newTestServer(t)
	id := createSession(t, s, sampleDoc, "")

	rec := do(t, s, http.MethodGet, "/api/sessions/"+id+"/document/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, sampleDoc, decode[DocumentResponse](t, rec).HTML)

	rec = do(t, s, http.MethodGet, "/api/sessions/"+id+"/document/?format=view", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, decode[DocumentResponse](t, rec).HTML, `class="interactive-lightning"`)

	rec = do(t, s, http.MethodGet, "/api/sessions/"+id+"/document/?format=tiptap", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"type":"doc"`)

	rec = do(t, s, http.MethodGet, "/api/sessions/"+id+"/document/?format=pdf", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, apierrors.ErrUnknownFormat.Code, decode[apierrors.DefinedError](t, rec).Code)

	rec = do(t, s, http.MethodDelete, "/api/sessions/"+id+"/", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/sessions/"+id+"/document/", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, apierrors.ErrSessionNotFound.Code, decode[apierrors.DefinedError](t, rec).Code)

	rec = do(t, s, http.MethodGet, "/api/sessions/not-a-uuid/document/", "")
	assert.Equal(t, apierrors.ErrSessionIDBad.Code, decode[apierrors.DefinedError](t, rec).Code)
}

func TestCreateSessionFormats(t *testing.T) {
	s := newTestServer(t)

	id := createSession(t, s, "- <span class=\"interactive\" data-targetaction=\"button\" data-reftarget=\"Go\">Go</span>\n", FormatMarkdown)
	rec := do(t, s, http.MethodGet, "/api/sessions/"+id+"/nodes/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]any](t, rec), 1)

	rec = do(t, s, http.MethodPost, "/api/sessions/", `{"content":"x","format":"rtf"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodPost, "/api/sessions/", `{"content":"{not json","format":"tiptap"}`)
	assert.Equal(t, apierrors.ErrDocumentParse.Code, decode[apierrors.DefinedError](t, rec).Code)
}

func TestSessionLimit(t *testing.T) {
	cfg := config.Default()
	cfg.MetricsAddr = ""
	cfg.MaxSessions = 1
	s, err := NewServer(cfg)
	require.NoError(t, err)
	t.Cleanup(s.Sessions().Close)

	id := createSession(t, s, sampleDoc, "")

	rec := do(t, s, http.MethodPost, "/api/sessions/", `{"content":"<p>x</p>"}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, apierrors.ErrSessionLimit.Code, decode[apierrors.DefinedError](t, rec).Code)

	rec = do(t, s, http.MethodDelete, "/api/sessions/"+id+"/", "")
	require.Equal(t, http.StatusNoContent, rec.Code)
	createSession(t, s, "<p>x</p>", "")
}

func TestClickAndApply(t *testing.T) {
	s := newTestServer(t)
	id := createSession(t, s, sampleDoc, FormatHTML)
	base := "/api/sessions/" + id

	rec := do(t, s, http.MethodGet, base+"/edit/", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, s, http.MethodPost, base+"/click/", `{"selector":"p"}`)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, s, http.MethodPost, base+"/click/", `{"selector":"li > .interactive-lightning"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	state := decode[EditStateResponse](t, rec)
	assert.Equal(t, 1, state.Pos)
	assert.Equal(t, "action", string(state.Surface))
	require.NotNil(t, state.Form)
	assert.Equal(t, "Button Click Action", state.Form.Title)
	assert.Equal(t, "Save", state.Values.RefTarget)

	rec = do(t, s, http.MethodPost, base+"/edit/apply/", `{"action":"button","values":{"data-reftarget":""}}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	verr := decode[apierrors.DefinedError](t, rec)
	assert.Equal(t, apierrors.ErrValidation.Code, verr.Code)
	require.Len(t, verr.Fields, 1)
	assert.Equal(t, "data-reftarget", verr.Fields[0].Field)

	rec = do(t, s, http.MethodPost, base+"/edit/apply/", `{"action":"button","values":{"data-reftarget":"Publish"}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	applied := decode[ApplyResponse](t, rec)
	assert.Equal(t, "Publish", applied.Attrs["data-reftarget"])
	assert.Contains(t, applied.HTML, `data-reftarget="Publish"`)

	rec = do(t, s, http.MethodPost, base+"/edit/apply/", `{"attrs":{"data-targetaction":"button","data-reftarget":"X"}}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, apierrors.ErrNotEditing.Code, decode[apierrors.DefinedError](t, rec).Code)

	assert.Eventually(t, func() bool {
		rec := do(t, s, http.MethodGet, base+"/preview/", "")
		return rec.Code == http.StatusOK && strings.Contains(rec.Body.String(), "Publish")
	}, time.Second, 5*time.Millisecond)
}

func TestClickErrors(t *testing.T) {
	s := newTestServer(t)
	base := "/api/sessions/" + createSession(t, s, sampleDoc, "")

	rec := do(t, s, http.MethodPost, base+"/click/", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodPost, base+"/click/", `{"selector":"div[["}`)
	assert.Equal(t, apierrors.ErrSelectorInvalid.Code, decode[apierrors.DefinedError](t, rec).Code)

	rec = do(t, s, http.MethodPost, base+"/click/", `{"selector":"table"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, apierrors.ErrClickNoTarget.Code, decode[apierrors.DefinedError](t, rec).Code)
}

func TestNodes(t *testing.T) {
	s := newTestServer(t)
	base := "/api/sessions/" + createSession(t, s, sampleDoc, "")

	rec := do(t, s, http.MethodPost, base+"/nodes/", `{"kind":"comment","from":15,"to":19,"attrs":{}}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, decode[InsertResponse](t, rec).HTML, `<span class="interactive-comment">Text</span>`)

	rec = do(t, s, http.MethodPost, base+"/nodes/", `{"kind":"sequence","pos":16,"attrs":{"id":"inline"}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, apierrors.ErrInvalidRange.Code, decode[apierrors.DefinedError](t, rec).Code)

	rec = do(t, s, http.MethodPost, base+"/nodes/", `{"kind":"table"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodPost, base+"/nodes/1/toggle/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]bool{"interactive": false}, decode[map[string]bool](t, rec))

	rec = do(t, s, http.MethodDelete, base+"/nodes/15/?kind=comment", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, s, http.MethodDelete, base+"/nodes/1/?kind=span", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, apierrors.ErrKindMismatch.Code, decode[apierrors.DefinedError](t, rec).Code)
}

func TestFormsAndValidate(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/forms/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]any](t, rec), 7)

	rec = do(t, s, http.MethodPost, "/api/validate/", `{"kind":"sequence","attrs":{"id":"intro"}}`)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, s, http.MethodPost, "/api/validate/", `{"kind":"sequence","attrs":{"id":"1st"}}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestMetricsRegistry(t *testing.T) {
	s := newTestServer(t)
	id := createSession(t, s, sampleDoc, "")
	do(t, s, http.MethodPost, "/api/sessions/"+id+"/click/", `{"selector":"li > .interactive-lightning"}`)

	families, err := s.metrics.Registry.Gather()
	require.NoError(t, err)
	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["guidebook_clicks_total"])
	assert.True(t, names["guidebook_sessions"])
	assert.True(t, names["guidebook_boot_time"])
}
