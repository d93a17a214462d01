package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vedicroots/vedicroots/backend/cms-services/internal/content"
	"github.com/vedicroots/vedicroots/backend/cms-services/pkg/middleware"
)

// passToken / passVerifier let tests exercise guarded routes without a real JWT
type passToken struct{}

func (passToken) Claims(v interface{}) error {
	if m, ok := v.(*map[string]interface{}); ok {
		*m = map[string]interface{}{"sub": "editor-1", "email": "editor@test", "role": "editor"}
		return nil
	}
	return fmt.Errorf("unsupported claims type")
}

type passVerifier struct{}

func (passVerifier) Verify(ctx context.Context, raw string) (middleware.Token, error) {
	if raw == "editor-token" {
		return passToken{}, nil
	}
	return nil, fmt.Errorf("invalid token")
}

func newContentEngine(t *testing.T) *gin.Engine {
	t.Helper()
	g := gin.New()
	store := content.NewStore(content.NewMemoryRepository())
	NewContentHandler(store).Register(g, middleware.RequireAuth(passVerifier{}))
	return g
}

func doJSON(t *testing.T, g *gin.Engine, method, path, body, token string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	w := httptest.NewRecorder()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	g.ServeHTTP(w, req)
	var resp map[string]interface{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

func TestGetHomepage_PublicRead(t *testing.T) {
	g := newContentEngine(t)
	w, resp := doJSON(t, g, http.MethodGet, "/api/cms/homepage", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, resp["success"])
	data := resp["data"].(map[string]interface{})
	sections := data["sections"].(map[string]interface{})
	assert.Contains(t, sections, "hero")
}

func TestMutationsRequireAuth(t *testing.T) {
	g := newContentEngine(t)
	for _, tc := range []struct{ method, path, body string }{
		{http.MethodPut, "/api/cms/homepage", `{"sections":{"hero":{}}}`},
		{http.MethodPut, "/api/cms/section", `{"section":"hero","data":{}}`},
		{http.MethodPost, "/api/cms/reset", ""},
		{http.MethodPut, "/api/cms/content/sanskrit-school/section", `{"section":"hero","data":{}}`},
	} {
		w, _ := doJSON(t, g, tc.method, tc.path, tc.body, "")
		require.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", tc.method, tc.path)
	}
}

// subjectToken / subjectVerifier map "tok-<sub>" bearer values onto distinct
// editors so guard-chain tests can exercise per-editor behavior.
type subjectToken struct{ sub string }

func (t subjectToken) Claims(v interface{}) error {
	if m, ok := v.(*map[string]interface{}); ok {
		*m = map[string]interface{}{"sub": t.sub, "email": t.sub + "@test", "role": "editor"}
		return nil
	}
	return fmt.Errorf("unsupported claims type")
}

type subjectVerifier struct{}

func (subjectVerifier) Verify(ctx context.Context, raw string) (middleware.Token, error) {
	if sub, ok := strings.CutPrefix(raw, "tok-"); ok && sub != "" {
		return subjectToken{sub: sub}, nil
	}
	return nil, fmt.Errorf("invalid token")
}

func TestMutationLimiter_PerEditorBudget(t *testing.T) {
	g := gin.New()
	store := content.NewStore(content.NewMemoryRepository())
	NewContentHandler(store).Register(g,
		middleware.RequireAuth(subjectVerifier{}),
		middleware.RateLimitMiddleware(0.0001, 1),
	)

	body := `{"section":"hero","data":{"title":"x"}}`
	// two editors behind the same IP each get their own budget
	w, _ := doJSON(t, g, http.MethodPut, "/api/cms/section", body, "tok-cms-anu")
	require.Equal(t, http.StatusOK, w.Code)
	w, _ = doJSON(t, g, http.MethodPut, "/api/cms/section", body, "tok-cms-ravi")
	require.Equal(t, http.StatusOK, w.Code)

	w, resp := doJSON(t, g, http.MethodPut, "/api/cms/section", body, "tok-cms-anu")
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, false, resp["success"])

	// public reads are not behind the mutation limiter
	w, _ = doJSON(t, g, http.MethodGet, "/api/cms/homepage", "", "")
	require.Equal(t, http.StatusOK, w.Code)
}

func TestUpdateSection_FaqVisibleOnNextGet(t *testing.T) {
	g := newContentEngine(t)

	body := `{"section":"faq","data":{"heading":"FAQ","items":[{"question":"When?","answer":"Now"}]}}`
	w, resp := doJSON(t, g, http.MethodPut, "/api/cms/section", body, "editor-token")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, resp["success"])

	w, resp = doJSON(t, g, http.MethodGet, "/api/cms/homepage", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	data := resp["data"].(map[string]interface{})
	sections := data["sections"].(map[string]interface{})
	faq, err := json.Marshal(sections["faq"])
	require.NoError(t, err)
	assert.JSONEq(t, `{"heading":"FAQ","items":[{"question":"When?","answer":"Now"}]}`, string(faq))
}

func TestUpdateSection_InvalidName(t *testing.T) {
	g := newContentEngine(t)
	w, resp := doJSON(t, g, http.MethodPut, "/api/cms/section", `{"section":"not-a-real-section","data":{"x":1}}`, "editor-token")
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid section name", resp["error"])
}

func TestUpdateSection_MissingFields(t *testing.T) {
	g := newContentEngine(t)
	for _, body := range []string{`{}`, `{"section":"hero"}`, `{"data":{"x":1}}`} {
		w, _ := doJSON(t, g, http.MethodPut, "/api/cms/section", body, "editor-token")
		require.Equal(t, http.StatusBadRequest, w.Code, "body=%s", body)
	}
}

func TestReplaceDocument_RoundTrip(t *testing.T) {
	g := newContentEngine(t)

	body := `{"sections":{"hero":{"title":"Replaced"},"cta":{"title":"Go"}}}`
	w, resp := doJSON(t, g, http.MethodPut, "/api/cms/homepage", body, "editor-token")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, resp["success"])

	w, resp = doJSON(t, g, http.MethodGet, "/api/cms/homepage", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	data := resp["data"].(map[string]interface{})
	sections := data["sections"].(map[string]interface{})
	assert.Len(t, sections, 2)
	hero, _ := json.Marshal(sections["hero"])
	assert.JSONEq(t, `{"title":"Replaced"}`, string(hero))
}

func TestStaleVersionRejected(t *testing.T) {
	g := newContentEngine(t)

	// load to learn the current version
	_, resp := doJSON(t, g, http.MethodGet, "/api/cms/homepage", "", "")
	version := int64(resp["data"].(map[string]interface{})["version"].(float64))

	body := fmt.Sprintf(`{"section":"hero","data":{"title":"A"},"version":%d}`, version)
	w, _ := doJSON(t, g, http.MethodPut, "/api/cms/section", body, "editor-token")
	require.Equal(t, http.StatusOK, w.Code)

	// same version again: conflict
	body = fmt.Sprintf(`{"section":"hero","data":{"title":"B"},"version":%d}`, version)
	w, _ = doJSON(t, g, http.MethodPut, "/api/cms/section", body, "editor-token")
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestReset_RestoresDefaults(t *testing.T) {
	g := newContentEngine(t)

	w, _ := doJSON(t, g, http.MethodPut, "/api/cms/section", `{"section":"hero","data":{"title":"Edited"}}`, "editor-token")
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = doJSON(t, g, http.MethodPost, "/api/cms/reset", "", "editor-token")
	require.Equal(t, http.StatusOK, w.Code)

	_, resp := doJSON(t, g, http.MethodGet, "/api/cms/homepage", "", "")
	data := resp["data"].(map[string]interface{})
	sections := data["sections"].(map[string]interface{})
	hero, _ := json.Marshal(sections["hero"])
	assert.NotContains(t, string(hero), "Edited")
}

func TestUnknownDomain_NotFound(t *testing.T) {
	g := newContentEngine(t)
	w, _ := doJSON(t, g, http.MethodGet, "/api/cms/content/not-a-domain", "", "")
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestSanskritSchoolDomain(t *testing.T) {
	g := newContentEngine(t)

	w, _ := doJSON(t, g, http.MethodPut, "/api/cms/content/sanskrit-school/section", `{"section":"curriculum","data":{"levels":["1","2"]}}`, "editor-token")
	require.Equal(t, http.StatusOK, w.Code)

	// homepage-only section names are rejected for this domain
	w, resp := doJSON(t, g, http.MethodPut, "/api/cms/content/sanskrit-school/section", `{"section":"schools","data":{}}`, "editor-token")
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid section name", resp["error"])
}
