// Package features provides shared test utilities for API feature tests.
package features

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapml/internal/api/features/common"
	"github.com/leapstack-labs/leapml/internal/engine"
	"github.com/leapstack-labs/leapml/internal/testutil"
)

// TestSessionSecret signs cookies in tests.
const TestSessionSecret = "test-secret-key-32-bytes-long!!"

// TestFixture holds all dependencies needed for API handler tests.
type TestFixture struct {
	Engine       *engine.Engine
	SessionStore *sessions.CookieStore
	DataDir      string
}

// SetupTestFixture creates an engine over a temporary data directory.
func SetupTestFixture(t *testing.T) *TestFixture {
	t.Helper()

	dataDir := filepath.Join(t.TempDir(), "uploads")
	eng, err := engine.New(context.Background(), engine.Config{
		DataDir:   dataDir,
		StatePath: ":memory:",
		Logger:    testutil.NewTestLogger(t),
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = eng.Close()
	})

	return &TestFixture{
		Engine:       eng,
		SessionStore: NewTestSessionStore(),
		DataDir:      dataDir,
	}
}

// NewTestSessionStore creates a session store for testing.
func NewTestSessionStore() *sessions.CookieStore {
	store, err := common.NewSessionStore(TestSessionSecret)
	if err != nil {
		panic(err)
	}
	return store
}

// RequestWithPathParam wraps a request with chi URL params.
func RequestWithPathParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// MultipartRequest builds a POST with content under the form field "file".
func MultipartRequest(t *testing.T, target, filename, content string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if filename != "" {
		part, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

// EmptyFilenameRequest builds a multipart POST whose "file" part carries an
// empty filename, the way a browser submits a form with nothing selected.
func EmptyFilenameRequest(t *testing.T, target string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename=""`)
	h.Set("Content-Type", "application/octet-stream")
	_, err := mw.CreatePart(h)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

// JSONRequest builds a POST with v encoded as the body.
func JSONRequest(t *testing.T, target string, v any) *http.Request {
	t.Helper()

	raw, err := json.Marshal(v)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// DecodeBody decodes a recorded JSON response into a generic map.
func DecodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

// SampleCSV returns n rows with two features and a two-class label.
func SampleCSV(n int) string {
	var b strings.Builder
	b.WriteString("f1,f2,label\n")
	for i := range n {
		label := 0
		if i >= n/2 {
			label = 1
		}
		fmt.Fprintf(&b, "%d,%.2f,%d\n", i, float64((i*37)%11)/3, label)
	}
	return b.String()
}
