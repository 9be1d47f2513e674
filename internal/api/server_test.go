package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapml/internal/api/features"
	"github.com/leapstack-labs/leapml/internal/api/features/common"
	"github.com/leapstack-labs/leapml/internal/testutil"
)

func newTestServer(t *testing.T, origins ...string) *Server {
	t.Helper()
	fixture := features.SetupTestFixture(t)
	srv, err := NewServer(Config{
		Engine:        fixture.Engine,
		SessionSecret: features.TestSessionSecret,
		CORSOrigins:   origins,
		MaxUploadMB:   1,
		Logger:        testutil.NewTestLogger(t),
	})
	require.NoError(t, err)
	return srv
}

func TestServer_Handler(t *testing.T) {
	srv := newTestServer(t)
	handler, err := srv.Handler()
	require.NoError(t, err)

	ts := httptest.NewServer(handler)
	defer ts.Close()

	tests := []struct {
		name       string
		path       string
		wantStatus int
	}{
		{name: "health", path: "/", wantStatus: http.StatusOK},
		{name: "models", path: "/models", wantStatus: http.StatusOK},
		{name: "artifacts", path: "/artifacts", wantStatus: http.StatusOK},
		{name: "runs", path: "/runs", wantStatus: http.StatusOK},
		{name: "unknown route", path: "/nope", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Get(ts.URL + tt.path)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}

func TestServer_CORS(t *testing.T) {
	srv := newTestServer(t, "http://localhost:3000")
	handler, err := srv.Handler()
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodOptions, "/upload", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestServer_CORSAnyOriginWithCredentials(t *testing.T) {
	srv := newTestServer(t)
	handler, err := srv.Handler()
	require.NoError(t, err)

	for _, method := range []string{http.MethodOptions, http.MethodGet} {
		t.Run(method, func(t *testing.T) {
			req := httptest.NewRequest(method, "/", nil)
			req.Header.Set("Origin", "http://localhost:5173")
			if method == http.MethodOptions {
				req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"),
				"credentialed responses must name the origin")
			assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
		})
	}
}

func TestServer_Defaults(t *testing.T) {
	srv, err := NewServer(Config{SessionSecret: features.TestSessionSecret})
	require.NoError(t, err)

	assert.Equal(t, DefaultPort, srv.port)
	assert.Equal(t, []string{"*"}, srv.corsOrigins)
	assert.NotNil(t, srv.logger)
}

func TestServer_RequiresSessionSecret(t *testing.T) {
	for _, secret := range []string{"", "   "} {
		_, err := NewServer(Config{SessionSecret: secret})
		assert.ErrorIs(t, err, common.ErrEmptySessionSecret, "secret %q", secret)
	}
}

func TestServer_ServeShutsDown(t *testing.T) {
	srv := newTestServer(t)
	srv.port = freePort(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()

	url := "http://" + localAddr(srv.port) + "/"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		defer func() { _ = resp.Body.Close() }()
		body, _ := io.ReadAll(resp.Body)
		var health map[string]string
		return json.Unmarshal(body, &health) == nil && health["status"] == "ok"
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down")
	}
}
