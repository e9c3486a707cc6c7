package hyperstats

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/longbridgeapp/assert"

	"github.com/hyp3rd/hyperstats/internal/sentinel"
)

func newTestServer(t *testing.T, opts ...HTTPOption) *HTTPServer {
	t.Helper()

	calc, err := New(WithWorkers(2))
	assert.NoError(t, err)

	srv := NewHTTPServer("127.0.0.1:0", opts...)
	srv.Mount(context.Background(), calc)

	return srv
}

func do(t *testing.T, srv *HTTPServer, method, path, body string, header ...string) (int, string) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}

	resp, err := srv.App().Test(req)
	assert.NoError(t, err)

	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	assert.NoError(t, err)

	return resp.StatusCode, string(data)
}

func TestHTTP_StatusAndHealth(t *testing.T) {
	srv := newTestServer(t)

	code, body := do(t, srv, http.MethodGet, "/status", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, StatusMessage, body)

	code, body = do(t, srv, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, StatusMessage, body)

	code, body = do(t, srv, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body)
}

func TestHTTP_Numbers(t *testing.T) {
	srv := newTestServer(t)

	code, body := do(t, srv, http.MethodPost, "/numbers", `{"numbers":[2,4,4,4,5,5,7,9],"population":true}`)
	assert.Equal(t, http.StatusOK, code)

	var got map[string]any
	assert.NoError(t, json.Unmarshal([]byte(body), &got))

	assert.Equal(t, 5.0, got["mean"])
	assert.Equal(t, 2.0, got["standardDeviation"])
	assert.Equal(t, "population", got["variant"])
	assert.Equal(t, 8.0, got["count"])
	assert.Equal(t, []any{map[string]any{"value": 4.0, "frequency": 3.0}}, got["mode"])
}

func TestHTTP_NumbersUndefinedSkewnessIsNull(t *testing.T) {
	srv := newTestServer(t)

	code, body := do(t, srv, http.MethodPost, "/numbers", `{"numbers":[1,2]}`)
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, strings.Contains(body, `"skewness":null`))
	assert.True(t, strings.Contains(body, `"warnings":["skewness: insufficient samples"]`))
}

func TestHTTP_NumbersErrors(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name string
		body string
		want string
	}{
		{"empty list", `{"numbers":[]}`, "empty input"},
		{"missing list", `{}`, "empty input"},
		{"malformed json", `{"numbers":[1,2`, "invalid request"},
		{"wrong type", `{"numbers":["a"]}`, "invalid request"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := do(t, srv, http.MethodPost, "/numbers", tt.body)
			assert.Equal(t, http.StatusBadRequest, code)
			assert.True(t, strings.Contains(body, tt.want))
		})
	}
}

func TestHTTP_Batch(t *testing.T) {
	srv := newTestServer(t)

	code, body := do(t, srv, http.MethodPost, "/numbers/batch", `{"requests":[{"numbers":[1,2,3]},{"numbers":[]}]}`)
	assert.Equal(t, http.StatusOK, code)

	var got struct {
		Results []struct {
			Report map[string]any `json:"report"`
			Error  string         `json:"error"`
		} `json:"results"`
	}

	assert.NoError(t, json.Unmarshal([]byte(body), &got))
	assert.Equal(t, 2, len(got.Results))
	assert.Equal(t, 2.0, got.Results[0].Report["mean"])
	assert.Equal(t, "empty input", got.Results[1].Error)

	code, body = do(t, srv, http.MethodGet, "/stats", "")
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, strings.Contains(body, `"batches":1`))
}

func TestHTTP_BearerAuth(t *testing.T) {
	srv := newTestServer(t, WithHTTPAuth(BearerAuth("s3cret")))

	code, _ := do(t, srv, http.MethodPost, "/numbers", `{"numbers":[1]}`)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = do(t, srv, http.MethodPost, "/numbers", `{"numbers":[1]}`, "Authorization", "Bearer wrong")
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = do(t, srv, http.MethodPost, "/numbers", `{"numbers":[1]}`, "Authorization", "Bearer s3cret")
	assert.Equal(t, http.StatusOK, code)

	// liveness stays open
	code, _ = do(t, srv, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, code)
}

func TestHTTP_StaticDir(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("<title>Statistical Calculator</title>"), 0o600)
	assert.NoError(t, err)

	srv := newTestServer(t, WithStaticDir(dir))

	code, body := do(t, srv, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, strings.Contains(body, "Statistical Calculator"))

	code, body = do(t, srv, http.MethodGet, "/status", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, StatusMessage, body)
}

// TestHTTP_StartShutdown spins up the server on an ephemeral port.
func TestHTTP_StartShutdown(t *testing.T) {
	calc, err := New()
	assert.NoError(t, err)

	srv := NewHTTPServer("127.0.0.1:0")
	ctx := context.Background()

	assert.NoError(t, srv.Start(ctx, calc))
	assert.NoError(t, srv.Start(ctx, calc)) // idempotent

	// wait briefly for listener
	time.Sleep(30 * time.Millisecond)

	addr := srv.Address()
	assert.True(t, addr != "")

	client := &http.Client{Timeout: 2 * time.Second}

	resp, err := client.Post("http://"+addr+"/numbers", "application/json", strings.NewReader(`{"numbers":[1,2,3]}`))
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = srv.Shutdown(shutdownCtx)
	if err != nil && !errors.Is(err, sentinel.ErrHTTPShutdownTimeout) {
		t.Fatalf("shutdown: %v", err)
	}
}
