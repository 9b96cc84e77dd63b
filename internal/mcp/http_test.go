package mcp

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emergent-company/gatewayd/internal/auth"
)

func testHTTPServer(t *testing.T) *HTTPServer {
	t.Helper()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	srv := NewServer(BuildRegistry(parsedSchema(t), "", nil, []Tool{echoTool("custom.echo")}),
		ServerInfo{Name: "gatewayd", Version: "test"}, logger)
	return NewHTTPServer(srv, "*", auth.Config{Mode: auth.ModeNone}, nil, logger)
}

func postRPC(t *testing.T, h http.Handler, payload any) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/mcp", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHTTPInitializeMintsSession(t *testing.T) {
	h := testHTTPServer(t).Handler()
	w := postRPC(t, h, Request{JSONRPC: "2.0", ID: json.RawMessage(`1`), Method: "initialize"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("Mcp-Session-Id"))
}

func TestHTTPToolsCallHandlerToolOK(t *testing.T) {
	h := testHTTPServer(t).Handler()
	w := postRPC(t, h, Request{
		JSONRPC: "2.0", ID: json.RawMessage(`2`), Method: "tools/call",
		Params: json.RawMessage(`{"name":"custom.echo"}`),
	})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestHTTPToolsCallRouteOnlyIs500(t *testing.T) {
	h := testHTTPServer(t).Handler()
	w := postRPC(t, h, Request{
		JSONRPC: "2.0", ID: json.RawMessage(`3`), Method: "tools/call",
		Params: json.RawMessage(`{"name":"user.create"}`),
	})
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "route-only")
	assert.Contains(t, w.Body.String(), "user/create")
}

func TestHTTPToolsCallUnknownIs500(t *testing.T) {
	h := testHTTPServer(t).Handler()
	w := postRPC(t, h, Request{
		JSONRPC: "2.0", ID: json.RawMessage(`4`), Method: "tools/call",
		Params: json.RawMessage(`{"name":"ghost.tool"}`),
	})
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Unknown tool: ghost.tool")
}

func TestHTTPBatch(t *testing.T) {
	h := testHTTPServer(t).Handler()
	body := `[{"jsonrpc":"2.0","id":1,"method":"tools/list"},{"jsonrpc":"2.0","id":2,"method":"tools/list"}]`
	req := httptest.NewRequest(http.MethodPost, "/mcp", bytes.NewReader([]byte(body)))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var responses []Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &responses))
	assert.Len(t, responses, 2)
}

func TestHTTPMethodNotAllowed(t *testing.T) {
	h := testHTTPServer(t).Handler()
	req := httptest.NewRequest(http.MethodPatch, "/mcp", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
