package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func wsRequest(origin string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	return req
}

func TestCheckOriginAllowsConfiguredHost(t *testing.T) {
	s := newTestServer(t)

	assert.True(t, s.checkOrigin(wsRequest("http://localhost:8080")))
	assert.True(t, s.checkOrigin(wsRequest("http://127.0.0.1:8080")))
}

func TestCheckOriginRejectsMissingOrigin(t *testing.T) {
	s := newTestServer(t)

	assert.False(t, s.checkOrigin(wsRequest("")))
}

func TestCheckOriginRejectsForeignHost(t *testing.T) {
	s := newTestServer(t)

	assert.False(t, s.checkOrigin(wsRequest("http://evil.example.com")))
	assert.False(t, s.checkOrigin(wsRequest("http://localhost:9999")))
}

func TestCheckOriginRejectsNonHTTPScheme(t *testing.T) {
	s := newTestServer(t)

	assert.False(t, s.checkOrigin(wsRequest("file://localhost:8080")))
	assert.False(t, s.checkOrigin(wsRequest("javascript:alert(1)")))
}

func TestHandleWebSocketRejectsBadOrigin(t *testing.T) {
	s := newTestServer(t)

	req := wsRequest("http://evil.example.com")
	rec := httptest.NewRecorder()
	s.handleWebSocket(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}
