package httputil

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJSON(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Tower A"}`))

	var body struct {
		Name string `json:"name"`
	}
	require.NoError(t, ParseJSON(r, &body))
	assert.Equal(t, "Tower A", body.Name)
}

func TestParseJSON_Invalid(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{bad`))

	var body map[string]string
	assert.Error(t, ParseJSON(r, &body))
}

func TestParsePathString(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/documents/doc-1", nil)
	r = mux.SetURLVars(r, map[string]string{"id": "doc-1"})

	id, err := ParsePathString(r, "id")
	require.NoError(t, err)
	assert.Equal(t, "doc-1", id)

	_, err = ParsePathString(r, "missing")
	assert.Error(t, err)
}

func TestParseQueryInt(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?days=7", nil)

	days, err := ParseQueryInt(r, "days", 14)
	require.NoError(t, err)
	assert.Equal(t, 7, days)

	fallback, err := ParseQueryInt(r, "absent", 14)
	require.NoError(t, err)
	assert.Equal(t, 14, fallback)

	r = httptest.NewRequest(http.MethodGet, "/?days=soon", nil)
	_, err = ParseQueryInt(r, "days", 14)
	assert.Error(t, err)
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.1:52114"
	assert.Equal(t, "10.0.0.1", ClientIP(r))

	r.Header.Set("X-Forwarded-For", "203.0.113.5, 10.0.0.1")
	assert.Equal(t, "203.0.113.5", ClientIP(r))
}
