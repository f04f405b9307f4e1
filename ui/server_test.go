package ui

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhamidi/odinsyntax/odin/codebase"
	"github.com/dhamidi/odinsyntax/odin/parser"
	"github.com/dhamidi/odinsyntax/odin/scanner"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	p, err := parser.NewDefault()
	require.NoError(t, err)
	s, err := NewServer(codebase.New(".", p), 2)
	require.NoError(t, err)
	return s
}

func TestIndex(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<textarea name=\"source\">")
}

func TestParseJSON(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest("POST", "/parse", strings.NewReader(`{"source":"x := 1 +\n"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp parseResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "sexp", resp.Format)
	assert.Equal(t, "(source_file (variable_declaration (identifier) (binary_expression left: (number) right: (ERROR))))\n", resp.Output)
	require.Len(t, resp.Diagnostics, 1)
	assert.Equal(t, 8, resp.Diagnostics[0].Start)
}

func TestParseForm(t *testing.T) {
	s := newTestServer(t)
	form := url.Values{"source": {"x := \ny := 2\n"}, "format": {"tree"}}
	req := httptest.NewRequest("POST", "/parse", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := rec.Body.String()
	assert.Contains(t, body, "1:5: syntax error: expected more input")
	assert.Contains(t, body, "variable_declaration 2:1-2:7")

	form.Set("format", "xml")
	req = httptest.NewRequest("POST", "/parse", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScan(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.odin"), []byte("x := 1\n"), 0o644))
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest("POST", "/scan", strings.NewReader("")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest("POST", "/scan", strings.NewReader(`{"Path":`+jsonString(dir)+`}`))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	location := rec.Header().Get("Location")
	assert.Equal(t, "/scans/1", location)

	var result scanner.Result
	require.Eventually(t, func() bool {
		req := httptest.NewRequest("GET", location, nil)
		req.Header.Set("Accept", "application/json")
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			return false
		}
		if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
			return false
		}
		return result.Done()
	}, 30*time.Second, 10*time.Millisecond)
	assert.Equal(t, scanner.StatusCompleted, result.Status)
	require.Len(t, result.Files, 1)
	assert.True(t, result.Files[0].OK())

	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest("GET", location, nil))
	assert.Contains(t, rec.Body.String(), "completed")

	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest("GET", "/scans/99", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func jsonString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
