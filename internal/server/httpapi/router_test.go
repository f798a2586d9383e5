package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/dmitrijs2005/casauth/internal/logging"
	"github.com/dmitrijs2005/casauth/internal/server/models"
	"github.com/dmitrijs2005/casauth/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResolver struct {
	gotToken string
	out      *models.Principal
	err      error
}

func (f *fakeResolver) ResolveProfile(_ context.Context, raw string) (*models.Principal, error) {
	f.gotToken = raw
	if f.err != nil {
		return nil, f.err
	}
	return f.out, nil
}

func TestProfile_Success(t *testing.T) {
	f := &fakeResolver{out: &models.Principal{ID: "abc12", Attributes: map[string]any{"username": "jane@example.org"}}}
	h := NewRouter(f, logging.Nop())

	req := httptest.NewRequest(http.MethodGet, ProfilePath+"?access_token=tok", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "tok", f.gotToken)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, map[string]any{
		"id":         "abc12",
		"attributes": map[string]any{"username": "jane@example.org"},
	}, body)
}

func TestProfile_TokenSources(t *testing.T) {
	f := &fakeResolver{out: &models.Principal{ID: "x"}}
	h := NewRouter(f, logging.Nop())

	req := httptest.NewRequest(http.MethodGet, ProfilePath, nil)
	req.Header.Set("Authorization", "Bearer from-header")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "from-header", f.gotToken)

	form := url.Values{"access_token": {"from-form"}}
	req = httptest.NewRequest(http.MethodPost, ProfilePath, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "from-form", f.gotToken)
	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, map[string]any{}, body["attributes"], "attributes are never null")
}

func TestProfile_Failures(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{name: "missing", err: services.ErrMissingToken, status: http.StatusBadRequest, body: "missing_accessToken"},
		{name: "unknown session", err: services.ErrUnknownSession, status: http.StatusNotFound, body: "missing_accessToken"},
		{name: "expired", err: services.ErrExpiredToken, status: http.StatusBadRequest, body: "missing_accessToken"},
		{name: "internal", err: errors.New("redis down"), status: http.StatusInternalServerError, body: "Internal Server Error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewRouter(&fakeResolver{err: tt.err}, logging.Nop())
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, ProfilePath+"?access_token=tok", nil))
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.body, strings.TrimSpace(rec.Body.String()))
			assert.NotContains(t, rec.Body.String(), "redis down")
		})
	}
}

func TestRequestLogOmitsQuery(t *testing.T) {
	var buf bytes.Buffer
	h := NewRouter(&fakeResolver{err: services.ErrMissingToken}, logging.NewJSONLogger(&buf, "info"))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, ProfilePath+"?access_token=secret-token-value", nil))

	assert.Contains(t, buf.String(), `"path":"/oauth2/profile"`)
	assert.NotContains(t, buf.String(), "secret-token-value")
}

func TestHealthAndMethods(t *testing.T) {
	h := NewRouter(&fakeResolver{}, logging.Nop())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, ProfilePath, nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
