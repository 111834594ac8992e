package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestText(t *testing.T) {
	rec := httptest.NewRecorder()
	Text(rec, http.StatusBadRequest, "bad input")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "bad input", rec.Body.String())
}

func TestRaw_PassesBodyThrough(t *testing.T) {
	body := []byte(`{"files": [ ],"kind":"drive#fileList"}`)
	rec := httptest.NewRecorder()
	Raw(rec, http.StatusOK, body)

	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, body, rec.Body.Bytes())
}

func TestEnvelopeHelpers(t *testing.T) {
	rec := httptest.NewRecorder()
	NotFound(rec, "file not found")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	var env Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.False(t, env.Success)
	assert.Equal(t, "file not found", env.Error)

	rec = httptest.NewRecorder()
	Created(rec, map[string]string{"id": "1"})
	assert.Equal(t, http.StatusCreated, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.True(t, env.Success)
}
