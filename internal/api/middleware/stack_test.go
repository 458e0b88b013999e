// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package middleware

import (
	"bytes"
	"net/http"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestApplyStack_RecoversPanics(t *testing.T) {
	r := NewRouter(StackConfig{EnableMetrics: true})
	r.Get("/boom", func(http.ResponseWriter, *http.Request) { panic("boom") })

	w := get(r, "/boom", "10.0.0.1:1")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestApplyStack_LogsRequests(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)
	r := NewRouter(StackConfig{Logger: &logger})
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })

	w := get(r, "/healthz", "10.0.0.1:1")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Contains(t, buf.String(), `"event":"http.request"`)
	assert.Contains(t, buf.String(), `"status":204`)
}

func TestShouldTrace(t *testing.T) {
	for path, want := range map[string]bool{
		"/healthz": false,
		"/readyz":  false,
		"/metrics": false,
		"/status":  true,
	} {
		req, _ := http.NewRequest(http.MethodGet, path, nil)
		assert.Equal(t, want, shouldTrace(req), path)
	}
}
