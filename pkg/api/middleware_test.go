package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAPIKeyMiddleware(t *testing.T) {
	router := newTestRouter(t)

	testCases := []struct {
		name     string
		key      string
		wantCode int
	}{
		{name: "valid key", key: testAPIKey, wantCode: http.StatusOK},
		{name: "missing key", key: "", wantCode: http.StatusUnauthorized},
		{name: "wrong key", key: "wrong-key", wantCode: http.StatusUnauthorized},
		{name: "wrong key of same length", key: "test-kex", wantCode: http.StatusUnauthorized},
		{name: "key with valid prefix", key: testAPIKey + "-extra", wantCode: http.StatusUnauthorized},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
			if tc.key != "" {
				req.Header.Set("X-API-Key", tc.key)
			}

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, tc.wantCode, rec.Code)

			if tc.wantCode == http.StatusUnauthorized {
				resp := decodeResponse(t, rec)
				assert.False(t, resp.Success)
			}
		})
	}
}

func TestResponseEnvelope(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		rec := httptest.NewRecorder()
		sendSuccess(rec, map[string]int{"n": 7})

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		resp := decodeResponse(t, rec)
		assert.True(t, resp.Success)
		assert.Empty(t, resp.Error)
		assert.Equal(t, map[string]interface{}{"n": float64(7)}, resp.Data)
	})

	t.Run("error", func(t *testing.T) {
		rec := httptest.NewRecorder()
		sendError(rec, "something broke", http.StatusInternalServerError)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)

		resp := decodeResponse(t, rec)
		assert.False(t, resp.Success)
		assert.Equal(t, "something broke", resp.Error)
		assert.Nil(t, resp.Data)
	})
}
