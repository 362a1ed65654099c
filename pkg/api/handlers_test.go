package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cfiledb/cfiledb/pkg/query"
	"github.com/cfiledb/cfiledb/pkg/store"
)

const testAPIKey = "test-key"

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	cs, err := store.NewColumnStore(store.ColumnStoreConfig{
		DataDir:     t.TempDir(),
		BlockSize:   16,
		IndexFanout: 4,
	})
	require.NoError(t, err)
	require.NoError(t, cs.Open())
	t.Cleanup(func() { _ = cs.Close() })

	server := NewServer(cs, query.NewEngine(cs), ServerConfig{APIKey: testAPIKey}, nil)
	return NewRouter(server, nil, testAPIKey)
}

func doRequest(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("X-API-Key", testAPIKey)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) APIResponse {
	t.Helper()

	var resp APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func putTestColumn(t *testing.T, router http.Handler, name string, n int) {
	t.Helper()

	values := make([]uint32, n)
	for i := range values {
		values[i] = uint32(i) * 5
	}

	rec := doRequest(t, router, http.MethodPut, "/api/v1/columns/"+name, PutColumnRequest{Values: values})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestAPI_Health(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	resp := decodeResponse(t, rec)
	assert.True(t, resp.Success)
}

func TestAPI_PutAndGetValue(t *testing.T) {
	router := newTestRouter(t)
	putTestColumn(t, router, "metric", 100)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/columns/metric/values/42", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeResponse(t, rec)
	require.True(t, resp.Success)

	data, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var value ValueResponse
	require.NoError(t, json.Unmarshal(data, &value))

	assert.Equal(t, "metric", value.Column)
	assert.Equal(t, uint32(42), value.Ordinal)
	assert.Equal(t, uint32(210), value.Value)
}

func TestAPI_GetValueErrors(t *testing.T) {
	router := newTestRouter(t)
	putTestColumn(t, router, "metric", 10)

	testCases := []struct {
		name     string
		path     string
		wantCode int
	}{
		{name: "missing column", path: "/api/v1/columns/nope/values/0", wantCode: http.StatusNotFound},
		{name: "ordinal past end", path: "/api/v1/columns/metric/values/10", wantCode: http.StatusNotFound},
		{name: "bad ordinal", path: "/api/v1/columns/metric/values/abc", wantCode: http.StatusBadRequest},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doRequest(t, router, http.MethodGet, tc.path, nil)
			assert.Equal(t, tc.wantCode, rec.Code)

			resp := decodeResponse(t, rec)
			assert.False(t, resp.Success)
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestAPI_Scan(t *testing.T) {
	router := newTestRouter(t)
	putTestColumn(t, router, "metric", 100)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/columns/metric/scan?start=10&end=14", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeResponse(t, rec)
	require.True(t, resp.Success)

	data, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var result query.RangeResult
	require.NoError(t, json.Unmarshal(data, &result))

	assert.Equal(t, []uint32{50, 55, 60, 65}, result.Values)
}

func TestAPI_ScanAggregate(t *testing.T) {
	router := newTestRouter(t)
	putTestColumn(t, router, "metric", 100)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/columns/metric/scan?start=0&end=10&aggregate=true", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeResponse(t, rec)
	require.True(t, resp.Success)

	data, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var stats query.Stats
	require.NoError(t, json.Unmarshal(data, &stats))

	assert.Equal(t, uint64(10), stats.Count)
	assert.Equal(t, uint32(0), stats.Min)
	assert.Equal(t, uint32(45), stats.Max)
	assert.Equal(t, uint64(225), stats.Sum)
}

func TestAPI_ScanValidation(t *testing.T) {
	router := newTestRouter(t)
	putTestColumn(t, router, "metric", 10)

	for _, path := range []string{
		"/api/v1/columns/metric/scan?start=x&end=5",
		"/api/v1/columns/metric/scan?start=0&end=y",
		"/api/v1/columns/metric/scan?start=5&end=5",
		"/api/v1/columns/metric/scan?start=9&end=2",
	} {
		rec := doRequest(t, router, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
	}
}

func TestAPI_ListAndDelete(t *testing.T) {
	router := newTestRouter(t)
	putTestColumn(t, router, "a", 5)
	putTestColumn(t, router, "b", 5)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/columns", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Equal(t, []interface{}{"a", "b"}, resp.Data)

	rec = doRequest(t, router, http.MethodDelete, "/api/v1/columns/a", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, router, http.MethodDelete, "/api/v1/columns/a", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPI_ColumnInfoAndStats(t *testing.T) {
	router := newTestRouter(t)
	putTestColumn(t, router, "metric", 25)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/columns/metric", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeResponse(t, rec)
	info, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "metric", info["name"])
	assert.Equal(t, float64(25), info["rows"])

	rec = doRequest(t, router, http.MethodGet, "/api/v1/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	resp = decodeResponse(t, rec)
	stats, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(1), stats["columns"])
	assert.Equal(t, float64(25), stats["total_rows"])
}

func TestAPI_PutColumnBadBody(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/columns/metric", bytes.NewReader([]byte("{not json")))
	req.Header.Set("X-API-Key", testAPIKey)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPI_MetricsEndpointUnprotected(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func ExampleValueResponse() {
	data, _ := json.Marshal(ValueResponse{Column: "metric", Ordinal: 3, Value: 15})
	fmt.Println(string(data))
	// Output: {"column":"metric","ordinal":3,"value":15}
}
