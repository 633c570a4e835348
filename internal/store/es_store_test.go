package store

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"
	"time"

	apperrors "github.com/akulikov/gocatalog/internal/errors"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cannedResponse struct {
	status int
	body   string
}

// fakeTransport replays canned Elasticsearch responses in order and records
// every request it saw, so tests can assert on paths, params, and bodies.
type fakeTransport struct {
	responses []cannedResponse
	requests  []*http.Request
	bodies    []string
}

func (t *fakeTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	body := ""
	if req.Body != nil {
		raw, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}
		body = string(raw)
	}
	t.requests = append(t.requests, req)
	t.bodies = append(t.bodies, body)

	next := cannedResponse{status: http.StatusOK, body: "{}"}
	if len(t.responses) > 0 {
		next = t.responses[0]
		t.responses = t.responses[1:]
	}
	return &http.Response{
		StatusCode: next.status,
		Header: http.Header{
			"X-Elastic-Product": []string{"Elasticsearch"},
			"Content-Type":      []string{"application/json"},
		},
		Body: io.NopCloser(strings.NewReader(next.body)),
	}, nil
}

func newTestStore(t *testing.T, responses ...cannedResponse) (*Store, *fakeTransport) {
	t.Helper()
	transport := &fakeTransport{responses: responses}
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{"http://localhost:9200"},
		Transport: transport,
	})
	require.NoError(t, err)
	logger := slog.New(slog.DiscardHandler)
	return NewStore(es, "products", "product_uuid", logger), transport
}

func Test_Store_Create(t *testing.T) {
	t.Run("Success - timestamps stamped and refresh forced", func(t *testing.T) {
		// given
		st, transport := newTestStore(t, cannedResponse{http.StatusCreated, `{"_id":"u1","result":"created"}`})
		doc := Document{"product_uuid": "u1", "name": "Phone", "price": 99.9}
		// when
		created, err := st.Create(context.Background(), doc)
		// then
		require.NoError(t, err)
		require.Len(t, transport.requests, 1)
		req := transport.requests[0]
		assert.Equal(t, http.MethodPut, req.Method)
		assert.Equal(t, "/products/_doc/u1", req.URL.Path)
		assert.Equal(t, "true", req.URL.Query().Get("refresh"))

		var indexed Document
		require.NoError(t, json.Unmarshal([]byte(transport.bodies[0]), &indexed))
		_, err = time.Parse(time.RFC3339, indexed["created_at"].(string))
		assert.NoError(t, err)
		_, err = time.Parse(time.RFC3339, indexed["updated_at"].(string))
		assert.NoError(t, err)
		assert.Equal(t, created["created_at"], indexed["created_at"])
	})

	t.Run("Success - supplied timestamps preserved", func(t *testing.T) {
		// given
		st, transport := newTestStore(t, cannedResponse{http.StatusCreated, `{"_id":"u1"}`})
		doc := Document{"product_uuid": "u1", "created_at": "2024-01-01T00:00:00Z", "updated_at": "2024-01-02T00:00:00Z"}
		// when
		_, err := st.Create(context.Background(), doc)
		// then
		require.NoError(t, err)
		var indexed Document
		require.NoError(t, json.Unmarshal([]byte(transport.bodies[0]), &indexed))
		assert.Equal(t, "2024-01-01T00:00:00Z", indexed["created_at"])
		assert.Equal(t, "2024-01-02T00:00:00Z", indexed["updated_at"])
	})

	t.Run("Error - engine failure translated to StoreError", func(t *testing.T) {
		// given
		st, _ := newTestStore(t, cannedResponse{http.StatusBadRequest, `{"error":{"reason":"mapping conflict"}}`})
		// when
		_, err := st.Create(context.Background(), Document{"product_uuid": "u1"})
		// then
		var storeErr *apperrors.StoreError
		require.ErrorAs(t, err, &storeErr)
		assert.Contains(t, storeErr.Error(), "mapping conflict")
	})
}

func Test_Store_Get(t *testing.T) {
	t.Run("Success - source decoded", func(t *testing.T) {
		// given
		st, transport := newTestStore(t, cannedResponse{http.StatusOK, `{"_id":"u1","found":true,"_source":{"product_uuid":"u1","name":"Phone"}}`})
		// when
		doc, err := st.Get(context.Background(), "u1")
		// then
		require.NoError(t, err)
		assert.Equal(t, "u1", doc["product_uuid"])
		assert.Equal(t, "Phone", doc["name"])
		assert.Equal(t, "/products/_doc/u1", transport.requests[0].URL.Path)
	})

	t.Run("Error - missing document is ErrNotFound", func(t *testing.T) {
		// given
		st, _ := newTestStore(t, cannedResponse{http.StatusNotFound, `{"found":false}`})
		// when
		_, err := st.Get(context.Background(), "missing")
		// then
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("Error - engine failure translated to StoreError", func(t *testing.T) {
		// given
		st, _ := newTestStore(t, cannedResponse{http.StatusInternalServerError, `{"error":"boom"}`})
		// when
		_, err := st.Get(context.Background(), "u1")
		// then
		var storeErr *apperrors.StoreError
		assert.ErrorAs(t, err, &storeErr)
	})
}

func Test_Store_Update(t *testing.T) {
	t.Run("Success - nil fields dropped, updated_at stamped, merged doc returned", func(t *testing.T) {
		// given
		st, transport := newTestStore(t,
			cannedResponse{http.StatusOK, `{"_source":{"product_uuid":"u1","name":"Old","price":100}}`},
			cannedResponse{http.StatusOK, `{"result":"updated"}`},
			cannedResponse{http.StatusOK, `{"_source":{"product_uuid":"u1","name":"New","price":100}}`},
		)
		partial := Document{"name": "New", "brand": nil}
		// when
		merged, err := st.Update(context.Background(), "u1", partial)
		// then
		require.NoError(t, err)
		require.Len(t, transport.requests, 3)
		assert.Equal(t, "/products/_update/u1", transport.requests[1].URL.Path)
		assert.Equal(t, "true", transport.requests[1].URL.Query().Get("refresh"))

		var payload struct {
			Doc Document `json:"doc"`
		}
		require.NoError(t, json.Unmarshal([]byte(transport.bodies[1]), &payload))
		assert.Equal(t, "New", payload.Doc["name"])
		assert.NotContains(t, payload.Doc, "brand", "nil fields mean leave-as-written and must be dropped")
		assert.Contains(t, payload.Doc, "updated_at")

		assert.Equal(t, "New", merged["name"])
		assert.Equal(t, float64(100), merged["price"])
	})

	t.Run("Error - missing document fails before the merge", func(t *testing.T) {
		// given
		st, transport := newTestStore(t, cannedResponse{http.StatusNotFound, `{"found":false}`})
		// when
		_, err := st.Update(context.Background(), "missing", Document{"name": "New"})
		// then
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
		assert.Len(t, transport.requests, 1, "no update must be attempted for a missing document")
	})
}

func Test_Store_Delete(t *testing.T) {
	t.Run("Success - refresh forced", func(t *testing.T) {
		// given
		st, transport := newTestStore(t, cannedResponse{http.StatusOK, `{"result":"deleted"}`})
		// when
		err := st.Delete(context.Background(), "u1")
		// then
		require.NoError(t, err)
		req := transport.requests[0]
		assert.Equal(t, http.MethodDelete, req.Method)
		assert.Equal(t, "/products/_doc/u1", req.URL.Path)
		assert.Equal(t, "true", req.URL.Query().Get("refresh"))
	})

	t.Run("Error - missing document is ErrNotFound", func(t *testing.T) {
		// given
		st, _ := newTestStore(t, cannedResponse{http.StatusNotFound, `{"result":"not_found"}`})
		// when
		err := st.Delete(context.Background(), "missing")
		// then
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func Test_Store_Exists(t *testing.T) {
	t.Run("True when document found", func(t *testing.T) {
		st, _ := newTestStore(t, cannedResponse{http.StatusOK, `{"_source":{"product_uuid":"u1"}}`})
		exists, err := st.Exists(context.Background(), "u1")
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("False, not an error, when document missing", func(t *testing.T) {
		st, _ := newTestStore(t, cannedResponse{http.StatusNotFound, `{"found":false}`})
		exists, err := st.Exists(context.Background(), "missing")
		require.NoError(t, err)
		assert.False(t, exists)
	})
}

func Test_Store_Search(t *testing.T) {
	t.Run("Success - pagination translated to from/size, envelope echoed", func(t *testing.T) {
		// given
		st, transport := newTestStore(t, cannedResponse{http.StatusOK, `{
			"hits": {
				"total": {"value": 2, "relation": "eq"},
				"hits": [{"_source": {"product_uuid": "u2", "name": "B"}}]
			}
		}`})
		// when
		result, err := st.Search(context.Background(), Document{"query": Document{"match_all": Document{}}}, 2, 1)
		// then
		require.NoError(t, err)
		req := transport.requests[0]
		assert.Equal(t, "/products/_search", req.URL.Path)
		assert.Equal(t, "1", req.URL.Query().Get("from"))
		assert.Equal(t, "1", req.URL.Query().Get("size"))

		assert.Equal(t, int64(2), result.Total)
		assert.Equal(t, 2, result.Page)
		assert.Equal(t, 1, result.Size)
		require.Len(t, result.Items, 1)
		assert.Equal(t, "u2", result.Items[0]["product_uuid"])
	})

	t.Run("Error - malformed query translated to StoreError", func(t *testing.T) {
		// given
		st, _ := newTestStore(t, cannedResponse{http.StatusBadRequest, `{"error":{"reason":"parsing_exception"}}`})
		// when
		_, err := st.Search(context.Background(), Document{"query": "nonsense"}, 1, 10)
		// then
		var storeErr *apperrors.StoreError
		require.ErrorAs(t, err, &storeErr)
		assert.Contains(t, storeErr.Error(), "parsing_exception")
	})
}

func Test_Store_MaxField(t *testing.T) {
	testCases := []struct {
		name     string
		response cannedResponse
		expected int64
	}{
		{
			name:     "Maximum value returned",
			response: cannedResponse{http.StatusOK, `{"aggregations":{"max_value":{"value":42.0}}}`},
			expected: 42,
		},
		{
			name:     "Empty collection yields 0",
			response: cannedResponse{http.StatusOK, `{"aggregations":{"max_value":{"value":null}}}`},
			expected: 0,
		},
		{
			name:     "Missing index yields 0",
			response: cannedResponse{http.StatusNotFound, `{"error":{"type":"index_not_found_exception"}}`},
			expected: 0,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			st, _ := newTestStore(t, tc.response)
			// when
			max, err := st.MaxField(context.Background(), "product_id")
			// then
			require.NoError(t, err)
			assert.Equal(t, tc.expected, max)
		})
	}
}

func Test_Store_EnsureIndex(t *testing.T) {
	t.Run("Index created when absent", func(t *testing.T) {
		// given
		st, transport := newTestStore(t,
			cannedResponse{http.StatusNotFound, ``},
			cannedResponse{http.StatusOK, `{"acknowledged":true}`},
		)
		// when
		err := st.EnsureIndex(context.Background(), `{"mappings":{}}`)
		// then
		require.NoError(t, err)
		require.Len(t, transport.requests, 2)
		assert.Equal(t, http.MethodHead, transport.requests[0].Method)
		assert.Equal(t, http.MethodPut, transport.requests[1].Method)
		assert.Equal(t, "/products", transport.requests[1].URL.Path)
	})

	t.Run("No-op when index exists", func(t *testing.T) {
		// given
		st, transport := newTestStore(t, cannedResponse{http.StatusOK, ``})
		// when
		err := st.EnsureIndex(context.Background(), `{"mappings":{}}`)
		// then
		require.NoError(t, err)
		assert.Len(t, transport.requests, 1)
	})
}
