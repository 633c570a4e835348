package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/akulikov/gocatalog/internal/errors"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// Store implements DocumentStore using Elasticsearch as the backing engine.
// Writes are followed by a synchronous refresh so a subsequent read by the
// same caller observes them.
type Store struct {
	es      *elasticsearch.Client
	index   string
	idField string
	logger  *slog.Logger
}

// NewStore creates a DocumentStore over the given index, keyed by idField.
func NewStore(es *elasticsearch.Client, index, idField string, logger *slog.Logger) *Store {
	return &Store{
		es:      es,
		index:   index,
		idField: idField,
		logger:  logger.With("component", "store", "index", index),
	}
}

// Create persists a new document keyed by its identifier field value.
func (s *Store) Create(ctx context.Context, doc Document) (Document, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	if _, ok := doc["created_at"]; !ok {
		doc["created_at"] = now
	}
	if _, ok := doc["updated_at"]; !ok {
		doc["updated_at"] = now
	}

	id := fmt.Sprintf("%v", doc[s.idField])
	body, err := json.Marshal(doc)
	if err != nil {
		return nil, s.fail("create", err)
	}

	res, err := s.es.Index(s.index, bytes.NewReader(body),
		s.es.Index.WithContext(ctx),
		s.es.Index.WithDocumentID(id),
		s.es.Index.WithRefresh("true"),
	)
	if err != nil {
		return nil, s.fail("create", err)
	}
	defer closeBody(res)
	if res.IsError() {
		return nil, s.failResponse("create", res)
	}

	s.logger.InfoContext(ctx, "Document created", "id", id)
	return doc, nil
}

// Update merges the partial document into an existing one and returns the
// merged document. Nil-valued fields mean "leave as written" and are dropped.
func (s *Store) Update(ctx context.Context, id string, partial Document) (Document, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	merge := make(Document, len(partial)+1)
	for k, v := range partial {
		if v != nil {
			merge[k] = v
		}
	}
	if _, ok := merge["updated_at"]; !ok {
		merge["updated_at"] = time.Now().UTC().Format(time.RFC3339)
	}

	body, err := json.Marshal(Document{"doc": merge})
	if err != nil {
		return nil, s.fail("update", err)
	}

	res, err := s.es.Update(s.index, id, bytes.NewReader(body),
		s.es.Update.WithContext(ctx),
		s.es.Update.WithRefresh("true"),
	)
	if err != nil {
		return nil, s.fail("update", err)
	}
	defer closeBody(res)
	if res.StatusCode == http.StatusNotFound {
		return nil, apperrors.ErrNotFound
	}
	if res.IsError() {
		return nil, s.failResponse("update", res)
	}

	s.logger.InfoContext(ctx, "Document updated", "id", id)
	return s.Get(ctx, id)
}

// Delete removes a document by its identifier.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.es.Delete(s.index, id,
		s.es.Delete.WithContext(ctx),
		s.es.Delete.WithRefresh("true"),
	)
	if err != nil {
		return s.fail("delete", err)
	}
	defer closeBody(res)
	if res.StatusCode == http.StatusNotFound {
		return apperrors.ErrNotFound
	}
	if res.IsError() {
		return s.failResponse("delete", res)
	}

	s.logger.InfoContext(ctx, "Document deleted", "id", id)
	return nil
}

// Get retrieves a document by its identifier.
func (s *Store) Get(ctx context.Context, id string) (Document, error) {
	res, err := s.es.Get(s.index, id, s.es.Get.WithContext(ctx))
	if err != nil {
		return nil, s.fail("get", err)
	}
	defer closeBody(res)
	if res.StatusCode == http.StatusNotFound {
		return nil, apperrors.ErrNotFound
	}
	if res.IsError() {
		return nil, s.failResponse("get", res)
	}

	var envelope struct {
		Source Document `json:"_source"`
	}
	if err := json.NewDecoder(res.Body).Decode(&envelope); err != nil {
		return nil, s.fail("get", err)
	}
	return envelope.Source, nil
}

// Exists reports whether a document with the given id exists.
func (s *Store) Exists(ctx context.Context, id string) (bool, error) {
	_, err := s.Get(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Search executes a structured query and returns a paginated result envelope.
// Item ordering is the store's result ordering.
func (s *Store) Search(ctx context.Context, body Document, page, size int) (*Result, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, s.fail("search", err)
	}

	res, err := s.es.Search(
		s.es.Search.WithContext(ctx),
		s.es.Search.WithIndex(s.index),
		s.es.Search.WithBody(bytes.NewReader(payload)),
		s.es.Search.WithFrom((page-1)*size),
		s.es.Search.WithSize(size),
		s.es.Search.WithTrackTotalHits(true),
	)
	if err != nil {
		return nil, s.fail("search", err)
	}
	defer closeBody(res)
	if res.IsError() {
		return nil, s.failResponse("search", res)
	}

	var envelope struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source Document `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&envelope); err != nil {
		return nil, s.fail("search", err)
	}

	items := make([]Document, len(envelope.Hits.Hits))
	for i, hit := range envelope.Hits.Hits {
		items[i] = hit.Source
	}
	return &Result{
		Total: envelope.Hits.Total.Value,
		Page:  page,
		Size:  size,
		Items: items,
	}, nil
}

// MaxField returns the maximum value of a numeric field across the index.
// A missing index or an empty index yields 0.
func (s *Store) MaxField(ctx context.Context, field string) (int64, error) {
	body := fmt.Sprintf(`{"size":0,"aggs":{"max_value":{"max":{"field":%q}}}}`, field)

	res, err := s.es.Search(
		s.es.Search.WithContext(ctx),
		s.es.Search.WithIndex(s.index),
		s.es.Search.WithBody(strings.NewReader(body)),
	)
	if err != nil {
		return 0, s.fail("max_field", err)
	}
	defer closeBody(res)
	if res.StatusCode == http.StatusNotFound {
		return 0, nil
	}
	if res.IsError() {
		return 0, s.failResponse("max_field", res)
	}

	var envelope struct {
		Aggregations struct {
			MaxValue struct {
				Value *float64 `json:"value"`
			} `json:"max_value"`
		} `json:"aggregations"`
	}
	if err := json.NewDecoder(res.Body).Decode(&envelope); err != nil {
		return 0, s.fail("max_field", err)
	}
	if envelope.Aggregations.MaxValue.Value == nil {
		return 0, nil
	}
	return int64(*envelope.Aggregations.MaxValue.Value), nil
}

// EnsureIndex creates the index with the given mapping if it does not exist yet.
func (s *Store) EnsureIndex(ctx context.Context, mapping string) error {
	res, err := s.es.Indices.Exists([]string{s.index}, s.es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return s.fail("ensure_index", err)
	}
	closeBody(res)
	if res.StatusCode == http.StatusOK {
		s.logger.DebugContext(ctx, "Index already exists")
		return nil
	}
	if res.StatusCode != http.StatusNotFound {
		return s.fail("ensure_index", fmt.Errorf("unexpected status %d checking index existence", res.StatusCode))
	}

	createRes, err := s.es.Indices.Create(s.index,
		s.es.Indices.Create.WithContext(ctx),
		s.es.Indices.Create.WithBody(strings.NewReader(mapping)),
	)
	if err != nil {
		return s.fail("ensure_index", err)
	}
	defer closeBody(createRes)
	if createRes.IsError() {
		return s.failResponse("ensure_index", createRes)
	}

	s.logger.InfoContext(ctx, "Index created")
	return nil
}

// DeleteIndex removes the whole index. Intended for tests and development environments.
func (s *Store) DeleteIndex(ctx context.Context) error {
	res, err := s.es.Indices.Delete([]string{s.index},
		s.es.Indices.Delete.WithContext(ctx),
		s.es.Indices.Delete.WithIgnoreUnavailable(true),
	)
	if err != nil {
		return s.fail("delete_index", err)
	}
	defer closeBody(res)
	if res.IsError() {
		return s.failResponse("delete_index", res)
	}
	return nil
}

// fail wraps a transport-level error so engine specifics do not escape the adapter.
func (s *Store) fail(op string, err error) error {
	return &apperrors.StoreError{Op: op, Index: s.index, Err: err}
}

// failResponse wraps an error response body, preserving the engine's message for diagnostics.
func (s *Store) failResponse(op string, res *esapi.Response) error {
	msg, err := io.ReadAll(res.Body)
	if err != nil {
		msg = []byte(res.Status())
	}
	return &apperrors.StoreError{Op: op, Index: s.index, Err: fmt.Errorf("status %d: %s", res.StatusCode, msg)}
}

func closeBody(res *esapi.Response) {
	if res != nil && res.Body != nil {
		_ = res.Body.Close()
	}
}
