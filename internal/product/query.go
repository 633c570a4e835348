package product

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/akulikov/gocatalog/internal/store"
)

// Filters is the flat set of optional search parameters.
type Filters struct {
	Query    string
	Category string
	Brand    string
	MinPrice *float64
	MaxPrice *float64
}

// Searcher executes a filtered, sorted, paginated product search.
type Searcher interface {
	Search(ctx context.Context, filters Filters, page, size int, sortBy string) (*store.Result, error)
}

// QueryService translates flat filters into a boolean query with a sort
// specification and executes it against the document store.
type QueryService struct {
	store  store.DocumentStore
	logger *slog.Logger
}

// NewQueryService creates a new product query service.
func NewQueryService(st store.DocumentStore, logger *slog.Logger) *QueryService {
	return &QueryService{
		store:  st,
		logger: logger.With("component", "product_query"),
	}
}

// Search executes a product search. Pagination echoes the requested page and
// size in the envelope regardless of how many items were returned.
func (qs *QueryService) Search(ctx context.Context, filters Filters, page, size int, sortBy string) (*store.Result, error) {
	body := store.Document{
		"query": buildQuery(filters),
		"sort":  buildSort(sortBy),
	}

	result, err := qs.store.Search(ctx, body, page, size)
	if err != nil {
		return nil, fmt.Errorf("product search failed: %w", err)
	}
	qs.logger.DebugContext(ctx, "Search completed", "total", result.Total, "page", page, "size", size)
	return result, nil
}

// buildQuery composes a boolean query from the flat filter set. Scored clauses
// go to must, exact matches and ranges to filter. An empty filter set yields a
// bool query with an empty must list, which matches all documents.
func buildQuery(f Filters) store.Document {
	must := []store.Document{}
	filter := []store.Document{}

	if f.Query != "" {
		must = append(must, store.Document{
			"multi_match": store.Document{
				"query":  f.Query,
				"fields": []string{"name^3", "brand^2"},
			},
		})
	}

	if f.Category != "" {
		filter = append(filter, store.Document{"term": store.Document{"category": f.Category}})
	}
	if f.Brand != "" {
		filter = append(filter, store.Document{"term": store.Document{"brand": f.Brand}})
	}

	if f.MinPrice != nil || f.MaxPrice != nil {
		bounds := store.Document{}
		if f.MinPrice != nil {
			bounds["gte"] = *f.MinPrice
		}
		if f.MaxPrice != nil {
			bounds["lte"] = *f.MaxPrice
		}
		filter = append(filter, store.Document{"range": store.Document{"price": bounds}})
	}

	boolQuery := store.Document{"must": must}
	if len(filter) > 0 {
		boolQuery["filter"] = filter
	}
	return store.Document{"bool": boolQuery}
}

// buildSort maps a sort-mode token to a sort specification. Unrecognized
// tokens fall back to the default ordering, newest-inserted-first by
// product_id. That permissive fallback is deliberate, not an error.
func buildSort(sortBy string) []store.Document {
	switch sortBy {
	case "price_asc":
		return []store.Document{{"price": "asc"}}
	case "price_desc":
		return []store.Document{{"price": "desc"}}
	case "newest":
		return []store.Document{{"created_at": "desc"}}
	case "popularity":
		return []store.Document{{"_score": "desc"}}
	default:
		return []store.Document{{"product_id": "desc"}}
	}
}
