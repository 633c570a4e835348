// Package product provides the catalog's product lifecycle and search
// business logic on top of the document store and the sequence generator.
package product

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/akulikov/gocatalog/internal/store"
)

// SequenceKey is the counter that generates product_id values.
const SequenceKey = "product_id_seq"

// Index is the document collection holding products, keyed by product_uuid.
const (
	Index   = "products"
	IDField = "product_uuid"
)

// Sequencer generates the next monotonic product identifier.
type Sequencer interface {
	Next(ctx context.Context) (int64, error)
}

// LifecycleService defines the methods for managing the product lifecycle.
type LifecycleService interface {
	// Create assigns the next product_id and persists the product.
	Create(ctx context.Context, dto ProductCreateDto) (store.Document, error)

	// Update applies a partial merge to an existing product.
	// The product_id field is immutable and stripped from the partial if present.
	// Returns ErrNotFound if no product exists with the given uuid.
	Update(ctx context.Context, productUUID string, partial store.Document) (store.Document, error)

	// Delete removes a product by its uuid.
	// Returns ErrNotFound if no product exists with the given uuid.
	Delete(ctx context.Context, productUUID string) error

	// Get retrieves a product by its uuid.
	// Returns ErrNotFound if no product exists with the given uuid.
	Get(ctx context.Context, productUUID string) (store.Document, error)
}

// ProductCreateDto represents the data transfer object for creating a new product.
type ProductCreateDto struct {
	ProductUUID string  `json:"product_uuid" validate:"required"`
	CreatorID   string  `json:"creator_id"   validate:"required"`
	Category    string  `json:"category"     validate:"required"`
	Name        string  `json:"name"         validate:"required"`
	Brand       string  `json:"brand"        validate:"required"`
	Price       float64 `json:"price"        validate:"required,gt=0"`
}

// ProductUpdateDto represents the data transfer object for a partial product
// update. Absent fields leave the stored values as written.
type ProductUpdateDto struct {
	Category *string  `json:"category"`
	Name     *string  `json:"name"`
	Brand    *string  `json:"brand"`
	Model    *string  `json:"model"`
	Price    *float64 `json:"price" validate:"omitempty,gt=0"`
}

// Partial converts the DTO into a partial document, keeping only the supplied fields.
func (dto ProductUpdateDto) Partial() store.Document {
	partial := store.Document{}
	if dto.Category != nil {
		partial["category"] = *dto.Category
	}
	if dto.Name != nil {
		partial["name"] = *dto.Name
	}
	if dto.Brand != nil {
		partial["brand"] = *dto.Brand
	}
	if dto.Model != nil {
		partial["model"] = *dto.Model
	}
	if dto.Price != nil {
		partial["price"] = *dto.Price
	}
	return partial
}

// Service implements LifecycleService over a document store and a sequence generator.
type Service struct {
	store  store.DocumentStore
	seq    Sequencer
	logger *slog.Logger
}

// NewService creates a new product lifecycle service.
func NewService(st store.DocumentStore, seq Sequencer, logger *slog.Logger) *Service {
	return &Service{
		store:  st,
		seq:    seq,
		logger: logger.With("component", "product_service"),
	}
}

// Create assigns the next product_id and persists the product. If the sequence
// increment succeeds and persistence fails, that ID value is consumed and never
// reused; the resulting gap is accepted, monotonicity matters more than density.
func (s *Service) Create(ctx context.Context, dto ProductCreateDto) (store.Document, error) {
	productID, err := s.seq.Next(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to assign product ID: %w", err)
	}

	doc := store.Document{
		"product_id":   productID,
		"product_uuid": dto.ProductUUID,
		"creator_id":   dto.CreatorID,
		"category":     dto.Category,
		"name":         dto.Name,
		"brand":        dto.Brand,
		"price":        dto.Price,
	}

	created, err := s.store.Create(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("failed to create product %s: %w", dto.ProductUUID, err)
	}
	s.logger.InfoContext(ctx, "Product created", "product_uuid", dto.ProductUUID, "product_id", productID)
	return created, nil
}

// Update applies a partial merge to an existing product. product_id is
// immutable after creation and is stripped from the partial if present.
func (s *Service) Update(ctx context.Context, productUUID string, partial store.Document) (store.Document, error) {
	delete(partial, "product_id")

	updated, err := s.store.Update(ctx, productUUID, partial)
	if err != nil {
		return nil, fmt.Errorf("failed to update product %s: %w", productUUID, err)
	}
	s.logger.InfoContext(ctx, "Product updated", "product_uuid", productUUID)
	return updated, nil
}

// Delete removes a product by its uuid.
func (s *Service) Delete(ctx context.Context, productUUID string) error {
	if err := s.store.Delete(ctx, productUUID); err != nil {
		return fmt.Errorf("failed to delete product %s: %w", productUUID, err)
	}
	s.logger.InfoContext(ctx, "Product deleted", "product_uuid", productUUID)
	return nil
}

// Get retrieves a product by its uuid.
func (s *Service) Get(ctx context.Context, productUUID string) (store.Document, error) {
	doc, err := s.store.Get(ctx, productUUID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product %s: %w", productUUID, err)
	}
	return doc, nil
}
