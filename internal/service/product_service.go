package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"granel-store/internal/model"
	"granel-store/internal/repository"
)

// productSearchLimit caps storefront product search results.
const productSearchLimit = 10

// productService implements ProductService.
type productService struct {
	productRepo repository.ProductRepository
	logger      zerolog.Logger
}

// NewProductService creates a new product service.
func NewProductService(productRepo repository.ProductRepository, logger zerolog.Logger) ProductService {
	return &productService{
		productRepo: productRepo,
		logger:      logger.With().Str("service", "product").Logger(),
	}
}

// GetAll retrieves products with pagination.
func (s *productService) GetAll(ctx context.Context, limit, offset int) ([]model.Product, error) {
	products, err := s.productRepo.GetAll(ctx, limit, offset)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list products")
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// GetActive retrieves active products only.
func (s *productService) GetActive(ctx context.Context, limit, offset int) ([]model.Product, error) {
	products, err := s.productRepo.GetActive(ctx, limit, offset)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list active products")
		return nil, fmt.Errorf("failed to list active products: %w", err)
	}
	return products, nil
}

// Search finds active products by name. An empty query returns no results
// rather than the whole catalogue.
func (s *productService) Search(ctx context.Context, query string) ([]model.Product, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []model.Product{}, nil
	}

	products, err := s.productRepo.Search(ctx, query, productSearchLimit)
	if err != nil {
		s.logger.Error().Err(err).Str("query", query).Msg("failed to search products")
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	return products, nil
}

// GetByID retrieves a single product with its variants.
func (s *productService) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to get product")
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return product, nil
}

// Create creates a product with its variants. A product must carry at least
// one variant, and exactly one variant is marked default.
func (s *productService) Create(ctx context.Context, product *model.Product) error {
	if err := validateProduct(product); err != nil {
		return err
	}

	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	for i := range product.Variants {
		if product.Variants[i].ID == uuid.Nil {
			product.Variants[i].ID = uuid.New()
		}
		product.Variants[i].ProductID = product.ID
	}
	ensureDefaultVariant(product.Variants)

	if err := s.productRepo.Create(ctx, product); err != nil {
		s.logger.Error().Err(err).Str("name", product.Name).Msg("failed to create product")
		return fmt.Errorf("failed to create product: %w", err)
	}

	s.logger.Info().
		Str("product_id", product.ID.String()).
		Int("variant_count", len(product.Variants)).
		Msg("product created")
	return nil
}

// Update updates the product row.
func (s *productService) Update(ctx context.Context, product *model.Product) error {
	if strings.TrimSpace(product.Name) == "" {
		return model.NewDomainError(model.ErrCodeMissingField, "product name is required")
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		s.logger.Error().Err(err).Str("product_id", product.ID.String()).Msg("failed to update product")
		return fmt.Errorf("failed to update product: %w", err)
	}
	return nil
}

// Delete removes a product and its variants.
func (s *productService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.productRepo.Delete(ctx, id); err != nil {
		s.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to delete product")
		return fmt.Errorf("failed to delete product: %w", err)
	}

	s.logger.Info().Str("product_id", id.String()).Msg("product deleted")
	return nil
}

func validateProduct(product *model.Product) error {
	if product == nil || strings.TrimSpace(product.Name) == "" {
		return model.NewDomainError(model.ErrCodeMissingField, "product name is required")
	}
	if len(product.Variants) == 0 {
		return model.NewDomainError(model.ErrCodeMissingField, "product must have at least one variant")
	}
	for i, v := range product.Variants {
		if strings.TrimSpace(v.Unit) == "" {
			return model.NewDomainError(model.ErrCodeMissingField, fmt.Sprintf("variant %d: unit is required", i))
		}
		if v.Price.IsNegative() {
			return model.NewDomainError(model.ErrCodeMissingField, fmt.Sprintf("variant %d: price cannot be negative", i))
		}
		if v.Stock < 0 {
			return model.ErrNegativeStock
		}
	}
	return nil
}

// ensureDefaultVariant keeps exactly one default: the first marked one wins,
// or the first variant when none is marked.
func ensureDefaultVariant(variants []model.Variant) {
	defaultIdx := -1
	for i := range variants {
		if variants[i].IsDefault {
			defaultIdx = i
			break
		}
	}
	if defaultIdx == -1 {
		defaultIdx = 0
	}
	for i := range variants {
		variants[i].IsDefault = i == defaultIdx
	}
}
