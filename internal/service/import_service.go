package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"granel-store/internal/importer"
	"granel-store/internal/model"
	"granel-store/internal/repository"
)

// defaultImportUnit is used when a CSV row does not name a unit.
const defaultImportUnit = "unidad"

// importService implements ImportService.
type importService struct {
	loader       importer.Loader
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	logger       zerolog.Logger
}

// NewImportService creates a new catalogue import service.
func NewImportService(
	loader importer.Loader,
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	logger zerolog.Logger,
) ImportService {
	return &importService{
		loader:       loader,
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		logger:       logger.With().Str("service", "import").Logger(),
	}
}

// ImportProducts loads and parses a catalogue CSV, then creates one product
// with a single default variant per valid row. Row failures are collected,
// not fatal; every valid row still imports.
func (s *importService) ImportProducts(ctx context.Context, path string) (*ImportResult, error) {
	body, err := s.loader.Load(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to import catalogue: %w", err)
	}
	defer body.Close()

	rows, rowErrors, err := importer.ParseCatalog(body)
	if err != nil {
		s.logger.Error().Err(err).Str("path", path).Msg("failed to parse catalogue")
		return nil, fmt.Errorf("failed to import catalogue: %w", err)
	}

	result := &ImportResult{
		Failed: len(rowErrors),
		Errors: rowErrors,
	}

	categories := make(map[string]*uuid.UUID)

	for _, row := range rows {
		categoryID, err := s.resolveCategory(ctx, row.Category, categories)
		if err != nil {
			return result, fmt.Errorf("failed to import catalogue: %w", err)
		}

		product := buildImportedProduct(row, categoryID)
		if err := s.productRepo.Create(ctx, product); err != nil {
			s.logger.Warn().Err(err).Str("name", row.Name).Msg("failed to import product")
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", row.Name, err))
			continue
		}
		result.Imported++
	}

	s.logger.Info().
		Str("path", path).
		Int("imported", result.Imported).
		Int("failed", result.Failed).
		Msg("catalogue import finished")

	return result, nil
}

// resolveCategory maps a slug to a category ID, caching lookups across the
// batch. Unknown or empty slugs leave the product uncategorised.
func (s *importService) resolveCategory(ctx context.Context, slug string, cache map[string]*uuid.UUID) (*uuid.UUID, error) {
	if slug == "" {
		return nil, nil
	}
	if id, ok := cache[slug]; ok {
		return id, nil
	}

	category, err := s.categoryRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve category %q: %w", slug, err)
	}

	var id *uuid.UUID
	if category != nil {
		id = &category.ID
	} else {
		s.logger.Warn().Str("slug", slug).Msg("unknown category slug, importing uncategorised")
	}
	cache[slug] = id
	return id, nil
}

func buildImportedProduct(row importer.Row, categoryID *uuid.UUID) *model.Product {
	product := &model.Product{
		ID:         uuid.New(),
		Name:       row.Name,
		CategoryID: categoryID,
		IsActive:   true,
	}
	if row.Description != "" {
		desc := row.Description
		product.Description = &desc
	}
	if row.ImageURL != "" {
		img := row.ImageURL
		product.ImageURL = &img
	}

	unit := row.Unit
	if unit == "" {
		unit = defaultImportUnit
	}
	product.Variants = []model.Variant{{
		ID:        uuid.New(),
		ProductID: product.ID,
		Unit:      unit,
		Price:     row.Price,
		Stock:     row.Stock,
		IsDefault: true,
	}}

	return product
}
