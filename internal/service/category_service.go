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

// categoryService implements CategoryService.
type categoryService struct {
	categoryRepo repository.CategoryRepository
	logger       zerolog.Logger
}

// NewCategoryService creates a new category service.
func NewCategoryService(categoryRepo repository.CategoryRepository, logger zerolog.Logger) CategoryService {
	return &categoryService{
		categoryRepo: categoryRepo,
		logger:       logger.With().Str("service", "category").Logger(),
	}
}

// GetAll retrieves all categories.
func (s *categoryService) GetAll(ctx context.Context) ([]model.Category, error) {
	categories, err := s.categoryRepo.GetAll(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list categories")
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// GetByID retrieves a single category.
func (s *categoryService) GetByID(ctx context.Context, id uuid.UUID) (*model.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("category_id", id.String()).Msg("failed to get category")
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return category, nil
}

// Create creates a new category, deriving the slug from the name when the
// caller did not provide one.
func (s *categoryService) Create(ctx context.Context, category *model.Category) error {
	if strings.TrimSpace(category.Name) == "" {
		return model.NewDomainError(model.ErrCodeMissingField, "category name is required")
	}
	if category.Slug == "" {
		category.Slug = Slugify(category.Name)
	}
	if category.ID == uuid.Nil {
		category.ID = uuid.New()
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		s.logger.Error().Err(err).Str("slug", category.Slug).Msg("failed to create category")
		return fmt.Errorf("failed to create category: %w", err)
	}

	s.logger.Info().Str("category_id", category.ID.String()).Str("slug", category.Slug).Msg("category created")
	return nil
}

// Update updates an existing category.
func (s *categoryService) Update(ctx context.Context, category *model.Category) error {
	if strings.TrimSpace(category.Name) == "" {
		return model.NewDomainError(model.ErrCodeMissingField, "category name is required")
	}
	if category.Slug == "" {
		category.Slug = Slugify(category.Name)
	}

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		s.logger.Error().Err(err).Str("category_id", category.ID.String()).Msg("failed to update category")
		return fmt.Errorf("failed to update category: %w", err)
	}
	return nil
}

// Delete removes a category, refusing while products still reference it.
func (s *categoryService) Delete(ctx context.Context, id uuid.UUID) error {
	count, err := s.categoryRepo.CountProducts(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("category_id", id.String()).Msg("failed to count category products")
		return fmt.Errorf("failed to delete category: %w", err)
	}
	if count > 0 {
		s.logger.Warn().
			Str("category_id", id.String()).
			Int("product_count", count).
			Msg("category delete refused")
		return model.ErrCategoryInUse
	}

	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		s.logger.Error().Err(err).Str("category_id", id.String()).Msg("failed to delete category")
		return fmt.Errorf("failed to delete category: %w", err)
	}

	s.logger.Info().Str("category_id", id.String()).Msg("category deleted")
	return nil
}

// Slugify lowercases a name, strips accents common in Spanish category
// names and joins words with dashes.
func Slugify(name string) string {
	replacer := strings.NewReplacer(
		"á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u", "ñ", "n", "ü", "u",
	)
	slug := replacer.Replace(strings.ToLower(strings.TrimSpace(name)))

	var b strings.Builder
	lastDash := false
	for _, r := range slug {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		case !lastDash && b.Len() > 0:
			b.WriteByte('-')
			lastDash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
