package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"granel-store/internal/model"
	"granel-store/internal/repository"
)

// inventoryService implements InventoryService.
type inventoryService struct {
	productRepo       repository.ProductRepository
	lowStockThreshold int
	logger            zerolog.Logger
}

// NewInventoryService creates a new inventory service with the configured
// low-stock threshold.
func NewInventoryService(productRepo repository.ProductRepository, lowStockThreshold int, logger zerolog.Logger) InventoryService {
	return &inventoryService{
		productRepo:       productRepo,
		lowStockThreshold: lowStockThreshold,
		logger:            logger.With().Str("service", "inventory").Logger(),
	}
}

// Overview returns every variant with low and out-of-stock counts.
func (s *inventoryService) Overview(ctx context.Context) (*model.StockOverview, error) {
	items, err := s.productRepo.StockOverview(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to load stock overview")
		return nil, fmt.Errorf("failed to load stock overview: %w", err)
	}

	overview := &model.StockOverview{
		TotalVariants: len(items),
		Items:         items,
	}

	products := make(map[uuid.UUID]bool, len(items))
	for _, item := range items {
		products[item.ProductID] = true
		switch {
		case item.CurrentStock == 0:
			overview.OutOfStockCount++
		case item.CurrentStock <= s.lowStockThreshold:
			overview.LowStockCount++
		}
	}
	overview.TotalProducts = len(products)

	return overview, nil
}

// LowStock lists variants at or below the threshold but not yet empty.
func (s *inventoryService) LowStock(ctx context.Context) ([]model.StockItem, error) {
	items, err := s.productRepo.StockOverview(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to load stock overview")
		return nil, fmt.Errorf("failed to load stock overview: %w", err)
	}

	low := make([]model.StockItem, 0)
	for _, item := range items {
		if item.CurrentStock > 0 && item.CurrentStock <= s.lowStockThreshold {
			low = append(low, item)
		}
	}
	return low, nil
}

// OutOfStock lists variants with no stock left.
func (s *inventoryService) OutOfStock(ctx context.Context) ([]model.StockItem, error) {
	items, err := s.productRepo.StockOverview(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to load stock overview")
		return nil, fmt.Errorf("failed to load stock overview: %w", err)
	}

	out := make([]model.StockItem, 0)
	for _, item := range items {
		if item.CurrentStock == 0 {
			out = append(out, item)
		}
	}
	return out, nil
}

// SetStock sets a variant's stock to an absolute value.
func (s *inventoryService) SetStock(ctx context.Context, variantID uuid.UUID, stock int) error {
	if stock < 0 {
		return model.ErrNegativeStock
	}

	if err := s.productRepo.SetStock(ctx, variantID, stock); err != nil {
		s.logger.Error().Err(err).Str("variant_id", variantID.String()).Msg("failed to set stock")
		return err
	}

	s.logger.Info().Str("variant_id", variantID.String()).Int("stock", stock).Msg("stock set")
	return nil
}

// AdjustStock applies a relative change, returning the resulting stock. The
// guarded update refuses changes that would drive stock negative.
func (s *inventoryService) AdjustStock(ctx context.Context, variantID uuid.UUID, delta int) (int, error) {
	newStock, err := s.productRepo.AdjustStock(ctx, variantID, delta)
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("variant_id", variantID.String()).
			Int("delta", delta).
			Msg("stock adjustment refused")
		return 0, err
	}

	s.logger.Info().
		Str("variant_id", variantID.String()).
		Int("delta", delta).
		Int("stock", newStock).
		Msg("stock adjusted")
	return newStock, nil
}

// BulkSetStock applies several absolute updates. A failing entry is
// reported and skipped; the rest of the batch still applies.
func (s *inventoryService) BulkSetStock(ctx context.Context, updates []model.StockUpdate) (int, []string, error) {
	updated := 0
	var failures []string

	for _, u := range updates {
		if u.Stock < 0 {
			failures = append(failures, fmt.Sprintf("%s: %s", u.VariantID, model.ErrNegativeStock.Message))
			continue
		}
		if err := s.productRepo.SetStock(ctx, u.VariantID, u.Stock); err != nil {
			var domainErr *model.DomainError
			if errors.As(err, &domainErr) {
				failures = append(failures, fmt.Sprintf("%s: %s", u.VariantID, domainErr.Message))
				continue
			}
			s.logger.Error().Err(err).Str("variant_id", u.VariantID.String()).Msg("bulk stock update aborted")
			return updated, failures, fmt.Errorf("failed to update stock: %w", err)
		}
		updated++
	}

	s.logger.Info().
		Int("updated", updated).
		Int("failed", len(failures)).
		Msg("bulk stock update finished")
	return updated, failures, nil
}

// CheckAvailability reports whether a variant holds at least the requested
// quantity, and the current stock level.
func (s *inventoryService) CheckAvailability(ctx context.Context, variantID uuid.UUID, quantity int) (bool, int, error) {
	if quantity <= 0 {
		return false, 0, model.ErrInvalidQuantity
	}

	variant, err := s.productRepo.GetVariant(ctx, variantID)
	if err != nil {
		s.logger.Error().Err(err).Str("variant_id", variantID.String()).Msg("failed to get variant")
		return false, 0, fmt.Errorf("failed to check availability: %w", err)
	}
	if variant == nil {
		return false, 0, model.ErrProductNotFound
	}

	return variant.Stock >= quantity, variant.Stock, nil
}
