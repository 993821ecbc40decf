package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"granel-store/internal/discount"
	"granel-store/internal/model"
	"granel-store/internal/repository"
)

// discountService implements DiscountService.
type discountService struct {
	discountRepo repository.DiscountRepository
	logger       zerolog.Logger
}

// NewDiscountService creates a new discount service.
func NewDiscountService(discountRepo repository.DiscountRepository, logger zerolog.Logger) DiscountService {
	return &discountService{
		discountRepo: discountRepo,
		logger:       logger.With().Str("service", "discount").Logger(),
	}
}

// ValidateCode checks a code against the cart subtotal. Lookup is
// case-insensitive; the rule failures come back as data so the storefront
// can show the message inline.
func (s *discountService) ValidateCode(ctx context.Context, code string, subtotal decimal.Decimal) (*DiscountValidation, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return &DiscountValidation{Valid: false, Error: model.ErrInvalidDiscountCode.Message}, nil
	}

	d, err := s.discountRepo.GetByCode(ctx, code)
	if err != nil {
		s.logger.Error().Err(err).Str("code", code).Msg("failed to look up discount")
		return nil, fmt.Errorf("failed to validate discount code: %w", err)
	}

	if domainErr := discount.Check(d, subtotal, time.Now()); domainErr != nil {
		s.logger.Debug().
			Str("code", code).
			Str("reason", domainErr.Code).
			Msg("discount code rejected")
		return &DiscountValidation{Valid: false, Error: domainErr.Message}, nil
	}

	return &DiscountValidation{Valid: true, Discount: d}, nil
}

// GetAll retrieves all discounts.
func (s *discountService) GetAll(ctx context.Context) ([]model.Discount, error) {
	discounts, err := s.discountRepo.GetAll(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list discounts")
		return nil, fmt.Errorf("failed to list discounts: %w", err)
	}
	return discounts, nil
}

// GetActive retrieves discounts currently inside their validity window.
func (s *discountService) GetActive(ctx context.Context) ([]model.Discount, error) {
	discounts, err := s.discountRepo.GetActive(ctx, time.Now())
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list active discounts")
		return nil, fmt.Errorf("failed to list active discounts: %w", err)
	}
	return discounts, nil
}

// GetByID retrieves a single discount.
func (s *discountService) GetByID(ctx context.Context, id uuid.UUID) (*model.Discount, error) {
	d, err := s.discountRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("discount_id", id.String()).Msg("failed to get discount")
		return nil, fmt.Errorf("failed to get discount: %w", err)
	}
	return d, nil
}

// Create creates a new discount.
func (s *discountService) Create(ctx context.Context, d *model.Discount) error {
	if err := validateDiscount(d); err != nil {
		return err
	}
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	d.Code = strings.ToUpper(strings.TrimSpace(d.Code))

	if err := s.discountRepo.Create(ctx, d); err != nil {
		s.logger.Error().Err(err).Str("code", d.Code).Msg("failed to create discount")
		return fmt.Errorf("failed to create discount: %w", err)
	}

	s.logger.Info().Str("discount_id", d.ID.String()).Str("code", d.Code).Msg("discount created")
	return nil
}

// Update updates an existing discount.
func (s *discountService) Update(ctx context.Context, d *model.Discount) error {
	if err := validateDiscount(d); err != nil {
		return err
	}
	d.Code = strings.ToUpper(strings.TrimSpace(d.Code))

	if err := s.discountRepo.Update(ctx, d); err != nil {
		s.logger.Error().Err(err).Str("discount_id", d.ID.String()).Msg("failed to update discount")
		return fmt.Errorf("failed to update discount: %w", err)
	}
	return nil
}

// Delete removes a discount.
func (s *discountService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.discountRepo.Delete(ctx, id); err != nil {
		s.logger.Error().Err(err).Str("discount_id", id.String()).Msg("failed to delete discount")
		return fmt.Errorf("failed to delete discount: %w", err)
	}

	s.logger.Info().Str("discount_id", id.String()).Msg("discount deleted")
	return nil
}

// SetActive toggles a discount's active flag.
func (s *discountService) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	if err := s.discountRepo.SetActive(ctx, id, active); err != nil {
		s.logger.Error().Err(err).Str("discount_id", id.String()).Msg("failed to toggle discount")
		return fmt.Errorf("failed to toggle discount: %w", err)
	}

	s.logger.Info().Str("discount_id", id.String()).Bool("active", active).Msg("discount toggled")
	return nil
}

func validateDiscount(d *model.Discount) error {
	if d == nil || strings.TrimSpace(d.Code) == "" {
		return model.NewDomainError(model.ErrCodeMissingField, "discount code is required")
	}
	if strings.TrimSpace(d.Name) == "" {
		return model.NewDomainError(model.ErrCodeMissingField, "discount name is required")
	}
	if !d.Value.IsPositive() {
		return model.NewDomainError(model.ErrCodeMissingField, "discount value must be greater than zero")
	}

	switch d.Type {
	case model.DiscountPercentage:
		if d.Value.GreaterThan(decimal.NewFromInt(100)) {
			return model.NewDomainError(model.ErrCodeMissingField, "percentage discount cannot exceed 100")
		}
	case model.DiscountFixed:
	case model.DiscountProduct:
		if d.AppliesToProductID == nil {
			return model.NewDomainError(model.ErrCodeMissingField, "product discount requires a product reference")
		}
	case model.DiscountCategory:
		if d.AppliesToCategoryID == nil {
			return model.NewDomainError(model.ErrCodeMissingField, "category discount requires a category reference")
		}
	default:
		return model.NewDomainError(model.ErrCodeMissingField, fmt.Sprintf("unknown discount type %q", d.Type))
	}

	if d.MinPurchase.IsNegative() {
		return model.NewDomainError(model.ErrCodeMissingField, "minimum purchase cannot be negative")
	}
	if d.MaxUses != nil && *d.MaxUses <= 0 {
		return model.NewDomainError(model.ErrCodeMissingField, "maximum uses must be greater than zero")
	}
	if d.StartsAt != nil && d.ExpiresAt != nil && d.ExpiresAt.Before(*d.StartsAt) {
		return model.NewDomainError(model.ErrCodeMissingField, "expiry cannot precede the start date")
	}

	return nil
}
