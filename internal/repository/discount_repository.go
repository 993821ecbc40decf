package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"granel-store/internal/model"
)

// discountRepository implements the DiscountRepository interface using PostgreSQL.
type discountRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewDiscountRepository creates a new PostgreSQL-backed discount repository.
func NewDiscountRepository(pool *pgxpool.Pool, logger zerolog.Logger) DiscountRepository {
	return &discountRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "discount").Logger(),
	}
}

const discountColumns = `id, code, name, description, type, value, min_purchase,
	max_uses, current_uses, applies_to_product_id, applies_to_category_id,
	is_active, starts_at, expires_at, created_at, updated_at`

func scanDiscount(row pgx.Row) (*model.Discount, error) {
	var d model.Discount
	err := row.Scan(&d.ID, &d.Code, &d.Name, &d.Description, &d.Type, &d.Value,
		&d.MinPurchase, &d.MaxUses, &d.CurrentUses, &d.AppliesToProductID,
		&d.AppliesToCategoryID, &d.IsActive, &d.StartsAt, &d.ExpiresAt,
		&d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// GetAll retrieves all discounts, newest first.
func (r *discountRepository) GetAll(ctx context.Context) ([]model.Discount, error) {
	query := fmt.Sprintf("SELECT %s FROM discounts ORDER BY created_at DESC", discountColumns)

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query discounts")
		return nil, fmt.Errorf("failed to query discounts: %w", err)
	}
	defer rows.Close()

	return r.collectDiscounts(rows)
}

// GetActive retrieves discounts that are active and inside their validity
// window at the given time.
func (r *discountRepository) GetActive(ctx context.Context, now time.Time) ([]model.Discount, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM discounts
		WHERE is_active = true
		  AND (expires_at IS NULL OR expires_at > $1)
		  AND (starts_at IS NULL OR starts_at < $1)
		ORDER BY created_at DESC
	`, discountColumns)

	rows, err := r.pool.Query(ctx, query, now)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query active discounts")
		return nil, fmt.Errorf("failed to query active discounts: %w", err)
	}
	defer rows.Close()

	return r.collectDiscounts(rows)
}

func (r *discountRepository) collectDiscounts(rows pgx.Rows) ([]model.Discount, error) {
	var discounts []model.Discount
	for rows.Next() {
		d, err := scanDiscount(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan discount row")
			return nil, fmt.Errorf("failed to scan discount: %w", err)
		}
		discounts = append(discounts, *d)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating discount rows")
		return nil, fmt.Errorf("error iterating discounts: %w", err)
	}

	return discounts, nil
}

// GetByID retrieves a single discount by ID.
func (r *discountRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Discount, error) {
	query := fmt.Sprintf("SELECT %s FROM discounts WHERE id = $1", discountColumns)

	d, err := scanDiscount(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("discount_id", id.String()).Msg("discount not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("discount_id", id.String()).Msg("failed to query discount")
		return nil, fmt.Errorf("failed to query discount: %w", err)
	}

	return d, nil
}

// GetByCode retrieves a discount by its code. The lookup is normalised to
// uppercase, which is how codes are stored.
func (r *discountRepository) GetByCode(ctx context.Context, code string) (*model.Discount, error) {
	query := fmt.Sprintf("SELECT %s FROM discounts WHERE code = $1", discountColumns)

	d, err := scanDiscount(r.pool.QueryRow(ctx, query, strings.ToUpper(code)))
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("code", code).Msg("discount code not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("code", code).Msg("failed to query discount by code")
		return nil, fmt.Errorf("failed to query discount by code: %w", err)
	}

	return d, nil
}

// Create inserts a new discount. The code is stored uppercase.
func (r *discountRepository) Create(ctx context.Context, discount *model.Discount) error {
	query := `
		INSERT INTO discounts (id, code, name, description, type, value, min_purchase,
			max_uses, current_uses, applies_to_product_id, applies_to_category_id,
			is_active, starts_at, expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	_, err := r.pool.Exec(ctx, query,
		discount.ID, strings.ToUpper(discount.Code), discount.Name,
		discount.Description, discount.Type, discount.Value,
		discount.MinPurchase, discount.MaxUses, discount.CurrentUses,
		discount.AppliesToProductID, discount.AppliesToCategoryID,
		discount.IsActive, discount.StartsAt, discount.ExpiresAt,
		discount.CreatedAt, discount.UpdatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("code", discount.Code).Msg("failed to create discount")
		return fmt.Errorf("failed to create discount: %w", err)
	}

	r.logger.Debug().Str("discount_id", discount.ID.String()).Msg("discount created successfully")
	return nil
}

// Update updates an existing discount.
func (r *discountRepository) Update(ctx context.Context, discount *model.Discount) error {
	query := `
		UPDATE discounts
		SET code = $2, name = $3, description = $4, type = $5, value = $6,
		    min_purchase = $7, max_uses = $8, applies_to_product_id = $9,
		    applies_to_category_id = $10, is_active = $11, starts_at = $12,
		    expires_at = $13, updated_at = $14
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query,
		discount.ID, strings.ToUpper(discount.Code), discount.Name,
		discount.Description, discount.Type, discount.Value,
		discount.MinPurchase, discount.MaxUses, discount.AppliesToProductID,
		discount.AppliesToCategoryID, discount.IsActive, discount.StartsAt,
		discount.ExpiresAt, discount.UpdatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("discount_id", discount.ID.String()).Msg("failed to update discount")
		return fmt.Errorf("failed to update discount: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return model.ErrInvalidDiscountCode
	}

	return nil
}

// Delete removes a discount.
func (r *discountRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM discounts WHERE id = $1", id)
	if err != nil {
		r.logger.Error().Err(err).Str("discount_id", id.String()).Msg("failed to delete discount")
		return fmt.Errorf("failed to delete discount: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return model.ErrInvalidDiscountCode
	}

	return nil
}

// SetActive toggles the active flag.
func (r *discountRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	tag, err := r.pool.Exec(ctx,
		"UPDATE discounts SET is_active = $2, updated_at = now() WHERE id = $1", id, active)
	if err != nil {
		r.logger.Error().Err(err).Str("discount_id", id.String()).Msg("failed to toggle discount")
		return fmt.Errorf("failed to toggle discount: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return model.ErrInvalidDiscountCode
	}

	return nil
}

// IncrementUsageTx bumps current_uses in one conditional UPDATE guarded by
// max_uses. Two concurrent orders cannot both take the last use: the guard
// and the increment happen in the same statement.
func (r *discountRepository) IncrementUsageTx(ctx context.Context, tx pgx.Tx, code string) (bool, error) {
	query := `
		UPDATE discounts
		SET current_uses = current_uses + 1, updated_at = now()
		WHERE code = $1
		  AND (max_uses IS NULL OR current_uses < max_uses)
	`

	tag, err := tx.Exec(ctx, query, strings.ToUpper(code))
	if err != nil {
		r.logger.Error().Err(err).Str("code", code).Msg("failed to increment discount usage")
		return false, fmt.Errorf("failed to increment discount usage: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}
