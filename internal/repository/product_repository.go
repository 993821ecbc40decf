package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"granel-store/internal/model"
)

// productRepository implements the ProductRepository interface using PostgreSQL.
type productRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool *pgxpool.Pool, logger zerolog.Logger) ProductRepository {
	return &productRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "product").Logger(),
	}
}

const productColumns = "id, name, description, category_id, image_url, is_active, is_featured, created_at, updated_at"
const variantColumns = "id, product_id, unit, price, stock, is_default, created_at"

func scanProduct(row pgx.Row) (*model.Product, error) {
	var p model.Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.CategoryID, &p.ImageURL,
		&p.IsActive, &p.IsFeatured, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func scanVariant(row pgx.Row) (*model.Variant, error) {
	var v model.Variant
	err := row.Scan(&v.ID, &v.ProductID, &v.Unit, &v.Price, &v.Stock, &v.IsDefault, &v.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// GetAll retrieves products with their variants, with pagination support.
func (r *productRepository) GetAll(ctx context.Context, limit, offset int) ([]model.Product, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM products
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, productColumns)

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error().Err(err).
			Int("limit", limit).
			Int("offset", offset).
			Msg("failed to query products")
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan product row")
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, *p)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating product rows")
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	if err := r.attachVariants(ctx, products); err != nil {
		return nil, err
	}

	return products, nil
}

// GetActive retrieves active products only, for the storefront listing.
func (r *productRepository) GetActive(ctx context.Context, limit, offset int) ([]model.Product, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM products
		WHERE is_active = true
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, productColumns)

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error().Err(err).
			Int("limit", limit).
			Int("offset", offset).
			Msg("failed to query active products")
		return nil, fmt.Errorf("failed to query active products: %w", err)
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan product row")
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, *p)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating product rows")
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	if err := r.attachVariants(ctx, products); err != nil {
		return nil, err
	}

	return products, nil
}

// Search finds active products by name substring, case-insensitively.
func (r *productRepository) Search(ctx context.Context, query string, limit int) ([]model.Product, error) {
	sql := fmt.Sprintf(`
		SELECT %s
		FROM products
		WHERE is_active = true AND name ILIKE '%%' || $1 || '%%'
		ORDER BY name
		LIMIT $2
	`, productColumns)

	rows, err := r.pool.Query(ctx, sql, query, limit)
	if err != nil {
		r.logger.Error().Err(err).Str("query", query).Msg("failed to search products")
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan product row")
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, *p)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating product rows")
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	if err := r.attachVariants(ctx, products); err != nil {
		return nil, err
	}

	return products, nil
}

// GetByID retrieves a single product with its variants.
func (r *productRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	query := fmt.Sprintf("SELECT %s FROM products WHERE id = $1", productColumns)

	p, err := scanProduct(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("product_id", id.String()).Msg("product not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to query product")
		return nil, fmt.Errorf("failed to query product: %w", err)
	}

	products := []model.Product{*p}
	if err := r.attachVariants(ctx, products); err != nil {
		return nil, err
	}

	return &products[0], nil
}

// GetByIDs retrieves multiple products (with variants) by their IDs.
func (r *productRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error) {
	if len(ids) == 0 {
		return []model.Product{}, nil
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM products
		WHERE id = ANY($1)
		ORDER BY name
	`, productColumns)

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		r.logger.Error().Err(err).Int("count", len(ids)).Msg("failed to query products by IDs")
		return nil, fmt.Errorf("failed to query products by IDs: %w", err)
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan product row")
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, *p)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating product rows")
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	if err := r.attachVariants(ctx, products); err != nil {
		return nil, err
	}

	return products, nil
}

// attachVariants loads the variants for the given products in one query.
func (r *productRepository) attachVariants(ctx context.Context, products []model.Product) error {
	if len(products) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, len(products))
	index := make(map[uuid.UUID]int, len(products))
	for i := range products {
		ids[i] = products[i].ID
		index[products[i].ID] = i
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM product_variants
		WHERE product_id = ANY($1)
		ORDER BY is_default DESC, unit
	`, variantColumns)

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query product variants")
		return fmt.Errorf("failed to query product variants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		v, err := scanVariant(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan variant row")
			return fmt.Errorf("failed to scan variant: %w", err)
		}
		if i, ok := index[v.ProductID]; ok {
			products[i].Variants = append(products[i].Variants, *v)
		}
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating variant rows")
		return fmt.Errorf("error iterating variants: %w", err)
	}

	return nil
}

// Create inserts a product together with its variants.
func (r *productRepository) Create(ctx context.Context, product *model.Product) error {
	query := `
		INSERT INTO products (id, name, description, category_id, image_url, is_active, is_featured, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.pool.Exec(ctx, query,
		product.ID, product.Name, product.Description, product.CategoryID,
		product.ImageURL, product.IsActive, product.IsFeatured,
		product.CreatedAt, product.UpdatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("name", product.Name).Msg("failed to create product")
		return fmt.Errorf("failed to create product: %w", err)
	}

	if len(product.Variants) > 0 {
		batch := &pgx.Batch{}
		variantQuery := `
			INSERT INTO product_variants (id, product_id, unit, price, stock, is_default, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`
		for _, v := range product.Variants {
			batch.Queue(variantQuery, v.ID, v.ProductID, v.Unit, v.Price, v.Stock, v.IsDefault, v.CreatedAt)
		}

		results := r.pool.SendBatch(ctx, batch)
		defer results.Close()

		for range product.Variants {
			if _, err := results.Exec(); err != nil {
				r.logger.Error().Err(err).Str("product_id", product.ID.String()).Msg("failed to create product variant")
				return fmt.Errorf("failed to create product variant: %w", err)
			}
		}
	}

	r.logger.Debug().
		Str("product_id", product.ID.String()).
		Int("variant_count", len(product.Variants)).
		Msg("product created successfully")

	return nil
}

// Update updates the product row (not its variants).
func (r *productRepository) Update(ctx context.Context, product *model.Product) error {
	query := `
		UPDATE products
		SET name = $2, description = $3, category_id = $4, image_url = $5,
		    is_active = $6, is_featured = $7, updated_at = $8
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query,
		product.ID, product.Name, product.Description, product.CategoryID,
		product.ImageURL, product.IsActive, product.IsFeatured, product.UpdatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", product.ID.String()).Msg("failed to update product")
		return fmt.Errorf("failed to update product: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return model.ErrProductNotFound
	}

	return nil
}

// Delete removes a product and its variants.
func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to delete product")
		return fmt.Errorf("failed to delete product: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return model.ErrProductNotFound
	}

	return nil
}

// CreateVariant inserts a variant for an existing product.
func (r *productRepository) CreateVariant(ctx context.Context, variant *model.Variant) error {
	query := `
		INSERT INTO product_variants (id, product_id, unit, price, stock, is_default, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.pool.Exec(ctx, query,
		variant.ID, variant.ProductID, variant.Unit, variant.Price,
		variant.Stock, variant.IsDefault, variant.CreatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", variant.ProductID.String()).Msg("failed to create variant")
		return fmt.Errorf("failed to create variant: %w", err)
	}

	return nil
}

// UpdateVariant updates a variant's unit, price and default flag.
func (r *productRepository) UpdateVariant(ctx context.Context, variant *model.Variant) error {
	query := `
		UPDATE product_variants
		SET unit = $2, price = $3, is_default = $4
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, variant.ID, variant.Unit, variant.Price, variant.IsDefault)
	if err != nil {
		r.logger.Error().Err(err).Str("variant_id", variant.ID.String()).Msg("failed to update variant")
		return fmt.Errorf("failed to update variant: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return model.ErrProductNotFound
	}

	return nil
}

// DeleteVariant removes a variant.
func (r *productRepository) DeleteVariant(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM product_variants WHERE id = $1", id)
	if err != nil {
		r.logger.Error().Err(err).Str("variant_id", id.String()).Msg("failed to delete variant")
		return fmt.Errorf("failed to delete variant: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return model.ErrProductNotFound
	}

	return nil
}

// GetVariant retrieves a single variant.
func (r *productRepository) GetVariant(ctx context.Context, id uuid.UUID) (*model.Variant, error) {
	query := fmt.Sprintf("SELECT %s FROM product_variants WHERE id = $1", variantColumns)

	v, err := scanVariant(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("variant_id", id.String()).Msg("variant not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("variant_id", id.String()).Msg("failed to query variant")
		return nil, fmt.Errorf("failed to query variant: %w", err)
	}

	return v, nil
}

// SetStock sets a variant's stock to an absolute value.
func (r *productRepository) SetStock(ctx context.Context, variantID uuid.UUID, stock int) error {
	tag, err := r.pool.Exec(ctx,
		"UPDATE product_variants SET stock = $2 WHERE id = $1", variantID, stock)
	if err != nil {
		r.logger.Error().Err(err).Str("variant_id", variantID.String()).Msg("failed to set stock")
		return fmt.Errorf("failed to set stock: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return model.ErrProductNotFound
	}

	return nil
}

// AdjustStock applies a relative stock change in one guarded UPDATE.
// The WHERE clause refuses adjustments that would drive stock negative, so
// concurrent adjustments cannot race past zero.
func (r *productRepository) AdjustStock(ctx context.Context, variantID uuid.UUID, delta int) (int, error) {
	query := `
		UPDATE product_variants
		SET stock = stock + $2
		WHERE id = $1 AND stock + $2 >= 0
		RETURNING stock
	`

	var newStock int
	err := r.pool.QueryRow(ctx, query, variantID, delta).Scan(&newStock)
	if err != nil {
		if err == pgx.ErrNoRows {
			// Either the variant does not exist or the guard refused it.
			v, lookupErr := r.GetVariant(ctx, variantID)
			if lookupErr != nil {
				return 0, lookupErr
			}
			if v == nil {
				return 0, model.ErrProductNotFound
			}
			return 0, model.ErrNegativeStock
		}
		r.logger.Error().Err(err).
			Str("variant_id", variantID.String()).
			Int("delta", delta).
			Msg("failed to adjust stock")
		return 0, fmt.Errorf("failed to adjust stock: %w", err)
	}

	return newStock, nil
}

// DecrementStockTx decrements stock within a transaction, guarded by
// availability.
func (r *productRepository) DecrementStockTx(ctx context.Context, tx pgx.Tx, variantID uuid.UUID, quantity int) error {
	query := `
		UPDATE product_variants
		SET stock = stock - $2
		WHERE id = $1 AND stock >= $2
	`

	tag, err := tx.Exec(ctx, query, variantID, quantity)
	if err != nil {
		r.logger.Error().Err(err).
			Str("variant_id", variantID.String()).
			Int("quantity", quantity).
			Msg("failed to decrement stock")
		return fmt.Errorf("failed to decrement stock: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return model.ErrInsufficientStock
	}

	return nil
}

// StockOverview lists every variant with its product and category, ordered
// by stock ascending so the emptiest shelves come first.
func (r *productRepository) StockOverview(ctx context.Context) ([]model.StockItem, error) {
	query := `
		SELECT v.id, p.id, p.name, v.unit, v.stock, v.price,
		       COALESCE(c.name, 'Sin categoría'), v.is_default
		FROM product_variants v
		JOIN products p ON p.id = v.product_id
		LEFT JOIN categories c ON c.id = p.category_id
		ORDER BY v.stock ASC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query stock overview")
		return nil, fmt.Errorf("failed to query stock overview: %w", err)
	}
	defer rows.Close()

	var items []model.StockItem
	for rows.Next() {
		var item model.StockItem
		err := rows.Scan(&item.VariantID, &item.ProductID, &item.ProductName,
			&item.VariantUnit, &item.CurrentStock, &item.Price,
			&item.CategoryName, &item.IsDefault)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan stock row")
			return nil, fmt.Errorf("failed to scan stock row: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating stock rows")
		return nil, fmt.Errorf("error iterating stock rows: %w", err)
	}

	return items, nil
}
