package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"granel-store/internal/model"
)

// CategoryRepository defines the interface for category data access operations.
type CategoryRepository interface {
	// GetAll retrieves all categories ordered by name.
	GetAll(ctx context.Context) ([]model.Category, error)

	// GetByID retrieves a single category by its ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Category, error)

	// GetBySlug retrieves a single category by its unique slug.
	GetBySlug(ctx context.Context, slug string) (*model.Category, error)

	// Create inserts a new category.
	Create(ctx context.Context, category *model.Category) error

	// Update updates an existing category.
	Update(ctx context.Context, category *model.Category) error

	// Delete removes a category by ID.
	Delete(ctx context.Context, id uuid.UUID) error

	// CountProducts returns how many products reference the category.
	CountProducts(ctx context.Context, id uuid.UUID) (int, error)
}

// ProductRepository defines the interface for product and variant data
// access operations, including stock mutation.
type ProductRepository interface {
	// GetAll retrieves products with their variants, with pagination support.
	GetAll(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetActive retrieves active products only, for the storefront listing.
	GetActive(ctx context.Context, limit, offset int) ([]model.Product, error)

	// Search finds active products by name substring.
	Search(ctx context.Context, query string, limit int) ([]model.Product, error)

	// GetByID retrieves a single product with its variants.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)

	// GetByIDs retrieves multiple products (with variants) by their IDs.
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error)

	// Create inserts a product together with its variants.
	Create(ctx context.Context, product *model.Product) error

	// Update updates the product row (not its variants).
	Update(ctx context.Context, product *model.Product) error

	// Delete removes a product and its variants.
	Delete(ctx context.Context, id uuid.UUID) error

	// CreateVariant inserts a variant for an existing product.
	CreateVariant(ctx context.Context, variant *model.Variant) error

	// UpdateVariant updates a variant's unit, price and default flag.
	UpdateVariant(ctx context.Context, variant *model.Variant) error

	// DeleteVariant removes a variant.
	DeleteVariant(ctx context.Context, id uuid.UUID) error

	// GetVariant retrieves a single variant.
	GetVariant(ctx context.Context, id uuid.UUID) (*model.Variant, error)

	// SetStock sets a variant's stock to an absolute value.
	SetStock(ctx context.Context, variantID uuid.UUID, stock int) error

	// AdjustStock applies a relative stock change in one guarded UPDATE,
	// returning the new stock. The update is refused when it would drive
	// stock negative.
	AdjustStock(ctx context.Context, variantID uuid.UUID, delta int) (int, error)

	// DecrementStockTx decrements stock within a transaction, guarded by
	// availability. Returns model.ErrInsufficientStock when the variant
	// does not hold enough stock.
	DecrementStockTx(ctx context.Context, tx pgx.Tx, variantID uuid.UUID, quantity int) error

	// StockOverview lists every variant with its product and category,
	// ordered by stock ascending.
	StockOverview(ctx context.Context) ([]model.StockItem, error)
}

// CustomerRepository defines the interface for customer data access operations.
type CustomerRepository interface {
	// GetAll retrieves all customers, newest first.
	GetAll(ctx context.Context) ([]model.Customer, error)

	// GetByID retrieves a single customer by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Customer, error)

	// GetByPhone retrieves a customer by exact phone match.
	GetByPhone(ctx context.Context, phone string) (*model.Customer, error)

	// Search finds customers by name or phone substring.
	Search(ctx context.Context, query string, limit int) ([]model.Customer, error)

	// Create inserts a new customer.
	Create(ctx context.Context, customer *model.Customer) error

	// CreateTx inserts a new customer within the provided transaction.
	CreateTx(ctx context.Context, tx pgx.Tx, customer *model.Customer) error

	// Update updates an existing customer.
	Update(ctx context.Context, customer *model.Customer) error

	// Delete removes a customer.
	Delete(ctx context.Context, id uuid.UUID) error

	// RecordOrderTx folds a placed order into the customer aggregates
	// (total_orders, total_spent, last_order_at) within the transaction.
	RecordOrderTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, orderTotal decimal.Decimal, at time.Time) error
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// CreateTx inserts a new order within the provided transaction.
	CreateTx(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateItemsTx inserts order items within the provided transaction.
	CreateItemsTx(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error

	// GetByID retrieves an order with its items.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)

	// GetAll retrieves orders (with items), newest first.
	GetAll(ctx context.Context, limit, offset int) ([]model.Order, error)

	// GetByStatus retrieves orders in the given status, newest first.
	GetByStatus(ctx context.Context, status model.OrderStatus) ([]model.Order, error)

	// UpdateStatus sets the order status, stamping delivered_at when given.
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus, deliveredAt *time.Time) error

	// Delete removes an order and its items.
	Delete(ctx context.Context, id uuid.UUID) error

	// Statistics aggregates non-cancelled orders created at or after since
	// (all orders when since is nil).
	Statistics(ctx context.Context, since *time.Time) (*model.OrderStatistics, error)
}

// DiscountRepository defines the interface for discount data access operations.
type DiscountRepository interface {
	// GetAll retrieves all discounts, newest first.
	GetAll(ctx context.Context) ([]model.Discount, error)

	// GetActive retrieves discounts that are active and inside their
	// validity window at the given time.
	GetActive(ctx context.Context, now time.Time) ([]model.Discount, error)

	// GetByID retrieves a single discount by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Discount, error)

	// GetByCode retrieves a discount by its uppercase code.
	GetByCode(ctx context.Context, code string) (*model.Discount, error)

	// Create inserts a new discount. The code is stored uppercase.
	Create(ctx context.Context, discount *model.Discount) error

	// Update updates an existing discount.
	Update(ctx context.Context, discount *model.Discount) error

	// Delete removes a discount.
	Delete(ctx context.Context, id uuid.UUID) error

	// SetActive toggles the active flag.
	SetActive(ctx context.Context, id uuid.UUID, active bool) error

	// IncrementUsageTx bumps current_uses in one conditional UPDATE guarded
	// by max_uses, within the transaction. Returns false when the guard
	// refused the increment (limit already reached).
	IncrementUsageTx(ctx context.Context, tx pgx.Tx, code string) (bool, error)
}
