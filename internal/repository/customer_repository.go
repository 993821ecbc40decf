package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"granel-store/internal/model"
)

// customerRepository implements the CustomerRepository interface using PostgreSQL.
type customerRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCustomerRepository creates a new PostgreSQL-backed customer repository.
func NewCustomerRepository(pool *pgxpool.Pool, logger zerolog.Logger) CustomerRepository {
	return &customerRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "customer").Logger(),
	}
}

const customerColumns = "id, name, phone, email, address, notes, is_frequent, total_orders, total_spent, last_order_at, created_at, updated_at"

func scanCustomer(row pgx.Row) (*model.Customer, error) {
	var c model.Customer
	err := row.Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.Address, &c.Notes,
		&c.IsFrequent, &c.TotalOrders, &c.TotalSpent, &c.LastOrderAt,
		&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetAll retrieves all customers, newest first.
func (r *customerRepository) GetAll(ctx context.Context) ([]model.Customer, error) {
	query := fmt.Sprintf("SELECT %s FROM customers ORDER BY created_at DESC", customerColumns)

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query customers")
		return nil, fmt.Errorf("failed to query customers: %w", err)
	}
	defer rows.Close()

	var customers []model.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan customer row")
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, *c)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating customer rows")
		return nil, fmt.Errorf("error iterating customers: %w", err)
	}

	return customers, nil
}

// GetByID retrieves a single customer by ID.
func (r *customerRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	query := fmt.Sprintf("SELECT %s FROM customers WHERE id = $1", customerColumns)

	c, err := scanCustomer(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("customer_id", id.String()).Msg("customer not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("customer_id", id.String()).Msg("failed to query customer")
		return nil, fmt.Errorf("failed to query customer: %w", err)
	}

	return c, nil
}

// GetByPhone retrieves a customer by exact phone match.
func (r *customerRepository) GetByPhone(ctx context.Context, phone string) (*model.Customer, error) {
	query := fmt.Sprintf("SELECT %s FROM customers WHERE phone = $1", customerColumns)

	c, err := scanCustomer(r.pool.QueryRow(ctx, query, phone))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		r.logger.Error().Err(err).Msg("failed to query customer by phone")
		return nil, fmt.Errorf("failed to query customer by phone: %w", err)
	}

	return c, nil
}

// Search finds customers by name or phone substring, most orders first.
func (r *customerRepository) Search(ctx context.Context, query string, limit int) ([]model.Customer, error) {
	sql := fmt.Sprintf(`
		SELECT %s
		FROM customers
		WHERE name ILIKE '%%' || $1 || '%%' OR phone ILIKE '%%' || $1 || '%%'
		ORDER BY total_orders DESC
		LIMIT $2
	`, customerColumns)

	rows, err := r.pool.Query(ctx, sql, query, limit)
	if err != nil {
		r.logger.Error().Err(err).Str("query", query).Msg("failed to search customers")
		return nil, fmt.Errorf("failed to search customers: %w", err)
	}
	defer rows.Close()

	var customers []model.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan customer row")
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, *c)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating customer rows")
		return nil, fmt.Errorf("error iterating customers: %w", err)
	}

	return customers, nil
}

const insertCustomerQuery = `
	INSERT INTO customers (id, name, phone, email, address, notes, is_frequent, total_orders, total_spent, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
`

// Create inserts a new customer.
func (r *customerRepository) Create(ctx context.Context, customer *model.Customer) error {
	_, err := r.pool.Exec(ctx, insertCustomerQuery,
		customer.ID, customer.Name, customer.Phone, customer.Email,
		customer.Address, customer.Notes, customer.IsFrequent,
		customer.TotalOrders, customer.TotalSpent,
		customer.CreatedAt, customer.UpdatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("name", customer.Name).Msg("failed to create customer")
		return fmt.Errorf("failed to create customer: %w", err)
	}

	r.logger.Debug().Str("customer_id", customer.ID.String()).Msg("customer created successfully")
	return nil
}

// CreateTx inserts a new customer within the provided transaction.
func (r *customerRepository) CreateTx(ctx context.Context, tx pgx.Tx, customer *model.Customer) error {
	_, err := tx.Exec(ctx, insertCustomerQuery,
		customer.ID, customer.Name, customer.Phone, customer.Email,
		customer.Address, customer.Notes, customer.IsFrequent,
		customer.TotalOrders, customer.TotalSpent,
		customer.CreatedAt, customer.UpdatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("name", customer.Name).Msg("failed to create customer in tx")
		return fmt.Errorf("failed to create customer: %w", err)
	}

	return nil
}

// Update updates an existing customer.
func (r *customerRepository) Update(ctx context.Context, customer *model.Customer) error {
	query := `
		UPDATE customers
		SET name = $2, phone = $3, email = $4, address = $5, notes = $6,
		    is_frequent = $7, updated_at = $8
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query,
		customer.ID, customer.Name, customer.Phone, customer.Email,
		customer.Address, customer.Notes, customer.IsFrequent, customer.UpdatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("customer_id", customer.ID.String()).Msg("failed to update customer")
		return fmt.Errorf("failed to update customer: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return model.ErrCustomerNotFound
	}

	return nil
}

// Delete removes a customer.
func (r *customerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM customers WHERE id = $1", id)
	if err != nil {
		r.logger.Error().Err(err).Str("customer_id", id.String()).Msg("failed to delete customer")
		return fmt.Errorf("failed to delete customer: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return model.ErrCustomerNotFound
	}

	return nil
}

// RecordOrderTx folds a placed order into the customer aggregates within
// the transaction. A customer becomes frequent from their third order.
func (r *customerRepository) RecordOrderTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, orderTotal decimal.Decimal, at time.Time) error {
	query := `
		UPDATE customers
		SET total_orders = total_orders + 1,
		    total_spent = total_spent + $2,
		    last_order_at = $3,
		    is_frequent = (total_orders + 1 >= 3),
		    updated_at = $3
		WHERE id = $1
	`

	tag, err := tx.Exec(ctx, query, id, orderTotal, at)
	if err != nil {
		r.logger.Error().Err(err).Str("customer_id", id.String()).Msg("failed to record order on customer")
		return fmt.Errorf("failed to record order on customer: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return model.ErrCustomerNotFound
	}

	return nil
}
