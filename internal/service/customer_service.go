package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"granel-store/internal/model"
	"granel-store/internal/repository"
)

// searchLimit caps customer search results.
const searchLimit = 20

// customerService implements CustomerService.
type customerService struct {
	customerRepo repository.CustomerRepository
	logger       zerolog.Logger
}

// NewCustomerService creates a new customer service.
func NewCustomerService(customerRepo repository.CustomerRepository, logger zerolog.Logger) CustomerService {
	return &customerService{
		customerRepo: customerRepo,
		logger:       logger.With().Str("service", "customer").Logger(),
	}
}

// GetAll retrieves all customers.
func (s *customerService) GetAll(ctx context.Context) ([]model.Customer, error) {
	customers, err := s.customerRepo.GetAll(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list customers")
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	return customers, nil
}

// GetByID retrieves a single customer.
func (s *customerService) GetByID(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	customer, err := s.customerRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("customer_id", id.String()).Msg("failed to get customer")
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	return customer, nil
}

// Search finds customers by name or phone substring.
func (s *customerService) Search(ctx context.Context, query string) ([]model.Customer, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []model.Customer{}, nil
	}

	customers, err := s.customerRepo.Search(ctx, query, searchLimit)
	if err != nil {
		s.logger.Error().Err(err).Str("query", query).Msg("failed to search customers")
		return nil, fmt.Errorf("failed to search customers: %w", err)
	}
	return customers, nil
}

// Create creates a new customer.
func (s *customerService) Create(ctx context.Context, customer *model.Customer) error {
	if strings.TrimSpace(customer.Name) == "" {
		return model.NewDomainError(model.ErrCodeMissingField, "customer name is required")
	}
	if customer.ID == uuid.Nil {
		customer.ID = uuid.New()
	}

	if err := s.customerRepo.Create(ctx, customer); err != nil {
		s.logger.Error().Err(err).Msg("failed to create customer")
		return fmt.Errorf("failed to create customer: %w", err)
	}

	s.logger.Info().Str("customer_id", customer.ID.String()).Msg("customer created")
	return nil
}

// Update updates an existing customer.
func (s *customerService) Update(ctx context.Context, customer *model.Customer) error {
	if strings.TrimSpace(customer.Name) == "" {
		return model.NewDomainError(model.ErrCodeMissingField, "customer name is required")
	}

	if err := s.customerRepo.Update(ctx, customer); err != nil {
		s.logger.Error().Err(err).Str("customer_id", customer.ID.String()).Msg("failed to update customer")
		return fmt.Errorf("failed to update customer: %w", err)
	}
	return nil
}

// Delete removes a customer. Orders keep their denormalised customer
// snapshot, so history survives the delete.
func (s *customerService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.customerRepo.Delete(ctx, id); err != nil {
		s.logger.Error().Err(err).Str("customer_id", id.String()).Msg("failed to delete customer")
		return fmt.Errorf("failed to delete customer: %w", err)
	}

	s.logger.Info().Str("customer_id", id.String()).Msg("customer deleted")
	return nil
}

// Statistics summarises the customer base from the stored aggregates.
func (s *customerService) Statistics(ctx context.Context) (*model.CustomerStatistics, error) {
	customers, err := s.customerRepo.GetAll(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to compute customer statistics")
		return nil, fmt.Errorf("failed to compute customer statistics: %w", err)
	}

	stats := &model.CustomerStatistics{
		TotalCustomers:          len(customers),
		AverageSpentPerCustomer: decimal.Zero,
	}
	if len(customers) == 0 {
		return stats, nil
	}

	totalOrders := 0
	totalSpent := decimal.Zero
	for _, c := range customers {
		if c.IsFrequent {
			stats.FrequentCustomers++
		}
		totalOrders += c.TotalOrders
		totalSpent = totalSpent.Add(c.TotalSpent)
	}

	count := decimal.NewFromInt(int64(len(customers)))
	stats.AverageOrdersPerCustomer = float64(totalOrders) / float64(len(customers))
	stats.AverageSpentPerCustomer = totalSpent.Div(count).Round(2)

	return stats, nil
}
