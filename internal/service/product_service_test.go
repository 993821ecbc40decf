package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"granel-store/internal/model"
)

func TestProductService_Search(t *testing.T) {
	ctx := context.Background()

	t.Run("queries active products with the storefront limit", func(t *testing.T) {
		mockRepo := new(MockProductRepository)
		svc := NewProductService(mockRepo, zerolog.Nop())

		mockRepo.On("Search", ctx, "almendras", 10).
			Return([]model.Product{{Name: "Almendras peladas", IsActive: true}}, nil)

		products, err := svc.Search(ctx, "  almendras  ")

		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Equal(t, "Almendras peladas", products[0].Name)
		mockRepo.AssertExpectations(t)
	})

	t.Run("empty query returns nothing without hitting the repository", func(t *testing.T) {
		mockRepo := new(MockProductRepository)
		svc := NewProductService(mockRepo, zerolog.Nop())

		products, err := svc.Search(ctx, "   ")

		require.NoError(t, err)
		assert.Empty(t, products)
		mockRepo.AssertNotCalled(t, "Search")
	})
}

func TestProductService_GetActive(t *testing.T) {
	ctx := context.Background()

	mockRepo := new(MockProductRepository)
	svc := NewProductService(mockRepo, zerolog.Nop())

	mockRepo.On("GetActive", ctx, 20, 0).
		Return([]model.Product{{Name: "Lentejas", IsActive: true}}, nil)

	products, err := svc.GetActive(ctx, 20, 0)

	require.NoError(t, err)
	require.Len(t, products, 1)
	mockRepo.AssertExpectations(t)
	mockRepo.AssertNotCalled(t, "GetAll")
}
