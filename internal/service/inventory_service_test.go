package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"granel-store/internal/model"
)

func stockItems() []model.StockItem {
	return []model.StockItem{
		{VariantID: uuid.New(), ProductID: uuid.New(), ProductName: "Huevos", CurrentStock: 0},
		{VariantID: uuid.New(), ProductID: uuid.New(), ProductName: "Almendras", CurrentStock: 3},
		{VariantID: uuid.New(), ProductID: uuid.New(), ProductName: "Lentejas", CurrentStock: 10},
		{VariantID: uuid.New(), ProductID: uuid.New(), ProductName: "Avena", CurrentStock: 40},
	}
}

func TestInventoryService_Overview(t *testing.T) {
	ctx := context.Background()

	mockRepo := new(MockProductRepository)
	svc := NewInventoryService(mockRepo, 10, zerolog.Nop())

	mockRepo.On("StockOverview", ctx).Return(stockItems(), nil)

	overview, err := svc.Overview(ctx)

	require.NoError(t, err)
	assert.Equal(t, 4, overview.TotalVariants)
	assert.Equal(t, 4, overview.TotalProducts)
	assert.Equal(t, 1, overview.OutOfStockCount)
	// 3 and 10 are at or below the threshold, 0 counts as out.
	assert.Equal(t, 2, overview.LowStockCount)
	mockRepo.AssertExpectations(t)
}

func TestInventoryService_LowStock(t *testing.T) {
	ctx := context.Background()

	mockRepo := new(MockProductRepository)
	svc := NewInventoryService(mockRepo, 10, zerolog.Nop())

	mockRepo.On("StockOverview", ctx).Return(stockItems(), nil)

	low, err := svc.LowStock(ctx)

	require.NoError(t, err)
	require.Len(t, low, 2)
	assert.Equal(t, "Almendras", low[0].ProductName)
	assert.Equal(t, "Lentejas", low[1].ProductName)
}

func TestInventoryService_OutOfStock(t *testing.T) {
	ctx := context.Background()

	mockRepo := new(MockProductRepository)
	svc := NewInventoryService(mockRepo, 10, zerolog.Nop())

	mockRepo.On("StockOverview", ctx).Return(stockItems(), nil)

	out, err := svc.OutOfStock(ctx)

	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "Huevos", out[0].ProductName)
}

func TestInventoryService_SetStock_RejectsNegative(t *testing.T) {
	mockRepo := new(MockProductRepository)
	svc := NewInventoryService(mockRepo, 10, zerolog.Nop())

	err := svc.SetStock(context.Background(), uuid.New(), -1)

	require.Error(t, err)
	assert.Equal(t, model.ErrNegativeStock, err)
	mockRepo.AssertNotCalled(t, "SetStock")
}

func TestInventoryService_AdjustStock(t *testing.T) {
	ctx := context.Background()
	variantID := uuid.New()

	mockRepo := new(MockProductRepository)
	svc := NewInventoryService(mockRepo, 10, zerolog.Nop())

	mockRepo.On("AdjustStock", ctx, variantID, -3).Return(7, nil)

	stock, err := svc.AdjustStock(ctx, variantID, -3)

	require.NoError(t, err)
	assert.Equal(t, 7, stock)
	mockRepo.AssertExpectations(t)
}

func TestInventoryService_BulkSetStock_PartialFailure(t *testing.T) {
	ctx := context.Background()

	good := model.StockUpdate{VariantID: uuid.New(), Stock: 12}
	negative := model.StockUpdate{VariantID: uuid.New(), Stock: -4}
	missing := model.StockUpdate{VariantID: uuid.New(), Stock: 5}

	mockRepo := new(MockProductRepository)
	svc := NewInventoryService(mockRepo, 10, zerolog.Nop())

	mockRepo.On("SetStock", ctx, good.VariantID, 12).Return(nil)
	mockRepo.On("SetStock", ctx, missing.VariantID, 5).Return(model.ErrProductNotFound)

	updated, failures, err := svc.BulkSetStock(ctx, []model.StockUpdate{good, negative, missing})

	require.NoError(t, err)
	assert.Equal(t, 1, updated)
	require.Len(t, failures, 2)
	assert.Contains(t, failures[0], negative.VariantID.String())
	assert.Contains(t, failures[1], missing.VariantID.String())
}

func TestInventoryService_CheckAvailability(t *testing.T) {
	ctx := context.Background()
	variantID := uuid.New()

	mockRepo := new(MockProductRepository)
	svc := NewInventoryService(mockRepo, 10, zerolog.Nop())

	mockRepo.On("GetVariant", ctx, variantID).Return(&model.Variant{ID: variantID, Stock: 6}, nil)

	available, stock, err := svc.CheckAvailability(ctx, variantID, 4)
	require.NoError(t, err)
	assert.True(t, available)
	assert.Equal(t, 6, stock)

	available, stock, err = svc.CheckAvailability(ctx, variantID, 7)
	require.NoError(t, err)
	assert.False(t, available)
	assert.Equal(t, 6, stock)
}

func TestInventoryService_CheckAvailability_InvalidQuantity(t *testing.T) {
	svc := NewInventoryService(new(MockProductRepository), 10, zerolog.Nop())

	_, _, err := svc.CheckAvailability(context.Background(), uuid.New(), 0)

	require.Error(t, err)
	assert.Equal(t, model.ErrInvalidQuantity, err)
}
