package handler

import (
	"context"

	"github.com/stretchr/testify/mock"

	identityapp "github.com/wms/backend/internal/application/identity"
	inventoryapp "github.com/wms/backend/internal/application/inventory"
)

type MockTenantService struct {
	mock.Mock
}

func (m *MockTenantService) CreateTenant(ctx context.Context, cmd identityapp.CreateTenantCommand) (identityapp.TenantDTO, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(identityapp.TenantDTO), args.Error(1)
}

func (m *MockTenantService) ActivateTenant(ctx context.Context, cmd identityapp.ChangeTenantStatusCommand) (identityapp.TenantDTO, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(identityapp.TenantDTO), args.Error(1)
}

func (m *MockTenantService) DeactivateTenant(ctx context.Context, cmd identityapp.ChangeTenantStatusCommand) (identityapp.TenantDTO, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(identityapp.TenantDTO), args.Error(1)
}

func (m *MockTenantService) SuspendTenant(ctx context.Context, cmd identityapp.ChangeTenantStatusCommand) (identityapp.TenantDTO, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(identityapp.TenantDTO), args.Error(1)
}

func (m *MockTenantService) GetTenant(ctx context.Context, id string) (identityapp.TenantDTO, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(identityapp.TenantDTO), args.Error(1)
}

type MockStockService struct {
	mock.Mock
}

func (m *MockStockService) CreateItem(ctx context.Context, cmd inventoryapp.CreateItemCommand) (inventoryapp.InventoryItemDTO, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(inventoryapp.InventoryItemDTO), args.Error(1)
}

func (m *MockStockService) ReceiveStock(ctx context.Context, cmd inventoryapp.MoveStockCommand) (inventoryapp.InventoryItemDTO, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(inventoryapp.InventoryItemDTO), args.Error(1)
}

func (m *MockStockService) PickStock(ctx context.Context, cmd inventoryapp.MoveStockCommand) (inventoryapp.InventoryItemDTO, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(inventoryapp.InventoryItemDTO), args.Error(1)
}

func (m *MockStockService) GetItem(ctx context.Context, tenantID, id string) (inventoryapp.InventoryItemDTO, error) {
	args := m.Called(ctx, tenantID, id)
	return args.Get(0).(inventoryapp.InventoryItemDTO), args.Error(1)
}

type MockTransferService struct {
	mock.Mock
}

func (m *MockTransferService) RequestTransfer(ctx context.Context, cmd inventoryapp.RequestTransferCommand) (inventoryapp.StockTransferDTO, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(inventoryapp.StockTransferDTO), args.Error(1)
}

func (m *MockTransferService) CompleteTransfer(ctx context.Context, cmd inventoryapp.TransferCommand) (inventoryapp.StockTransferDTO, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(inventoryapp.StockTransferDTO), args.Error(1)
}

func (m *MockTransferService) CancelTransfer(ctx context.Context, cmd inventoryapp.TransferCommand) (inventoryapp.StockTransferDTO, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(inventoryapp.StockTransferDTO), args.Error(1)
}

func (m *MockTransferService) GetTransfer(ctx context.Context, tenantID, id string) (inventoryapp.StockTransferDTO, error) {
	args := m.Called(ctx, tenantID, id)
	return args.Get(0).(inventoryapp.StockTransferDTO), args.Error(1)
}
