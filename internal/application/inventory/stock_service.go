package inventory

import (
	"context"

	"go.uber.org/zap"

	"github.com/wms/backend/internal/application/command"
	"github.com/wms/backend/internal/domain/inventory"
	"github.com/wms/backend/internal/infrastructure/logger"
)

// StockService handles receiving and picking on single inventory items
type StockService struct {
	exec   *command.Executor
	items  inventory.InventoryItemRepository
	logger *zap.Logger
}

// NewStockService creates a new stock service
func NewStockService(exec *command.Executor, items inventory.InventoryItemRepository, logger *zap.Logger) *StockService {
	return &StockService{exec: exec, items: items, logger: logger}
}

// CreateItem opens an empty stock record
func (s *StockService) CreateItem(ctx context.Context, cmd CreateItemCommand) (InventoryItemDTO, error) {
	item, err := command.Execute(ctx, s.exec, command.Pipeline[*inventory.InventoryItem]{
		Name:    "CreateItem",
		Command: cmd,
		Load: func(context.Context) (*inventory.InventoryItem, error) {
			return inventory.NewInventoryItem(cmd.TenantID, cmd.SKU, cmd.WarehouseCode)
		},
		Save: s.items.Save,
	})
	if err != nil {
		return InventoryItemDTO{}, err
	}

	logger.WithLogger(ctx, s.logger).Info("Inventory item created",
		zap.String("item_id", item.ID),
		zap.String("sku", item.SKU),
	)
	return ToInventoryItemDTO(item), nil
}

// ReceiveStock adds stock to an item
func (s *StockService) ReceiveStock(ctx context.Context, cmd MoveStockCommand) (InventoryItemDTO, error) {
	return s.move(ctx, "ReceiveStock", cmd, func(item *inventory.InventoryItem) error {
		return item.Receive(cmd.Quantity, cmd.Reference)
	})
}

// PickStock removes stock from an item; picking the last unit raises StockDepleted
func (s *StockService) PickStock(ctx context.Context, cmd MoveStockCommand) (InventoryItemDTO, error) {
	return s.move(ctx, "PickStock", cmd, func(item *inventory.InventoryItem) error {
		return item.Pick(cmd.Quantity, cmd.Reference)
	})
}

// GetItem returns an inventory item by ID
func (s *StockService) GetItem(ctx context.Context, tenantID, id string) (InventoryItemDTO, error) {
	item, err := s.items.FindByID(ctx, tenantID, id)
	if err != nil {
		return InventoryItemDTO{}, err
	}
	return ToInventoryItemDTO(item), nil
}

func (s *StockService) move(ctx context.Context, name string, cmd MoveStockCommand, mutate func(*inventory.InventoryItem) error) (InventoryItemDTO, error) {
	item, err := command.Execute(ctx, s.exec, command.Pipeline[*inventory.InventoryItem]{
		Name:    name,
		Command: cmd,
		Load: func(ctx context.Context) (*inventory.InventoryItem, error) {
			return s.items.FindByID(ctx, cmd.TenantID, cmd.ItemID)
		},
		Mutate: func(_ context.Context, item *inventory.InventoryItem) error {
			return mutate(item)
		},
		Save: s.items.Save,
	})
	if err != nil {
		return InventoryItemDTO{}, err
	}
	return ToInventoryItemDTO(item), nil
}
