package inventory

import (
	"context"

	"go.uber.org/zap"

	"github.com/wms/backend/internal/application/command"
	"github.com/wms/backend/internal/domain/inventory"
	"github.com/wms/backend/internal/infrastructure/logger"
)

// TransferService moves stock between two items of one tenant
type TransferService struct {
	exec      *command.Executor
	items     inventory.InventoryItemRepository
	transfers inventory.StockTransferRepository
	logger    *zap.Logger
}

// NewTransferService creates a new transfer service
func NewTransferService(
	exec *command.Executor,
	items inventory.InventoryItemRepository,
	transfers inventory.StockTransferRepository,
	logger *zap.Logger,
) *TransferService {
	return &TransferService{
		exec:      exec,
		items:     items,
		transfers: transfers,
		logger:    logger,
	}
}

// RequestTransfer opens a transfer after checking both items exist
func (s *TransferService) RequestTransfer(ctx context.Context, cmd RequestTransferCommand) (StockTransferDTO, error) {
	t, err := command.Execute(ctx, s.exec, command.Pipeline[*inventory.StockTransfer]{
		Name:    "RequestTransfer",
		Command: cmd,
		Load: func(ctx context.Context) (*inventory.StockTransfer, error) {
			for _, id := range []string{cmd.SourceItemID, cmd.DestinationItemID} {
				if _, err := s.items.FindByID(ctx, cmd.TenantID, id); err != nil {
					return nil, err
				}
			}
			return inventory.RequestStockTransfer(cmd.TenantID, cmd.SourceItemID, cmd.DestinationItemID, cmd.Quantity)
		},
		Save: s.transfers.Save,
	})
	if err != nil {
		return StockTransferDTO{}, err
	}
	return ToStockTransferDTO(t), nil
}

// CompleteTransfer picks from the source, receives on the destination and
// closes the transfer. All three aggregates commit together; their events
// are published in that order once the transaction commits.
func (s *TransferService) CompleteTransfer(ctx context.Context, cmd TransferCommand) (StockTransferDTO, error) {
	if err := s.exec.Validate(cmd); err != nil {
		return StockTransferDTO{}, err
	}

	var result *inventory.StockTransfer
	err := s.exec.InTransaction(ctx, func(ctx context.Context) error {
		t, err := s.transfers.FindByID(ctx, cmd.TenantID, cmd.TransferID)
		if err != nil {
			return err
		}
		source, err := s.items.FindByID(ctx, cmd.TenantID, t.SourceItemID)
		if err != nil {
			return err
		}
		dest, err := s.items.FindByID(ctx, cmd.TenantID, t.DestinationItemID)
		if err != nil {
			return err
		}

		if err := t.Complete(); err != nil {
			return err
		}
		ref := "transfer:" + t.ID
		if err := source.Pick(t.Quantity, ref); err != nil {
			return err
		}
		if err := dest.Receive(t.Quantity, ref); err != nil {
			return err
		}

		if err := command.Commit(ctx, s.exec, source, s.items.Save); err != nil {
			return err
		}
		if err := command.Commit(ctx, s.exec, dest, s.items.Save); err != nil {
			return err
		}
		if err := command.Commit(ctx, s.exec, t, s.transfers.Save); err != nil {
			return err
		}
		result = t
		return nil
	})
	if err != nil {
		return StockTransferDTO{}, err
	}

	logger.WithLogger(ctx, s.logger).Info("Stock transfer completed",
		zap.String("transfer_id", result.ID),
		zap.String("quantity", result.Quantity.String()),
	)
	return ToStockTransferDTO(result), nil
}

// CancelTransfer abandons a requested transfer
func (s *TransferService) CancelTransfer(ctx context.Context, cmd TransferCommand) (StockTransferDTO, error) {
	t, err := command.Execute(ctx, s.exec, command.Pipeline[*inventory.StockTransfer]{
		Name:    "CancelTransfer",
		Command: cmd,
		Load: func(ctx context.Context) (*inventory.StockTransfer, error) {
			return s.transfers.FindByID(ctx, cmd.TenantID, cmd.TransferID)
		},
		Mutate: func(_ context.Context, t *inventory.StockTransfer) error {
			return t.Cancel(cmd.Reason)
		},
		Save: s.transfers.Save,
	})
	if err != nil {
		return StockTransferDTO{}, err
	}
	return ToStockTransferDTO(t), nil
}

// GetTransfer returns a transfer by ID
func (s *TransferService) GetTransfer(ctx context.Context, tenantID, id string) (StockTransferDTO, error) {
	t, err := s.transfers.FindByID(ctx, tenantID, id)
	if err != nil {
		return StockTransferDTO{}, err
	}
	return ToStockTransferDTO(t), nil
}
