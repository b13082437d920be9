package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	inventoryapp "github.com/wms/backend/internal/application/inventory"
	"github.com/wms/backend/internal/interfaces/http/middleware"
)

// StockService is the single-item use case surface used by InventoryHandler
type StockService interface {
	CreateItem(ctx context.Context, cmd inventoryapp.CreateItemCommand) (inventoryapp.InventoryItemDTO, error)
	ReceiveStock(ctx context.Context, cmd inventoryapp.MoveStockCommand) (inventoryapp.InventoryItemDTO, error)
	PickStock(ctx context.Context, cmd inventoryapp.MoveStockCommand) (inventoryapp.InventoryItemDTO, error)
	GetItem(ctx context.Context, tenantID, id string) (inventoryapp.InventoryItemDTO, error)
}

// TransferService is the transfer use case surface used by InventoryHandler
type TransferService interface {
	RequestTransfer(ctx context.Context, cmd inventoryapp.RequestTransferCommand) (inventoryapp.StockTransferDTO, error)
	CompleteTransfer(ctx context.Context, cmd inventoryapp.TransferCommand) (inventoryapp.StockTransferDTO, error)
	CancelTransfer(ctx context.Context, cmd inventoryapp.TransferCommand) (inventoryapp.StockTransferDTO, error)
	GetTransfer(ctx context.Context, tenantID, id string) (inventoryapp.StockTransferDTO, error)
}

// InventoryHandler handles tenant-scoped stock endpoints.
// Routes must sit behind middleware.RequireTenant.
type InventoryHandler struct {
	BaseHandler
	stock     StockService
	transfers TransferService
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(stock StockService, transfers TransferService) *InventoryHandler {
	return &InventoryHandler{stock: stock, transfers: transfers}
}

// RegisterRoutes implements router.RouteRegistrar
func (h *InventoryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	items := rg.Group("/inventory/items")
	items.POST("", h.CreateItem)
	items.GET("/:id", h.GetItem)
	items.POST("/:id/receive", h.moveStock(h.stock.ReceiveStock))
	items.POST("/:id/pick", h.moveStock(h.stock.PickStock))

	transfers := rg.Group("/inventory/transfers")
	transfers.POST("", h.RequestTransfer)
	transfers.GET("/:id", h.GetTransfer)
	transfers.POST("/:id/complete", h.transferOp(h.transfers.CompleteTransfer))
	transfers.POST("/:id/cancel", h.transferOp(h.transfers.CancelTransfer))
}

type createItemRequest struct {
	SKU           string `json:"sku"`
	WarehouseCode string `json:"warehouseCode"`
}

// CreateItem opens a stock record
// POST /inventory/items
func (h *InventoryHandler) CreateItem(c *gin.Context) {
	var req createItemRequest
	if !h.BindJSON(c, &req) {
		return
	}
	item, err := h.stock.CreateItem(c.Request.Context(), inventoryapp.CreateItemCommand{
		TenantID:      middleware.GetTenantID(c),
		SKU:           req.SKU,
		WarehouseCode: req.WarehouseCode,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, item)
}

// GetItem returns an item
// GET /inventory/items/:id
func (h *InventoryHandler) GetItem(c *gin.Context) {
	item, err := h.stock.GetItem(c.Request.Context(), middleware.GetTenantID(c), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

type moveStockRequest struct {
	Quantity  decimal.Decimal `json:"quantity"`
	Reference string          `json:"reference"`
}

func (h *InventoryHandler) moveStock(
	op func(context.Context, inventoryapp.MoveStockCommand) (inventoryapp.InventoryItemDTO, error),
) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req moveStockRequest
		if !h.BindJSON(c, &req) {
			return
		}
		item, err := op(c.Request.Context(), inventoryapp.MoveStockCommand{
			TenantID:  middleware.GetTenantID(c),
			ItemID:    c.Param("id"),
			Quantity:  req.Quantity,
			Reference: req.Reference,
		})
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Success(c, item)
	}
}

type requestTransferRequest struct {
	SourceItemID      string          `json:"sourceItemId"`
	DestinationItemID string          `json:"destinationItemId"`
	Quantity          decimal.Decimal `json:"quantity"`
}

// RequestTransfer opens a transfer
// POST /inventory/transfers
func (h *InventoryHandler) RequestTransfer(c *gin.Context) {
	var req requestTransferRequest
	if !h.BindJSON(c, &req) {
		return
	}
	t, err := h.transfers.RequestTransfer(c.Request.Context(), inventoryapp.RequestTransferCommand{
		TenantID:          middleware.GetTenantID(c),
		SourceItemID:      req.SourceItemID,
		DestinationItemID: req.DestinationItemID,
		Quantity:          req.Quantity,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, t)
}

// GetTransfer returns a transfer
// GET /inventory/transfers/:id
func (h *InventoryHandler) GetTransfer(c *gin.Context) {
	t, err := h.transfers.GetTransfer(c.Request.Context(), middleware.GetTenantID(c), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, t)
}

type transferOpRequest struct {
	Reason string `json:"reason"`
}

func (h *InventoryHandler) transferOp(
	op func(context.Context, inventoryapp.TransferCommand) (inventoryapp.StockTransferDTO, error),
) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req transferOpRequest
		if !h.BindJSON(c, &req) {
			return
		}
		t, err := op(c.Request.Context(), inventoryapp.TransferCommand{
			TenantID:   middleware.GetTenantID(c),
			TransferID: c.Param("id"),
			Reason:     req.Reason,
		})
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Success(c, t)
	}
}
