package inventory

import (
	"context"

	"go.uber.org/zap"

	"github.com/wms/backend/internal/domain/inventory"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/infrastructure/logger"
)

// StockAlertNotifier is the interface for sending stock alerts
type StockAlertNotifier interface {
	SendAlert(ctx context.Context, alert StockAlert) error
}

// StockAlert asks for a location to be replenished
type StockAlert struct {
	TenantID      string `json:"tenantId"`
	ItemID        string `json:"itemId"`
	SKU           string `json:"sku"`
	WarehouseCode string `json:"warehouseCode"`
	AlertType     string `json:"alertType"`
	CausedBy      string `json:"causedBy"`
}

// StockDepletedHandler raises an out-of-stock alert for every depleted item
type StockDepletedHandler struct {
	notifier StockAlertNotifier
	logger   *zap.Logger
}

// NewStockDepletedHandler creates a new handler
func NewStockDepletedHandler(notifier StockAlertNotifier, logger *zap.Logger) *StockDepletedHandler {
	return &StockDepletedHandler{notifier: notifier, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *StockDepletedHandler) EventTypes() []string {
	return []string{inventory.EventTypeStockDepleted}
}

// Handle sends the alert. A notifier failure is logged and does not fail the delivery.
func (h *StockDepletedHandler) Handle(ctx context.Context, env *shared.Envelope) error {
	log := logger.WithLogger(ctx, h.logger)

	var payload struct {
		SKU           string `json:"sku"`
		WarehouseCode string `json:"warehouseCode"`
	}
	if err := env.DecodePayload(&payload); err != nil {
		log.Warn("Dropping malformed StockDepleted event", zap.String("event_id", env.EventID), zap.Error(err))
		return nil
	}

	alert := StockAlert{
		TenantID:      env.TenantID,
		ItemID:        env.AggregateID,
		SKU:           payload.SKU,
		WarehouseCode: payload.WarehouseCode,
		AlertType:     "out_of_stock",
		CausedBy:      env.EventID,
	}
	if err := h.notifier.SendAlert(ctx, alert); err != nil {
		log.Error("Failed to send stock alert", zap.String("item_id", alert.ItemID), zap.Error(err))
	}
	return nil
}

var _ shared.EventHandler = (*StockDepletedHandler)(nil)

// LoggingStockAlertNotifier writes alerts to the log
type LoggingStockAlertNotifier struct {
	logger *zap.Logger
}

// NewLoggingStockAlertNotifier creates a new logging notifier
func NewLoggingStockAlertNotifier(logger *zap.Logger) *LoggingStockAlertNotifier {
	return &LoggingStockAlertNotifier{logger: logger}
}

// SendAlert logs the stock alert
func (n *LoggingStockAlertNotifier) SendAlert(ctx context.Context, alert StockAlert) error {
	logger.WithLogger(ctx, n.logger).Warn("Stock alert",
		zap.String("type", alert.AlertType),
		zap.String("tenant_id", alert.TenantID),
		zap.String("sku", alert.SKU),
		zap.String("warehouse_code", alert.WarehouseCode),
	)
	return nil
}

var _ StockAlertNotifier = (*LoggingStockAlertNotifier)(nil)
