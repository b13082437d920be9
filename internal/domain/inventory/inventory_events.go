package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/wms/backend/internal/domain/shared"
)

// Aggregate type constants
const (
	AggregateTypeInventoryItem = "InventoryItem"
	AggregateTypeStockTransfer = "StockTransfer"
)

// Event type constants
const (
	EventTypeInventoryItemCreated = "InventoryItemCreated"
	EventTypeStockReceived        = "StockReceived"
	EventTypeStockPicked          = "StockPicked"
	EventTypeStockDepleted        = "StockDepleted"
)

// InventoryItemCreatedEvent is published when a stock record is opened for a SKU
type InventoryItemCreatedEvent struct {
	shared.BaseDomainEvent
	SKU           string `json:"sku"`
	WarehouseCode string `json:"warehouseCode"`
}

// NewInventoryItemCreatedEvent creates a new InventoryItemCreatedEvent
func NewInventoryItemCreatedEvent(item *InventoryItem) *InventoryItemCreatedEvent {
	return &InventoryItemCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInventoryItemCreated, AggregateTypeInventoryItem, item.ID, item.TenantID),
		SKU:             item.SKU,
		WarehouseCode:   item.WarehouseCode,
	}
}

// WithMetadata implements shared.DomainEvent
func (e *InventoryItemCreatedEvent) WithMetadata(m shared.EventMetadata) shared.DomainEvent {
	c := *e
	c.BaseDomainEvent = e.BaseDomainEvent.CopyWithMetadata(m)
	return &c
}

// StockReceivedEvent is published when stock is received into an item
type StockReceivedEvent struct {
	shared.BaseDomainEvent
	SKU       string          `json:"sku"`
	Quantity  decimal.Decimal `json:"quantity"`
	OnHand    decimal.Decimal `json:"onHand"`
	Reference string          `json:"reference,omitempty"`
}

// NewStockReceivedEvent creates a new StockReceivedEvent
func NewStockReceivedEvent(item *InventoryItem, quantity decimal.Decimal, reference string) *StockReceivedEvent {
	return &StockReceivedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockReceived, AggregateTypeInventoryItem, item.ID, item.TenantID),
		SKU:             item.SKU,
		Quantity:        quantity,
		OnHand:          item.OnHand,
		Reference:       reference,
	}
}

// WithMetadata implements shared.DomainEvent
func (e *StockReceivedEvent) WithMetadata(m shared.EventMetadata) shared.DomainEvent {
	c := *e
	c.BaseDomainEvent = e.BaseDomainEvent.CopyWithMetadata(m)
	return &c
}

// StockPickedEvent is published when stock is picked from an item
type StockPickedEvent struct {
	shared.BaseDomainEvent
	SKU       string          `json:"sku"`
	Quantity  decimal.Decimal `json:"quantity"`
	OnHand    decimal.Decimal `json:"onHand"`
	Reference string          `json:"reference,omitempty"`
}

// NewStockPickedEvent creates a new StockPickedEvent
func NewStockPickedEvent(item *InventoryItem, quantity decimal.Decimal, reference string) *StockPickedEvent {
	return &StockPickedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockPicked, AggregateTypeInventoryItem, item.ID, item.TenantID),
		SKU:             item.SKU,
		Quantity:        quantity,
		OnHand:          item.OnHand,
		Reference:       reference,
	}
}

// WithMetadata implements shared.DomainEvent
func (e *StockPickedEvent) WithMetadata(m shared.EventMetadata) shared.DomainEvent {
	c := *e
	c.BaseDomainEvent = e.BaseDomainEvent.CopyWithMetadata(m)
	return &c
}

// StockDepletedEvent is published when an item's on-hand quantity reaches zero
type StockDepletedEvent struct {
	shared.BaseDomainEvent
	SKU           string `json:"sku"`
	WarehouseCode string `json:"warehouseCode"`
}

// NewStockDepletedEvent creates a new StockDepletedEvent
func NewStockDepletedEvent(item *InventoryItem) *StockDepletedEvent {
	return &StockDepletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockDepleted, AggregateTypeInventoryItem, item.ID, item.TenantID),
		SKU:             item.SKU,
		WarehouseCode:   item.WarehouseCode,
	}
}

// WithMetadata implements shared.DomainEvent
func (e *StockDepletedEvent) WithMetadata(m shared.EventMetadata) shared.DomainEvent {
	c := *e
	c.BaseDomainEvent = e.BaseDomainEvent.CopyWithMetadata(m)
	return &c
}
