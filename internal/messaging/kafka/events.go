package kafka

import "time"

// EventType определяет тип события
type EventType string

const (
	// Order события
	EventTypeOrderCreated EventType = "order.created"

	// Catalog события
	EventTypeProductCreated  EventType = "product.created"
	EventTypeCustomerCreated EventType = "customer.created"
)

// Topics для Kafka
const (
	TopicOrderEvents     = "ecom.order.events"
	TopicDeadLetterQueue = "ecom.dlq" // Dead Letter Queue для failed messages
)

// OrderEventLine описывает позицию заказа в событии.
type OrderEventLine struct {
	ProductID  string `json:"product_id"`
	Qty        int32  `json:"quantity"`
	PriceMinor int64  `json:"price_minor"`
}

// OrderCreatedEvent представляет событие создания заказа
type OrderCreatedEvent struct {
	EventType   EventType        `json:"event_type"`
	OrderID     string           `json:"order_id"`
	CustomerID  string           `json:"customer_id"`
	AmountMinor int64            `json:"amount_minor"`
	Lines       []OrderEventLine `json:"lines"`
	Timestamp   time.Time        `json:"timestamp"`
}

// NewOrderCreatedEvent создает новое событие создания заказа
func NewOrderCreatedEvent(orderID, customerID string, amountMinor int64, lines []OrderEventLine) *OrderCreatedEvent {
	return &OrderCreatedEvent{
		EventType:   EventTypeOrderCreated,
		OrderID:     orderID,
		CustomerID:  customerID,
		AmountMinor: amountMinor,
		Lines:       lines,
		Timestamp:   time.Now(),
	}
}
