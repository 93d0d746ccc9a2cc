package domain

import "time"

// CustomerRepository хранит покупателей.
type CustomerRepository interface {
	Create(customer Customer) error
	// FindByID возвращает покупателя или ErrCustomerNotFound.
	FindByID(id string) (Customer, error)
	// FindByEmail возвращает покупателя или ErrCustomerNotFound.
	FindByEmail(email string) (Customer, error)
}

// ProductRepository хранит товары каталога и их остатки.
type ProductRepository interface {
	Create(product Product) error
	// FindByID возвращает товар или ErrProductNotFound.
	FindByID(id string) (Product, error)
	// FindByName возвращает товар или ErrProductNotFound.
	FindByName(name string) (Product, error)
	// FindAllByID возвращает товары по идентификаторам запрошенных позиций.
	// Отсутствующие идентификаторы пропускаются; если не найден ни один,
	// результат — nil без ошибки.
	FindAllByID(requests []LineRequest) ([]Product, error)
	// UpdateQuantities устанавливает новые абсолютные остатки одним батчем.
	UpdateQuantities(updates []QuantityUpdate) error
	// List возвращает товары каталога, ограничивая выборку limit (если >0).
	List(limit int) ([]Product, error)
}

// OrderRepository хранит заказы.
type OrderRepository interface {
	// Create сохраняет заказ вместе с позициями атомарно.
	Create(order Order) error
	Get(id string) (Order, error)
	ListByCustomer(customerID string, limit int) ([]Order, error)
}

// OutboxPublisher публикует события из transactional outbox.
type OutboxPublisher interface {
	// Publish передаёт событие наружу; должен быть идемпотентным.
	Publish(event OutboxMessage) error
}

// OutboxRepository позволяет сохранять события для последующей публикации.
type OutboxRepository interface {
	Enqueue(msg OutboxMessage) (OutboxMessage, error)
	PullPending(limit int) ([]OutboxMessage, error)
	Stats() (OutboxStats, error)
	MarkSent(id string) error
	MarkFailed(id string) error
}

// OutboxMessage хранит данные для публикуемого события.
type OutboxMessage struct {
	ID            string
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

// OutboxStats описывает текущее состояние backlog transactional outbox.
type OutboxStats struct {
	PendingCount    int
	OldestPendingAt time.Time
}
