package order

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/ecom/internal/domain"
	"github.com/vladislavdragonenkov/ecom/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/ecom/internal/metrics"
)

// CreateOrderRequest описывает входные данные создания заказа.
type CreateOrderRequest struct {
	CustomerID string
	Lines      []domain.LineRequest
}

// Service реализует workflow создания заказа поверх трёх репозиториев:
// покупатели, товары, заказы. Проверки и записи выполняются строго
// последовательно; при любой ошибке валидации заказ не сохраняется.
type Service struct {
	orders    domain.OrderRepository
	products  domain.ProductRepository
	customers domain.CustomerRepository
	outbox    domain.OutboxRepository
	logger    *log.Entry
	metrics   *metrics.OrderMetrics
}

// NewService конструирует сервис с зависимостями. outbox опционален:
// при nil события order.created не публикуются.
func NewService(
	orders domain.OrderRepository,
	products domain.ProductRepository,
	customers domain.CustomerRepository,
	outbox domain.OutboxRepository,
	logger *log.Entry,
) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "order-service")
	}
	return &Service{
		orders:    orders,
		products:  products,
		customers: customers,
		outbox:    outbox,
		logger:    logger,
		metrics:   metrics.NewOrderMetrics(),
	}
}

// NewServiceWithoutMetrics создаёт сервис без метрик (для тестов).
func NewServiceWithoutMetrics(
	orders domain.OrderRepository,
	products domain.ProductRepository,
	customers domain.CustomerRepository,
	outbox domain.OutboxRepository,
	logger *log.Entry,
) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "order-service")
	}
	return &Service{
		orders:    orders,
		products:  products,
		customers: customers,
		outbox:    outbox,
		logger:    logger,
	}
}

// Create выполняет создание заказа: поиск покупателя, batch-поиск товаров,
// проверка наличия и остатков, сохранение заказа с зафиксированными ценами,
// батч-обновление остатков. Повторяющиеся товары в запросе не схлопываются:
// каждая позиция попадает в заказ отдельно, а их списания перекрываются.
func (s *Service) Create(req CreateOrderRequest) (domain.Order, error) {
	start := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.RecordCreateDuration(time.Since(start))
		}
	}()

	customer, err := s.customers.FindByID(req.CustomerID)
	if err != nil {
		if errors.Is(err, domain.ErrCustomerNotFound) {
			s.recordFailure(metrics.FailureCustomerNotFound)
			return domain.Order{}, domain.ErrCustomerNotFound
		}
		s.logger.WithError(err).WithField("customer_id", req.CustomerID).Error("failed to load customer")
		s.recordFailure(metrics.FailureStorage)
		return domain.Order{}, fmt.Errorf("load customer: %w", err)
	}

	products, err := s.products.FindAllByID(req.Lines)
	if err != nil {
		s.logger.WithError(err).Error("failed to load products")
		s.recordFailure(metrics.FailureStorage)
		return domain.Order{}, fmt.Errorf("load products: %w", err)
	}
	if products == nil {
		s.recordFailure(metrics.FailureNoProducts)
		return domain.Order{}, domain.ErrNoProductsFound
	}

	productByID := make(map[string]domain.Product, len(products))
	for _, product := range products {
		productByID[product.ID] = product
	}

	// Первый отсутствующий товар в порядке запроса определяет текст ошибки.
	for _, line := range req.Lines {
		if _, ok := productByID[line.ProductID]; !ok {
			s.recordFailure(metrics.FailureProductNotFound)
			return domain.Order{}, fmt.Errorf("%w: %s", domain.ErrProductNotFound, line.ProductID)
		}
	}

	for _, line := range req.Lines {
		if line.Qty > productByID[line.ProductID].Quantity {
			s.recordFailure(metrics.FailureInsufficientStock)
			return domain.Order{}, domain.ErrInsufficientStock
		}
	}

	now := time.Now().UTC()
	lines := make([]domain.OrderLine, 0, len(req.Lines))
	var amountSum int64
	for _, line := range req.Lines {
		product := productByID[line.ProductID]
		lines = append(lines, domain.OrderLine{
			ID:         uuid.NewString(),
			ProductID:  line.ProductID,
			Qty:        line.Qty,
			PriceMinor: product.PriceMinor,
			CreatedAt:  now,
		})
		amountSum += int64(line.Qty) * product.PriceMinor
	}

	order := domain.Order{
		ID:          uuid.NewString(),
		CustomerID:  customer.ID,
		AmountMinor: amountSum,
		Lines:       lines,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if errs := order.ValidateInvariants(); len(errs) > 0 {
		s.recordFailure(metrics.FailureInvalidOrder)
		return domain.Order{}, errors.Join(errs...)
	}

	if err := s.orders.Create(order); err != nil {
		s.logger.WithError(err).WithField("order_id", order.ID).Error("failed to create order")
		s.recordFailure(metrics.FailureStorage)
		return domain.Order{}, fmt.Errorf("persist order: %w", err)
	}

	updates := make([]domain.QuantityUpdate, 0, len(req.Lines))
	for _, line := range req.Lines {
		updates = append(updates, domain.QuantityUpdate{
			ProductID: line.ProductID,
			Qty:       productByID[line.ProductID].Quantity - line.Qty,
		})
	}

	if err := s.products.UpdateQuantities(updates); err != nil {
		// Заказ уже сохранён, а остатки не списаны; компенсация не выполняется.
		s.logger.WithError(err).WithField("order_id", order.ID).Error("failed to update product quantities after order create")
		s.recordFailure(metrics.FailureStockUpdate)
		return domain.Order{}, fmt.Errorf("update product quantities: %w", err)
	}

	s.enqueueCreatedEvent(order)

	if s.metrics != nil {
		s.metrics.RecordOrderCreated(len(order.Lines))
	}

	return order, nil
}

// Get возвращает заказ по идентификатору.
func (s *Service) Get(id string) (domain.Order, error) {
	return s.orders.Get(id)
}

// ListByCustomer возвращает заказы покупателя.
func (s *Service) ListByCustomer(customerID string, limit int) ([]domain.Order, error) {
	return s.orders.ListByCustomer(customerID, limit)
}

// enqueueCreatedEvent кладёт событие order.created в outbox.
// Ошибка постановки в очередь не отменяет созданный заказ.
func (s *Service) enqueueCreatedEvent(order domain.Order) {
	if s.outbox == nil {
		return
	}

	eventLines := make([]kafka.OrderEventLine, 0, len(order.Lines))
	for _, line := range order.Lines {
		eventLines = append(eventLines, kafka.OrderEventLine{
			ProductID:  line.ProductID,
			Qty:        line.Qty,
			PriceMinor: line.PriceMinor,
		})
	}

	payload, err := json.Marshal(kafka.NewOrderCreatedEvent(order.ID, order.CustomerID, order.AmountMinor, eventLines))
	if err != nil {
		s.logger.WithError(err).WithField("order_id", order.ID).Warn("failed to marshal order.created event")
		return
	}

	if _, err := s.outbox.Enqueue(domain.OutboxMessage{
		AggregateType: "order",
		AggregateID:   order.ID,
		EventType:     string(kafka.EventTypeOrderCreated),
		Payload:       payload,
	}); err != nil {
		s.logger.WithError(err).WithField("order_id", order.ID).Warn("failed to enqueue order.created event")
	}
}

func (s *Service) recordFailure(reason string) {
	if s.metrics != nil {
		s.metrics.RecordOrderFailure(reason)
	}
}
