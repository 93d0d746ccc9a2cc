package order_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/ecom/internal/domain"
	"github.com/vladislavdragonenkov/ecom/internal/service/order"
	"github.com/vladislavdragonenkov/ecom/internal/storage/memory"
)

type fixture struct {
	customers domain.CustomerRepository
	products  domain.ProductRepository
	orders    domain.OrderRepository
	outbox    interface {
		domain.OutboxRepository
		AllPending() []domain.OutboxMessage
	}
	service *order.Service
}

func loggerForTests() *logrus.Entry {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: false, DisableTimestamp: true})
	logger.SetLevel(logrus.DebugLevel)
	return logger.WithField("component", "test")
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	customers := memory.NewCustomerRepository()
	products := memory.NewProductRepository()
	orders := memory.NewOrderRepository()
	outbox := memory.NewOutboxRepository()

	return &fixture{
		customers: customers,
		products:  products,
		orders:    orders,
		outbox:    outbox,
		service:   order.NewServiceWithoutMetrics(orders, products, customers, outbox, loggerForTests()),
	}
}

func (f *fixture) seedCustomer(t *testing.T, id string) domain.Customer {
	t.Helper()

	now := time.Now().UTC()
	customer := domain.Customer{
		ID:        id,
		Name:      "Customer " + id,
		Email:     id + "@example.com",
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, f.customers.Create(customer))
	return customer
}

func (f *fixture) seedProduct(t *testing.T, id string, qty int32, price int64) domain.Product {
	t.Helper()

	now := time.Now().UTC()
	product := domain.Product{
		ID:         id,
		Name:       "Product " + id,
		PriceMinor: price,
		Quantity:   qty,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	require.NoError(t, f.products.Create(product))
	return product
}

func (f *fixture) productQty(t *testing.T, id string) int32 {
	t.Helper()

	product, err := f.products.FindByID(id)
	require.NoError(t, err)
	return product.Quantity
}

func (f *fixture) orderCount(t *testing.T, customerID string) int {
	t.Helper()

	orders, err := f.orders.ListByCustomer(customerID, 0)
	require.NoError(t, err)
	return len(orders)
}

func TestCreateOrder_Success(t *testing.T) {
	f := newFixture(t)
	f.seedCustomer(t, "customer-1")
	f.seedProduct(t, "product-1", 10, 500)

	created, err := f.service.Create(order.CreateOrderRequest{
		CustomerID: "customer-1",
		Lines:      []domain.LineRequest{{ProductID: "product-1", Qty: 3}},
	})
	require.NoError(t, err)

	require.NotEmpty(t, created.ID)
	require.Equal(t, "customer-1", created.CustomerID)
	require.Len(t, created.Lines, 1)
	require.Equal(t, "product-1", created.Lines[0].ProductID)
	require.Equal(t, int32(3), created.Lines[0].Qty)
	require.Equal(t, int64(500), created.Lines[0].PriceMinor)
	require.Equal(t, int64(1500), created.AmountMinor)

	// Остаток уменьшен ровно на запрошенное количество.
	require.Equal(t, int32(7), f.productQty(t, "product-1"))

	stored, err := f.orders.Get(created.ID)
	require.NoError(t, err)
	require.Equal(t, created.ID, stored.ID)
}

func TestCreateOrder_PriceSnapshot(t *testing.T) {
	f := newFixture(t)
	f.seedCustomer(t, "customer-1")
	f.seedProduct(t, "product-1", 10, 500)

	created, err := f.service.Create(order.CreateOrderRequest{
		CustomerID: "customer-1",
		Lines:      []domain.LineRequest{{ProductID: "product-1", Qty: 1}},
	})
	require.NoError(t, err)

	// Цена позиции зафиксирована на момент заказа и не следует за каталогом.
	require.NoError(t, f.products.UpdateQuantities([]domain.QuantityUpdate{{ProductID: "product-1", Qty: 9}}))
	stored, err := f.orders.Get(created.ID)
	require.NoError(t, err)
	require.Equal(t, int64(500), stored.Lines[0].PriceMinor)
}

func TestCreateOrder_CustomerNotFound(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, "product-1", 10, 500)

	_, err := f.service.Create(order.CreateOrderRequest{
		CustomerID: "missing",
		Lines:      []domain.LineRequest{{ProductID: "product-1", Qty: 3}},
	})
	require.ErrorIs(t, err, domain.ErrCustomerNotFound)

	require.Equal(t, int32(10), f.productQty(t, "product-1"))
	require.Empty(t, f.outbox.AllPending())
}

func TestCreateOrder_NoProductsFound(t *testing.T) {
	f := newFixture(t)
	f.seedCustomer(t, "customer-1")

	_, err := f.service.Create(order.CreateOrderRequest{
		CustomerID: "customer-1",
		Lines:      []domain.LineRequest{{ProductID: "missing", Qty: 1}},
	})
	require.ErrorIs(t, err, domain.ErrNoProductsFound)
	require.Equal(t, 0, f.orderCount(t, "customer-1"))
}

func TestCreateOrder_ProductNotFound(t *testing.T) {
	f := newFixture(t)
	f.seedCustomer(t, "customer-1")
	f.seedProduct(t, "product-1", 10, 500)

	_, err := f.service.Create(order.CreateOrderRequest{
		CustomerID: "customer-1",
		Lines: []domain.LineRequest{
			{ProductID: "product-1", Qty: 1},
			{ProductID: "missing-a", Qty: 1},
			{ProductID: "missing-b", Qty: 1},
		},
	})
	require.ErrorIs(t, err, domain.ErrProductNotFound)
	// Сообщение называет первый отсутствующий товар в порядке запроса.
	require.Contains(t, err.Error(), "missing-a")

	require.Equal(t, int32(10), f.productQty(t, "product-1"))
	require.Equal(t, 0, f.orderCount(t, "customer-1"))
}

func TestCreateOrder_InsufficientStock(t *testing.T) {
	f := newFixture(t)
	f.seedCustomer(t, "customer-1")
	f.seedProduct(t, "product-1", 10, 500)
	f.seedProduct(t, "product-2", 1, 300)

	_, err := f.service.Create(order.CreateOrderRequest{
		CustomerID: "customer-1",
		Lines: []domain.LineRequest{
			{ProductID: "product-1", Qty: 15},
			{ProductID: "product-2", Qty: 5},
		},
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	require.Equal(t, int32(10), f.productQty(t, "product-1"))
	require.Equal(t, int32(1), f.productQty(t, "product-2"))
	require.Equal(t, 0, f.orderCount(t, "customer-1"))
	require.Empty(t, f.outbox.AllPending())
}

func TestCreateOrder_DuplicateLines(t *testing.T) {
	f := newFixture(t)
	f.seedCustomer(t, "customer-1")
	f.seedProduct(t, "product-1", 10, 500)

	created, err := f.service.Create(order.CreateOrderRequest{
		CustomerID: "customer-1",
		Lines: []domain.LineRequest{
			{ProductID: "product-1", Qty: 3},
			{ProductID: "product-1", Qty: 4},
		},
	})
	require.NoError(t, err)

	// Повторы не схлопываются: каждая позиция сохраняется отдельно,
	// цена каждой берётся из одного и того же снимка товара.
	require.Len(t, created.Lines, 2)
	require.Equal(t, int64(500), created.Lines[0].PriceMinor)
	require.Equal(t, int64(500), created.Lines[1].PriceMinor)

	// Абсолютные остатки считаются от количества на момент чтения,
	// поэтому списания по повторам перекрываются: остаётся последнее.
	require.Equal(t, int32(6), f.productQty(t, "product-1"))
}

func TestCreateOrder_NotIdempotent(t *testing.T) {
	f := newFixture(t)
	f.seedCustomer(t, "customer-1")
	f.seedProduct(t, "product-1", 10, 500)

	req := order.CreateOrderRequest{
		CustomerID: "customer-1",
		Lines:      []domain.LineRequest{{ProductID: "product-1", Qty: 3}},
	}

	first, err := f.service.Create(req)
	require.NoError(t, err)
	second, err := f.service.Create(req)
	require.NoError(t, err)

	require.NotEqual(t, first.ID, second.ID)
	require.Equal(t, 2, f.orderCount(t, "customer-1"))
	require.Equal(t, int32(4), f.productQty(t, "product-1"))
}

func TestCreateOrder_EnqueuesOutboxEvent(t *testing.T) {
	f := newFixture(t)
	f.seedCustomer(t, "customer-1")
	f.seedProduct(t, "product-1", 10, 500)

	created, err := f.service.Create(order.CreateOrderRequest{
		CustomerID: "customer-1",
		Lines:      []domain.LineRequest{{ProductID: "product-1", Qty: 3}},
	})
	require.NoError(t, err)

	pending := f.outbox.AllPending()
	require.Len(t, pending, 1)
	require.Equal(t, "order", pending[0].AggregateType)
	require.Equal(t, created.ID, pending[0].AggregateID)
	require.Equal(t, "order.created", pending[0].EventType)

	var payload struct {
		OrderID     string `json:"order_id"`
		CustomerID  string `json:"customer_id"`
		AmountMinor int64  `json:"amount_minor"`
	}
	require.NoError(t, json.Unmarshal(pending[0].Payload, &payload))
	require.Equal(t, created.ID, payload.OrderID)
	require.Equal(t, "customer-1", payload.CustomerID)
	require.Equal(t, int64(1500), payload.AmountMinor)
}

// failingStockRepo имитирует отказ батч-обновления остатков после сохранения заказа.
type failingStockRepo struct {
	domain.ProductRepository
}

func (r *failingStockRepo) UpdateQuantities([]domain.QuantityUpdate) error {
	return errors.New("stock storage is down")
}

func TestCreateOrder_StockUpdateFailureLeavesOrder(t *testing.T) {
	f := newFixture(t)
	f.seedCustomer(t, "customer-1")
	f.seedProduct(t, "product-1", 10, 500)

	service := order.NewServiceWithoutMetrics(
		f.orders,
		&failingStockRepo{ProductRepository: f.products},
		f.customers,
		f.outbox,
		loggerForTests(),
	)

	_, err := service.Create(order.CreateOrderRequest{
		CustomerID: "customer-1",
		Lines:      []domain.LineRequest{{ProductID: "product-1", Qty: 3}},
	})
	require.Error(t, err)

	// Заказ уже сохранён, остатки не списаны: рассинхронизация отдаётся наружу как ошибка.
	require.Equal(t, 1, f.orderCount(t, "customer-1"))
	require.Equal(t, int32(10), f.productQty(t, "product-1"))
}

func TestCreateOrder_ZeroQtyRejectedByInvariants(t *testing.T) {
	f := newFixture(t)
	f.seedCustomer(t, "customer-1")
	f.seedProduct(t, "product-1", 10, 500)

	_, err := f.service.Create(order.CreateOrderRequest{
		CustomerID: "customer-1",
		Lines:      []domain.LineRequest{{ProductID: "product-1", Qty: 0}},
	})
	require.ErrorIs(t, err, domain.ErrLineQtyInvalid)
	require.Equal(t, 0, f.orderCount(t, "customer-1"))
	require.Equal(t, int32(10), f.productQty(t, "product-1"))
}

func TestGetAndList(t *testing.T) {
	f := newFixture(t)
	f.seedCustomer(t, "customer-1")
	f.seedProduct(t, "product-1", 10, 500)

	created, err := f.service.Create(order.CreateOrderRequest{
		CustomerID: "customer-1",
		Lines:      []domain.LineRequest{{ProductID: "product-1", Qty: 2}},
	})
	require.NoError(t, err)

	got, err := f.service.Get(created.ID)
	require.NoError(t, err)
	require.Equal(t, created.ID, got.ID)

	_, err = f.service.Get("missing")
	require.ErrorIs(t, err, domain.ErrOrderNotFound)

	orders, err := f.service.ListByCustomer("customer-1", 10)
	require.NoError(t, err)
	require.Len(t, orders, 1)
}
