package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/ecom/internal/domain"
	customersvc "github.com/vladislavdragonenkov/ecom/internal/service/customer"
	ordersvc "github.com/vladislavdragonenkov/ecom/internal/service/order"
	productsvc "github.com/vladislavdragonenkov/ecom/internal/service/product"
)

// Handler связывает HTTP JSON API с прикладными сервисами.
type Handler struct {
	orders    *ordersvc.Service
	customers *customersvc.Service
	products  *productsvc.Service
	logger    *log.Entry
}

// NewHandler создаёт HTTP handler поверх прикладных сервисов.
func NewHandler(
	orders *ordersvc.Service,
	customers *customersvc.Service,
	products *productsvc.Service,
	logger *log.Entry,
) *Handler {
	if logger == nil {
		logger = log.NewEntry(log.New())
	}
	return &Handler{
		orders:    orders,
		customers: customers,
		products:  products,
		logger:    logger.WithField("component", "httpapi"),
	}
}

// Register добавляет маршруты API в mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/customers", h.createCustomer)
	mux.HandleFunc("GET /api/v1/customers/{id}", h.getCustomer)

	mux.HandleFunc("POST /api/v1/products", h.createProduct)
	mux.HandleFunc("GET /api/v1/products/{id}", h.getProduct)
	mux.HandleFunc("GET /api/v1/products", h.listProducts)

	mux.HandleFunc("POST /api/v1/orders", h.createOrder)
	mux.HandleFunc("GET /api/v1/orders/{id}", h.getOrder)
	mux.HandleFunc("GET /api/v1/orders", h.listOrders)
}

type createCustomerRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type customerResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

func (h *Handler) createCustomer(w http.ResponseWriter, r *http.Request) {
	var req createCustomerRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	customer, err := h.customers.Create(req.Name, req.Email)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, toCustomerResponse(customer))
}

func (h *Handler) getCustomer(w http.ResponseWriter, r *http.Request) {
	customer, err := h.customers.Get(r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, toCustomerResponse(customer))
}

type createProductRequest struct {
	Name       string `json:"name"`
	PriceMinor int64  `json:"price_minor"`
	Quantity   int32  `json:"quantity"`
}

type productResponse struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	PriceMinor int64     `json:"price_minor"`
	Quantity   int32     `json:"quantity"`
	CreatedAt  time.Time `json:"created_at"`
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	product, err := h.products.Create(req.Name, req.PriceMinor, req.Quantity)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, toProductResponse(product))
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.products.Get(r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, toProductResponse(product))
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(parseLimit(r))
	if err != nil {
		h.writeError(w, err)
		return
	}

	resp := make([]productResponse, 0, len(products))
	for _, product := range products {
		resp = append(resp, toProductResponse(product))
	}
	h.writeJSON(w, http.StatusOK, resp)
}

type createOrderRequest struct {
	CustomerID string             `json:"customer_id"`
	Products   []orderLineRequest `json:"products"`
}

type orderLineRequest struct {
	ID       string `json:"id"`
	Quantity int32  `json:"quantity"`
}

type orderLineResponse struct {
	ID         string `json:"id"`
	ProductID  string `json:"product_id"`
	Qty        int32  `json:"qty"`
	PriceMinor int64  `json:"price_minor"`
}

type orderResponse struct {
	ID          string              `json:"id"`
	CustomerID  string              `json:"customer_id"`
	AmountMinor int64               `json:"amount_minor"`
	Lines       []orderLineResponse `json:"lines"`
	CreatedAt   time.Time           `json:"created_at"`
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	lines := make([]domain.LineRequest, 0, len(req.Products))
	for _, p := range req.Products {
		lines = append(lines, domain.LineRequest{ProductID: p.ID, Qty: p.Quantity})
	}

	order, err := h.orders.Create(ordersvc.CreateOrderRequest{
		CustomerID: req.CustomerID,
		Lines:      lines,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, toOrderResponse(order))
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.orders.Get(r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, toOrderResponse(order))
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	customerID := r.URL.Query().Get("customer_id")
	if customerID == "" {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "customer_id query parameter is required"})
		return
	}

	orders, err := h.orders.ListByCustomer(customerID, parseLimit(r))
	if err != nil {
		h.writeError(w, err)
		return
	}

	resp := make([]orderResponse, 0, len(orders))
	for _, order := range orders {
		resp = append(resp, toOrderResponse(order))
	}
	h.writeJSON(w, http.StatusOK, resp)
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return false
	}
	return true
}

// writeError переводит доменные ошибки в HTTP-статусы.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case domain.IsNotFound(err):
		h.writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrInsufficientStock),
		errors.Is(err, domain.ErrCustomerEmailInUse),
		errors.Is(err, domain.ErrProductNameInUse),
		errors.Is(err, domain.ErrOrderAlreadyExists):
		h.writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case isValidationError(err):
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	default:
		h.logger.WithError(err).Error("внутренняя ошибка при обработке запроса")
		h.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func isValidationError(err error) bool {
	validation := []error{
		domain.ErrCustomerRequired,
		domain.ErrCustomerNameRequired,
		domain.ErrCustomerEmailRequired,
		domain.ErrProductNameRequired,
		domain.ErrProductPriceInvalid,
		domain.ErrProductQuantityInvalid,
		domain.ErrLinesRequired,
		domain.ErrLineProductRequired,
		domain.ErrLineQtyInvalid,
		domain.ErrLinePriceInvalid,
		domain.ErrAmountNegative,
		domain.ErrAmountMismatch,
	}
	for _, target := range validation {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.WithError(err).Error("не удалось сериализовать ответ")
	}
}

func parseLimit(r *http.Request) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0
	}
	return limit
}

func toCustomerResponse(c domain.Customer) customerResponse {
	return customerResponse{ID: c.ID, Name: c.Name, Email: c.Email, CreatedAt: c.CreatedAt}
}

func toProductResponse(p domain.Product) productResponse {
	return productResponse{
		ID: p.ID, Name: p.Name, PriceMinor: p.PriceMinor,
		Quantity: p.Quantity, CreatedAt: p.CreatedAt,
	}
}

func toOrderResponse(o domain.Order) orderResponse {
	lines := make([]orderLineResponse, 0, len(o.Lines))
	for _, line := range o.Lines {
		lines = append(lines, orderLineResponse{
			ID: line.ID, ProductID: line.ProductID,
			Qty: line.Qty, PriceMinor: line.PriceMinor,
		})
	}
	return orderResponse{
		ID: o.ID, CustomerID: o.CustomerID, AmountMinor: o.AmountMinor,
		Lines: lines, CreatedAt: o.CreatedAt,
	}
}
