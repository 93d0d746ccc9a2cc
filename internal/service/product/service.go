package product

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/ecom/internal/domain"
)

// Service реализует операции над каталогом товаров.
type Service struct {
	products domain.ProductRepository
	logger   *log.Entry
}

// NewService конструирует сервис каталога.
func NewService(products domain.ProductRepository, logger *log.Entry) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "product-service")
	}
	return &Service{products: products, logger: logger}
}

// Create добавляет товар с уникальным именем, начальной ценой и остатком.
func (s *Service) Create(name string, priceMinor int64, quantity int32) (domain.Product, error) {
	name = strings.TrimSpace(name)

	if name == "" {
		return domain.Product{}, domain.ErrProductNameRequired
	}
	if priceMinor < 0 {
		return domain.Product{}, domain.ErrProductPriceInvalid
	}
	if quantity < 0 {
		return domain.Product{}, domain.ErrProductQuantityInvalid
	}

	if _, err := s.products.FindByName(name); err == nil {
		return domain.Product{}, domain.ErrProductNameInUse
	} else if !errors.Is(err, domain.ErrProductNotFound) {
		s.logger.WithError(err).WithField("name", name).Error("failed to check product name")
		return domain.Product{}, fmt.Errorf("check product name: %w", err)
	}

	now := time.Now().UTC()
	product := domain.Product{
		ID:         uuid.NewString(),
		Name:       name,
		PriceMinor: priceMinor,
		Quantity:   quantity,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.products.Create(product); err != nil {
		if errors.Is(err, domain.ErrProductNameInUse) {
			return domain.Product{}, err
		}
		s.logger.WithError(err).Error("failed to create product")
		return domain.Product{}, fmt.Errorf("persist product: %w", err)
	}

	return product, nil
}

// Get возвращает товар по идентификатору.
func (s *Service) Get(id string) (domain.Product, error) {
	return s.products.FindByID(id)
}

// List возвращает товары каталога.
func (s *Service) List(limit int) ([]domain.Product, error) {
	return s.products.List(limit)
}
