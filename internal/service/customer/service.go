package customer

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/ecom/internal/domain"
)

// Service реализует операции над покупателями.
type Service struct {
	customers domain.CustomerRepository
	logger    *log.Entry
}

// NewService конструирует сервис покупателей.
func NewService(customers domain.CustomerRepository, logger *log.Entry) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "customer-service")
	}
	return &Service{customers: customers, logger: logger}
}

// Create регистрирует нового покупателя с уникальным email.
func (s *Service) Create(name, email string) (domain.Customer, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)

	if name == "" {
		return domain.Customer{}, domain.ErrCustomerNameRequired
	}
	if email == "" {
		return domain.Customer{}, domain.ErrCustomerEmailRequired
	}

	if _, err := s.customers.FindByEmail(email); err == nil {
		return domain.Customer{}, domain.ErrCustomerEmailInUse
	} else if !errors.Is(err, domain.ErrCustomerNotFound) {
		s.logger.WithError(err).WithField("email", email).Error("failed to check customer email")
		return domain.Customer{}, fmt.Errorf("check customer email: %w", err)
	}

	now := time.Now().UTC()
	customer := domain.Customer{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.customers.Create(customer); err != nil {
		if errors.Is(err, domain.ErrCustomerEmailInUse) {
			return domain.Customer{}, err
		}
		s.logger.WithError(err).Error("failed to create customer")
		return domain.Customer{}, fmt.Errorf("persist customer: %w", err)
	}

	return customer, nil
}

// Get возвращает покупателя по идентификатору.
func (s *Service) Get(id string) (domain.Customer, error) {
	return s.customers.FindByID(id)
}
