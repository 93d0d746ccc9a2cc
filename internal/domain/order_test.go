package domain_test

import (
	"errors"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/ecom/internal/domain"
)

func validOrder() domain.Order {
	now := time.Now().UTC()
	return domain.Order{
		ID:          "order-1",
		CustomerID:  "customer-1",
		AmountMinor: 1500,
		Lines: []domain.OrderLine{
			{ID: "line-1", ProductID: "product-1", Qty: 3, PriceMinor: 500, CreatedAt: now},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestOrderValidateInvariants_Valid(t *testing.T) {
	order := validOrder()
	if errs := order.ValidateInvariants(); len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
}

func TestOrderValidateInvariants_MissingCustomer(t *testing.T) {
	order := validOrder()
	order.CustomerID = ""
	errs := order.ValidateInvariants()
	if !containsErr(errs, domain.ErrCustomerRequired) {
		t.Fatalf("expected ErrCustomerRequired, got %v", errs)
	}
}

func TestOrderValidateInvariants_EmptyLines(t *testing.T) {
	order := validOrder()
	order.Lines = nil
	order.AmountMinor = 0
	errs := order.ValidateInvariants()
	if !containsErr(errs, domain.ErrLinesRequired) {
		t.Fatalf("expected ErrLinesRequired, got %v", errs)
	}
}

func TestOrderValidateInvariants_BadLine(t *testing.T) {
	order := validOrder()
	order.Lines[0].Qty = 0
	order.Lines[0].PriceMinor = -1
	errs := order.ValidateInvariants()
	if !containsErr(errs, domain.ErrLineQtyInvalid) {
		t.Fatalf("expected ErrLineQtyInvalid, got %v", errs)
	}
	if !containsErr(errs, domain.ErrLinePriceInvalid) {
		t.Fatalf("expected ErrLinePriceInvalid, got %v", errs)
	}
}

func TestOrderValidateInvariants_AmountMismatch(t *testing.T) {
	order := validOrder()
	order.AmountMinor = 1
	errs := order.ValidateInvariants()
	if !containsErr(errs, domain.ErrAmountMismatch) {
		t.Fatalf("expected ErrAmountMismatch, got %v", errs)
	}
}

func containsErr(errs []error, target error) bool {
	for _, err := range errs {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
