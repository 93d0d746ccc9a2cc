package postgres

import (
	"errors"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/ecom/internal/domain"
)

func sampleProduct(id, name string, price int64, qty int32, at time.Time) domain.Product {
	return domain.Product{
		ID:         id,
		Name:       name,
		PriceMinor: price,
		Quantity:   qty,
		CreatedAt:  at,
		UpdatedAt:  at,
	}
}

func TestProductRepository_PostgresCreateAndFind(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewProductRepository(store)

	now := time.Now().UTC().Round(time.Microsecond)
	product := sampleProduct("product-1", "keyboard", 500, 10, now)

	if err := repo.Create(product); err != nil {
		t.Fatalf("create product: %v", err)
	}
	if err := repo.Create(sampleProduct("product-2", "keyboard", 700, 5, now)); !errors.Is(err, domain.ErrProductNameInUse) {
		t.Fatalf("expected ErrProductNameInUse, got %v", err)
	}

	byID, err := repo.FindByID(product.ID)
	if err != nil {
		t.Fatalf("find by id: %v", err)
	}
	if byID.PriceMinor != 500 || byID.Quantity != 10 {
		t.Fatalf("unexpected product payload: %+v", byID)
	}

	byName, err := repo.FindByName("keyboard")
	if err != nil {
		t.Fatalf("find by name: %v", err)
	}
	if byName.ID != product.ID {
		t.Fatalf("unexpected product by name: %+v", byName)
	}

	if _, err := repo.FindByID("missing"); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestProductRepository_PostgresFindAllByID(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewProductRepository(store)

	now := time.Now().UTC().Round(time.Microsecond)
	if err := repo.Create(sampleProduct("product-1", "keyboard", 500, 10, now)); err != nil {
		t.Fatalf("create product-1: %v", err)
	}
	if err := repo.Create(sampleProduct("product-2", "mouse", 300, 4, now.Add(time.Second))); err != nil {
		t.Fatalf("create product-2: %v", err)
	}

	// Повторы идентификаторов схлопываются, отсутствующие пропускаются.
	found, err := repo.FindAllByID([]domain.LineRequest{
		{ProductID: "product-1", Qty: 1},
		{ProductID: "product-1", Qty: 2},
		{ProductID: "product-2", Qty: 1},
		{ProductID: "missing", Qty: 1},
	})
	if err != nil {
		t.Fatalf("find all by id: %v", err)
	}
	if len(found) != 2 {
		t.Fatalf("expected 2 products, got %d", len(found))
	}

	none, err := repo.FindAllByID([]domain.LineRequest{{ProductID: "missing", Qty: 1}})
	if err != nil {
		t.Fatalf("find all by id with misses only: %v", err)
	}
	if none != nil {
		t.Fatalf("expected nil result for misses only, got %+v", none)
	}
}

func TestProductRepository_PostgresUpdateQuantities(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewProductRepository(store)

	now := time.Now().UTC().Round(time.Microsecond)
	if err := repo.Create(sampleProduct("product-1", "keyboard", 500, 10, now)); err != nil {
		t.Fatalf("create product-1: %v", err)
	}
	if err := repo.Create(sampleProduct("product-2", "mouse", 300, 4, now)); err != nil {
		t.Fatalf("create product-2: %v", err)
	}

	if err := repo.UpdateQuantities([]domain.QuantityUpdate{
		{ProductID: "product-1", Qty: 7},
		{ProductID: "product-2", Qty: 0},
	}); err != nil {
		t.Fatalf("update quantities: %v", err)
	}

	p1, err := repo.FindByID("product-1")
	if err != nil {
		t.Fatalf("find product-1: %v", err)
	}
	if p1.Quantity != 7 {
		t.Fatalf("expected quantity 7, got %d", p1.Quantity)
	}

	// Неизвестный товар откатывает весь батч.
	err = repo.UpdateQuantities([]domain.QuantityUpdate{
		{ProductID: "product-1", Qty: 1},
		{ProductID: "missing", Qty: 1},
	})
	if !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}

	p1, err = repo.FindByID("product-1")
	if err != nil {
		t.Fatalf("find product-1 after rollback: %v", err)
	}
	if p1.Quantity != 7 {
		t.Fatalf("expected quantity unchanged after rollback, got %d", p1.Quantity)
	}
}

func TestProductRepository_PostgresList(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewProductRepository(store)

	now := time.Now().UTC().Round(time.Microsecond)
	if err := repo.Create(sampleProduct("product-1", "keyboard", 500, 10, now)); err != nil {
		t.Fatalf("create product-1: %v", err)
	}
	if err := repo.Create(sampleProduct("product-2", "mouse", 300, 4, now.Add(time.Second))); err != nil {
		t.Fatalf("create product-2: %v", err)
	}

	limited, err := repo.List(1)
	if err != nil {
		t.Fatalf("list with limit: %v", err)
	}
	if len(limited) != 1 || limited[0].ID != "product-1" {
		t.Fatalf("unexpected limited list: %+v", limited)
	}

	all, err := repo.List(0)
	if err != nil {
		t.Fatalf("list without limit: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 products, got %d", len(all))
	}
}
