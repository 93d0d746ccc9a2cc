package memory

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/vladislavdragonenkov/ecom/internal/domain"
)

// productRepositoryInMemory — простая in-memory реализация ProductRepository.
type productRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.Product
}

// NewProductRepository возвращает in-memory репозиторий для локальной разработки и тестов.
func NewProductRepository() domain.ProductRepository {
	return &productRepositoryInMemory{
		items: make(map[string]domain.Product),
	}
}

// Create сохраняет новый товар, проверяя уникальность имени.
func (r *productRepositoryInMemory) Create(product domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.items {
		if existing.Name == product.Name {
			return domain.ErrProductNameInUse
		}
	}
	r.items[product.ID] = product
	return nil
}

// FindByID возвращает товар или ErrProductNotFound.
func (r *productRepositoryInMemory) FindByID(id string) (domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.items[id]
	if !ok {
		return domain.Product{}, fmt.Errorf("%w: %s", domain.ErrProductNotFound, id)
	}
	return product, nil
}

// FindByName возвращает товар по имени или ErrProductNotFound.
func (r *productRepositoryInMemory) FindByName(name string) (domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, product := range r.items {
		if product.Name == name {
			return product, nil
		}
	}
	return domain.Product{}, fmt.Errorf("%w: %s", domain.ErrProductNotFound, name)
}

// FindAllByID возвращает найденные товары по запрошенным позициям.
// Повторяющиеся идентификаторы схлопываются; если не найден ни один — nil.
func (r *productRepositoryInMemory) FindAllByID(requests []domain.LineRequest) ([]domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []domain.Product
	seen := make(map[string]struct{}, len(requests))
	for _, request := range requests {
		if _, ok := seen[request.ProductID]; ok {
			continue
		}
		seen[request.ProductID] = struct{}{}

		product, ok := r.items[request.ProductID]
		if !ok {
			continue
		}
		result = append(result, product)
	}

	return result, nil
}

// UpdateQuantities устанавливает новые абсолютные остатки товаров.
func (r *productRepositoryInMemory) UpdateQuantities(updates []domain.QuantityUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	for _, update := range updates {
		product, ok := r.items[update.ProductID]
		if !ok {
			return fmt.Errorf("%w: %s", domain.ErrProductNotFound, update.ProductID)
		}
		product.Quantity = update.Qty
		product.UpdatedAt = now
		r.items[update.ProductID] = product
	}

	return nil
}

// List возвращает товары каталога, ограничивая выборку limit (если >0).
func (r *productRepositoryInMemory) List(limit int) ([]domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Product, 0, len(r.items))
	for _, product := range r.items {
		result = append(result, product)
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].Name < result[j].Name
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}

	return result, nil
}

var _ domain.ProductRepository = (*productRepositoryInMemory)(nil)
