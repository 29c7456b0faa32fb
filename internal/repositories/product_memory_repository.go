package repositories

import (
	"fmt"
	"sort"
	"sync"

	"productapi/internal/models"
)

// MemoryProductRepository is an in-memory implementation of ProductRepository.
// IDs come from a counter and are never reused.
type MemoryProductRepository struct {
	products map[uint]models.Product
	lastID   uint
	mu       sync.RWMutex
}

// NewMemoryProductRepository creates a new instance of MemoryProductRepository.
func NewMemoryProductRepository() *MemoryProductRepository {
	return &MemoryProductRepository{
		products: make(map[uint]models.Product),
	}
}

// Create adds a new product with the next free ID.
func (r *MemoryProductRepository) Create(product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lastID++
	product.ID = r.lastID
	r.products[product.ID] = *product
	return nil
}

// Save replaces an existing product.
func (r *MemoryProductRepository) Save(product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[product.ID]; !ok {
		return fmt.Errorf("product with ID %d not found for update: %w", product.ID, ErrProductNotFound)
	}
	r.products[product.ID] = *product
	return nil
}

// Delete removes a product by its ID.
func (r *MemoryProductRepository) Delete(product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[product.ID]; !ok {
		return fmt.Errorf("product with ID %d not found for deletion: %w", product.ID, ErrProductNotFound)
	}
	delete(r.products, product.ID)
	return nil
}

// Find returns a copy of the product, or nil if there is none.
func (r *MemoryProductRepository) Find(id uint) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, nil
	}
	return &product, nil
}

func (r *MemoryProductRepository) FindOrFail(id uint) (*models.Product, error) {
	product, _ := r.Find(id)
	if product == nil {
		return nil, fmt.Errorf("product with ID %d: %w", id, ErrProductNotFound)
	}
	return product, nil
}

// All returns all products ordered by ID.
func (r *MemoryProductRepository) All() ([]models.Product, error) {
	return r.filter(func(models.Product) bool { return true }), nil
}

func (r *MemoryProductRepository) FindByName(name string) ([]models.Product, error) {
	return r.filter(func(p models.Product) bool { return p.Name == name }), nil
}

func (r *MemoryProductRepository) FindByCategory(category string) ([]models.Product, error) {
	return r.filter(func(p models.Product) bool { return p.Category == category }), nil
}

func (r *MemoryProductRepository) filter(match func(models.Product) bool) []models.Product {
	r.mu.RLock()
	defer r.mu.RUnlock()

	productList := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		if match(p) {
			productList = append(productList, p)
		}
	}
	sort.Slice(productList, func(i, j int) bool { return productList[i].ID < productList[j].ID })
	return productList
}
