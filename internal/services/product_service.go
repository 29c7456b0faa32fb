package services

import (
	"fmt"
	"log"

	"productapi/internal/models"
	"productapi/internal/repositories"
)

// Product event types published after a successful store operation.
const (
	EventProductCreated   = "product.created"
	EventProductUpdated   = "product.updated"
	EventProductRestocked = "product.restocked"
	EventProductDeleted   = "product.deleted"
)

// EventPublisher publishes product lifecycle events. *rabbitmq.Client implements it.
type EventPublisher interface {
	Publish(eventType string, payload interface{}) error
}

// ProductFilter selects which products ListProducts returns.
// Category takes precedence over Name; empty values are ignored.
type ProductFilter struct {
	Category string
	Name     string
}

// ProductService handles business logic related to products.
type ProductService struct {
	repo      repositories.ProductRepository
	publisher EventPublisher
}

// NewProductService creates a new ProductService. publisher may be nil,
// in which case no events are published.
func NewProductService(repo repositories.ProductRepository, publisher EventPublisher) *ProductService {
	return &ProductService{
		repo:      repo,
		publisher: publisher,
	}
}

// ListProducts returns the products matching filter.
func (s *ProductService) ListProducts(filter ProductFilter) ([]models.Product, error) {
	switch {
	case filter.Category != "":
		log.Printf("Processing category query for %s ...", filter.Category)
		return s.repo.FindByCategory(filter.Category)
	case filter.Name != "":
		log.Printf("Processing name query for %s ...", filter.Name)
		return s.repo.FindByName(filter.Name)
	default:
		log.Println("Processing all Products")
		return s.repo.All()
	}
}

// FindProduct returns the product with the given ID, or nil if there is none.
func (s *ProductService) FindProduct(id uint) (*models.Product, error) {
	return s.repo.Find(id)
}

// GetProduct returns the product with the given ID or an error wrapping
// repositories.ErrProductNotFound.
func (s *ProductService) GetProduct(id uint) (*models.Product, error) {
	return s.repo.FindOrFail(id)
}

// CreateProduct persists a new product and assigns its ID.
func (s *ProductService) CreateProduct(product *models.Product) error {
	log.Printf("Creating %s", product.Name)
	if err := s.repo.Create(product); err != nil {
		return err
	}
	s.publish(EventProductCreated, product)
	return nil
}

// UpdateProduct overwrites the stored fields of an existing product.
func (s *ProductService) UpdateProduct(product *models.Product) error {
	log.Printf("Saving %s", product.Name)
	if err := s.repo.Save(product); err != nil {
		return err
	}
	s.publish(EventProductUpdated, product)
	return nil
}

// RestockProduct sets the stock of an existing product and derives its availability.
func (s *ProductService) RestockProduct(id uint, quantity int) (*models.Product, error) {
	if quantity < 0 {
		return nil, fmt.Errorf("invalid stock quantity %d", quantity)
	}
	product, err := s.repo.FindOrFail(id)
	if err != nil {
		return nil, err
	}

	product.Restock(quantity)
	log.Printf("Restocking %s to %d", product.Name, quantity)
	if err := s.repo.Save(product); err != nil {
		return nil, err
	}
	s.publish(EventProductRestocked, product)
	return product, nil
}

// DeleteProduct removes the product with the given ID. Deleting a product
// that does not exist is a no-op.
func (s *ProductService) DeleteProduct(id uint) error {
	product, err := s.repo.Find(id)
	if err != nil {
		return err
	}
	if product == nil {
		return nil
	}

	log.Printf("Deleting %s", product.Name)
	if err := s.repo.Delete(product); err != nil {
		return err
	}
	s.publish(EventProductDeleted, product)
	return nil
}

func (s *ProductService) publish(eventType string, product *models.Product) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(eventType, product); err != nil {
		log.Printf("Warning: Failed to publish %s event for product %d: %v", eventType, product.ID, err)
	}
}
