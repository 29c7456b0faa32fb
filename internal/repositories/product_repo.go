package repositories

import (
	"errors"

	"productapi/internal/models"
)

// ErrProductNotFound is returned when no product matches the requested ID.
var ErrProductNotFound = errors.New("product not found")

// ProductRepository defines the interface for product data access.
//
// Find reports absence as a nil product with a nil error, while FindOrFail
// returns an error wrapping ErrProductNotFound.
type ProductRepository interface {
	Create(product *models.Product) error
	Save(product *models.Product) error
	Delete(product *models.Product) error
	Find(id uint) (*models.Product, error)
	FindOrFail(id uint) (*models.Product, error)
	All() ([]models.Product, error)
	FindByName(name string) ([]models.Product, error)
	FindByCategory(category string) ([]models.Product, error)
}
