package repositories

import (
	"errors"
	"fmt"

	"productapi/internal/models"

	"gorm.io/gorm"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// Create inserts the product and stores the generated ID on it.
// Any ID already set on the product is discarded.
func (r *GORMProductRepository) Create(product *models.Product) error {
	product.ID = 0
	if err := r.db.Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// Save overwrites every column of an existing product, zero values included.
func (r *GORMProductRepository) Save(product *models.Product) error {
	if product.ID == 0 {
		return fmt.Errorf("cannot save a product without an ID: %w", ErrProductNotFound)
	}
	// db.Save would insert a missing row, so update explicitly and check the row count.
	res := r.db.Model(product).Select("*").Omit("id").Updates(product)
	if res.Error != nil {
		return fmt.Errorf("failed to save product %d: %w", product.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product with ID %d not found for update: %w", product.ID, ErrProductNotFound)
	}
	return nil
}

// Delete removes the product identified by product.ID.
func (r *GORMProductRepository) Delete(product *models.Product) error {
	if product.ID == 0 {
		return fmt.Errorf("cannot delete a product without an ID: %w", ErrProductNotFound)
	}
	res := r.db.Delete(&models.Product{}, product.ID)
	if res.Error != nil {
		return fmt.Errorf("failed to delete product %d: %w", product.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product with ID %d not found for deletion: %w", product.ID, ErrProductNotFound)
	}
	return nil
}

// Find returns the product with the given ID, or nil if there is none.
func (r *GORMProductRepository) Find(id uint) (*models.Product, error) {
	var product models.Product
	if err := r.db.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get product by ID %d: %w", id, err)
	}
	return &product, nil
}

// FindOrFail is Find with absence reported as ErrProductNotFound.
func (r *GORMProductRepository) FindOrFail(id uint) (*models.Product, error) {
	product, err := r.Find(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("product with ID %d: %w", id, ErrProductNotFound)
	}
	return product, nil
}

// All retrieves all products from the database.
func (r *GORMProductRepository) All() ([]models.Product, error) {
	var products []models.Product
	if err := r.db.Order("id").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to get all products: %w", err)
	}
	return products, nil
}

// FindByName returns the products whose name equals name exactly.
func (r *GORMProductRepository) FindByName(name string) ([]models.Product, error) {
	var products []models.Product
	if err := r.db.Where("name = ?", name).Order("id").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to get products by name %q: %w", name, err)
	}
	return products, nil
}

// FindByCategory returns the products in the given category.
func (r *GORMProductRepository) FindByCategory(category string) ([]models.Product, error) {
	var products []models.Product
	if err := r.db.Where("category = ?", category).Order("id").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to get products by category %q: %w", category, err)
	}
	return products, nil
}
