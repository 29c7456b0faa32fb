package models

import "encoding/json"

// Product represents a product in the store.
// An ID of zero means the product has not been persisted yet.
type Product struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	Name        string  `json:"name" gorm:"size:63;not null" validate:"required,max=63"`
	Price       float64 `json:"price" gorm:"not null"`
	Stock       int     `json:"stock" gorm:"not null"`
	Size        string  `json:"size" gorm:"size:4;not null" validate:"required,max=4"`
	Color       string  `json:"color" gorm:"size:10;not null" validate:"required,max=10"`
	Category    string  `json:"category" gorm:"size:63;not null;index" validate:"required,max=63"`
	Description string  `json:"description" gorm:"size:250" validate:"max=250"`
	Available   bool    `json:"available"`
}

func (Product) TableName() string {
	return "products"
}

// IsPersisted reports whether the product has a store-assigned ID.
func (p *Product) IsPersisted() bool {
	return p.ID != 0
}

// Restock sets the stock level and derives availability from it.
func (p *Product) Restock(quantity int) {
	p.Stock = quantity
	p.Available = quantity != 0
}

// MarshalJSON always emits the id key, as null while the product is transient.
func (p Product) MarshalJSON() ([]byte, error) {
	type fields Product
	var id *uint
	if p.ID != 0 {
		id = &p.ID
	}
	return json.Marshal(struct {
		ID *uint `json:"id"`
		fields
	}{
		ID:     id,
		fields: fields(p),
	})
}
