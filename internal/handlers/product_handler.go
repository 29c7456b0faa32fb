package handlers

import (
	"errors"
	"fmt"
	"log"
	"strconv"

	"productapi/internal/middleware"
	"productapi/internal/models"
	"productapi/internal/repositories"
	"productapi/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	service *services.ProductService
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{
		service: service,
	}
}

// RegisterRoutes registers the product routes with the Fiber app.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleListProducts)
	productRoutes.Get("/:id", h.HandleGetProduct)
	productRoutes.Post("/", middleware.RequireJSON(), h.HandleCreateProduct)
	// A restock carries no body, so it is exempt from the content type check.
	productRoutes.Put("/:id", middleware.RequireJSON(middleware.JSONConfig{Next: isRestock}), h.HandleUpdateProduct)
	productRoutes.Delete("/:id", h.HandleDeleteProduct)
}

// isRestock reports whether the request asks for a stock-only update.
// The stock key only has to be present; its value is validated by the handler.
func isRestock(c *fiber.Ctx) bool {
	return c.Context().QueryArgs().Has("stock")
}

// HandleListProducts returns all products, optionally filtered by category or name.
func (h *ProductHandler) HandleListProducts(c *fiber.Ctx) error {
	log.Println("Request for Product list")
	products, err := h.service.ListProducts(services.ProductFilter{
		Category: c.Query("category"),
		Name:     c.Query("name"),
	})
	if err != nil {
		log.Printf("Error listing products: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve products",
			"error":   err.Error(),
		})
	}
	if products == nil {
		products = []models.Product{}
	}
	return c.JSON(products)
}

// HandleGetProduct returns a single product.
func (h *ProductHandler) HandleGetProduct(c *fiber.Ctx) error {
	id, ok := productID(c)
	if !ok {
		return productNotFound(c)
	}

	product, err := h.service.GetProduct(id)
	if err != nil {
		return h.storeError(c, err, "Could not retrieve product")
	}
	return c.JSON(product)
}

// HandleCreateProduct creates a product from the JSON body and points
// the Location header at it.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	product, err := models.DecodeProduct(c.Body())
	if err != nil {
		return validationFailed(c, err)
	}

	if err := h.service.CreateProduct(product); err != nil {
		log.Printf("Error creating product: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not create product",
			"error":   err.Error(),
		})
	}

	c.Location(fmt.Sprintf("%s/products/%d", c.BaseURL(), product.ID))
	return c.Status(fiber.StatusCreated).JSON(product)
}

// HandleUpdateProduct replaces a product with the JSON body, or restocks it
// when a stock query parameter is given.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	id, ok := productID(c)
	if !ok {
		return productNotFound(c)
	}
	if isRestock(c) {
		return h.handleRestock(c, id)
	}

	existing, err := h.service.FindProduct(id)
	if err != nil {
		return h.storeError(c, err, "Could not retrieve product")
	}
	if existing == nil {
		return productNotFound(c)
	}

	product, err := models.DecodeProduct(c.Body())
	if err != nil {
		return validationFailed(c, err)
	}
	product.ID = existing.ID

	if err := h.service.UpdateProduct(product); err != nil {
		return h.storeError(c, err, "Could not update product")
	}
	return c.JSON(product)
}

func (h *ProductHandler) handleRestock(c *fiber.Ctx, id uint) error {
	quantity, err := strconv.Atoi(c.Query("stock"))
	if err != nil || quantity < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"error":   fmt.Sprintf("stock must be a non-negative integer, got %q", c.Query("stock")),
			"errors":  fiber.Map{"stock": "must be a non-negative integer"},
		})
	}

	product, err := h.service.RestockProduct(id, quantity)
	if err != nil {
		return h.storeError(c, err, "Could not restock product")
	}
	return c.JSON(product)
}

// HandleDeleteProduct deletes a product. It answers 204 whether or not the product existed.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	if id, ok := productID(c); ok {
		if err := h.service.DeleteProduct(id); err != nil {
			log.Printf("Error deleting product %d: %v", id, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Could not delete product",
				"error":   err.Error(),
			})
		}
	}
	return c.Status(fiber.StatusNoContent).Send(nil)
}

func (h *ProductHandler) storeError(c *fiber.Ctx, err error, message string) error {
	if errors.Is(err, repositories.ErrProductNotFound) {
		return productNotFound(c)
	}
	log.Printf("%s %s: %v", message, c.Params("id"), err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": message,
		"error":   err.Error(),
	})
}

// productID parses the :id route parameter. Only positive integers can name a product.
func productID(c *fiber.Ctx) (uint, bool) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func productNotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"message": fmt.Sprintf("Product with id '%s' was not found.", c.Params("id")),
		"error":   "Not Found",
	})
}

func validationFailed(c *fiber.Ctx, err error) error {
	var verr *models.ValidationError
	if !errors.As(err, &verr) {
		log.Printf("Error decoding product: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not decode product",
			"error":   err.Error(),
		})
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Validation failed",
		"error":   verr.Error(),
		"errors":  verr.Fields,
	})
}
