package handlers

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"tharo/api/models"
	"tharo/api/store"
	"tharo/api/utils"
)

type ProductHandlers struct {
	ProductStore *store.ProductStore
}

func NewProductHandlers(s *store.ProductStore) *ProductHandlers {
	return &ProductHandlers{ProductStore: s}
}

func (h *ProductHandlers) ListProducts(c *gin.Context) {
	// Slug lookup for product detail pages.
	if slug := c.Query("slug"); slug != "" {
		product, err := h.ProductStore.GetProductBySlug(c.Request.Context(), slug)
		if err != nil {
			if strings.Contains(err.Error(), "not found") {
				c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
				return
			}
			log.Printf("Error getting product by slug %s: %v", slug, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get product"})
			return
		}
		c.JSON(http.StatusOK, product)
		return
	}

	// The public storefront only sees active products; admins pass all=true.
	activeOnly := c.Query("all") != "true"

	products, err := h.ProductStore.ListProducts(c.Request.Context(), activeOnly)
	if err != nil {
		log.Printf("Error listing products: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list products"})
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *ProductHandlers) GetProduct(c *gin.Context) {
	id := c.Param("id")
	product, err := h.ProductStore.GetProductByID(c.Request.Context(), id)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		log.Printf("Error getting product %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get product"})
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *ProductHandlers) CreateProduct(c *gin.Context) {
	var in models.ProductInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	id := utils.NewID(time.Now())
	product, err := h.ProductStore.CreateProduct(c.Request.Context(), id, in)
	if err != nil {
		log.Printf("Error creating product: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
		return
	}
	c.JSON(http.StatusCreated, product)
}

func (h *ProductHandlers) UpdateProduct(c *gin.Context) {
	var in models.ProductInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	id := c.Param("id")
	product, err := h.ProductStore.UpdateProduct(c.Request.Context(), id, in)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		log.Printf("Error updating product %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product"})
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *ProductHandlers) DeleteProduct(c *gin.Context) {
	id := c.Param("id")
	if err := h.ProductStore.DeleteProduct(c.Request.Context(), id); err != nil {
		if strings.Contains(err.Error(), "not found") {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		log.Printf("Error deleting product %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete product"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
}
