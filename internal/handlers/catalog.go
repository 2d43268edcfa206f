package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/foodapp/internal/dto"
	"github.com/example/foodapp/internal/models"
)

// CatalogHandler serves the public menu.
type CatalogHandler struct {
	db *gorm.DB
}

// NewCatalogHandler constructs CatalogHandler.
func NewCatalogHandler(db *gorm.DB) *CatalogHandler {
	return &CatalogHandler{db: db}
}

// ListCategories returns every category.
func (h *CatalogHandler) ListCategories(c *fiber.Ctx) error {
	var categories []models.Category
	if err := h.db.Order("id").Find(&categories).Error; err != nil {
		return err
	}

	out := make([]dto.Category, 0, len(categories))
	for _, cat := range categories {
		out = append(out, dto.Category{ID: idOf(cat.ID), Name: cat.Name, Image: cat.Image})
	}
	return envelope(c, fiber.StatusOK, "", out)
}

// ListItems returns every item with its category name.
func (h *CatalogHandler) ListItems(c *fiber.Ctx) error {
	var items []models.Item
	if err := h.db.Preload("Category").Order("id").Find(&items).Error; err != nil {
		return err
	}
	return envelope(c, fiber.StatusOK, "", toItems(items))
}

// ItemsByCategory returns the items of one category.
func (h *CatalogHandler) ItemsByCategory(c *fiber.Ctx) error {
	categoryID, err := parseID(c, "categoryId")
	if err != nil {
		return err
	}

	var category models.Category
	if err := h.db.First(&category, categoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Category not found")
		}
		return err
	}

	var items []models.Item
	if err := h.db.Where("category_id = ?", categoryID).Order("id").Find(&items).Error; err != nil {
		return err
	}
	for i := range items {
		items[i].Category = &category
	}
	return envelope(c, fiber.StatusOK, "", toItems(items))
}

func toItems(items []models.Item) []dto.Item {
	out := make([]dto.Item, 0, len(items))
	for _, it := range items {
		item := dto.Item{
			ID:          idOf(it.ID),
			Name:        it.Name,
			Description: it.Description,
			Price:       it.Price,
			ItemImage:   it.ItemImage,
			CategoryID:  idOf(it.CategoryID),
		}
		if it.Category != nil {
			item.CategoryName = it.Category.Name
		}
		out = append(out, item)
	}
	return out
}
