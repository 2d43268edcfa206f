package handlers

import (
	"errors"
	"math"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/foodapp/internal/dto"
	"github.com/example/foodapp/internal/models"
)

// CartHandler manages the customer's cart. Cart lines are addressed by the
// menu item id.
type CartHandler struct {
	db *gorm.DB
}

// NewCartHandler constructs CartHandler.
func NewCartHandler(db *gorm.DB) *CartHandler {
	return &CartHandler{db: db}
}

// cartFor returns the customer's cart, creating it on first use.
func cartFor(tx *gorm.DB, customerID uuid.UUID) (*models.Cart, error) {
	cart := models.Cart{CustomerID: customerID}
	if err := tx.Where(models.Cart{CustomerID: customerID}).FirstOrCreate(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

// loadCart returns the cart with its lines and their items.
func loadCart(tx *gorm.DB, customerID uuid.UUID) (*models.Cart, error) {
	cart, err := cartFor(tx, customerID)
	if err != nil {
		return nil, err
	}
	if err := tx.Preload("Item").Where("cart_id = ?", cart.ID).Order("id").Find(&cart.Items).Error; err != nil {
		return nil, err
	}
	return cart, nil
}

func cartValue(cart *models.Cart) float64 {
	var total float64
	for _, line := range cart.Items {
		if line.Item != nil {
			total += line.Item.Price * float64(line.Quantity)
		}
	}
	return math.Round(total*100) / 100
}

// GetCart returns the cart with server-computed totals.
func (h *CartHandler) GetCart(c *fiber.Ctx) error {
	customerID, err := currentCustomer(c)
	if err != nil {
		return err
	}

	cart, err := loadCart(h.db, customerID)
	if err != nil {
		return err
	}
	var customer models.Customer
	if err := h.db.First(&customer, "id = ?", customerID).Error; err != nil {
		return err
	}

	out := dto.Cart{
		ID:           idOf(cart.ID),
		CustomerName: customer.FullName,
		CartValue:    cartValue(cart),
		Items:        make([]dto.CartItem, 0, len(cart.Items)),
	}
	for _, line := range cart.Items {
		if line.Item == nil {
			continue
		}
		out.Items = append(out.Items, dto.CartItem{
			ID:            idOf(line.ItemID),
			Name:          line.Item.Name,
			Price:         line.Item.Price,
			OrderQuantity: line.Quantity,
			ItemImage:     line.Item.ItemImage,
		})
	}
	return envelope(c, fiber.StatusOK, "", out)
}

// UpdateCartItem sets the quantity of a line.
func (h *CartHandler) UpdateCartItem(c *fiber.Ctx) error {
	customerID, err := currentCustomer(c)
	if err != nil {
		return err
	}
	itemID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	quantity, err := strconv.Atoi(c.Query("quantity"))
	if err != nil || quantity < 1 {
		return fiber.NewError(fiber.StatusBadRequest, "Quantity must be at least 1")
	}

	cart, err := cartFor(h.db, customerID)
	if err != nil {
		return err
	}
	res := h.db.Model(&models.CartItem{}).
		Where("cart_id = ? AND item_id = ?", cart.ID, itemID).
		Update("quantity", quantity)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, "Item not in cart")
	}
	return envelope(c, fiber.StatusOK, "Cart updated", nil)
}

// RemoveProduct deletes a line.
func (h *CartHandler) RemoveProduct(c *fiber.Ctx) error {
	customerID, err := currentCustomer(c)
	if err != nil {
		return err
	}
	itemID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	cart, err := cartFor(h.db, customerID)
	if err != nil {
		return err
	}
	res := h.db.Where("cart_id = ? AND item_id = ?", cart.ID, itemID).Delete(&models.CartItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, "Item not in cart")
	}
	return envelope(c, fiber.StatusOK, "Item removed", nil)
}

// AddProduct adds one unit of a menu item.
func (h *CartHandler) AddProduct(c *fiber.Ctx) error {
	customerID, err := currentCustomer(c)
	if err != nil {
		return err
	}
	itemID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var item models.Item
	if err := h.db.First(&item, itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Item not found")
		}
		return err
	}

	cart, err := cartFor(h.db, customerID)
	if err != nil {
		return err
	}
	line := models.CartItem{CartID: cart.ID, ItemID: item.ID, Quantity: 1}
	if err := h.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "cart_id"}, {Name: "item_id"}},
		DoUpdates: clause.Assignments(map[string]any{"quantity": gorm.Expr("cart_items.quantity + 1")}),
	}).Create(&line).Error; err != nil {
		return err
	}
	return envelope(c, fiber.StatusOK, "Item added to cart", nil)
}
