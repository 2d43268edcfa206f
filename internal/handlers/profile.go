package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/foodapp/internal/dto"
	"github.com/example/foodapp/internal/models"
	"github.com/example/foodapp/internal/utils"
)

// ProfileHandler manages the customer profile and saved addresses.
type ProfileHandler struct {
	db *gorm.DB
}

// NewProfileHandler constructs ProfileHandler.
func NewProfileHandler(db *gorm.DB) *ProfileHandler {
	return &ProfileHandler{db: db}
}

func toAddress(a models.CustomerAddress) dto.Address {
	return dto.Address{
		ID:          idOf(a.ID),
		AddressType: a.AddressType,
		Street:      a.Street,
		City:        a.City,
		State:       a.State,
		PostalCode:  a.PostalCode,
		Landmark:    a.Landmark,
		Latitude:    a.Latitude,
		Longitude:   a.Longitude,
		IsDefault:   a.IsDefault,
	}
}

// GetProfile returns the profile unwrapped, together with the saved
// addresses and order counters.
func (h *ProfileHandler) GetProfile(c *fiber.Ctx) error {
	customerID, err := currentCustomer(c)
	if err != nil {
		return err
	}

	var customer models.Customer
	if err := h.db.Preload("Addresses", func(db *gorm.DB) *gorm.DB {
		return db.Order("id")
	}).First(&customer, "id = ?", customerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Customer not found")
		}
		return err
	}

	counts, err := h.orderCounts(customerID)
	if err != nil {
		return err
	}

	profile := dto.Profile{
		FullName:              customer.FullName,
		Email:                 customer.Email,
		Mobile:                customer.Mobile,
		Addresses:             make([]dto.Address, 0, len(customer.Addresses)),
		ProcessingOrdersCount: int(counts[models.OrderStatusProcessing]),
		DeliveredOrdersCount:  int(counts[models.OrderStatusDelivered]),
	}
	for _, a := range customer.Addresses {
		profile.Addresses = append(profile.Addresses, toAddress(a))
	}
	return c.JSON(profile)
}

func (h *ProfileHandler) orderCounts(customerID uuid.UUID) (map[string]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	if err := h.db.Model(&models.Order{}).
		Select("status, count(*) as count").
		Where("customer_id = ?", customerID).
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.Status] = r.Count
	}
	return out, nil
}

// UpdateProfile replaces the name and email.
func (h *ProfileHandler) UpdateProfile(c *fiber.Ctx) error {
	customerID, err := currentCustomer(c)
	if err != nil {
		return err
	}

	var req dto.ProfileUpdate
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = strings.TrimSpace(req.Email)

	switch {
	case req.FullName == "":
		return fiber.NewError(fiber.StatusBadRequest, "Full name is required")
	case req.Email == "":
		return fiber.NewError(fiber.StatusBadRequest, "Email is required")
	case !utils.ValidEmail(req.Email):
		return fiber.NewError(fiber.StatusBadRequest, "Please enter a valid email")
	}

	res := h.db.Model(&models.Customer{}).Where("id = ?", customerID).Updates(map[string]any{
		"full_name": req.FullName,
		"email":     req.Email,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, "Customer not found")
	}
	return envelope(c, fiber.StatusOK, "Profile updated successfully", nil)
}

// ListAddresses returns the saved addresses, default first.
func (h *ProfileHandler) ListAddresses(c *fiber.Ctx) error {
	customerID, err := currentCustomer(c)
	if err != nil {
		return err
	}

	var addresses []models.CustomerAddress
	if err := h.db.Where("customer_id = ?", customerID).
		Order("is_default desc, id").
		Find(&addresses).Error; err != nil {
		return err
	}

	out := make([]dto.Address, 0, len(addresses))
	for _, a := range addresses {
		out = append(out, toAddress(a))
	}
	return envelope(c, fiber.StatusOK, "", out)
}

func validateAddress(a dto.Address) error {
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"addressType", a.AddressType},
		{"street", a.Street},
		{"city", a.City},
		{"state", a.State},
		{"postalCode", a.PostalCode},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return fiber.NewError(fiber.StatusBadRequest, "missing required fields: "+strings.Join(missing, ", "))
	}
	return nil
}

func addressColumns(a dto.Address) map[string]any {
	return map[string]any{
		"address_type": strings.TrimSpace(a.AddressType),
		"street":       strings.TrimSpace(a.Street),
		"city":         strings.TrimSpace(a.City),
		"state":        strings.TrimSpace(a.State),
		"postal_code":  strings.TrimSpace(a.PostalCode),
		"landmark":     strings.TrimSpace(a.Landmark),
		"latitude":     a.Latitude,
		"longitude":    a.Longitude,
		"is_default":   a.IsDefault,
	}
}

// clearDefault unsets the default flag on every other address.
func clearDefault(tx *gorm.DB, customerID uuid.UUID, keep uint) error {
	return tx.Model(&models.CustomerAddress{}).
		Where("customer_id = ? AND id <> ? AND is_default", customerID, keep).
		Update("is_default", false).Error
}

// CreateAddress saves a new address. The first address becomes the default.
func (h *ProfileHandler) CreateAddress(c *fiber.Ctx) error {
	customerID, err := currentCustomer(c)
	if err != nil {
		return err
	}

	var req dto.Address
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validateAddress(req); err != nil {
		return err
	}

	address := models.CustomerAddress{
		CustomerID:  customerID,
		AddressType: strings.TrimSpace(req.AddressType),
		Street:      strings.TrimSpace(req.Street),
		City:        strings.TrimSpace(req.City),
		State:       strings.TrimSpace(req.State),
		PostalCode:  strings.TrimSpace(req.PostalCode),
		Landmark:    strings.TrimSpace(req.Landmark),
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		IsDefault:   req.IsDefault,
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&models.CustomerAddress{}).Where("customer_id = ?", customerID).Count(&existing).Error; err != nil {
			return err
		}
		if existing == 0 {
			address.IsDefault = true
		}
		if err := tx.Create(&address).Error; err != nil {
			return err
		}
		if address.IsDefault {
			return clearDefault(tx, customerID, address.ID)
		}
		return nil
	})
	if err != nil {
		return err
	}
	return envelope(c, fiber.StatusCreated, "Address added successfully", toAddress(address))
}

// UpdateAddress replaces an address owned by the customer.
func (h *ProfileHandler) UpdateAddress(c *fiber.Ctx) error {
	customerID, err := currentCustomer(c)
	if err != nil {
		return err
	}
	addressID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req dto.Address
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validateAddress(req); err != nil {
		return err
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.CustomerAddress{}).
			Where("id = ? AND customer_id = ?", addressID, customerID).
			Updates(addressColumns(req))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fiber.NewError(fiber.StatusNotFound, "Address not found")
		}
		if req.IsDefault {
			return clearDefault(tx, customerID, addressID)
		}
		return nil
	})
	if err != nil {
		return err
	}
	return envelope(c, fiber.StatusOK, "Address updated successfully", nil)
}

// DeleteAddress removes an address owned by the customer.
func (h *ProfileHandler) DeleteAddress(c *fiber.Ctx) error {
	customerID, err := currentCustomer(c)
	if err != nil {
		return err
	}
	addressID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	res := h.db.Where("id = ? AND customer_id = ?", addressID, customerID).Delete(&models.CustomerAddress{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, "Address not found")
	}
	return envelope(c, fiber.StatusOK, "Address deleted successfully", nil)
}
