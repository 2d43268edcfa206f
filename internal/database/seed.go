package database

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/example/foodapp/internal/models"
)

type seedCategory struct {
	name  string
	items []models.Item
}

var menu = []seedCategory{
	{"Pizza", []models.Item{
		{Name: "Margherita", Description: "Tomato, mozzarella and basil", Price: 8.99},
		{Name: "Farmhouse", Description: "Onion, capsicum, tomato and mushroom", Price: 10.49},
	}},
	{"Burger", []models.Item{
		{Name: "Classic Veg Burger", Description: "Crispy patty with lettuce", Price: 4.00},
		{Name: "Chicken Burger", Description: "Grilled chicken and cheese", Price: 6.00},
	}},
	{"Biryani", []models.Item{
		{Name: "Veg Biryani", Description: "Basmati rice with vegetables", Price: 8.75},
		{Name: "Chicken Biryani", Description: "Hyderabadi dum biryani", Price: 11.25},
	}},
	{"Desserts", []models.Item{
		{Name: "Gulab Jamun", Description: "Two pieces in syrup", Price: 2.50},
		{Name: "Mango Lassi", Description: "Chilled yoghurt drink", Price: 3.20},
	}},
}

// SeedCatalog fills an empty catalog with a small menu.
func SeedCatalog(conn *gorm.DB, log *zap.Logger) error {
	var count int64
	if err := conn.Model(&models.Category{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count categories: %w", err)
	}
	if count > 0 {
		return nil
	}

	return conn.Transaction(func(tx *gorm.DB) error {
		for _, sc := range menu {
			cat := models.Category{Name: sc.name}
			if err := tx.Create(&cat).Error; err != nil {
				return fmt.Errorf("seed category %s: %w", sc.name, err)
			}
			items := make([]models.Item, len(sc.items))
			copy(items, sc.items)
			for i := range items {
				items[i].CategoryID = cat.ID
			}
			if err := tx.Create(&items).Error; err != nil {
				return fmt.Errorf("seed items of %s: %w", sc.name, err)
			}
		}
		log.Info("seeded catalog", zap.Int("categories", len(menu)))
		return nil
	})
}
