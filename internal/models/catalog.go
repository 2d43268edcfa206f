package models

// Category groups menu items.
type Category struct {
	SerialModel
	Name  string `gorm:"uniqueIndex" json:"name"`
	Image string `json:"image,omitempty"`
	Items []Item `json:"-"`
}

// Item is a dish on the menu.
type Item struct {
	SerialModel
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Price       float64   `json:"price"`
	ItemImage   string    `json:"itemImage,omitempty"`
	CategoryID  uint      `gorm:"index" json:"categoryId"`
	Category    *Category `json:"-"`
}
