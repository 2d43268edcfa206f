package dto

type Category struct {
	ID    ID     `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image,omitempty"`
}

type Item struct {
	ID           ID      `json:"id"`
	Name         string  `json:"name"`
	Description  string  `json:"description,omitempty"`
	Price        float64 `json:"price"`
	ItemImage    string  `json:"itemImage,omitempty"`
	CategoryID   ID      `json:"categoryId,omitempty"`
	CategoryName string  `json:"categoryName,omitempty"`
}
