package utils

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

const maxPageSize = 100

// Pagination holds the page window for list endpoints.
type Pagination struct {
	Page   int
	Limit  int
	Offset int
}

// ParsePagination reads page and limit query params. Missing or invalid
// values fall back to page 1 of 20; limit is capped at maxPageSize.
func ParsePagination(c *fiber.Ctx) Pagination {
	page := atoiOr(c.Query("page"), 1)
	limit := atoiOr(c.Query("limit"), 20)
	if page <= 0 {
		page = 1
	}
	switch {
	case limit <= 0:
		limit = 20
	case limit > maxPageSize:
		limit = maxPageSize
	}

	return Pagination{Page: page, Limit: limit, Offset: (page - 1) * limit}
}

func atoiOr(value string, fallback int) int {
	if parsed, err := strconv.Atoi(value); err == nil {
		return parsed
	}
	return fallback
}
