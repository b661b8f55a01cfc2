package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

const maxPageSize = 200

// paginate slices items by the page and limit query parameters. Without a
// limit the whole list is returned as a single page.
func paginate[T any](c *gin.Context, items []T) ([]T, *models.Pagination) {
	total := len(items)
	size := total
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil && limit > 0 {
		size = min(limit, maxPageSize)
	}
	page := 1
	if p, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil && p > 1 {
		page = p
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	if size == 0 {
		return items, pagination
	}

	start := (page - 1) * size
	if start >= total {
		return items[:0], pagination
	}
	end := min(start+size, total)
	return items[start:end], pagination
}
