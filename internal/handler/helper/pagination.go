package helper

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ParsePagination читает page и page_size из query.
// Некорректные значения заменяются на значения по умолчанию, page_size ограничен 100.
func ParsePagination(c *gin.Context, defaultSize int) (page, pageSize int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	pageSize, err = strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(defaultSize)))
	if err != nil || pageSize < 1 {
		pageSize = defaultSize
	} else if pageSize > 100 {
		pageSize = 100 // Максимальный лимит
	}
	return page, pageSize
}

// OptionalUintQuery читает необязательный положительный числовой параметр query
func OptionalUintQuery(c *gin.Context, name string) (*uint, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || v == 0 {
		return nil, fmt.Errorf("invalid %s", name)
	}
	id := uint(v)
	return &id, nil
}
