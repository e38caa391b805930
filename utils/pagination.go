package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const maxPageSize = 500

// Page is one page of a list endpoint.
type Page[T any] struct {
	Items    []T   `json:"items"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Total    int64 `json:"total"`
	HasNext  bool  `json:"has_next"`
	HasPrev  bool  `json:"has_prev"`
}

type PageRequest struct {
	Page     int
	PageSize int
}

// ParsePageRequest reads page and page_size from the query string.
// Invalid values fall back to page 1 and defaultSize.
func ParsePageRequest(c *gin.Context, defaultSize int) PageRequest {
	req := PageRequest{Page: 1, PageSize: defaultSize}
	if p, err := strconv.Atoi(c.Query("page")); err == nil && p > 0 {
		req.Page = p
	}
	if s, err := strconv.Atoi(c.Query("page_size")); err == nil && s > 0 {
		req.PageSize = s
	}
	if req.PageSize > maxPageSize {
		req.PageSize = maxPageSize
	}
	return req
}

// Paginate counts query and loads the requested page into a Page.
func Paginate[T any](query *gorm.DB, req PageRequest) (Page[T], error) {
	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return Page[T]{}, err
	}

	items := make([]T, 0, req.PageSize)
	offset := (req.Page - 1) * req.PageSize
	if err := query.Session(&gorm.Session{}).Offset(offset).Limit(req.PageSize).Find(&items).Error; err != nil {
		return Page[T]{}, err
	}

	return Page[T]{
		Items:    items,
		Page:     req.Page,
		PageSize: req.PageSize,
		Total:    total,
		HasNext:  int64(offset+len(items)) < total,
		HasPrev:  req.Page > 1,
	}, nil
}
