package api

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
	"github.com/pageza/foodgram/backend/internal/validation"
)

// idParam reads a positive numeric path parameter. Anything else cannot
// name a row, so it is reported as not found.
func idParam(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, service.ErrNotFound
	}
	return uint(id), nil
}

// boolQuery parses "1/0/true/false". Absent parameters return nil.
func boolQuery(c *gin.Context, name string) (*bool, error) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return nil, nil
	}
	switch strings.ToLower(raw) {
	case "1", "true":
		v := true
		return &v, nil
	case "0", "false":
		v := false
		return &v, nil
	}
	return nil, validation.New(name, "Must be 0 or 1.")
}

// Paginator reads page/limit query parameters and builds page envelopes
type Paginator struct {
	DefaultLimit int
	MaxLimit     int
}

// Parse reads page (1-based) and limit. Invalid values fall back to the
// defaults; limit is capped at MaxLimit.
func (p Paginator) Parse(c *gin.Context) types.Pagination {
	page := types.Pagination{Page: 1, Limit: p.DefaultLimit}
	if v, err := strconv.Atoi(c.Query("page")); err == nil && v > 0 {
		page.Page = v
	}
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 {
		page.Limit = v
	}
	if p.MaxLimit > 0 && page.Limit > p.MaxLimit {
		page.Limit = p.MaxLimit
	}
	return page
}

// NewPage wraps results with the total count and links to the neighbouring
// pages of the current request
func NewPage[T any](c *gin.Context, page types.Pagination, total int64, results []T) types.Page[T] {
	if results == nil {
		results = []T{}
	}
	out := types.Page[T]{Count: total, Results: results}
	if int64(page.Page*page.Limit) < total {
		next := pageURL(c, page.Page+1)
		out.Next = &next
	}
	if page.Page > 1 {
		prev := pageURL(c, page.Page-1)
		out.Previous = &prev
	}
	return out
}

func pageURL(c *gin.Context, page int) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	query := c.Request.URL.Query()
	if page <= 1 {
		query.Del("page")
	} else {
		query.Set("page", strconv.Itoa(page))
	}

	u := url.URL{
		Scheme:   scheme,
		Host:     c.Request.Host,
		Path:     c.Request.URL.Path,
		RawQuery: query.Encode(),
	}
	return u.String()
}
