package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/falconilham/gym-nexus-sub000/internal/repository"
	"github.com/falconilham/gym-nexus-sub000/internal/service"
	"github.com/falconilham/gym-nexus-sub000/pkg/utils"
)

var errBadRequest = errors.New("bad request")

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
}

// respondError maps service errors to HTTP statuses. Anything unknown is logged and
// hidden behind a 500.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, errBadRequest), errors.Is(err, service.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrConflict), errors.Is(err, service.ErrClassFull):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		utils.Log.Errorf("%s %s: %v", c.Request.Method, c.FullPath(), err)
		c.AbortWithStatusJSON(status, gin.H{"error": "internal server error"})
		return
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

type pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

type pageResponse[T any] struct {
	Data       []*T       `json:"data"`
	Pagination pagination `json:"pagination"`
}

func respondPage[T any](c *gin.Context, res service.PageResult[T]) {
	c.JSON(http.StatusOK, pageResponse[T]{
		Data: res.Items,
		Pagination: pagination{
			Page:       res.Page,
			Limit:      res.Limit,
			Total:      res.Total,
			TotalPages: res.TotalPages,
		},
	})
}

func respondList[T any](c *gin.Context, items []*T) {
	if items == nil {
		items = []*T{}
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}

// bindJSON decodes the body into dst and writes a 400 on failure.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, badRequest("%v", err))
		return false
	}
	return true
}

func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		respondError(c, badRequest("invalid %s", name))
		return 0, false
	}
	return uint(id), true
}

func queryPage(c *gin.Context) (repository.Page, error) {
	var p repository.Page
	var err error
	if p.Page, err = queryInt(c, "page"); err != nil {
		return p, err
	}
	if p.Limit, err = queryInt(c, "limit"); err != nil {
		return p, err
	}
	return p.Normalize(), nil
}

func queryInt(c *gin.Context, key string) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, badRequest("%s must be a non-negative integer", key)
	}
	return v, nil
}

func queryUint(c *gin.Context, key string) (uint, error) {
	v, err := queryInt(c, key)
	return uint(v), err
}

// queryTime accepts YYYY-MM-DD or RFC 3339.
func queryTime(c *gin.Context, key string) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, badRequest("%s must be YYYY-MM-DD or RFC 3339", key)
	}
	t = t.UTC()
	return &t, nil
}

func queryRange(c *gin.Context) (from, to *time.Time, err error) {
	if from, err = queryTime(c, "from"); err != nil {
		return nil, nil, err
	}
	if to, err = queryTime(c, "to"); err != nil {
		return nil, nil, err
	}
	if from != nil && to != nil && !to.After(*from) {
		return nil, nil, badRequest("to must be after from")
	}
	return from, to, nil
}
