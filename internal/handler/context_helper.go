package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/sma-odoo-sync/pkg/errors"
)

func idParam(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "id must be a positive integer")
	}
	return id, nil
}

// pageQuery returns the requested page, or zero when absent.
func pageQuery(c *gin.Context) (int, error) {
	raw := c.Query("page")
	if raw == "" {
		return 0, nil
	}
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "page must be a positive integer")
	}
	return page, nil
}
