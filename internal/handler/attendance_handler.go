package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-odoo-sync/internal/models"
	appErrors "github.com/noah-isme/sma-odoo-sync/pkg/errors"
	"github.com/noah-isme/sma-odoo-sync/pkg/response"
)

type bulkAttendance interface {
	RegisterBulk(ctx context.Context, in models.BulkStudentAttendance) models.MutationResult
}

// AttendanceHandler registers a whole class in one call.
type AttendanceHandler struct {
	attendance bulkAttendance
}

// NewAttendanceHandler constructs AttendanceHandler.
func NewAttendanceHandler(attendance bulkAttendance) *AttendanceHandler {
	return &AttendanceHandler{attendance: attendance}
}

// Bulk godoc
// @Summary Register attendance for every student of a schedule slot
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body models.BulkStudentAttendance true "Rows"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /attendance/bulk [post]
func (h *AttendanceHandler) Bulk(c *gin.Context) {
	var req models.BulkStudentAttendance
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid attendance payload"))
		return
	}
	res := h.attendance.RegisterBulk(c.Request.Context(), req)
	if !res.Success {
		response.Error(c, mutationError(res))
		return
	}
	response.Created(c, res)
}

func mutationError(res models.MutationResult) error {
	if res.SessionExpired {
		return appErrors.ErrSessionExpired
	}
	return appErrors.Clone(appErrors.ErrBlocked, res.Message)
}
