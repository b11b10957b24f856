// README: Monthly report handler.
package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"cabbook/internal/modules/report"
)

type ReportHandler struct {
	reports *report.Service
	log     *slog.Logger
}

func NewReportHandler(svc *report.Service, log *slog.Logger) *ReportHandler {
	return &ReportHandler{reports: svc, log: log}
}

// Monthly serves GET /api/bookings/:id/:month. gin allows one wildcard name per
// segment, so the year arrives in :id.
func (h *ReportHandler) Monthly(c *gin.Context) {
	year, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		writeFail(c, http.StatusBadRequest, "year must be a number")
		return
	}
	month, err := strconv.Atoi(c.Param("month"))
	if err != nil {
		writeFail(c, http.StatusBadRequest, "month must be a number")
		return
	}
	res, err := h.reports.GenerateMonthly(c.Request.Context(), year, month)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+res.FileName)
	writeOK(c, "CSV file generated successfully", res)
}
