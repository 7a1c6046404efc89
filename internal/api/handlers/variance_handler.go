package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prepflow/inventory-intel/internal/domain"
	"github.com/prepflow/inventory-intel/internal/service"
)

type VarianceHandler struct {
	service *service.VarianceService
}

func NewVarianceHandler(service *service.VarianceService) *VarianceHandler {
	return &VarianceHandler{service: service}
}

// varianceReportRequest carries the count cycle to analyze. Counts are
// optional; a request without them uses the stored counts for the period.
type varianceReportRequest struct {
	Period domain.ReportPeriod    `json:"period" binding:"required"`
	Counts []domain.PhysicalCount `json:"counts"`
}

func (r varianceReportRequest) validate() string {
	if r.Period.Start.IsZero() || r.Period.End.IsZero() {
		return "period start and end are required"
	}
	if r.Period.End.Before(r.Period.Start) {
		return "period end precedes start"
	}
	return ""
}

// BuildReport computes the variance report for a count cycle.
func (h *VarianceHandler) BuildReport(c *gin.Context) {
	var req varianceReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid report request: " + err.Error()})
		return
	}
	if msg := req.validate(); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	report, err := h.service.BuildReport(c.Request.Context(), req.Period, req.Counts)
	if err != nil {
		if errors.Is(err, service.ErrNoCounts) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no physical counts for period"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, report)
}

// ExportReport computes the report and renders it as CSV.
func (h *VarianceHandler) ExportReport(c *gin.Context) {
	var req varianceReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid report request: " + err.Error()})
		return
	}
	if msg := req.validate(); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	report, err := h.service.BuildReport(c.Request.Context(), req.Period, req.Counts)
	if err != nil {
		if errors.Is(err, service.ErrNoCounts) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no physical counts for period"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", "attachment; filename=variance_report.csv")
	c.Data(http.StatusOK, "text/csv", []byte(h.service.Export(report)))
}
