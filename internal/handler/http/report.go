package http

import (
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/payroll-backend-go/internal/handler/http/response"
)

type ReportHandler interface {
	PayrollSummary(w http.ResponseWriter, r *http.Request)
	DepartmentDistribution(w http.ResponseWriter, r *http.Request)
}

type reportHandlerImpl struct {
	reportService report.ReportService
}

func NewReportHandler(reportService report.ReportService) ReportHandler {
	return &reportHandlerImpl{reportService: reportService}
}

func periodFromQuery(r *http.Request) (int, int, bool) {
	monthStr := r.URL.Query().Get("period_month")
	yearStr := r.URL.Query().Get("period_year")
	if monthStr == "" || yearStr == "" {
		return 0, 0, false
	}

	month, err := strconv.Atoi(monthStr)
	if err != nil {
		return 0, 0, false
	}
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		return 0, 0, false
	}

	return month, year, true
}

func (h *reportHandlerImpl) PayrollSummary(w http.ResponseWriter, r *http.Request) {
	month, year, ok := periodFromQuery(r)
	if !ok {
		response.BadRequest(w, "period_month and period_year are required", nil)
		return
	}

	result, err := h.reportService.PayrollSummary(r.Context(), month, year)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *reportHandlerImpl) DepartmentDistribution(w http.ResponseWriter, r *http.Request) {
	month, year, ok := periodFromQuery(r)
	if !ok {
		response.BadRequest(w, "period_month and period_year are required", nil)
		return
	}

	result, err := h.reportService.DepartmentDistribution(r.Context(), month, year)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
