package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type PayrollHandler interface {
	// Periods
	CreatePeriod(w http.ResponseWriter, r *http.Request)
	GetPeriod(w http.ResponseWriter, r *http.Request)
	ListPeriods(w http.ResponseWriter, r *http.Request)

	// Workflow
	StartCalculation(w http.ResponseWriter, r *http.Request)
	SubmitForApproval(w http.ResponseWriter, r *http.Request)
	Approve(w http.ResponseWriter, r *http.Request)
	MarkAsPaid(w http.ResponseWriter, r *http.Request)
	ClosePeriod(w http.ResponseWriter, r *http.Request)

	// Calculation
	CalculatePeriod(w http.ResponseWriter, r *http.Request)
	CalculateEmployee(w http.ResponseWriter, r *http.Request)
	RunCalculation(w http.ResponseWriter, r *http.Request)

	// Payslips
	ListPayslips(w http.ResponseWriter, r *http.Request)
	GetPayslip(w http.ResponseWriter, r *http.Request)

	// Adjustments
	CreateAdjustment(w http.ResponseWriter, r *http.Request)
	ApproveAdjustment(w http.ResponseWriter, r *http.Request)

	// Salary contracts
	CreateContract(w http.ResponseWriter, r *http.Request)
	ListContracts(w http.ResponseWriter, r *http.Request)
	GetActiveContract(w http.ResponseWriter, r *http.Request)
}

type payrollHandlerImpl struct {
	payrollService payroll.PayrollService
}

func NewPayrollHandler(payrollService payroll.PayrollService) PayrollHandler {
	return &payrollHandlerImpl{payrollService: payrollService}
}

// ========== PERIODS ==========

func (h *payrollHandlerImpl) CreatePeriod(w http.ResponseWriter, r *http.Request) {
	var req payroll.CreatePeriodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.payrollService.CreatePeriod(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Payroll period created", result)
}

func (h *payrollHandlerImpl) GetPeriod(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Period ID is required", nil)
		return
	}

	result, err := h.payrollService.GetPeriod(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) ListPeriods(w http.ResponseWriter, r *http.Request) {
	var filter payroll.PeriodFilter

	if yearStr := r.URL.Query().Get("year"); yearStr != "" {
		year, err := strconv.Atoi(yearStr)
		if err != nil {
			response.BadRequest(w, "Invalid year", nil)
			return
		}
		filter.Year = &year
	}
	if statusStr := r.URL.Query().Get("status"); statusStr != "" {
		status := payroll.PeriodStatus(statusStr)
		if !status.IsValid() {
			response.BadRequest(w, "Invalid status", nil)
			return
		}
		filter.Status = &status
	}

	result, err := h.payrollService.ListPeriods(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.List(w, result)
}

// ========== WORKFLOW ==========

func (h *payrollHandlerImpl) StartCalculation(w http.ResponseWriter, r *http.Request) {
	result, err := h.payrollService.StartCalculation(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll calculation started", result)
}

func (h *payrollHandlerImpl) SubmitForApproval(w http.ResponseWriter, r *http.Request) {
	result, err := h.payrollService.SubmitForApproval(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll submitted for approval", result)
}

func (h *payrollHandlerImpl) Approve(w http.ResponseWriter, r *http.Request) {
	result, err := h.payrollService.Approve(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll approved", result)
}

func (h *payrollHandlerImpl) MarkAsPaid(w http.ResponseWriter, r *http.Request) {
	var req payroll.MarkAsPaidRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, "Invalid request body", nil)
			return
		}
	}

	result, err := h.payrollService.MarkAsPaid(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll marked as paid", result)
}

func (h *payrollHandlerImpl) ClosePeriod(w http.ResponseWriter, r *http.Request) {
	result, err := h.payrollService.ClosePeriod(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll period closed", result)
}

// ========== CALCULATION ==========

func (h *payrollHandlerImpl) CalculatePeriod(w http.ResponseWriter, r *http.Request) {
	result, err := h.payrollService.CalculatePeriod(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) CalculateEmployee(w http.ResponseWriter, r *http.Request) {
	result, err := h.payrollService.CalculateEmployee(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "employeeID"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) RunCalculation(w http.ResponseWriter, r *http.Request) {
	result, err := h.payrollService.RunCalculation(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ========== PAYSLIPS ==========

func (h *payrollHandlerImpl) ListPayslips(w http.ResponseWriter, r *http.Request) {
	result, err := h.payrollService.ListPayslips(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.List(w, result)
}

func (h *payrollHandlerImpl) GetPayslip(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Payslip ID is required", nil)
		return
	}

	result, err := h.payrollService.GetPayslip(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ========== ADJUSTMENTS ==========

func (h *payrollHandlerImpl) CreateAdjustment(w http.ResponseWriter, r *http.Request) {
	var req payroll.CreateAdjustmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.payrollService.CreateAdjustment(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Payroll adjustment created", result)
}

func (h *payrollHandlerImpl) ApproveAdjustment(w http.ResponseWriter, r *http.Request) {
	result, err := h.payrollService.ApproveAdjustment(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll adjustment approved", result)
}

// ========== SALARY CONTRACTS ==========

func (h *payrollHandlerImpl) CreateContract(w http.ResponseWriter, r *http.Request) {
	var req payroll.CreateContractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.payrollService.CreateContract(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Salary contract created", result)
}

func (h *payrollHandlerImpl) ListContracts(w http.ResponseWriter, r *http.Request) {
	result, err := h.payrollService.ListContracts(r.Context(), chi.URLParam(r, "employeeID"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.List(w, result)
}

func (h *payrollHandlerImpl) GetActiveContract(w http.ResponseWriter, r *http.Request) {
	asOf := time.Now()
	if dateStr := r.URL.Query().Get("date"); dateStr != "" {
		parsed, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			response.BadRequest(w, "Invalid date format, use YYYY-MM-DD", nil)
			return
		}
		asOf = parsed
	}

	result, err := h.payrollService.GetActiveContract(r.Context(), chi.URLParam(r, "employeeID"), asOf)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
