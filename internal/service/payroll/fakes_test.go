package payroll

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/leave"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

// fakePayrollRepo keeps payroll state in memory and enforces the same
// status checks the PostgreSQL repository does.
type fakePayrollRepo struct {
	mu          sync.Mutex
	seq         int
	periods     map[string]payroll.PayrollPeriod
	allowances  []payroll.AllowanceType
	deductions  []payroll.DeductionType
	contracts   map[string][]payroll.SalaryContract
	payslips    map[payroll.PayslipKey]payroll.Payslip
	adjustments map[string]payroll.PayrollAdjustment
	saves       int

	// beforeApprove runs ahead of ApproveAdjustment, outside the lock.
	beforeApprove func()
}

func newFakePayrollRepo() *fakePayrollRepo {
	return &fakePayrollRepo{
		periods:     make(map[string]payroll.PayrollPeriod),
		contracts:   make(map[string][]payroll.SalaryContract),
		payslips:    make(map[payroll.PayslipKey]payroll.Payslip),
		adjustments: make(map[string]payroll.PayrollAdjustment),
	}
}

func (r *fakePayrollRepo) nextID(prefix string) string {
	r.seq++
	return fmt.Sprintf("%s-%d", prefix, r.seq)
}

func (r *fakePayrollRepo) CreatePeriod(ctx context.Context, period payroll.PayrollPeriod) (payroll.PayrollPeriod, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.periods {
		if p.Year == period.Year && p.Month == period.Month {
			return payroll.PayrollPeriod{}, payroll.ErrPeriodAlreadyExists
		}
	}
	period.ID = r.nextID("period")
	period.Status = payroll.PeriodStatusDraft
	r.periods[period.ID] = period
	return period, nil
}

func (r *fakePayrollRepo) GetPeriodByID(ctx context.Context, id string) (payroll.PayrollPeriod, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.periods[id]
	if !ok {
		return payroll.PayrollPeriod{}, payroll.ErrPeriodNotFound
	}
	return p, nil
}

func (r *fakePayrollRepo) GetPeriodByYearMonth(ctx context.Context, year, month int) (payroll.PayrollPeriod, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.periods {
		if p.Year == year && p.Month == month {
			return p, nil
		}
	}
	return payroll.PayrollPeriod{}, payroll.ErrPeriodNotFound
}

func (r *fakePayrollRepo) ListPeriods(ctx context.Context, filter payroll.PeriodFilter) ([]payroll.PayrollPeriod, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]payroll.PayrollPeriod, 0)
	for _, p := range r.periods {
		if filter.Year != nil && p.Year != *filter.Year {
			continue
		}
		if filter.Status != nil && p.Status != *filter.Status {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year*100+out[i].Month > out[j].Year*100+out[j].Month })
	return out, nil
}

func (r *fakePayrollRepo) TransitionPeriod(ctx context.Context, id string, rule payroll.TransitionRule, stamp payroll.TransitionStamp) (payroll.PayrollPeriod, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.periods[id]
	if !ok {
		return payroll.PayrollPeriod{}, payroll.ErrPeriodNotFound
	}
	if err := rule.Check(p.Status); err != nil {
		return payroll.PayrollPeriod{}, err
	}
	p.Status = rule.To
	if rule.Transition == payroll.TransitionApprove {
		now := time.Now()
		p.ApprovedBy, p.ApprovedAt = stamp.ActorID, &now
	}
	r.periods[id] = p

	if rule.PayslipStatus != nil {
		for key, ps := range r.payslips {
			if key.PeriodID != id {
				continue
			}
			ps.Status = *rule.PayslipStatus
			if stamp.PaymentDate != nil {
				ps.PaymentDate = stamp.PaymentDate
			}
			if stamp.PaymentMethod != nil {
				ps.PaymentMethod = stamp.PaymentMethod
			}
			r.payslips[key] = ps
		}
	}
	return p, nil
}

func (r *fakePayrollRepo) RecomputePeriodTotals(ctx context.Context, periodID string) (payroll.PayrollPeriod, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.recomputeTotalsLocked(periodID)
}

func (r *fakePayrollRepo) recomputeTotalsLocked(periodID string) (payroll.PayrollPeriod, error) {
	p, ok := r.periods[periodID]
	if !ok {
		return payroll.PayrollPeriod{}, payroll.ErrPeriodNotFound
	}
	p.TotalGross, p.TotalDeductions, p.TotalNet, p.EmployeeCount = decimal.Zero, decimal.Zero, decimal.Zero, 0
	for key, ps := range r.payslips {
		if key.PeriodID != periodID {
			continue
		}
		p.TotalGross = p.TotalGross.Add(ps.GrossSalary)
		p.TotalDeductions = p.TotalDeductions.Add(ps.TotalDeductions)
		p.TotalNet = p.TotalNet.Add(ps.NetSalary)
		p.EmployeeCount++
	}
	r.periods[periodID] = p
	return p, nil
}

func (r *fakePayrollRepo) ListAllowanceTypes(ctx context.Context) ([]payroll.AllowanceType, error) {
	return r.allowances, nil
}

func (r *fakePayrollRepo) ListDeductionTypes(ctx context.Context) ([]payroll.DeductionType, error) {
	return r.deductions, nil
}

func (r *fakePayrollRepo) CreateContract(ctx context.Context, contract payroll.SalaryContract) (payroll.SalaryContract, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	contract.ID = r.nextID("contract")
	contract.CreatedAt = time.Now()
	r.contracts[contract.EmployeeID] = append(r.contracts[contract.EmployeeID], contract)
	return contract, nil
}

func (r *fakePayrollRepo) ListContractsByEmployee(ctx context.Context, employeeID string) ([]payroll.SalaryContract, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]payroll.SalaryContract, len(r.contracts[employeeID]))
	copy(out, r.contracts[employeeID])
	return out, nil
}

func (r *fakePayrollRepo) SavePayslip(ctx context.Context, key payroll.PayslipKey, build payroll.PayslipBuilder) (payroll.Payslip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.savePayslipLocked(key, build)
}

func (r *fakePayrollRepo) savePayslipLocked(key payroll.PayslipKey, build payroll.PayslipBuilder) (payroll.Payslip, error) {
	period, ok := r.periods[key.PeriodID]
	if !ok {
		return payroll.Payslip{}, payroll.ErrPeriodNotFound
	}
	if !period.Status.CanRecalculate() {
		return payroll.Payslip{}, payroll.ErrPeriodNotCalculating
	}

	existing, exists := r.payslips[key]
	approved := make([]payroll.PayrollAdjustment, 0)
	if exists {
		for _, adj := range r.adjustments {
			if adj.PayslipID == existing.ID && adj.IsApproved() {
				approved = append(approved, adj)
			}
		}
	}

	p, err := build(approved)
	if err != nil {
		return payroll.Payslip{}, err
	}
	p.PeriodID, p.EmployeeID = key.PeriodID, key.EmployeeID
	if exists {
		p.ID = existing.ID
	} else {
		p.ID = r.nextID("payslip")
	}
	for i := range p.Allowances {
		p.Allowances[i].PayslipID = p.ID
	}
	for i := range p.Deductions {
		p.Deductions[i].PayslipID = p.ID
	}
	r.payslips[key] = p
	r.saves++
	return p, nil
}

func (r *fakePayrollRepo) GetPayslipByID(ctx context.Context, id string) (payroll.Payslip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.payslips {
		if p.ID == id {
			return p, nil
		}
	}
	return payroll.Payslip{}, payroll.ErrPayslipNotFound
}

func (r *fakePayrollRepo) ListPayslipsByPeriod(ctx context.Context, periodID string) ([]payroll.Payslip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]payroll.Payslip, 0)
	for key, p := range r.payslips {
		if key.PeriodID == periodID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EmployeeID < out[j].EmployeeID })
	return out, nil
}

func (r *fakePayrollRepo) CreateAdjustment(ctx context.Context, adjustment payroll.PayrollAdjustment) (payroll.PayrollAdjustment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	adjustment.ID = r.nextID("adjustment")
	adjustment.CreatedAt = time.Now()
	r.adjustments[adjustment.ID] = adjustment
	return adjustment, nil
}

func (r *fakePayrollRepo) GetAdjustmentByID(ctx context.Context, id string) (payroll.PayrollAdjustment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	adj, ok := r.adjustments[id]
	if !ok {
		return payroll.PayrollAdjustment{}, payroll.ErrAdjustmentNotFound
	}
	return adj, nil
}

// ApproveAdjustment mirrors the transactional repository: the stamp is
// undone when the payslip cannot be rebuilt.
func (r *fakePayrollRepo) ApproveAdjustment(ctx context.Context, id string, approvedBy string, key payroll.PayslipKey, build payroll.PayslipBuilder) (payroll.PayrollAdjustment, payroll.Payslip, error) {
	if r.beforeApprove != nil {
		r.beforeApprove()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	adj, ok := r.adjustments[id]
	if !ok {
		return payroll.PayrollAdjustment{}, payroll.Payslip{}, payroll.ErrAdjustmentNotFound
	}
	if adj.IsApproved() {
		return payroll.PayrollAdjustment{}, payroll.Payslip{}, payroll.ErrAdjustmentAlreadyApproved
	}

	pending := adj
	now := time.Now()
	adj.ApprovedBy, adj.ApprovedAt = &approvedBy, &now
	r.adjustments[id] = adj

	p, err := r.savePayslipLocked(key, build)
	if err == nil && p.ID != adj.PayslipID {
		err = fmt.Errorf("adjustment %s does not belong to payslip %s", id, p.ID)
	}
	if err != nil {
		r.adjustments[id] = pending
		return payroll.PayrollAdjustment{}, payroll.Payslip{}, err
	}
	if _, err := r.recomputeTotalsLocked(key.PeriodID); err != nil {
		r.adjustments[id] = pending
		return payroll.PayrollAdjustment{}, payroll.Payslip{}, err
	}
	return adj, p, nil
}

func (r *fakePayrollRepo) ListAdjustmentsByPayslip(ctx context.Context, payslipID string) ([]payroll.PayrollAdjustment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]payroll.PayrollAdjustment, 0)
	for _, adj := range r.adjustments {
		if adj.PayslipID == payslipID {
			out = append(out, adj)
		}
	}
	return out, nil
}

type fakeEmployeeRepo struct {
	employees []employee.Employee
}

func (r *fakeEmployeeRepo) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	for _, e := range r.employees {
		if e.ID == id {
			return e, nil
		}
	}
	return employee.Employee{}, employee.ErrEmployeeNotFound
}

func (r *fakeEmployeeRepo) ListActive(ctx context.Context) ([]employee.Employee, error) {
	out := make([]employee.Employee, 0)
	for _, e := range r.employees {
		if e.IsActive() {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeAttendanceRepo struct {
	records  map[string][]attendance.Attendance
	failFor  map[string]error
	panicFor map[string]bool
}

func (r *fakeAttendanceRepo) ListByEmployeeAndRange(ctx context.Context, employeeID string, start, end time.Time) ([]attendance.Attendance, error) {
	if r.panicFor[employeeID] {
		panic("attendance store exploded")
	}
	if err := r.failFor[employeeID]; err != nil {
		return nil, err
	}
	return r.records[employeeID], nil
}

type fakeLeaveRepo struct {
	requests map[string][]leave.LeaveRequest
}

func (r *fakeLeaveRepo) ListApprovedOverlapping(ctx context.Context, employeeID string, start, end time.Time) ([]leave.LeaveRequest, error) {
	return r.requests[employeeID], nil
}
