package payroll

import (
	"context"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
)

// transition fires t on the period. The repository re-checks the source
// status atomically, so two concurrent calls cannot both succeed.
func (s *PayrollServiceImpl) transition(ctx context.Context, id string, t payroll.Transition, stamp payroll.TransitionStamp) (payroll.PayrollPeriod, error) {
	rule, err := payroll.RuleFor(t)
	if err != nil {
		return payroll.PayrollPeriod{}, err
	}

	current, err := s.payrollRepo.GetPeriodByID(ctx, id)
	if err != nil {
		return payroll.PayrollPeriod{}, err
	}
	if err := rule.Check(current.Status); err != nil {
		return payroll.PayrollPeriod{}, err
	}

	p, err := s.payrollRepo.TransitionPeriod(ctx, id, rule, stamp)
	if err != nil {
		return payroll.PayrollPeriod{}, err
	}

	s.logger.InfoContext(ctx, "payroll period transitioned",
		"period_id", id, "transition", t, "from", rule.From, "to", rule.To)
	return p, nil
}

func (s *PayrollServiceImpl) StartCalculation(ctx context.Context, id string) (payroll.PeriodResponse, error) {
	p, err := s.transition(ctx, id, payroll.TransitionStartCalculation, payroll.TransitionStamp{})
	if err != nil {
		return payroll.PeriodResponse{}, err
	}
	return payroll.NewPeriodResponse(p), nil
}

func (s *PayrollServiceImpl) SubmitForApproval(ctx context.Context, id string) (payroll.PeriodResponse, error) {
	p, err := s.transition(ctx, id, payroll.TransitionSubmitForApproval, payroll.TransitionStamp{})
	if err != nil {
		return payroll.PeriodResponse{}, err
	}
	return payroll.NewPeriodResponse(p), nil
}

func (s *PayrollServiceImpl) Approve(ctx context.Context, id string) (payroll.PeriodResponse, error) {
	actor, err := getActorFromContext(ctx)
	if err != nil {
		return payroll.PeriodResponse{}, err
	}

	p, err := s.transition(ctx, id, payroll.TransitionApprove, payroll.TransitionStamp{ActorID: &actor})
	if err != nil {
		return payroll.PeriodResponse{}, err
	}
	return payroll.NewPeriodResponse(p), nil
}

func (s *PayrollServiceImpl) MarkAsPaid(ctx context.Context, id string, req payroll.MarkAsPaidRequest) (payroll.PeriodResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.PeriodResponse{}, err
	}

	current, err := s.payrollRepo.GetPeriodByID(ctx, id)
	if err != nil {
		return payroll.PeriodResponse{}, err
	}

	paymentDate := current.PaymentDate
	if req.PaymentDate != nil {
		paymentDate, _ = time.Parse("2006-01-02", *req.PaymentDate)
	}
	method := payroll.PaymentMethodBankTransfer
	if req.PaymentMethod != nil {
		method = payroll.PaymentMethod(*req.PaymentMethod)
	}

	p, err := s.transition(ctx, id, payroll.TransitionMarkAsPaid, payroll.TransitionStamp{
		PaymentDate:   &paymentDate,
		PaymentMethod: &method,
	})
	if err != nil {
		return payroll.PeriodResponse{}, err
	}
	return payroll.NewPeriodResponse(p), nil
}

func (s *PayrollServiceImpl) ClosePeriod(ctx context.Context, id string) (payroll.PeriodResponse, error) {
	p, err := s.transition(ctx, id, payroll.TransitionClosePeriod, payroll.TransitionStamp{})
	if err != nil {
		return payroll.PeriodResponse{}, err
	}
	return payroll.NewPeriodResponse(p), nil
}
