package payroll

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/onestaff/onestaff-os/internal/domain/payroll"
)

// ReviewServiceImpl runs the pre-run review of signing-bonus and
// termination-benefit instances: PENDING moves to APPROVED or REJECTED once.
type ReviewServiceImpl struct {
	bonusRepo   payroll.SigningBonusRepository
	benefitRepo payroll.TerminationBenefitRepository
	now         func() time.Time
}

func NewReviewService(
	bonusRepo payroll.SigningBonusRepository,
	benefitRepo payroll.TerminationBenefitRepository,
) payroll.ReviewService {
	return &ReviewServiceImpl{
		bonusRepo:   bonusRepo,
		benefitRepo: benefitRepo,
		now:         nowUTC,
	}
}

// ========== SIGNING BONUSES ==========

func (s *ReviewServiceImpl) ListSigningBonuses(ctx context.Context, filter payroll.InstanceFilter) ([]payroll.SigningBonusResponse, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	instances, err := s.bonusRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]payroll.SigningBonusResponse, 0, len(instances))
	for _, b := range instances {
		responses = append(responses, mapToSigningBonusResponse(b))
	}
	return responses, nil
}

func (s *ReviewServiceImpl) ApproveSigningBonus(ctx context.Context, id string) (payroll.SigningBonusResponse, error) {
	return s.reviewSigningBonus(ctx, id, payroll.InstanceStatusApproved, nil)
}

func (s *ReviewServiceImpl) RejectSigningBonus(ctx context.Context, id string, req payroll.ReviewRequest) (payroll.SigningBonusResponse, error) {
	return s.reviewSigningBonus(ctx, id, payroll.InstanceStatusRejected, req.Reason)
}

func (s *ReviewServiceImpl) reviewSigningBonus(ctx context.Context, id string, status payroll.InstanceStatus, reason *string) (payroll.SigningBonusResponse, error) {
	if err := validateID(id); err != nil {
		return payroll.SigningBonusResponse{}, err
	}
	reviewer, err := getActorFromContext(ctx)
	if err != nil {
		return payroll.SigningBonusResponse{}, err
	}

	instance, err := s.bonusRepo.GetByID(ctx, id)
	if err != nil {
		return payroll.SigningBonusResponse{}, err
	}
	if instance.Status != payroll.InstanceStatusPending {
		return payroll.SigningBonusResponse{}, payroll.ErrInstanceAlreadyReviewed
	}

	now := s.now()
	instance.Status = status
	instance.ReviewedBy = &reviewer
	instance.ReviewedAt = &now
	instance.RejectionReason = cleanReason(reason)
	instance.UpdatedAt = now

	if err := s.bonusRepo.UpdateReview(ctx, instance); err != nil {
		return payroll.SigningBonusResponse{}, err
	}

	slog.InfoContext(ctx, "Signing bonus reviewed", "id", instance.ID, "status", string(status), "reviewer", reviewer)
	return mapToSigningBonusResponse(instance), nil
}

// ========== TERMINATION BENEFITS ==========

func (s *ReviewServiceImpl) ListTerminationBenefits(ctx context.Context, filter payroll.InstanceFilter) ([]payroll.TerminationBenefitResponse, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	instances, err := s.benefitRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]payroll.TerminationBenefitResponse, 0, len(instances))
	for _, b := range instances {
		responses = append(responses, mapToTerminationBenefitResponse(b))
	}
	return responses, nil
}

func (s *ReviewServiceImpl) ApproveTerminationBenefit(ctx context.Context, id string) (payroll.TerminationBenefitResponse, error) {
	return s.reviewTerminationBenefit(ctx, id, payroll.InstanceStatusApproved, nil)
}

func (s *ReviewServiceImpl) RejectTerminationBenefit(ctx context.Context, id string, req payroll.ReviewRequest) (payroll.TerminationBenefitResponse, error) {
	return s.reviewTerminationBenefit(ctx, id, payroll.InstanceStatusRejected, req.Reason)
}

func (s *ReviewServiceImpl) reviewTerminationBenefit(ctx context.Context, id string, status payroll.InstanceStatus, reason *string) (payroll.TerminationBenefitResponse, error) {
	if err := validateID(id); err != nil {
		return payroll.TerminationBenefitResponse{}, err
	}
	reviewer, err := getActorFromContext(ctx)
	if err != nil {
		return payroll.TerminationBenefitResponse{}, err
	}

	instance, err := s.benefitRepo.GetByID(ctx, id)
	if err != nil {
		return payroll.TerminationBenefitResponse{}, err
	}
	if instance.Status != payroll.InstanceStatusPending {
		return payroll.TerminationBenefitResponse{}, payroll.ErrInstanceAlreadyReviewed
	}

	now := s.now()
	instance.Status = status
	instance.ReviewedBy = &reviewer
	instance.ReviewedAt = &now
	instance.RejectionReason = cleanReason(reason)
	instance.UpdatedAt = now

	if err := s.benefitRepo.UpdateReview(ctx, instance); err != nil {
		return payroll.TerminationBenefitResponse{}, err
	}

	slog.InfoContext(ctx, "Termination benefit reviewed", "id", instance.ID, "status", string(status), "reviewer", reviewer)
	return mapToTerminationBenefitResponse(instance), nil
}

func cleanReason(reason *string) *string {
	if reason == nil {
		return nil
	}
	r := strings.TrimSpace(*reason)
	if r == "" {
		return nil
	}
	return &r
}
