package identity

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nextstock/backend/internal/domain/identity"
	"github.com/nextstock/backend/internal/domain/shared"
)

// The permission a user must hold to approve register discrepancies
// and sale voids.
var approvalPermission = identity.ResourceSession + ":" + identity.ActionApprove

// ApprovalServiceConfig contains configuration for PIN verification
type ApprovalServiceConfig struct {
	MaxPinAttempts  int           // Failed PIN attempts before lockout
	PinLockDuration time.Duration // How long PIN verification stays locked
}

// DefaultApprovalServiceConfig returns default configuration
func DefaultApprovalServiceConfig() ApprovalServiceConfig {
	return ApprovalServiceConfig{
		MaxPinAttempts:  3,
		PinLockDuration: 5 * time.Minute,
	}
}

// ApprovalService verifies manager PIN approvals for sensitive register
// and sale operations. It satisfies the approval verifier interfaces the
// sales and register services consume.
type ApprovalService struct {
	userRepo identity.UserRepository
	roleRepo identity.RoleRepository
	config   ApprovalServiceConfig
	logger   *zap.Logger
}

// NewApprovalService creates a new approval service
func NewApprovalService(
	userRepo identity.UserRepository,
	roleRepo identity.RoleRepository,
	config ApprovalServiceConfig,
	logger *zap.Logger,
) *ApprovalService {
	return &ApprovalService{
		userRepo: userRepo,
		roleRepo: roleRepo,
		config:   config,
		logger:   logger,
	}
}

// VerifyApproval checks that the approver exists, is active, holds the
// approval permission and supplied the correct PIN. Failed attempts are
// persisted so lockouts survive restarts.
func (s *ApprovalService) VerifyApproval(ctx context.Context, approverID uuid.UUID, pin string) error {
	user, err := s.userRepo.FindByID(ctx, approverID)
	if err != nil {
		s.logger.Warn("Approval attempt by unknown user", zap.String("approver_id", approverID.String()))
		return shared.ErrInvalidPin
	}

	if !user.IsActive() {
		s.logger.Warn("Approval attempt by inactive user",
			zap.String("approver_id", approverID.String()),
			zap.String("status", string(user.Status)))
		return shared.NewDomainError("APPROVER_INACTIVE", "Approver account is not active")
	}

	canApprove, err := s.hasApprovalPermission(ctx, user.RoleIDs)
	if err != nil {
		s.logger.Error("Failed to check approval permission", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to verify approval permission")
	}
	if !canApprove {
		s.logger.Warn("Approval attempt without permission", zap.String("approver_id", approverID.String()))
		return shared.NewDomainError("APPROVAL_FORBIDDEN", "User is not allowed to approve this operation")
	}

	verifyErr := user.VerifyManagerPin(pin, s.config.MaxPinAttempts, s.config.PinLockDuration)

	// Attempt counters and lockouts change on both success and failure
	if err := s.userRepo.Save(ctx, user); err != nil {
		s.logger.Error("Failed to persist PIN attempt state", zap.Error(err))
	}

	if verifyErr != nil {
		s.logger.Warn("PIN verification failed",
			zap.String("approver_id", approverID.String()),
			zap.Int("failed_attempts", user.PinFailedAttempts))
		return verifyErr
	}

	s.logger.Info("Approval verified", zap.String("approver_id", approverID.String()))

	return nil
}

func (s *ApprovalService) hasApprovalPermission(ctx context.Context, roleIDs []uuid.UUID) (bool, error) {
	if len(roleIDs) == 0 {
		return false, nil
	}

	roles, err := s.roleRepo.FindByIDs(ctx, roleIDs)
	if err != nil {
		return false, err
	}

	for _, role := range roles {
		if !role.IsEnabled {
			continue
		}
		if role.HasPermission(approvalPermission) {
			return true, nil
		}
	}

	return false, nil
}
