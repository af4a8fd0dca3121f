package service

import (
	"context"
	"fmt"

	"github.com/imtihan/imtihan-backend/internal/model"
	"github.com/imtihan/imtihan-backend/internal/repository"
)

// PaymentService is the entitlement gate consulted at session start. It
// decides whether an attempt is paid; it never processes payments.
type PaymentService struct {
	paymentRepo *repository.PaymentRepository
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(paymentRepo *repository.PaymentRepository) *PaymentService {
	return &PaymentService{paymentRepo: paymentRepo}
}

// Authorize resolves the user's entitlement for a direction. Returns the
// is_paid decision recorded on the session, and whether this attempt consumes
// the user's single free test. Fails with ErrPaymentRequired when no
// entitlement path applies.
func (s *PaymentService) Authorize(ctx context.Context, user *model.User, direction *model.Direction) (isPaid, usesFreeTest bool, err error) {
	if direction.IsFree {
		return false, false, nil
	}
	if user.IsAllowedDirection(direction.ID) {
		// Access granted by an administrator.
		return false, false, nil
	}

	confirmed, err := s.paymentRepo.HasConfirmed(ctx, user.ID, direction.ID)
	if err != nil {
		return false, false, fmt.Errorf("check payment: %w", err)
	}
	if confirmed {
		return true, false, nil
	}

	if !user.FreeTestUsed {
		return false, true, nil
	}
	return false, false, ErrPaymentRequired
}
