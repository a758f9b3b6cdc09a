package service

import (
	"context"

	"codeprep/internal/domain/model"
	"codeprep/internal/domain/repository"
)

// AuthService resolves the mirrored account for a verified identity.
// Authentication itself is delegated to the external provider; there
// are no local credentials.
type AuthService struct {
	userRepo repository.UserRepository
}

func NewAuthService(userRepo repository.UserRepository) *AuthService {
	return &AuthService{userRepo: userRepo}
}

// CurrentUser returns the local record for a provider user id. It is
// ErrNotFound until the provider webhook has delivered the account.
func (s *AuthService) CurrentUser(ctx context.Context, providerID string) (*model.User, error) {
	return s.userRepo.FindByProviderID(ctx, providerID)
}
