package service

import (
	"context"

	"codeprep/internal/common"
	"codeprep/internal/domain/model"
	"codeprep/internal/domain/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type WebhookService struct {
	userRepo repository.UserRepository
}

func NewWebhookService(userRepo repository.UserRepository) *WebhookService {
	return &WebhookService{userRepo: userRepo}
}

const (
	EventUserCreated = "user.created"
	EventUserUpdated = "user.updated"
)

// IdentityEvent is the provider's webhook payload.
type IdentityEvent struct {
	Type string            `json:"type"`
	Data IdentityEventData `json:"data"`
}

type IdentityEventData struct {
	ID                    string         `json:"id"`
	FirstName             string         `json:"first_name"`
	LastName              string         `json:"last_name"`
	Username              string         `json:"username"`
	ImageURL              string         `json:"image_url"`
	PrimaryEmailAddressID string         `json:"primary_email_address_id"`
	EmailAddresses        []EmailAddress `json:"email_addresses"`
}

type EmailAddress struct {
	ID           string `json:"id"`
	EmailAddress string `json:"email_address"`
}

func (d IdentityEventData) primaryEmail() string {
	for _, e := range d.EmailAddresses {
		if e.ID == d.PrimaryEmailAddressID {
			return e.EmailAddress
		}
	}
	return ""
}

// ProcessEvent upserts the mirrored account for user.created and
// user.updated events and ignores everything else. Duplicate-key
// conflicts between racing deliveries are logged and swallowed.
func (s *WebhookService) ProcessEvent(ctx context.Context, event IdentityEvent) error {
	if event.Type != EventUserCreated && event.Type != EventUserUpdated {
		zap.S().Debugw("ignoring identity event", "type", event.Type)
		return nil
	}
	if event.Data.ID == "" {
		return common.Errorf("identity event without a user id: %w", common.ErrBadRequest)
	}
	email := event.Data.primaryEmail()
	if email == "" {
		// Upserting an empty email would trip the unique constraint on
		// the second such account and the conflict swallow below would
		// hide it.
		return common.Errorf("identity event for %s without a resolvable primary email: %w",
			event.Data.ID, common.ErrBadRequest)
	}

	user := &model.User{
		ID:         uuid.NewString(), // kept only when the row is new
		ProviderID: event.Data.ID,
		Email:      email,
		FirstName:  event.Data.FirstName,
		LastName:   event.Data.LastName,
		Username:   event.Data.Username,
		AvatarURL:  event.Data.ImageURL,
		Role:       model.RoleUser,
	}

	if err := s.userRepo.Upsert(ctx, user); err != nil {
		if common.IsUniqueViolation(err) {
			zap.S().Warnw("duplicate key conflict on identity upsert",
				"provider_id", user.ProviderID, "error", err)
			return nil
		}
		return err
	}
	return nil
}
