package service

import (
	"context"
	"testing"

	"codeprep/internal/common"
	"codeprep/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func userCreatedEvent(providerID, email string) IdentityEvent {
	return IdentityEvent{
		Type: EventUserCreated,
		Data: IdentityEventData{
			ID:                    providerID,
			FirstName:             "Grace",
			LastName:              "Hopper",
			Username:              "ghopper",
			ImageURL:              "https://img.example.com/g.png",
			PrimaryEmailAddressID: "email_1",
			EmailAddresses: []EmailAddress{
				{ID: "email_2", EmailAddress: "secondary@example.com"},
				{ID: "email_1", EmailAddress: email},
			},
		},
	}
}

func TestProcessEvent_CreatesUserWithDefaults(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewWebhookService(repo)

	err := svc.ProcessEvent(context.Background(), userCreatedEvent("prov_1", "grace@example.com"))
	require.NoError(t, err)

	user, err := repo.FindByProviderID(context.Background(), "prov_1")
	require.NoError(t, err)
	assert.Equal(t, "grace@example.com", user.Email, "primary email must win")
	assert.Equal(t, model.RoleUser, user.Role)
	assert.Equal(t, "ghopper", user.Username)
}

func TestProcessEvent_DuplicateDeliveriesLeaveOneUser(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewWebhookService(repo)

	event := userCreatedEvent("prov_1", "grace@example.com")
	require.NoError(t, svc.ProcessEvent(context.Background(), event))
	require.NoError(t, svc.ProcessEvent(context.Background(), event))

	count := 0
	for _, u := range repo.users {
		if u.ProviderID == "prov_1" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestProcessEvent_UpdateDoesNotTouchRole(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewWebhookService(repo)

	require.NoError(t, svc.ProcessEvent(context.Background(), userCreatedEvent("prov_1", "grace@example.com")))

	user, err := repo.FindByProviderID(context.Background(), "prov_1")
	require.NoError(t, err)
	_, err = repo.UpdateRole(context.Background(), user.ID, model.RoleAdmin)
	require.NoError(t, err)

	updated := userCreatedEvent("prov_1", "grace.hopper@example.com")
	updated.Type = EventUserUpdated
	require.NoError(t, svc.ProcessEvent(context.Background(), updated))

	user, err = repo.FindByProviderID(context.Background(), "prov_1")
	require.NoError(t, err)
	assert.Equal(t, "grace.hopper@example.com", user.Email)
	assert.Equal(t, model.RoleAdmin, user.Role, "provider events must not demote locally granted roles")
}

type conflictUserRepo struct {
	*fakeUserRepo
	conflicts int
}

func (r *conflictUserRepo) Upsert(ctx context.Context, user *model.User) error {
	r.conflicts++
	return common.Errorf("user with given email already exists: %w", common.ErrConflict)
}

func TestProcessEvent_ConflictIsSwallowed(t *testing.T) {
	repo := &conflictUserRepo{fakeUserRepo: newFakeUserRepo()}
	svc := NewWebhookService(repo)

	err := svc.ProcessEvent(context.Background(), userCreatedEvent("prov_1", "grace@example.com"))
	assert.NoError(t, err)
	assert.Equal(t, 1, repo.conflicts)
}

func TestProcessEvent_IgnoresUnknownTypes(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewWebhookService(repo)

	err := svc.ProcessEvent(context.Background(), IdentityEvent{Type: "session.created"})
	assert.NoError(t, err)
	assert.Empty(t, repo.users)
}

func TestProcessEvent_MissingID(t *testing.T) {
	svc := NewWebhookService(newFakeUserRepo())

	err := svc.ProcessEvent(context.Background(), IdentityEvent{Type: EventUserCreated})
	assert.ErrorIs(t, err, common.ErrBadRequest)
}

func TestProcessEvent_UnresolvablePrimaryEmail(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewWebhookService(repo)

	// Primary id points at no listed address; the event must be
	// rejected instead of mirrored with an empty email.
	event := userCreatedEvent("prov_1", "grace@example.com")
	event.Data.PrimaryEmailAddressID = "email_gone"

	err := svc.ProcessEvent(context.Background(), event)
	assert.ErrorIs(t, err, common.ErrBadRequest)
	assert.Empty(t, repo.users)
}
