package middleware

import (
	"context"
	"net/http"
	"slices"

	"codeprep/internal/common"
	"codeprep/internal/common/security"
	"codeprep/internal/domain/model"
	"codeprep/internal/domain/repository"

	"github.com/go-chi/jwtauth/v5"
)

type contextKey string

const (
	ProviderIDCtxKey contextKey = "providerID"
	UserCtxKey       contextKey = "currentUser"
)

// AuthGuard verifies provider identity and enforces role policy. The
// role check loads the mirrored user on every request; there is no
// cross-request caching.
type AuthGuard struct {
	userRepo repository.UserRepository
}

func NewAuthGuard(userRepo repository.UserRepository) *AuthGuard {
	return &AuthGuard{userRepo: userRepo}
}

// Authenticate requires a verified provider token and stashes the
// provider user id in the request context.
func (g *AuthGuard) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())
		if err != nil || token == nil {
			common.RespondWithError(w, http.StatusUnauthorized, "Authorization token required")
			return
		}

		providerID, err := security.GetProviderIDFromClaims(claims)
		if err != nil {
			common.RespondWithError(w, http.StatusUnauthorized, "Invalid token claims: "+err.Error())
			return
		}

		ctx := context.WithValue(r.Context(), ProviderIDCtxKey, providerID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole is the single role policy shared by all gated routes:
// it loads the caller's mirrored record and rejects with Forbidden
// when the account is missing or its role is outside the allowed set.
// On success the *model.User is available via UserFromContext.
func (g *AuthGuard) RequireRole(roles ...model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			providerID, ok := ProviderIDFromContext(r.Context())
			if !ok {
				common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
				return
			}

			user, err := g.userRepo.FindByProviderID(r.Context(), providerID)
			if err != nil {
				common.RespondWithError(w, http.StatusForbidden, "Admin access required")
				return
			}
			if !slices.Contains(roles, user.Role) {
				common.RespondWithError(w, http.StatusForbidden, "Admin access required")
				return
			}

			ctx := context.WithValue(r.Context(), UserCtxKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func ProviderIDFromContext(ctx context.Context) (string, bool) {
	providerID, ok := ctx.Value(ProviderIDCtxKey).(string)
	return providerID, ok
}

func UserFromContext(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(UserCtxKey).(*model.User)
	return user, ok
}
