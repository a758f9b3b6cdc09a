package service

import (
	"context"

	"codeprep/internal/common"
	"codeprep/internal/domain/model"
	"codeprep/internal/domain/repository"
)

type UserService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// UserRoleResponse is the field subset returned after a role change.
type UserRoleResponse struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Role      model.Role `json:"role"`
}

func (s *UserService) List(ctx context.Context, page, limit int, role, search string) ([]model.User, int, error) {
	filter := repository.UserListFilter{Search: search}
	if role != "" && role != "ALL" {
		r := model.Role(role)
		if !r.Valid() {
			return nil, 0, common.Errorf("invalid role %q: %w", role, common.ErrBadRequest)
		}
		filter.Role = r
	}
	offset := (page - 1) * limit
	if offset < 0 {
		offset = 0
	}
	return s.userRepo.List(ctx, limit, offset, filter)
}

// UpdateRole applies the admin-surface gating rules: the target role
// must be a known value, only a SUPER_ADMIN may grant SUPER_ADMIN, and
// callers can never change their own role.
func (s *UserService) UpdateRole(ctx context.Context, caller *model.User, targetID string, role model.Role) (*UserRoleResponse, error) {
	if !role.Valid() {
		return nil, common.Errorf("invalid role %q: %w", role, common.ErrBadRequest)
	}
	if role == model.RoleSuperAdmin && caller.Role != model.RoleSuperAdmin {
		return nil, common.Errorf("only super admins can assign the super admin role: %w", common.ErrForbidden)
	}

	target, err := s.userRepo.FindByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if target.ID == caller.ID {
		return nil, common.Errorf("cannot change your own role: %w", common.ErrBadRequest)
	}

	updated, err := s.userRepo.UpdateRole(ctx, targetID, role)
	if err != nil {
		return nil, err
	}
	return &UserRoleResponse{
		ID:        updated.ID,
		Email:     updated.Email,
		FirstName: updated.FirstName,
		LastName:  updated.LastName,
		Role:      updated.Role,
	}, nil
}

// Delete removes a user; self-deletion is rejected and deleting any
// non-USER account requires a SUPER_ADMIN caller.
func (s *UserService) Delete(ctx context.Context, caller *model.User, targetID string) error {
	target, err := s.userRepo.FindByID(ctx, targetID)
	if err != nil {
		return err
	}
	if target.ID == caller.ID {
		return common.Errorf("cannot delete your own account: %w", common.ErrBadRequest)
	}
	if target.Role != model.RoleUser && caller.Role != model.RoleSuperAdmin {
		return common.Errorf("only super admins can delete admin accounts: %w", common.ErrForbidden)
	}
	return s.userRepo.Delete(ctx, targetID)
}
