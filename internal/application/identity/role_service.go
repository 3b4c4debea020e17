package identity

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nextstock/backend/internal/domain/identity"
	"github.com/nextstock/backend/internal/domain/shared"
)

// RoleService handles role and permission management
type RoleService struct {
	roleRepo identity.RoleRepository
	logger   *zap.Logger
}

// NewRoleService creates a new role service
func NewRoleService(roleRepo identity.RoleRepository, logger *zap.Logger) *RoleService {
	return &RoleService{
		roleRepo: roleRepo,
		logger:   logger,
	}
}

// Create creates a new role with an optional initial permission set
func (s *RoleService) Create(ctx context.Context, req CreateRoleRequest) (*RoleResponse, error) {
	exists, err := s.roleRepo.ExistsByCode(ctx, req.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ROLE_CODE_TAKEN", "Role code is already in use")
	}

	role, err := identity.NewRole(req.Code, req.Name)
	if err != nil {
		return nil, err
	}
	if req.Description != "" {
		role.SetDescription(req.Description)
	}

	if len(req.Permissions) > 0 {
		perms, err := parsePermissions(req.Permissions)
		if err != nil {
			return nil, err
		}
		if err := role.SetPermissions(perms); err != nil {
			return nil, err
		}
	}

	if err := s.roleRepo.Save(ctx, role); err != nil {
		return nil, err
	}

	s.logger.Info("Role created",
		zap.String("role_id", role.ID.String()),
		zap.String("code", role.Code))

	resp := ToRoleResponse(role)
	return &resp, nil
}

// GetByID retrieves a role by ID
func (s *RoleService) GetByID(ctx context.Context, id uuid.UUID) (*RoleResponse, error) {
	role, err := s.roleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := ToRoleResponse(role)
	return &resp, nil
}

// List retrieves all roles ordered for display
func (s *RoleService) List(ctx context.Context) ([]RoleResponse, error) {
	f := shared.DefaultFilter()
	f.PageSize = 100
	f.OrderBy = "sort_order"
	f.OrderDir = "asc"

	roles, err := s.roleRepo.FindAll(ctx, f)
	if err != nil {
		return nil, err
	}

	return ToRoleResponses(roles), nil
}

// Update updates a role's details and permission set
func (s *RoleService) Update(ctx context.Context, id uuid.UUID, req UpdateRoleRequest) (*RoleResponse, error) {
	role, err := s.roleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if err := role.SetName(*req.Name); err != nil {
			return nil, err
		}
	}
	if req.Description != nil {
		role.SetDescription(*req.Description)
	}
	if req.SortOrder != nil {
		role.SetSortOrder(*req.SortOrder)
	}
	if req.Permissions != nil {
		perms, err := parsePermissions(*req.Permissions)
		if err != nil {
			return nil, err
		}
		if err := role.SetPermissions(perms); err != nil {
			return nil, err
		}
	}

	if err := s.roleRepo.Save(ctx, role); err != nil {
		return nil, err
	}

	resp := ToRoleResponse(role)
	return &resp, nil
}

// Enable enables a role
func (s *RoleService) Enable(ctx context.Context, id uuid.UUID) (*RoleResponse, error) {
	return s.toggle(ctx, id, (*identity.Role).Enable)
}

// Disable disables a role; its permissions stop applying to assigned users
func (s *RoleService) Disable(ctx context.Context, id uuid.UUID) (*RoleResponse, error) {
	return s.toggle(ctx, id, (*identity.Role).Disable)
}

// Delete deletes a role that is not a system role and has no assigned users
func (s *RoleService) Delete(ctx context.Context, id uuid.UUID) error {
	role, err := s.roleRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if !role.CanDelete() {
		return shared.NewDomainError("SYSTEM_ROLE", "System roles cannot be deleted")
	}

	count, err := s.roleRepo.CountUsers(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return shared.NewDomainError("ROLE_IN_USE", "Role is assigned to users and cannot be deleted")
	}

	if err := s.roleRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("Role deleted",
		zap.String("role_id", id.String()),
		zap.String("code", role.Code))

	return nil
}

func (s *RoleService) toggle(ctx context.Context, id uuid.UUID, apply func(*identity.Role) error) (*RoleResponse, error) {
	role, err := s.roleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := apply(role); err != nil {
		return nil, err
	}

	if err := s.roleRepo.Save(ctx, role); err != nil {
		return nil, err
	}

	resp := ToRoleResponse(role)
	return &resp, nil
}

func parsePermissions(codes []string) ([]identity.Permission, error) {
	perms := make([]identity.Permission, 0, len(codes))
	for _, code := range codes {
		perm, err := identity.NewPermissionFromCode(code)
		if err != nil {
			return nil, err
		}
		perms = append(perms, *perm)
	}
	return perms, nil
}
