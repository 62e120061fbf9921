package auth

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/biblia-online/biblia/internal/db/models"
)

// Service provides authorization functionality.
type Service struct {
	db *gorm.DB
}

// NewService creates a new auth service.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// HasPermission checks if the role of a user has a specific permission.
func (s *Service) HasPermission(userID uint64, permission string) (bool, error) {
	var count int64

	err := s.db.Table("permissions").
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Joins("JOIN users ON users.role_id = role_permissions.role_id").
		Where("users.id = ? AND users.active = ? AND permissions.name = ?", userID, true, permission).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check role permission: %w", err)
	}

	return count > 0, nil
}

// HasAnyPermission checks if a user has at least one of the given permissions.
func (s *Service) HasAnyPermission(userID uint64, permissions []string) (bool, error) {
	if len(permissions) == 0 {
		return false, nil
	}

	for _, perm := range permissions {
		has, err := s.HasPermission(userID, perm)
		if err != nil {
			return false, err
		}

		if has {
			return true, nil
		}
	}

	return false, nil
}

// HasAllPermissions checks if a user has all of the given permissions.
func (s *Service) HasAllPermissions(userID uint64, permissions []string) (bool, error) {
	for _, perm := range permissions {
		has, err := s.HasPermission(userID, perm)
		if err != nil {
			return false, err
		}

		if !has {
			return false, nil
		}
	}

	return true, nil
}

// GetUserPermissions retrieves the permission names of a user's role, sorted by name.
func (s *Service) GetUserPermissions(userID uint64) ([]string, error) {
	var permissions []string

	err := s.db.Table("permissions").
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Joins("JOIN users ON users.role_id = role_permissions.role_id").
		Where("users.id = ? AND users.active = ?", userID, true).
		Order("permissions.name").
		Pluck("permissions.name", &permissions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get user permissions: %w", err)
	}

	return permissions, nil
}

// AssignRoleToUser sets the role of a user by role name.
func (s *Service) AssignRoleToUser(userID uint64, roleName string) error {
	var role models.Role
	if err := s.db.Where("name = ?", roleName).First(&role).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: %s", ErrRoleNotFound, roleName)
		}

		return fmt.Errorf("failed to get role: %w", err)
	}

	res := s.db.Model(&models.User{}).Where("id = ?", userID).Update("role_id", role.ID)
	if res.Error != nil {
		return fmt.Errorf("failed to assign role: %w", res.Error)
	}

	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}

	return nil
}

// SeedRBAC creates every permission, the admin role holding all of them and the
// member role holding MemberPermissions. It is idempotent.
func SeedRBAC(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		ids := make(map[string]uint)

		for _, def := range Definitions() {
			var perm models.Permission

			err := tx.Where(models.Permission{Name: def.Name}).
				Assign(models.Permission{
					Resource:    def.Resource(),
					Action:      def.Action(),
					Description: def.Description,
				}).
				FirstOrCreate(&perm).Error
			if err != nil {
				return fmt.Errorf("failed to seed permission %s: %w", def.Name, err)
			}

			ids[def.Name] = perm.ID
		}

		all := make([]string, 0, len(ids))
		for _, def := range Definitions() {
			all = append(all, def.Name)
		}

		roles := []struct {
			name, description string
			permissions       []string
		}{
			{models.RoleAdmin, "Administrator with every permission", all},
			{models.RoleMember, "Reader account", MemberPermissions()},
		}

		for _, r := range roles {
			var role models.Role

			err := tx.Where(models.Role{Name: r.name}).
				Assign(models.Role{Description: r.description, IsSystem: true}).
				FirstOrCreate(&role).Error
			if err != nil {
				return fmt.Errorf("failed to seed role %s: %w", r.name, err)
			}

			for _, name := range r.permissions {
				rp := models.RolePermission{RoleID: role.ID, PermissionID: ids[name]}
				if err = tx.Where(rp).FirstOrCreate(&rp).Error; err != nil {
					return fmt.Errorf("failed to grant %s to %s: %w", name, r.name, err)
				}
			}
		}

		return nil
	})
}

// roleID returns the id of a role by name.
func roleID(db *gorm.DB, name string) (uint, error) {
	var role models.Role
	if err := db.Select("id").Where("name = ?", name).First(&role).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, fmt.Errorf("%w: %s", ErrRoleNotFound, name)
		}

		return 0, fmt.Errorf("failed to get role %s: %w", name, err)
	}

	return role.ID, nil
}
