package models

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/inkpress/inkwell/pkg/utils"
	"gorm.io/gorm"
)

type Role struct {
	ID          uuid.UUID    `gorm:"type:uuid;primary_key" json:"id"`
	Name        string       `gorm:"size:50;not null;unique" json:"name" validate:"required"`
	Permissions []Permission `gorm:"many2many:role_permissions;" json:"permissions"`
	CreatedAt   time.Time    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"autoUpdateTime" json:"updated_at"`
}

type Permission struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Name      string    `gorm:"size:50;not null;unique" json:"name"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// SeedRoles initializes default roles and permissions. Safe to run at every
// startup, existing rows are reused.
func SeedRoles(ctx context.Context, db *gorm.DB) error {
	roles := []struct {
		Name        string
		Permissions []string
	}{
		{"member", []string{
			"read_article", "create_comment", "edit_own_comment", "delete_own_comment",
			"give_reaction", "edit_own_profile", "delete_own_profile",
		}},
		{"author", []string{
			"read_article", "create_article", "edit_own_article", "delete_own_article",
			"create_comment", "edit_own_comment", "delete_own_comment",
			"give_reaction", "edit_own_profile", "delete_own_profile",
		}},
		{"admin", []string{
			"read_article", "create_article", "edit_any_article", "delete_any_article",
			"create_comment", "edit_any_comment", "delete_any_comment",
			"give_reaction", "edit_own_profile", "delete_own_profile", "manage_users",
		}},
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, r := range roles {
			var role Role
			if err := tx.Where("name = ?", r.Name).First(&role).Error; err != nil {
				if err != gorm.ErrRecordNotFound {
					return utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to look up role")
				}
				role = Role{Name: r.Name}
				if err := tx.Create(&role).Error; err != nil {
					return utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to create role")
				}
			}

			for _, p := range r.Permissions {
				var perm Permission
				if err := tx.Where("name = ?", p).First(&perm).Error; err != nil {
					if err != gorm.ErrRecordNotFound {
						return utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to look up permission")
					}
					perm = Permission{Name: p}
					if err := tx.Create(&perm).Error; err != nil {
						return utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to create permission")
					}
				}
				if err := tx.Model(&role).Association("Permissions").Append(&perm); err != nil {
					return utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to attach permission to role")
				}
			}
		}
		return nil
	})
}

// NewRole creates a role with the given permissions.
func NewRole(ctx context.Context, db *gorm.DB, name string, perms []Permission) (*Role, error) {
	role := &Role{Name: name, Permissions: perms}
	if err := db.WithContext(ctx).Create(role).Error; err != nil {
		return nil, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to create role")
	}
	return role, nil
}

// NewPermission creates a standalone permission.
func NewPermission(ctx context.Context, db *gorm.DB, name string) (*Permission, error) {
	perm := &Permission{Name: name}
	if err := db.WithContext(ctx).Create(perm).Error; err != nil {
		return nil, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to create permission")
	}
	return perm, nil
}

func (r *Role) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

func (p *Permission) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
