package models

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	storage "github.com/inkpress/inkwell/pkg/redis"
	"github.com/inkpress/inkwell/pkg/utils"
	"gorm.io/gorm"
)

type User struct {
	ID        uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Username        string    `gorm:"size:255;not null;unique" json:"username" validate:"required,min=3,max=255,alphanum"`
	Email           string    `gorm:"size:100;not null;unique" json:"email" validate:"required,email"`
	Password        string    `gorm:"size:255;not null" json:"-" validate:"required,min=6"`
	IsActive        bool      `gorm:"default:false" json:"is_active"`
	IsEmailVerified bool      `gorm:"default:false" json:"is_email_verified"`
	RoleID          uuid.UUID `gorm:"type:uuid;not null" json:"role_id"`
	Role            Role      `gorm:"foreignKey:RoleID" json:"role"`

	Profile struct {
		Name      string `gorm:"size:100" json:"name" validate:"omitempty,max=100"`
		Bio       string `gorm:"type:text;size:255" json:"bio" validate:"omitempty,max=255"`
		AvatarURL string `gorm:"type:text;size:255" json:"avatar_url" validate:"omitempty,url"`
		Location  string `gorm:"size:100" json:"location" validate:"omitempty,max=100"`
		Website   string `gorm:"size:255" json:"website" validate:"omitempty,url,max=255"`
	} `gorm:"embedded"`

	Stats struct {
		ArticlesCount  int       `gorm:"default:0" json:"articles_count"`
		CommentsCount  int       `gorm:"default:0" json:"comments_count"`
		ReactionsCount int       `gorm:"default:0" json:"reactions_count"`
		LastSeen       time.Time `gorm:"default:current_timestamp" json:"last_seen"`
	} `gorm:"embedded"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// UserOption configures a User.
type UserOption func(*User)

// NewUser creates a new User, assigns the default member role, persists it,
// and caches it in Redis.
func NewUser(ctx context.Context, rclient *storage.RedisClient, db *gorm.DB, username, email, password string, opts ...UserOption) (*User, error) {
	if err := ctx.Err(); err != nil {
		return nil, utils.WrapError(err, utils.ErrInternalServerError.Code, "user creation canceled")
	}

	var memberRole Role
	if err := db.WithContext(ctx).Where("name = ?", "member").First(&memberRole).Error; err != nil {
		return nil, utils.WrapError(err, utils.ErrInternalServerError.Code, "Default 'member' role not found")
	}

	u := &User{
		Username: username,
		Email:    email,
		Password: password,
		RoleID:   memberRole.ID,
	}

	for _, opt := range opts {
		opt(u)
	}

	if err := db.WithContext(ctx).Create(u).Error; err != nil {
		return nil, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to create user in database")
	}

	userJSON, _ := json.Marshal(u)
	key := "user:" + u.ID.String()
	rclient.Set(ctx, key, userJSON, 10*time.Minute)

	return u, nil
}

// GetUserBy retrieves a user by condition, with optional preloading of relationships.
func GetUserBy(ctx context.Context, rclient *storage.RedisClient, db *gorm.DB, condition string, args []interface{}, preload ...string) (*User, error) {
	var u User
	query := db.WithContext(ctx).Where(condition, args...)
	for _, p := range preload {
		if p != "" {
			query = query.Preload(p)
		}
	}
	if err := query.First(&u).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, utils.NewError(utils.ErrNotFound.Code, "User not found")
		}
		return nil, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to get user")
	}

	return &u, nil
}

// GetUsers retrieves multiple users with pagination and optional filters.
func GetUsers(ctx context.Context, rclient *storage.RedisClient, db *gorm.DB, page, limit int, filters ...string) ([]User, error) {
	var users []User
	query := db.WithContext(ctx).Offset((page - 1) * limit).Limit(limit)
	for _, f := range filters {
		query = query.Where(f)
	}
	if err := query.Find(&users).Error; err != nil {
		return nil, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to get users")
	}

	return users, nil
}

// UpdateUser updates a user's fields and refreshes the cache.
func UpdateUser(ctx context.Context, rclient *storage.RedisClient, db *gorm.DB, id uuid.UUID, opts ...UserOption) (*User, error) {
	u, err := GetUserBy(ctx, rclient, db, "id = ?", []interface{}{id})
	if err != nil {
		return nil, err
	}

	for _, opt := range opts {
		opt(u)
	}

	if err := db.WithContext(ctx).Save(u).Error; err != nil {
		return nil, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to update user")
	}

	userJSON, _ := json.Marshal(u)
	rclient.Set(ctx, "user:"+u.ID.String(), userJSON, 10*time.Minute)

	return u, nil
}

// DeleteUser soft-deletes a user and clears the cache.
func DeleteUser(ctx context.Context, rclient *storage.RedisClient, db *gorm.DB, id uuid.UUID) error {
	u, err := GetUserBy(ctx, rclient, db, "id = ?", []interface{}{id})
	if err != nil {
		return err
	}

	if err := db.WithContext(ctx).Delete(u).Error; err != nil {
		return utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to delete user")
	}

	rclient.Del(ctx, "user:"+id.String())
	return nil
}

// UpdateUserStats applies stat deltas inside the caller's transaction.
func UpdateUserStats(ctx context.Context, rclient *storage.RedisClient, tx *gorm.DB, id uuid.UUID, opts ...UserOption) error {
	var u User
	if err := tx.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.NewError(utils.ErrNotFound.Code, "User not found")
		}
		return utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to load user stats")
	}

	for _, opt := range opts {
		opt(&u)
	}

	if err := tx.WithContext(ctx).Save(&u).Error; err != nil {
		return utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to update user stats")
	}

	rclient.Del(ctx, "user:"+id.String())
	return nil
}

// UpdateLastSeen refreshes the user's last seen timestamp.
func (u *User) UpdateLastSeen(ctx context.Context, rclient *storage.RedisClient, db *gorm.DB) error {
	u.Stats.LastSeen = time.Now()
	if err := db.WithContext(ctx).Save(u).Error; err != nil {
		return utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to update last seen")
	}

	userJSON, _ := json.Marshal(u)
	rclient.Set(ctx, "user:"+u.ID.String(), userJSON, 10*time.Minute)
	return nil
}

// HasPermission checks if the user holds a permission, caching role
// permissions in Redis.
func (u *User) HasPermission(ctx context.Context, rclient *storage.RedisClient, db *gorm.DB, permission string) bool {
	cacheKey := "perms:role:" + u.RoleID.String()
	if cachedPerms, err := rclient.Get(ctx, cacheKey).Result(); err == nil {
		var perms []string
		if json.Unmarshal([]byte(cachedPerms), &perms) == nil {
			for _, p := range perms {
				if p == permission {
					return true
				}
			}
			return false
		}
	}

	var role Role
	if err := db.WithContext(ctx).Preload("Permissions").Where("id = ?", u.RoleID).First(&role).Error; err != nil {
		return false
	}

	perms := make([]string, len(role.Permissions))
	found := false
	for i, p := range role.Permissions {
		perms[i] = p.Name
		if p.Name == permission {
			found = true
		}
	}
	if permsJSON, err := json.Marshal(perms); err == nil {
		rclient.Set(ctx, cacheKey, permsJSON, 10*time.Minute)
	}
	return found
}
