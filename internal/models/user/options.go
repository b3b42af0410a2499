package models

import (
	"github.com/google/uuid"
)

func WithUsername(username string) UserOption {
	return func(u *User) { u.Username = username }
}

func WithEmail(email string) UserOption {
	return func(u *User) { u.Email = email }
}

func WithPassword(password string) UserOption {
	return func(u *User) { u.Password = password }
}

func WithIsActive(active bool) UserOption {
	return func(u *User) {
		u.IsActive = active
		u.IsEmailVerified = active
	}
}

func WithEmailVerified(verified bool) UserOption {
	return func(u *User) { u.IsEmailVerified = verified }
}

func WithRoleID(roleID uuid.UUID) UserOption {
	return func(u *User) { u.RoleID = roleID }
}

func WithName(name string) UserOption {
	return func(u *User) { u.Profile.Name = name }
}

func WithBio(bio string) UserOption {
	return func(u *User) { u.Profile.Bio = bio }
}

func WithAvatarURL(url string) UserOption {
	return func(u *User) { u.Profile.AvatarURL = url }
}

func WithArticlesCount(delta int) UserOption {
	return func(u *User) {
		u.Stats.ArticlesCount += delta
		if u.Stats.ArticlesCount < 0 {
			u.Stats.ArticlesCount = 0
		}
	}
}

func WithCommentsCount(delta int) UserOption {
	return func(u *User) {
		u.Stats.CommentsCount += delta
		if u.Stats.CommentsCount < 0 {
			u.Stats.CommentsCount = 0
		}
	}
}

func WithReactionsCount(delta int) UserOption {
	return func(u *User) {
		u.Stats.ReactionsCount += delta
		if u.Stats.ReactionsCount < 0 {
			u.Stats.ReactionsCount = 0
		}
	}
}
