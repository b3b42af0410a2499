package models

import (
	articles "github.com/inkpress/inkwell/internal/models/articles"
	user "github.com/inkpress/inkwell/internal/models/user"
	"github.com/inkpress/inkwell/internal/reactions"
)

// RegisterModels lists every model handed to AutoMigrate.
func RegisterModels() []interface{} {
	return []interface{}{
		&user.User{},
		&user.Role{},
		&user.Permission{},
		&articles.Article{},
		&articles.Comment{},
		&reactions.ReactionKind{},
		&reactions.ReactionAssignment{},
	}
}

type (
	User       = user.User
	Role       = user.Role
	Permission = user.Permission
	Article    = articles.Article
	Comment    = articles.Comment

	UserOption    = user.UserOption
	ArticleOption = articles.ArticleOption
)

var (
	NewUser       = user.NewUser
	GetUserBy     = user.GetUserBy
	GetUsers      = user.GetUsers
	UpdateUser    = user.UpdateUser
	DeleteUser    = user.DeleteUser
	SeedRoles     = user.SeedRoles
	WithName      = user.WithName
	WithBio       = user.WithBio
	WithAvatarURL = user.WithAvatarURL
	WithIsActive  = user.WithIsActive
	WithEmail     = user.WithEmail
	WithPassword  = user.WithPassword
	WithUsername  = user.WithUsername
	CreateArticle = articles.CreateArticle

	WithArticleTitle         = articles.WithArticleTitle
	WithArticleSlug          = articles.WithArticleSlug
	WithArticleContent       = articles.WithArticleContent
	WithArticleExcerpt       = articles.WithArticleExcerpt
	WithArticleFeaturedImage = articles.WithArticleFeaturedImage
	WithArticleStatus        = articles.WithArticleStatus

	GetArticleBy  = articles.GetArticleBy
	GetArticles   = articles.GetArticles
	UpdateArticle = articles.UpdateArticle
	DeleteArticle = articles.DeleteArticle
	CreateComment = articles.CreateComment
	GetCommentBy  = articles.GetCommentBy
	GetComments   = articles.GetCommentsByArticle
	UpdateComment = articles.UpdateComment
	DeleteComment = articles.DeleteComment
)
