package models

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	user "github.com/inkpress/inkwell/internal/models/user"
	storage "github.com/inkpress/inkwell/pkg/redis"
	"github.com/inkpress/inkwell/pkg/utils"
	"gorm.io/gorm"
)

type Article struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Title            string     `gorm:"size:200;not null;index:idx_article_title" json:"title" validate:"required,min=10,max=200"`
	Slug             string     `gorm:"size:220;not null;uniqueIndex:idx_article_slug" json:"slug" validate:"required,max=220,slug"`
	Content          string     `gorm:"type:text;not null" json:"content" validate:"required,min=100"`
	Excerpt          string     `gorm:"size:300" json:"excerpt" validate:"omitempty,max=300"`
	FeaturedImageURL string     `gorm:"size:500" json:"featured_image_url" validate:"omitempty,url,max=500"`
	Published        bool       `gorm:"default:false;index" json:"published"`
	PublishedAt      *time.Time `gorm:"index:idx_article_published_at" json:"published_at" validate:"omitempty"`
	Status           string     `gorm:"type:varchar(20);default:'draft';index" json:"status" validate:"required,oneof=draft published unpublished"`

	AuthorID uuid.UUID `gorm:"type:uuid;not null;index:idx_article_author" json:"author_id" validate:"required"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Author   user.User `gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"author" validate:"-"`
	Comments []Comment `gorm:"foreignKey:ArticleID" json:"comments" validate:"-"`
}

func (a *Article) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// ArticleOption configures an Article.
type ArticleOption func(*Article)

// CreateArticle creates a new article, generating the slug from the title
// when none is supplied. The author's article count moves in the same
// transaction.
func CreateArticle(ctx context.Context, rclient *storage.RedisClient, db *gorm.DB, article *Article, opts ...ArticleOption) error {
	if article.ID == uuid.Nil {
		article.ID = uuid.New()
	}
	if article.Status == "" {
		article.Status = "draft"
	}

	for _, opt := range opts {
		opt(article)
	}

	article.Title = strings.TrimSpace(article.Title)
	article.Content = strings.TrimSpace(article.Content)
	if article.Slug == "" {
		article.Slug = slug.Make(article.Title)
	}
	if article.Published && article.PublishedAt == nil {
		now := time.Now()
		article.PublishedAt = &now
	}

	if article.AuthorID == uuid.Nil || article.Title == "" || article.Slug == "" || article.Content == "" {
		return utils.NewError(utils.ErrBadRequest.Code, "Required fields missing: author_id, title, slug, content")
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(article).Error; err != nil {
			if strings.Contains(err.Error(), "duplicate") || strings.Contains(err.Error(), "UNIQUE") {
				return utils.NewError(utils.ErrConflict.Code, "An article with this slug already exists")
			}
			return utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to create article")
		}
		return user.UpdateUserStats(ctx, rclient, tx, article.AuthorID, user.WithArticlesCount(1))
	})
	if err != nil {
		return err
	}

	articleJSON, _ := json.Marshal(article)
	rclient.Set(ctx, "article:"+article.ID.String(), articleJSON, 10*time.Minute)
	rclient.Del(ctx, "article_slug:"+article.Slug)

	return nil
}

// GetArticleBy retrieves an article by condition, with optional preloading.
func GetArticleBy(ctx context.Context, rclient *storage.RedisClient, db *gorm.DB, condition string, args []interface{}, preload ...string) (*Article, error) {
	var article Article
	query := db.WithContext(ctx).Where(condition, args...)
	for _, rel := range preload {
		query = query.Preload(rel)
	}
	if err := query.First(&article).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, utils.NewError(utils.ErrNotFound.Code, "Article not found")
		}
		return nil, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to fetch article")
	}

	return &article, nil
}

// GetArticles retrieves articles with offset pagination, newest first.
func GetArticles(ctx context.Context, rclient *storage.RedisClient, db *gorm.DB, page, limit int, filters ...string) ([]Article, error) {
	var articles []Article
	query := db.WithContext(ctx).Limit(limit).Offset((page - 1) * limit).Order("created_at desc")

	for _, filter := range filters {
		query = query.Where(filter)
	}

	if err := query.Find(&articles).Error; err != nil {
		return nil, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to fetch articles")
	}

	return articles, nil
}

// UpdateArticle applies options to an article and saves it.
func UpdateArticle(ctx context.Context, rclient *storage.RedisClient, db *gorm.DB, id uuid.UUID, opts ...ArticleOption) (*Article, error) {
	article, err := GetArticleBy(ctx, rclient, db, "id = ?", []interface{}{id})
	if err != nil {
		return nil, err
	}

	for _, opt := range opts {
		opt(article)
	}

	if article.Published && article.PublishedAt == nil {
		now := time.Now()
		article.PublishedAt = &now
	}

	if err := db.WithContext(ctx).Save(article).Error; err != nil {
		return nil, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to update article")
	}

	articleJSON, _ := json.Marshal(article)
	rclient.Set(ctx, "article:"+article.ID.String(), articleJSON, 10*time.Minute)
	rclient.Del(ctx, "article_slug:"+article.Slug)

	return article, nil
}

// DeleteArticle soft-deletes an article and rolls back the author's count.
func DeleteArticle(ctx context.Context, rclient *storage.RedisClient, db *gorm.DB, id uuid.UUID) error {
	article, err := GetArticleBy(ctx, rclient, db, "id = ?", []interface{}{id})
	if err != nil {
		return err
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(article).Error; err != nil {
			return utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to delete article")
		}
		return user.UpdateUserStats(ctx, rclient, tx, article.AuthorID, user.WithArticlesCount(-1))
	})
	if err != nil {
		return err
	}

	rclient.Del(ctx, "article:"+id.String())
	rclient.Del(ctx, "article_slug:"+article.Slug)
	return nil
}
