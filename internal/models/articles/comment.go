package models

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	user "github.com/inkpress/inkwell/internal/models/user"
	storage "github.com/inkpress/inkwell/pkg/redis"
	"github.com/inkpress/inkwell/pkg/utils"
	"gorm.io/gorm"
)

// MaxCommentDepth bounds how deep a reply thread can nest.
const MaxCommentDepth = 5

type Comment struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Content         string     `gorm:"type:text;not null" json:"content" validate:"required,min=2,max=2000"`
	ArticleID       uuid.UUID  `gorm:"type:uuid;not null;index:idx_comment_article" json:"article_id" validate:"required"`
	AuthorID        uuid.UUID  `gorm:"type:uuid;not null;index:idx_comment_author" json:"author_id" validate:"required"`
	ParentCommentID *uuid.UUID `gorm:"type:uuid;index:idx_comment_parent" json:"parent_comment_id" validate:"omitempty"`
	Depth           int        `gorm:"default:0;index" json:"depth" validate:"min=0,max=5"`
	Edited          bool       `gorm:"default:false;index" json:"edited"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Author        user.User `gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"author" validate:"-"`
	Article       Article   `gorm:"foreignKey:ArticleID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-" validate:"-"`
	ParentComment *Comment  `gorm:"foreignKey:ParentCommentID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"parent_comment,omitempty" validate:"-"`
	Replies       []Comment `gorm:"foreignKey:ParentCommentID" json:"replies" validate:"-"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// CreateComment creates a comment, threading it under the parent when one is
// given. Depth derives from the parent and is capped at MaxCommentDepth.
func CreateComment(ctx context.Context, rclient *storage.RedisClient, db *gorm.DB, comment *Comment) error {
	if comment.ID == uuid.Nil {
		comment.ID = uuid.New()
	}

	comment.Content = strings.TrimSpace(comment.Content)
	if comment.ArticleID == uuid.Nil || comment.AuthorID == uuid.Nil || comment.Content == "" {
		return utils.NewError(utils.ErrBadRequest.Code, "Required fields missing: article_id, author_id, content")
	}

	if comment.ParentCommentID != nil {
		var parent Comment
		if err := db.WithContext(ctx).First(&parent, "id = ?", *comment.ParentCommentID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return utils.NewError(utils.ErrNotFound.Code, "Parent comment not found")
			}
			return utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to load parent comment")
		}
		if parent.ArticleID != comment.ArticleID {
			return utils.NewError(utils.ErrBadRequest.Code, "Parent comment belongs to a different article")
		}
		if parent.Depth >= MaxCommentDepth {
			return utils.NewError(utils.ErrBadRequest.Code, "Comment thread is nested too deeply")
		}
		comment.Depth = parent.Depth + 1
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(comment).Error; err != nil {
			return utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to create comment")
		}
		return user.UpdateUserStats(ctx, rclient, tx, comment.AuthorID, user.WithCommentsCount(1))
	})
	if err != nil {
		return err
	}

	rclient.Del(ctx, "comments:article:"+comment.ArticleID.String())
	return nil
}

// GetCommentBy retrieves a single comment by condition.
func GetCommentBy(ctx context.Context, rclient *storage.RedisClient, db *gorm.DB, condition string, args []interface{}, preload ...string) (*Comment, error) {
	var comment Comment
	query := db.WithContext(ctx).Where(condition, args...)
	for _, rel := range preload {
		query = query.Preload(rel)
	}
	if err := query.First(&comment).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, utils.NewError(utils.ErrNotFound.Code, "Comment not found")
		}
		return nil, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to fetch comment")
	}

	return &comment, nil
}

// GetCommentsByArticle retrieves top-level comments for an article with their
// reply trees, oldest first.
func GetCommentsByArticle(ctx context.Context, rclient *storage.RedisClient, db *gorm.DB, articleID uuid.UUID, page, limit int) ([]Comment, error) {
	var comments []Comment
	err := db.WithContext(ctx).
		Where("article_id = ? AND parent_comment_id IS NULL", articleID).
		Preload("Replies").
		Preload("Replies.Replies").
		Order("created_at asc").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&comments).Error
	if err != nil {
		return nil, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to fetch comments")
	}

	return comments, nil
}

// UpdateComment edits a comment's content and marks it edited.
func UpdateComment(ctx context.Context, rclient *storage.RedisClient, db *gorm.DB, id uuid.UUID, content string) (*Comment, error) {
	comment, err := GetCommentBy(ctx, rclient, db, "id = ?", []interface{}{id})
	if err != nil {
		return nil, err
	}

	comment.Content = strings.TrimSpace(content)
	comment.Edited = true
	if err := db.WithContext(ctx).Save(comment).Error; err != nil {
		return nil, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to update comment")
	}

	rclient.Del(ctx, "comments:article:"+comment.ArticleID.String())
	return comment, nil
}

// DeleteComment soft-deletes a comment and rolls back the author's count.
func DeleteComment(ctx context.Context, rclient *storage.RedisClient, db *gorm.DB, id uuid.UUID) error {
	comment, err := GetCommentBy(ctx, rclient, db, "id = ?", []interface{}{id})
	if err != nil {
		return err
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(comment).Error; err != nil {
			return utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to delete comment")
		}
		return user.UpdateUserStats(ctx, rclient, tx, comment.AuthorID, user.WithCommentsCount(-1))
	})
	if err != nil {
		return err
	}

	rclient.Del(ctx, "comments:article:"+comment.ArticleID.String())
	return nil
}
