package models

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	user "github.com/inkpress/inkwell/internal/models/user"
	storage "github.com/inkpress/inkwell/pkg/redis"
	"github.com/inkpress/inkwell/pkg/utils"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) (*gorm.DB, *storage.RedisClient) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&user.User{},
		&user.Role{},
		&user.Permission{},
		&Article{},
		&Comment{},
	))

	rclient := &storage.RedisClient{Client: redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})}

	return db, rclient
}

func createTestAuthor(t *testing.T, db *gorm.DB) *user.User {
	t.Helper()
	u := &user.User{
		Username: "author" + uuid.NewString()[:8],
		Email:    uuid.NewString()[:8] + "@inkwell.dev",
		Password: "hashed",
		RoleID:   uuid.New(),
	}
	require.NoError(t, db.Omit(clause.Associations).Create(u).Error)
	return u
}

func assertErrCode(t *testing.T, err error, code int) {
	t.Helper()
	require.Error(t, err)
	var appErr *utils.CustomError
	require.True(t, utils.As(err, &appErr), "expected a CustomError, got %v", err)
	assert.Equal(t, code, appErr.Code)
}

func TestCreateArticleGeneratesSlug(t *testing.T) {
	db, rclient := newTestDB(t)
	author := createTestAuthor(t, db)
	ctx := context.Background()

	article := &Article{
		Title:    "Why Ducks Make Great Reviewers",
		Content:  "body",
		AuthorID: author.ID,
	}
	require.NoError(t, CreateArticle(ctx, rclient, db, article))

	assert.Equal(t, "why-ducks-make-great-reviewers", article.Slug)
	assert.Equal(t, "draft", article.Status)

	var fresh user.User
	require.NoError(t, db.First(&fresh, "id = ?", author.ID).Error)
	assert.Equal(t, 1, fresh.Stats.ArticlesCount)
}

func TestCreateArticleKeepsExplicitSlug(t *testing.T) {
	db, rclient := newTestDB(t)
	author := createTestAuthor(t, db)
	ctx := context.Background()

	article := &Article{
		Title:    "Why Ducks Make Great Reviewers",
		Slug:     "ducks-review",
		Content:  "body",
		AuthorID: author.ID,
	}
	require.NoError(t, CreateArticle(ctx, rclient, db, article))
	assert.Equal(t, "ducks-review", article.Slug)
}

func TestCreateArticleDuplicateSlugConflicts(t *testing.T) {
	db, rclient := newTestDB(t)
	author := createTestAuthor(t, db)
	ctx := context.Background()

	first := &Article{Title: "Same Title Twice", Content: "body", AuthorID: author.ID}
	require.NoError(t, CreateArticle(ctx, rclient, db, first))

	second := &Article{Title: "Same Title Twice", Content: "body", AuthorID: author.ID}
	err := CreateArticle(ctx, rclient, db, second)
	assertErrCode(t, err, 409)
}

func TestCreateArticleRequiresFields(t *testing.T) {
	db, rclient := newTestDB(t)
	ctx := context.Background()

	err := CreateArticle(ctx, rclient, db, &Article{Title: "No author here", Content: "body"})
	assertErrCode(t, err, 400)
}

func TestCreateArticlePublishedSetsTimestamp(t *testing.T) {
	db, rclient := newTestDB(t)
	author := createTestAuthor(t, db)
	ctx := context.Background()

	article := &Article{
		Title:     "Published From The Start",
		Content:   "body",
		AuthorID:  author.ID,
		Published: true,
		Status:    "published",
	}
	require.NoError(t, CreateArticle(ctx, rclient, db, article))
	require.NotNil(t, article.PublishedAt)
	assert.WithinDuration(t, time.Now(), *article.PublishedAt, 5*time.Second)
}

func TestGetArticleByNotFound(t *testing.T) {
	db, rclient := newTestDB(t)
	ctx := context.Background()

	_, err := GetArticleBy(ctx, rclient, db, "slug = ?", []interface{}{"missing"})
	assertErrCode(t, err, 404)
}

func TestUpdateArticleAppliesOptions(t *testing.T) {
	db, rclient := newTestDB(t)
	author := createTestAuthor(t, db)
	ctx := context.Background()

	article := &Article{Title: "Before The Edit Pass", Content: "body", AuthorID: author.ID}
	require.NoError(t, CreateArticle(ctx, rclient, db, article))

	updated, err := UpdateArticle(ctx, rclient, db, article.ID,
		WithArticleExcerpt("a short teaser"),
		WithArticleStatus("published"),
	)
	require.NoError(t, err)
	assert.Equal(t, "a short teaser", updated.Excerpt)
	assert.Equal(t, "published", updated.Status)
}

func TestDeleteArticleSoftDeletes(t *testing.T) {
	db, rclient := newTestDB(t)
	author := createTestAuthor(t, db)
	ctx := context.Background()

	article := &Article{Title: "Soon To Be Removed", Content: "body", AuthorID: author.ID}
	require.NoError(t, CreateArticle(ctx, rclient, db, article))

	require.NoError(t, DeleteArticle(ctx, rclient, db, article.ID))

	_, err := GetArticleBy(ctx, rclient, db, "id = ?", []interface{}{article.ID})
	assertErrCode(t, err, 404)

	var count int64
	require.NoError(t, db.Unscoped().Model(&Article{}).Where("id = ?", article.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count, "delete is soft, the row stays")

	var fresh user.User
	require.NoError(t, db.First(&fresh, "id = ?", author.ID).Error)
	assert.Equal(t, 0, fresh.Stats.ArticlesCount)
}

func TestGetArticlesPagination(t *testing.T) {
	db, rclient := newTestDB(t)
	author := createTestAuthor(t, db)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		article := &Article{
			Title:    "Pagination Article Number " + uuid.NewString()[:8],
			Content:  "body",
			AuthorID: author.ID,
			Status:   "published",
		}
		require.NoError(t, CreateArticle(ctx, rclient, db, article))
	}

	page1, err := GetArticles(ctx, rclient, db, 1, 3)
	require.NoError(t, err)
	assert.Len(t, page1, 3)

	page2, err := GetArticles(ctx, rclient, db, 2, 3)
	require.NoError(t, err)
	assert.Len(t, page2, 2)
}
