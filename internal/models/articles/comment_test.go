package models

import (
	"context"
	"testing"

	"github.com/google/uuid"
	storage "github.com/inkpress/inkwell/pkg/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func createPublishedArticle(t *testing.T, db *gorm.DB, rclient *storage.RedisClient, authorID uuid.UUID) *Article {
	t.Helper()
	article := &Article{
		Title:    "An Article Worth Discussing " + uuid.NewString()[:8],
		Content:  "body",
		AuthorID: authorID,
		Status:   "published",
	}
	require.NoError(t, CreateArticle(context.Background(), rclient, db, article))
	return article
}

func TestCreateCommentTopLevel(t *testing.T) {
	db, rclient := newTestDB(t)
	author := createTestAuthor(t, db)
	article := createPublishedArticle(t, db, rclient, author.ID)
	ctx := context.Background()

	comment := &Comment{
		Content:   "first!",
		ArticleID: article.ID,
		AuthorID:  author.ID,
	}
	require.NoError(t, CreateComment(ctx, rclient, db, comment))
	assert.Equal(t, 0, comment.Depth)
	assert.False(t, comment.Edited)
}

func TestCreateCommentThreading(t *testing.T) {
	db, rclient := newTestDB(t)
	author := createTestAuthor(t, db)
	article := createPublishedArticle(t, db, rclient, author.ID)
	ctx := context.Background()

	parent := &Comment{Content: "parent", ArticleID: article.ID, AuthorID: author.ID}
	require.NoError(t, CreateComment(ctx, rclient, db, parent))

	reply := &Comment{
		Content:         "a reply",
		ArticleID:       article.ID,
		AuthorID:        author.ID,
		ParentCommentID: &parent.ID,
	}
	require.NoError(t, CreateComment(ctx, rclient, db, reply))
	assert.Equal(t, 1, reply.Depth)
}

func TestCreateCommentDepthCap(t *testing.T) {
	db, rclient := newTestDB(t)
	author := createTestAuthor(t, db)
	article := createPublishedArticle(t, db, rclient, author.ID)
	ctx := context.Background()

	parent := &Comment{Content: "root", ArticleID: article.ID, AuthorID: author.ID}
	require.NoError(t, CreateComment(ctx, rclient, db, parent))

	for i := 0; i < MaxCommentDepth; i++ {
		child := &Comment{
			Content:         "nested",
			ArticleID:       article.ID,
			AuthorID:        author.ID,
			ParentCommentID: &parent.ID,
		}
		err := CreateComment(ctx, rclient, db, child)
		if i < MaxCommentDepth-1 {
			require.NoError(t, err)
			parent = child
			continue
		}
		// the parent sits at the cap already, one more level is too deep
		require.NoError(t, err)
		assert.Equal(t, MaxCommentDepth, child.Depth)

		tooDeep := &Comment{
			Content:         "one level too far",
			ArticleID:       article.ID,
			AuthorID:        author.ID,
			ParentCommentID: &child.ID,
		}
		assertErrCode(t, CreateComment(ctx, rclient, db, tooDeep), 400)
	}
}

func TestCreateCommentParentMustExist(t *testing.T) {
	db, rclient := newTestDB(t)
	author := createTestAuthor(t, db)
	article := createPublishedArticle(t, db, rclient, author.ID)
	ctx := context.Background()

	missing := uuid.New()
	comment := &Comment{
		Content:         "orphan reply",
		ArticleID:       article.ID,
		AuthorID:        author.ID,
		ParentCommentID: &missing,
	}
	assertErrCode(t, CreateComment(ctx, rclient, db, comment), 404)
}

func TestCreateCommentParentOnSameArticle(t *testing.T) {
	db, rclient := newTestDB(t)
	author := createTestAuthor(t, db)
	first := createPublishedArticle(t, db, rclient, author.ID)
	second := createPublishedArticle(t, db, rclient, author.ID)
	ctx := context.Background()

	parent := &Comment{Content: "on the first article", ArticleID: first.ID, AuthorID: author.ID}
	require.NoError(t, CreateComment(ctx, rclient, db, parent))

	crossReply := &Comment{
		Content:         "replying from the wrong article",
		ArticleID:       second.ID,
		AuthorID:        author.ID,
		ParentCommentID: &parent.ID,
	}
	assertErrCode(t, CreateComment(ctx, rclient, db, crossReply), 400)
}

func TestUpdateCommentMarksEdited(t *testing.T) {
	db, rclient := newTestDB(t)
	author := createTestAuthor(t, db)
	article := createPublishedArticle(t, db, rclient, author.ID)
	ctx := context.Background()

	comment := &Comment{Content: "typo herre", ArticleID: article.ID, AuthorID: author.ID}
	require.NoError(t, CreateComment(ctx, rclient, db, comment))

	updated, err := UpdateComment(ctx, rclient, db, comment.ID, "typo here")
	require.NoError(t, err)
	assert.Equal(t, "typo here", updated.Content)
	assert.True(t, updated.Edited)
}

func TestGetCommentsByArticleReturnsTopLevelWithReplies(t *testing.T) {
	db, rclient := newTestDB(t)
	author := createTestAuthor(t, db)
	article := createPublishedArticle(t, db, rclient, author.ID)
	ctx := context.Background()

	parent := &Comment{Content: "top level", ArticleID: article.ID, AuthorID: author.ID}
	require.NoError(t, CreateComment(ctx, rclient, db, parent))

	reply := &Comment{
		Content:         "nested reply",
		ArticleID:       article.ID,
		AuthorID:        author.ID,
		ParentCommentID: &parent.ID,
	}
	require.NoError(t, CreateComment(ctx, rclient, db, reply))

	comments, err := GetCommentsByArticle(ctx, rclient, db, article.ID, 1, 20)
	require.NoError(t, err)
	require.Len(t, comments, 1, "replies do not show up as top-level rows")
	require.Len(t, comments[0].Replies, 1)
	assert.Equal(t, "nested reply", comments[0].Replies[0].Content)
}

func TestDeleteCommentSoftDeletes(t *testing.T) {
	db, rclient := newTestDB(t)
	author := createTestAuthor(t, db)
	article := createPublishedArticle(t, db, rclient, author.ID)
	ctx := context.Background()

	comment := &Comment{Content: "going away", ArticleID: article.ID, AuthorID: author.ID}
	require.NoError(t, CreateComment(ctx, rclient, db, comment))

	require.NoError(t, DeleteComment(ctx, rclient, db, comment.ID))

	_, err := GetCommentBy(ctx, rclient, db, "id = ?", []interface{}{comment.ID})
	assertErrCode(t, err, 404)
}
