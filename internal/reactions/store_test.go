package reactions

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	articles "github.com/inkpress/inkwell/internal/models/articles"
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

// newTestStore opens an in-memory database and a redis client pointed at a
// dead address. The store treats every cache error as a miss, so the tests
// exercise the database paths directly.
func newTestStore(t *testing.T) *Store {
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
		&articles.Article{},
		&articles.Comment{},
		&ReactionKind{},
		&ReactionAssignment{},
	))

	rclient := &storage.RedisClient{Client: redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})}

	return NewStore(db, rclient)
}

func seedKinds(t *testing.T, s *Store) []ReactionKind {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, SeedReactionKinds(ctx, s.db))

	kinds, err := s.Kinds(ctx)
	require.NoError(t, err)
	require.Len(t, kinds, 5)
	return kinds
}

func createTestArticle(t *testing.T, s *Store) uuid.UUID {
	t.Helper()
	article := &articles.Article{
		Title:    "Testing reactions end to end",
		Slug:     "testing-reactions-" + uuid.NewString()[:8],
		Content:  "body",
		Status:   "published",
		AuthorID: uuid.New(),
	}
	require.NoError(t, s.db.Omit(clause.Associations).Create(article).Error)
	return article.ID
}

func createTestComment(t *testing.T, s *Store, articleID uuid.UUID) uuid.UUID {
	t.Helper()
	comment := &articles.Comment{
		Content:   "a comment worth reacting to",
		ArticleID: articleID,
		AuthorID:  uuid.New(),
	}
	require.NoError(t, s.db.Omit(clause.Associations).Create(comment).Error)
	return comment.ID
}

func assertStatus(t *testing.T, err error, code int) {
	t.Helper()
	require.Error(t, err)
	var appErr *utils.CustomError
	require.True(t, utils.As(err, &appErr), "expected a CustomError, got %v", err)
	assert.Equal(t, code, appErr.Code)
}

func TestAssignReactionInsert(t *testing.T) {
	s := newTestStore(t)
	kinds := seedKinds(t, s)
	articleID := createTestArticle(t, s)
	userID := uuid.New()
	ctx := context.Background()

	outcome, err := s.AssignReaction(ctx, SubjectArticle, articleID, userID, kinds[0].ID)
	require.NoError(t, err)
	assert.Equal(t, OutcomeInsert, outcome.Kind)
	assert.Equal(t, kinds[0].ID, outcome.NewKindID)

	assignment, err := s.GetAssignment(ctx, SubjectArticle, articleID, userID)
	require.NoError(t, err)
	require.NotNil(t, assignment)
	assert.Equal(t, kinds[0].ID, assignment.ReactionKindID)
}

func TestAssignReactionSameKindRejected(t *testing.T) {
	s := newTestStore(t)
	kinds := seedKinds(t, s)
	articleID := createTestArticle(t, s)
	userID := uuid.New()
	ctx := context.Background()

	_, err := s.AssignReaction(ctx, SubjectArticle, articleID, userID, kinds[0].ID)
	require.NoError(t, err)

	_, err = s.AssignReaction(ctx, SubjectArticle, articleID, userID, kinds[0].ID)
	assertStatus(t, err, 409)

	var count int64
	require.NoError(t, s.db.Model(&ReactionAssignment{}).
		Where("subject_id = ? AND user_id = ?", articleID, userID).
		Count(&count).Error)
	assert.Equal(t, int64(1), count, "rejection must not mutate the row")
}

func TestAssignReactionReplace(t *testing.T) {
	s := newTestStore(t)
	kinds := seedKinds(t, s)
	articleID := createTestArticle(t, s)
	userID := uuid.New()
	ctx := context.Background()

	_, err := s.AssignReaction(ctx, SubjectArticle, articleID, userID, kinds[0].ID)
	require.NoError(t, err)

	outcome, err := s.AssignReaction(ctx, SubjectArticle, articleID, userID, kinds[1].ID)
	require.NoError(t, err)
	assert.Equal(t, OutcomeReplace, outcome.Kind)
	assert.Equal(t, kinds[0].ID, outcome.OldKindID)
	assert.Equal(t, kinds[1].ID, outcome.NewKindID)

	var rows []ReactionAssignment
	require.NoError(t, s.db.Where("subject_id = ? AND user_id = ?", articleID, userID).Find(&rows).Error)
	require.Len(t, rows, 1, "replace must leave exactly one assignment")
	assert.Equal(t, kinds[1].ID, rows[0].ReactionKindID)
}

func TestAssignReactionUnknownSubject(t *testing.T) {
	s := newTestStore(t)
	kinds := seedKinds(t, s)
	ctx := context.Background()

	_, err := s.AssignReaction(ctx, SubjectArticle, uuid.New(), uuid.New(), kinds[0].ID)
	assertStatus(t, err, 404)
}

func TestAssignReactionUnknownKind(t *testing.T) {
	s := newTestStore(t)
	seedKinds(t, s)
	articleID := createTestArticle(t, s)
	ctx := context.Background()

	_, err := s.AssignReaction(ctx, SubjectArticle, articleID, uuid.New(), uuid.New())
	assertStatus(t, err, 404)
}

func TestAssignReactionInvalidSubjectType(t *testing.T) {
	s := newTestStore(t)
	kinds := seedKinds(t, s)
	ctx := context.Background()

	_, err := s.AssignReaction(ctx, SubjectType("post"), uuid.New(), uuid.New(), kinds[0].ID)
	assertStatus(t, err, 400)
}

func TestAssignReactionOnComment(t *testing.T) {
	s := newTestStore(t)
	kinds := seedKinds(t, s)
	articleID := createTestArticle(t, s)
	commentID := createTestComment(t, s, articleID)
	userID := uuid.New()
	ctx := context.Background()

	outcome, err := s.AssignReaction(ctx, SubjectComment, commentID, userID, kinds[2].ID)
	require.NoError(t, err)
	assert.Equal(t, OutcomeInsert, outcome.Kind)

	// same user, same kind, different subject type is independent
	_, err = s.AssignReaction(ctx, SubjectArticle, articleID, userID, kinds[2].ID)
	require.NoError(t, err)
}

func TestRemoveReaction(t *testing.T) {
	s := newTestStore(t)
	kinds := seedKinds(t, s)
	articleID := createTestArticle(t, s)
	userID := uuid.New()
	ctx := context.Background()

	_, err := s.AssignReaction(ctx, SubjectArticle, articleID, userID, kinds[0].ID)
	require.NoError(t, err)

	require.NoError(t, s.RemoveReaction(ctx, SubjectArticle, articleID, userID))

	assignment, err := s.GetAssignment(ctx, SubjectArticle, articleID, userID)
	require.NoError(t, err)
	assert.Nil(t, assignment)

	// removing again is a rejection, not a no-op
	err = s.RemoveReaction(ctx, SubjectArticle, articleID, userID)
	assertStatus(t, err, 404)
}

func TestRemoveReactionWithoutAssignment(t *testing.T) {
	s := newTestStore(t)
	seedKinds(t, s)
	articleID := createTestArticle(t, s)
	ctx := context.Background()

	err := s.RemoveReaction(ctx, SubjectArticle, articleID, uuid.New())
	assertStatus(t, err, 404)
}

func TestSummaryAggregation(t *testing.T) {
	s := newTestStore(t)
	kinds := seedKinds(t, s)
	articleID := createTestArticle(t, s)
	ctx := context.Background()

	alice := uuid.New()
	bob := uuid.New()
	carol := uuid.New()

	_, err := s.AssignReaction(ctx, SubjectArticle, articleID, alice, kinds[0].ID)
	require.NoError(t, err)
	_, err = s.AssignReaction(ctx, SubjectArticle, articleID, bob, kinds[0].ID)
	require.NoError(t, err)
	_, err = s.AssignReaction(ctx, SubjectArticle, articleID, carol, kinds[1].ID)
	require.NoError(t, err)

	summary, err := s.Summary(ctx, SubjectArticle, articleID, &alice)
	require.NoError(t, err)
	require.Len(t, summary, len(kinds), "summary covers every catalog kind")

	byKind := make(map[uuid.UUID]KindSummary, len(summary))
	for _, row := range summary {
		byKind[row.Kind.ID] = row
	}

	assert.Equal(t, int64(2), byKind[kinds[0].ID].Count)
	assert.True(t, byKind[kinds[0].ID].HeldByRequester)
	assert.Equal(t, int64(1), byKind[kinds[1].ID].Count)
	assert.False(t, byKind[kinds[1].ID].HeldByRequester)
	assert.Equal(t, int64(0), byKind[kinds[2].ID].Count)
	assert.False(t, byKind[kinds[2].ID].HeldByRequester)
}

func TestSummaryAnonymousRequester(t *testing.T) {
	s := newTestStore(t)
	kinds := seedKinds(t, s)
	articleID := createTestArticle(t, s)
	ctx := context.Background()

	_, err := s.AssignReaction(ctx, SubjectArticle, articleID, uuid.New(), kinds[0].ID)
	require.NoError(t, err)

	summary, err := s.Summary(ctx, SubjectArticle, articleID, nil)
	require.NoError(t, err)
	for _, row := range summary {
		assert.False(t, row.HeldByRequester, "anonymous reads never hold a reaction")
	}
}

func TestSummaryUnknownSubject(t *testing.T) {
	s := newTestStore(t)
	seedKinds(t, s)
	ctx := context.Background()

	_, err := s.Summary(ctx, SubjectArticle, uuid.New(), nil)
	assertStatus(t, err, 404)
}

func TestSummaryExcludesSoftDeletedSubject(t *testing.T) {
	s := newTestStore(t)
	seedKinds(t, s)
	articleID := createTestArticle(t, s)
	ctx := context.Background()

	require.NoError(t, s.db.Delete(&articles.Article{}, "id = ?", articleID).Error)

	_, err := s.Summary(ctx, SubjectArticle, articleID, nil)
	assertStatus(t, err, 404)
}

func TestUniqueIndexBackstopsRaces(t *testing.T) {
	s := newTestStore(t)
	kinds := seedKinds(t, s)
	articleID := createTestArticle(t, s)
	userID := uuid.New()
	ctx := context.Background()

	_, err := s.AssignReaction(ctx, SubjectArticle, articleID, userID, kinds[0].ID)
	require.NoError(t, err)

	// a racing writer that slips past the existence read hits the index
	dup := &ReactionAssignment{
		SubjectType:    SubjectArticle,
		SubjectID:      articleID,
		UserID:         userID,
		ReactionKindID: kinds[1].ID,
	}
	err = s.db.Omit(clause.Associations).Create(dup).Error
	require.Error(t, err)
	assert.True(t, isUniqueViolation(err))
}

func TestSeedReactionKindsIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, SeedReactionKinds(ctx, s.db))
	require.NoError(t, SeedReactionKinds(ctx, s.db))

	var count int64
	require.NoError(t, s.db.Model(&ReactionKind{}).Count(&count).Error)
	assert.Equal(t, int64(5), count)
}

func TestKindsOrderedByCreation(t *testing.T) {
	s := newTestStore(t)
	seedKinds(t, s)
	ctx := context.Background()

	kinds, err := s.Kinds(ctx)
	require.NoError(t, err)

	names := make([]string, 0, len(kinds))
	for _, k := range kinds {
		names = append(names, k.Name)
	}
	assert.Equal(t, []string{"heart", "unicorn", "fire", "clap", "thinking"}, names)
}
