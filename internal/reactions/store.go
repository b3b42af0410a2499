package reactions

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	storage "github.com/inkpress/inkwell/pkg/redis"
	"github.com/inkpress/inkwell/pkg/utils"
	"gorm.io/gorm"
)

// Store applies reaction assignment decisions against the database.
type Store struct {
	db      *gorm.DB
	rclient *storage.RedisClient
}

func NewStore(db *gorm.DB, rclient *storage.RedisClient) *Store {
	return &Store{db: db, rclient: rclient}
}

func subjectNotFoundMsg(st SubjectType) string {
	if st == SubjectArticle {
		return "Article not found"
	}
	return "Comment not found"
}

// subjectTable maps a subject type to the table holding it.
func subjectTable(st SubjectType) string {
	if st == SubjectArticle {
		return "articles"
	}
	return "comments"
}

// SubjectExists checks that the reaction target is a live row.
func (s *Store) SubjectExists(ctx context.Context, st SubjectType, subjectID uuid.UUID) (bool, error) {
	if !st.Valid() {
		return false, utils.NewError(utils.ErrBadRequest.Code, "Unknown subject type")
	}
	var count int64
	err := s.db.WithContext(ctx).
		Table(subjectTable(st)).
		Where("id = ? AND deleted_at IS NULL", subjectID).
		Count(&count).Error
	if err != nil {
		return false, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to check subject")
	}
	return count > 0, nil
}

// LookupKind fetches a reaction kind from the catalog.
func (s *Store) LookupKind(ctx context.Context, kindID uuid.UUID) (*ReactionKind, error) {
	var kind ReactionKind
	if err := s.db.WithContext(ctx).First(&kind, "id = ?", kindID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, utils.NewError(utils.ErrNotFound.Code, "Reaction kind not found")
		}
		return nil, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to fetch reaction kind")
	}
	return &kind, nil
}

// Kinds returns the full catalog, cached in Redis.
func (s *Store) Kinds(ctx context.Context) ([]ReactionKind, error) {
	const cacheKey = "reaction_kinds"
	if cached, err := s.rclient.Get(ctx, cacheKey).Result(); err == nil {
		var kinds []ReactionKind
		if json.Unmarshal([]byte(cached), &kinds) == nil && len(kinds) > 0 {
			return kinds, nil
		}
	}

	var kinds []ReactionKind
	if err := s.db.WithContext(ctx).Order("created_at asc").Find(&kinds).Error; err != nil {
		return nil, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to fetch reaction catalog")
	}

	if kindsJSON, err := json.Marshal(kinds); err == nil {
		s.rclient.Set(ctx, cacheKey, kindsJSON, time.Hour)
	}
	return kinds, nil
}

// GetAssignment returns the user's current assignment for the subject, or
// nil when absent.
func (s *Store) GetAssignment(ctx context.Context, st SubjectType, subjectID, userID uuid.UUID) (*ReactionAssignment, error) {
	var assignment ReactionAssignment
	err := s.db.WithContext(ctx).
		Where("subject_type = ? AND subject_id = ? AND user_id = ?", st, subjectID, userID).
		First(&assignment).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to fetch reaction assignment")
	}
	return &assignment, nil
}

// AssignReaction runs the decision procedure for the user on the subject and
// applies it in one transaction. Replace deletes the old row before inserting
// the new one; the composite unique index backstops any interleaving, and a
// loser of a concurrent race gets ErrConflict.
func (s *Store) AssignReaction(ctx context.Context, st SubjectType, subjectID, userID, kindID uuid.UUID) (Outcome, error) {
	if !st.Valid() {
		return Outcome{}, utils.NewError(utils.ErrBadRequest.Code, "Unknown subject type")
	}

	exists, err := s.SubjectExists(ctx, st, subjectID)
	if err != nil {
		return Outcome{}, err
	}
	if !exists {
		return Outcome{}, utils.NewError(utils.ErrNotFound.Code, subjectNotFoundMsg(st))
	}

	if _, err := s.LookupKind(ctx, kindID); err != nil {
		return Outcome{}, err
	}

	var outcome Outcome
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing ReactionAssignment
		var existingPtr *ReactionAssignment
		ferr := tx.Where("subject_type = ? AND subject_id = ? AND user_id = ?", st, subjectID, userID).
			First(&existing).Error
		if ferr == nil {
			existingPtr = &existing
		} else if ferr != gorm.ErrRecordNotFound {
			return utils.WrapError(ferr, utils.ErrInternalServerError.Code, "Failed to fetch reaction assignment")
		}

		outcome = Decide(kindID, existingPtr)

		switch outcome.Kind {
		case OutcomeRejected:
			return utils.NewError(utils.ErrConflict.Code, "You already reacted with this reaction")
		case OutcomeReplace:
			// delete before insert so the unique index never sees two rows
			if err := tx.Unscoped().Delete(&existing).Error; err != nil {
				return utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to remove previous reaction")
			}
		}

		assignment := &ReactionAssignment{
			ID:             uuid.New(),
			SubjectType:    st,
			SubjectID:      subjectID,
			UserID:         userID,
			ReactionKindID: kindID,
		}
		if err := tx.Create(assignment).Error; err != nil {
			if isUniqueViolation(err) {
				return utils.NewError(utils.ErrConflict.Code, "A concurrent reaction update won; retry")
			}
			return utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to save reaction")
		}
		return nil
	})
	if err != nil {
		return outcome, err
	}

	s.invalidateSummary(ctx, st, subjectID)
	return outcome, nil
}

// RemoveReaction deletes the user's assignment on the subject. Removing a
// reaction that does not exist is a NotFound rejection.
func (s *Store) RemoveReaction(ctx context.Context, st SubjectType, subjectID, userID uuid.UUID) error {
	if !st.Valid() {
		return utils.NewError(utils.ErrBadRequest.Code, "Unknown subject type")
	}

	res := s.db.WithContext(ctx).Unscoped().
		Where("subject_type = ? AND subject_id = ? AND user_id = ?", st, subjectID, userID).
		Delete(&ReactionAssignment{})
	if res.Error != nil {
		return utils.WrapError(res.Error, utils.ErrInternalServerError.Code, "Failed to remove reaction")
	}
	if res.RowsAffected == 0 {
		return utils.NewError(utils.ErrNotFound.Code, "No reaction to remove")
	}

	s.invalidateSummary(ctx, st, subjectID)
	return nil
}

// Summary returns every catalog kind with its assignment count for the
// subject and whether the requester holds it. A nil requester yields
// HeldByRequester false across the board.
func (s *Store) Summary(ctx context.Context, st SubjectType, subjectID uuid.UUID, requesterID *uuid.UUID) ([]KindSummary, error) {
	if !st.Valid() {
		return nil, utils.NewError(utils.ErrBadRequest.Code, "Unknown subject type")
	}

	exists, err := s.SubjectExists(ctx, st, subjectID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, utils.NewError(utils.ErrNotFound.Code, subjectNotFoundMsg(st))
	}

	kinds, err := s.Kinds(ctx)
	if err != nil {
		return nil, err
	}

	counts, err := s.summaryCounts(ctx, st, subjectID)
	if err != nil {
		return nil, err
	}

	var heldKindID uuid.UUID
	if requesterID != nil {
		assignment, err := s.GetAssignment(ctx, st, subjectID, *requesterID)
		if err != nil {
			return nil, err
		}
		if assignment != nil {
			heldKindID = assignment.ReactionKindID
		}
	}

	summaries := make([]KindSummary, 0, len(kinds))
	for _, kind := range kinds {
		summaries = append(summaries, KindSummary{
			Kind:            kind,
			Count:           counts[kind.ID],
			HeldByRequester: requesterID != nil && kind.ID == heldKindID,
		})
	}
	return summaries, nil
}

type kindCount struct {
	ReactionKindID uuid.UUID
	Total          int64
}

// summaryCounts aggregates per-kind counts for a subject, cached in Redis and
// invalidated on every mutation.
func (s *Store) summaryCounts(ctx context.Context, st SubjectType, subjectID uuid.UUID) (map[uuid.UUID]int64, error) {
	cacheKey := summaryCacheKey(st, subjectID)
	if cached, err := s.rclient.Get(ctx, cacheKey).Result(); err == nil {
		var counts map[uuid.UUID]int64
		if json.Unmarshal([]byte(cached), &counts) == nil {
			return counts, nil
		}
	}

	var rows []kindCount
	err := s.db.WithContext(ctx).
		Model(&ReactionAssignment{}).
		Select("reaction_kind_id, COUNT(*) as total").
		Where("subject_type = ? AND subject_id = ?", st, subjectID).
		Group("reaction_kind_id").
		Scan(&rows).Error
	if err != nil {
		return nil, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to aggregate reactions")
	}

	counts := make(map[uuid.UUID]int64, len(rows))
	for _, row := range rows {
		counts[row.ReactionKindID] = row.Total
	}

	if countsJSON, err := json.Marshal(counts); err == nil {
		s.rclient.Set(ctx, cacheKey, countsJSON, 5*time.Minute)
	}
	return counts, nil
}

func summaryCacheKey(st SubjectType, subjectID uuid.UUID) string {
	return fmt.Sprintf("reactions:sum:%s:%s", st, subjectID)
}

func (s *Store) invalidateSummary(ctx context.Context, st SubjectType, subjectID uuid.UUID) {
	s.rclient.Del(ctx, summaryCacheKey(st, subjectID))
}

// isUniqueViolation detects a uniqueness constraint error across drivers.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "UNIQUE") ||
		strings.Contains(msg, "23505")
}
