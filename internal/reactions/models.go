package reactions

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SubjectType identifies which kind of record a reaction targets.
type SubjectType string

const (
	SubjectArticle SubjectType = "article"
	SubjectComment SubjectType = "comment"
)

// Valid reports whether the subject type is one of the known targets.
func (s SubjectType) Valid() bool {
	return s == SubjectArticle || s == SubjectComment
}

// ReactionKind is one catalog entry reactions can reference. The catalog is
// immutable reference data, seeded once and read-only thereafter.
type ReactionKind struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"size:50;not null;unique" json:"name" validate:"required,max=50"`
	Emoji       string    `gorm:"size:20;not null" json:"emoji" validate:"required,max=20"`
	DisplayName string    `gorm:"size:100;not null" json:"display_name" validate:"required,max=100"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// ReactionAssignment records that a user placed a reaction kind on a subject.
// The composite unique index enforces at most one assignment per
// (subject_type, subject_id, user_id); a user holds one kind per subject at
// a time. Rows are hard-deleted on remove and replace, an assignment is a
// fact rather than a document.
type ReactionAssignment struct {
	ID             uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	SubjectType    SubjectType `gorm:"size:20;not null;uniqueIndex:idx_reaction_subject_user" json:"subject_type" validate:"required,oneof=article comment"`
	SubjectID      uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex:idx_reaction_subject_user" json:"subject_id" validate:"required"`
	UserID         uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex:idx_reaction_subject_user;index:idx_reaction_user" json:"user_id" validate:"required"`
	ReactionKindID uuid.UUID   `gorm:"type:uuid;not null;index:idx_reaction_kind" json:"reaction_kind_id" validate:"required"`
	CreatedAt      time.Time   `gorm:"autoCreateTime" json:"created_at"`

	ReactionKind ReactionKind `gorm:"foreignKey:ReactionKindID" json:"reaction_kind" validate:"-"`
}

// KindSummary is one row of the aggregation read path: a catalog kind, how
// many users assigned it to the subject, and whether the requesting identity
// holds it.
type KindSummary struct {
	Kind            ReactionKind `json:"kind"`
	Count           int64        `json:"count"`
	HeldByRequester bool         `json:"held_by_requester"`
}

func (k *ReactionKind) BeforeCreate(tx *gorm.DB) error {
	if k.ID == uuid.Nil {
		k.ID = uuid.New()
	}
	return nil
}

func (a *ReactionAssignment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
