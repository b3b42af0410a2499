package reactions

import (
	"context"

	"github.com/inkpress/inkwell/pkg/utils"
	"gorm.io/gorm"
)

// SeedReactionKinds populates the immutable reaction catalog. Existing
// entries are left untouched so the catalog stays stable across restarts.
func SeedReactionKinds(ctx context.Context, db *gorm.DB) error {
	kinds := []ReactionKind{
		{Name: "heart", Emoji: "❤️", DisplayName: "Heart"},
		{Name: "unicorn", Emoji: "\U0001F984", DisplayName: "Unicorn"},
		{Name: "fire", Emoji: "\U0001F525", DisplayName: "Fire"},
		{Name: "clap", Emoji: "\U0001F44F", DisplayName: "Clap"},
		{Name: "thinking", Emoji: "\U0001F914", DisplayName: "Thinking"},
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, kind := range kinds {
			var existing ReactionKind
			err := tx.Where("name = ?", kind.Name).First(&existing).Error
			if err == nil {
				continue
			}
			if err != gorm.ErrRecordNotFound {
				return utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to look up reaction kind")
			}
			if err := tx.Create(&kind).Error; err != nil {
				return utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to seed reaction kind")
			}
		}
		return nil
	})
}
