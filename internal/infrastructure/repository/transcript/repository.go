package transcript

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "tutor-server/internal/domain/conversation"
	"tutor-server/internal/infrastructure/database/entities"
	"tutor-server/internal/utils/platformerrors"
)

// Repository persists conversation transcripts in postgres, one row per
// conversation identifier.
type Repository struct {
	db *gorm.DB
}

var _ domain.TranscriptStore = (*Repository)(nil)

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Load returns the conversation's ordered transcript lines. A never-written
// identifier yields an empty sequence, not an error.
func (r *Repository) Load(ctx context.Context, conversationID string) ([]string, error) {
	var entity entities.ConversationTranscript
	err := r.db.WithContext(ctx).Where("conversation_id = ?", conversationID).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to load transcript",
			err,
			"c1a9272e-4c1f-4c55-95d3-0f1df0a6b7e4",
		)
	}
	return domain.SplitDoc(entity.History), nil
}

// Append adds lines to the end of the persisted sequence, creating the row on
// first write. The read-modify-write runs in one transaction with the row
// locked, so concurrent appends through other instances cannot lose a write.
func (r *Repository) Append(ctx context.Context, conversationID string, lines []string) error {
	if len(lines) == 0 {
		return nil
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var entity entities.ConversationTranscript
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("conversation_id = ?", conversationID).
			First(&entity).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			entity = entities.ConversationTranscript{
				ConversationID: conversationID,
				History:        domain.JoinLines(lines),
			}
			return tx.Create(&entity).Error
		case err != nil:
			return err
		}

		entity.History = domain.JoinLines(append(domain.SplitDoc(entity.History), lines...))
		return tx.Model(&entity).Update("history", entity.History).Error
	})
	if err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to append transcript lines",
			err,
			"5b0d9c3f-8d22-47a0-9f96-6d1be2a7c013",
		)
	}
	return nil
}

// Clear deletes the stored transcript entirely. Clearing a never-written
// identifier is not an error.
func (r *Repository) Clear(ctx context.Context, conversationID string) error {
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Delete(&entities.ConversationTranscript{}).Error
	if err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to clear transcript",
			err,
			"9e4f6a81-3b7d-4e0c-8a52-c4d2f0b1a6e7",
		)
	}
	return nil
}
