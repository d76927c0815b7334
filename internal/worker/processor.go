package worker

import (
	"context"
	"fmt"
	"log/slog"

	"editflow.app/server/common/id"
	"editflow.app/server/internal/model"
	"editflow.app/server/internal/queue"
)

// Processor turns editor events into usage statistics and correction
// feedback.
type Processor struct{}

func NewProcessor() *Processor {
	return &Processor{}
}

func (p *Processor) Process(ctx context.Context, msg queue.Message, stores StoreProvider) error {
	switch msg.TaskType {
	case queue.TaskTypeTextSubmitted, queue.TaskTypeTextTransformed:
		return p.addStats(ctx, stores, msg.UserID, model.StatsDelta{UsedTokens: int64(msg.Cost)})

	case queue.TaskTypeCorrectionAccepted:
		return p.addStats(ctx, stores, msg.UserID, model.StatsDelta{
			Corrections: 1,
			UsedTokens:  int64(msg.Cost),
		})

	case queue.TaskTypeCorrectionRejected:
		fb := &model.CorrectionFeedback{
			ID:               id.New(),
			UserID:           msg.UserID,
			EditingSessionID: msg.EditingSessionID,
			Original:         msg.Original,
			Correction:       msg.Correction,
			Reason:           msg.Reason,
		}
		if err := stores.Feedback().Create(ctx, fb); err != nil {
			return fmt.Errorf("saving correction feedback: %w", err)
		}
		slog.InfoContext(ctx, "correction feedback recorded", "feedback_id", fb.ID)
		return nil

	case queue.TaskTypeDocumentSaved:
		return p.addStats(ctx, stores, msg.UserID, model.StatsDelta{
			EditedTexts: 1,
			UsedTokens:  int64(msg.Cost),
		})
	}

	return fmt.Errorf("unhandled task_type %q", msg.TaskType)
}

func (p *Processor) addStats(ctx context.Context, stores StoreProvider, userID int64, delta model.StatsDelta) error {
	if delta == (model.StatsDelta{}) {
		return nil
	}
	if err := stores.Stats().Increment(ctx, userID, delta); err != nil {
		return fmt.Errorf("incrementing user stats: %w", err)
	}
	return nil
}
