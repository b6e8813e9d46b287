package contract

import (
	"context"

	"github.com/yuw136/paper-helper/internal/entity"
)

type CheckpointRepository interface {
	// Save upserts the thread's checkpoint: one row per thread, latest wins.
	Save(ctx context.Context, checkpoint *entity.Checkpoint) error
	FindByThreadId(ctx context.Context, threadId string) (*entity.Checkpoint, error)
	DeleteByThreadId(ctx context.Context, threadId string) error
}
