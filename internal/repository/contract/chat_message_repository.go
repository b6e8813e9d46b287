package contract

import (
	"context"

	"github.com/yuw136/paper-helper/internal/entity"
	"github.com/yuw136/paper-helper/internal/repository/specification"
)

type ChatMessageRepository interface {
	Create(ctx context.Context, message *entity.ChatMessage) error
	Update(ctx context.Context, message *entity.ChatMessage) error
	Delete(ctx context.Context, id string) error
	DeleteByIds(ctx context.Context, ids []string) error // compaction removes folded messages
	DeleteByThreadId(ctx context.Context, threadId string) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatMessage, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatMessage, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
