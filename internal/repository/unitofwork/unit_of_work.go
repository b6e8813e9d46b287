package unitofwork

import (
	"context"

	"github.com/yuw136/paper-helper/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	PaperRepository() contract.PaperRepository
	PaperChunkRepository() contract.PaperChunkRepository

	ChatSessionRepository() contract.ChatSessionRepository
	ChatMessageRepository() contract.ChatMessageRepository
	CheckpointRepository() contract.CheckpointRepository
}
