package implementation

import (
	"context"
	"errors"

	"github.com/yuw136/paper-helper/internal/entity"
	"github.com/yuw136/paper-helper/internal/mapper"
	"github.com/yuw136/paper-helper/internal/model"
	"github.com/yuw136/paper-helper/internal/repository/contract"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CheckpointRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.CheckpointMapper
}

func NewCheckpointRepository(db *gorm.DB) contract.CheckpointRepository {
	return &CheckpointRepositoryImpl{
		db:     db,
		mapper: mapper.NewCheckpointMapper(),
	}
}

func (r *CheckpointRepositoryImpl) Save(ctx context.Context, checkpoint *entity.Checkpoint) error {
	m, err := r.mapper.ToModel(checkpoint)
	if err != nil {
		return err
	}

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "thread_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"state", "updated_at"}),
		}).
		Create(m).Error
}

func (r *CheckpointRepositoryImpl) FindByThreadId(ctx context.Context, threadId string) (*entity.Checkpoint, error) {
	var m model.AgentCheckpoint
	err := r.db.WithContext(ctx).Where("thread_id = ?", threadId).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m)
}

func (r *CheckpointRepositoryImpl) DeleteByThreadId(ctx context.Context, threadId string) error {
	return r.db.WithContext(ctx).Where("thread_id = ?", threadId).Delete(&model.AgentCheckpoint{}).Error
}
