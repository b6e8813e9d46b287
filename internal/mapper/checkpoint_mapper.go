package mapper

import (
	"encoding/json"

	"github.com/yuw136/paper-helper/internal/entity"
	"github.com/yuw136/paper-helper/internal/model"
)

type CheckpointMapper struct{}

func NewCheckpointMapper() *CheckpointMapper {
	return &CheckpointMapper{}
}

func (m *CheckpointMapper) ToEntity(c *model.AgentCheckpoint) (*entity.Checkpoint, error) {
	if c == nil {
		return nil, nil
	}

	var state entity.CheckpointState
	if len(c.State) > 0 {
		if err := json.Unmarshal(c.State, &state); err != nil {
			return nil, err
		}
	}

	return &entity.Checkpoint{
		ThreadId:  c.ThreadId,
		State:     state,
		UpdatedAt: c.UpdatedAt,
	}, nil
}

func (m *CheckpointMapper) ToModel(c *entity.Checkpoint) (*model.AgentCheckpoint, error) {
	if c == nil {
		return nil, nil
	}

	raw, err := json.Marshal(c.State)
	if err != nil {
		return nil, err
	}

	return &model.AgentCheckpoint{
		ThreadId:  c.ThreadId,
		State:     raw,
		UpdatedAt: c.UpdatedAt,
	}, nil
}
