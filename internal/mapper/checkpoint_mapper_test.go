package mapper

import (
	"testing"

	"github.com/yuw136/paper-helper/internal/entity"
	"github.com/yuw136/paper-helper/internal/model"

	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"
)

func TestCheckpointMapperRoundTrip(t *testing.T) {
	m := NewCheckpointMapper()

	cp := &entity.Checkpoint{
		ThreadId: "thread-1",
		State: entity.CheckpointState{
			PaperId:    "paper-1",
			PaperTopic: "spectral graph theory",
			Summary:    "They discussed eigenvalue bounds.",
			TurnCount:  4,
		},
	}

	mod, err := m.ToModel(cp)
	assert.NoError(t, err)
	assert.JSONEq(t,
		`{"paper_id":"paper-1","paper_topic":"spectral graph theory","summary":"They discussed eigenvalue bounds.","turn_count":4}`,
		string(mod.State))

	back, err := m.ToEntity(mod)
	assert.NoError(t, err)
	assert.Equal(t, cp.ThreadId, back.ThreadId)
	assert.Equal(t, cp.State, back.State)
}

func TestCheckpointMapperEmptyState(t *testing.T) {
	m := NewCheckpointMapper()

	back, err := m.ToEntity(&model.AgentCheckpoint{ThreadId: "thread-1"})
	assert.NoError(t, err)
	assert.Equal(t, entity.CheckpointState{}, back.State)
}

func TestCheckpointMapperCorruptState(t *testing.T) {
	m := NewCheckpointMapper()

	_, err := m.ToEntity(&model.AgentCheckpoint{
		ThreadId: "thread-1",
		State:    datatypes.JSON(`not json`),
	})
	assert.Error(t, err)
}

func TestCheckpointMapperNil(t *testing.T) {
	m := NewCheckpointMapper()

	e, err := m.ToEntity(nil)
	assert.NoError(t, err)
	assert.Nil(t, e)

	mod, err := m.ToModel(nil)
	assert.NoError(t, err)
	assert.Nil(t, mod)
}
