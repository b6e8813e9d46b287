package model

import (
	"time"

	"gorm.io/datatypes"
)

type AgentCheckpoint struct {
	ThreadId  string         `gorm:"type:text;primaryKey"`
	State     datatypes.JSON `gorm:"type:jsonb;not null"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
}

func (AgentCheckpoint) TableName() string {
	return "agent_checkpoints"
}
