package model

import (
	"time"

	"gorm.io/gorm"
)

type Paper struct {
	Id          string         `gorm:"type:text;primaryKey"` // arXiv id, e.g. "2310.01340v2"
	Topic       string         `gorm:"type:text"`
	Title       string         `gorm:"type:text;not null"`
	Authors     string         `gorm:"type:text"`
	Summary     string         `gorm:"type:text"`
	PublishedAt *time.Time     `gorm:""`
	CreatedAt   time.Time      `gorm:"autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime"`
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

func (Paper) TableName() string {
	return "papers"
}
