package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	OpinionTitleMax   = 100
	OpinionContentMax = 2000
)

type Opinion struct {
	ID          string    `gorm:"primaryKey;size:36" json:"_id"`
	Title       string    `gorm:"size:100;not null" json:"title"`
	Content     string    `gorm:"type:text;not null" json:"content"`
	Topic       string    `gorm:"not null;index" json:"topic"` // 自由文本，不是外键
	UserID      string    `gorm:"size:36;not null;index" json:"userId"`
	User        User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	IsAnonymous bool      `gorm:"default:false" json:"isAnonymous"`
	Views       int       `gorm:"default:0;index" json:"views"`
	Helpful     int       `gorm:"default:0" json:"helpful"`
	NotHelpful  int       `gorm:"default:0" json:"notHelpful"`
	IP          string    `gorm:"size:64" json:"-"` // audit only
	CreatedAt   time.Time `gorm:"index" json:"createdAt"`

	// 非数据库字段，用于查询时填充
	CommentsCount int `gorm:"-" json:"commentsCount"`
}

func (o *Opinion) BeforeCreate(tx *gorm.DB) error {
	newID(&o.ID)
	return nil
}
