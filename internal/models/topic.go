package models

import (
	"time"

	"gorm.io/gorm"
)

type Topic struct {
	ID          string    `gorm:"primaryKey;size:36" json:"_id"`
	Name        string    `gorm:"not null;uniqueIndex" json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (t *Topic) BeforeCreate(tx *gorm.DB) error {
	newID(&t.ID)
	return nil
}
