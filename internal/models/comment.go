package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	CommentContentMax = 200
	// MaxCommentDepth is the deepest level a comment may sit at; root comments are depth 0.
	MaxCommentDepth = 2
)

type Comment struct {
	ID        string  `gorm:"primaryKey;size:36" json:"_id"`
	Content   string  `gorm:"type:text;not null" json:"content"`
	OpinionID string  `gorm:"size:36;not null;index" json:"opinionId"`
	Opinion   Opinion `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	UserID    string  `gorm:"size:36;not null;index" json:"userId"` // real author, even when anonymous
	User      User    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	// No FK on the parent: deleting a comment leaves its replies as orphans.
	ParentID    *string   `gorm:"size:36;index" json:"parentId"`
	IsAnonymous bool      `gorm:"default:false" json:"isAnonymous"`
	CreatedAt   time.Time `gorm:"index" json:"createdAt"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	newID(&c.ID)
	return nil
}
