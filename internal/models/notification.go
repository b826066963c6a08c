package models

import (
	"time"

	"gorm.io/gorm"
)

type NotificationType string

const (
	NotificationTypeCommentOpinion NotificationType = "comment_opinion"
	NotificationTypeReplyComment   NotificationType = "reply_comment"
)

type Notification struct {
	ID        string           `gorm:"primaryKey;size:36" json:"_id"`
	UserID    string           `gorm:"size:36;not null;index" json:"userId"` // Receiver
	User      User             `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	ActorID   *string          `gorm:"size:36;index" json:"-"` // nil when the actor posted anonymously
	Actor     *User            `gorm:"foreignKey:ActorID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"-"`
	Type      NotificationType `gorm:"type:varchar(20);not null" json:"type"`
	OpinionID string           `gorm:"size:36;not null;index" json:"opinionId"`
	Opinion   Opinion          `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	CommentID string           `gorm:"size:36;not null" json:"commentId"`
	IsRead    bool             `gorm:"default:false;index" json:"isRead"`
	CreatedAt time.Time        `json:"createdAt"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	newID(&n.ID)
	return nil
}
