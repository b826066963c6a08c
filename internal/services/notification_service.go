package services

import (
	"context"
	"errors"
	"time"

	"opinions/internal/anon"
	"opinions/internal/models"

	"gorm.io/gorm"
)

const notificationListLimit = 50

// NotificationView actor 为 nil 表示匿名
type NotificationView struct {
	ID           string                  `json:"_id"`
	Type         models.NotificationType `json:"type"`
	Actor        *anon.Author            `json:"actor"`
	OpinionID    string                  `json:"opinionId"`
	OpinionTitle string                  `json:"opinionTitle"`
	CommentID    string                  `json:"commentId"`
	IsRead       bool                    `json:"isRead"`
	CreatedAt    time.Time               `json:"createdAt"`
}

type NotificationService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db, now: time.Now}
}

// NotifyComment 通知被回复的评论作者，或观点作者；不通知自己
func (s *NotificationService) NotifyComment(ctx context.Context, comment *models.Comment, opinion *models.Opinion, parent *models.Comment) error {
	receiver := opinion.UserID
	kind := models.NotificationTypeCommentOpinion
	if parent != nil {
		receiver = parent.UserID
		kind = models.NotificationTypeReplyComment
	}
	if receiver == comment.UserID {
		return nil
	}

	n := models.Notification{
		UserID:    receiver,
		Type:      kind,
		OpinionID: opinion.ID,
		CommentID: comment.ID,
		CreatedAt: s.now(),
	}
	if !comment.IsAnonymous {
		actor := comment.UserID
		n.ActorID = &actor
	}
	return withDB(ctx, s.db).Omit("User", "Actor", "Opinion").Create(&n).Error
}

func (s *NotificationService) List(ctx context.Context, userID string) ([]NotificationView, error) {
	var notifications []models.Notification
	if err := withDB(ctx, s.db).Preload("Actor").Preload("Opinion").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(notificationListLimit).
		Find(&notifications).Error; err != nil {
		return nil, err
	}

	views := make([]NotificationView, len(notifications))
	for i, n := range notifications {
		views[i] = NotificationView{
			ID:           n.ID,
			Type:         n.Type,
			OpinionID:    n.OpinionID,
			OpinionTitle: n.Opinion.Title,
			CommentID:    n.CommentID,
			IsRead:       n.IsRead,
			CreatedAt:    n.CreatedAt,
		}
		if n.Actor != nil {
			views[i].Actor = &anon.Author{ID: n.Actor.ID, Username: n.Actor.Username}
		}
	}
	return views, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := withDB(ctx, s.db).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

func (s *NotificationService) find(db *gorm.DB, id, userID string) (*models.Notification, error) {
	var n models.Notification
	if err := db.Where("id = ? AND user_id = ?", id, userID).First(&n).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(ErrNotFound, "Notification not found")
		}
		return nil, err
	}
	return &n, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, id, userID string) error {
	db := withDB(ctx, s.db)
	n, err := s.find(db, id, userID)
	if err != nil {
		return err
	}
	return db.Model(n).Update("is_read", true).Error
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) error {
	return withDB(ctx, s.db).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true).Error
}

func (s *NotificationService) Delete(ctx context.Context, id, userID string) error {
	db := withDB(ctx, s.db)
	n, err := s.find(db, id, userID)
	if err != nil {
		return err
	}
	return db.Delete(n).Error
}
