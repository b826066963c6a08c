package services

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"opinions/internal/anon"
	"opinions/internal/models"
	"opinions/internal/observability/metrics"
	"opinions/internal/thread"

	"gorm.io/gorm"
)

// CommentView 对外返回的评论，userId 已按匿名设置处理
type CommentView struct {
	ID          string      `json:"_id"`
	Content     string      `json:"content"`
	OpinionID   string      `json:"opinionId"`
	ParentID    *string     `json:"parentId"`
	UserID      anon.Author `json:"userId"`
	IsAnonymous bool        `json:"isAnonymous"`
	CreatedAt   time.Time   `json:"createdAt"`
}

func (c CommentView) ThreadID() string { return c.ID }

func (c CommentView) ThreadParentID() string {
	if c.ParentID == nil {
		return ""
	}
	return *c.ParentID
}

// ThreadedComment 树形评论
type ThreadedComment struct {
	CommentView
	Replies []*ThreadedComment `json:"replies"`
}

func toThreaded(nodes []*thread.Tree[CommentView]) []*ThreadedComment {
	out := make([]*ThreadedComment, len(nodes))
	for i, n := range nodes {
		out[i] = &ThreadedComment{CommentView: n.Item, Replies: toThreaded(n.Replies)}
	}
	return out
}

type CreateCommentInput struct {
	Content     string
	OpinionID   string
	ParentID    string
	IsAnonymous bool
	UserID      string
}

type CommentService struct {
	db            *gorm.DB
	anon          *anon.Pseudonymizer
	notifications *NotificationService
	now           func() time.Time
}

func NewCommentService(db *gorm.DB, p *anon.Pseudonymizer, notifications *NotificationService) *CommentService {
	return &CommentService{db: db, anon: p, notifications: notifications, now: time.Now}
}

// sanitize 基于已 Preload 的 User 生成返回值，不修改原记录
func (s *CommentService) sanitize(c *models.Comment) CommentView {
	return CommentView{
		ID:          c.ID,
		Content:     c.Content,
		OpinionID:   c.OpinionID,
		ParentID:    c.ParentID,
		UserID:      s.anon.Mask(c.UserID, c.User.Username, c.OpinionID, c.IsAnonymous),
		IsAnonymous: c.IsAnonymous,
		CreatedAt:   c.CreatedAt,
	}
}

// depthOf 沿 parentId 向上最多走 MaxCommentDepth+1 步；祖先被删除时按根处理
func depthOf(db *gorm.DB, id string) (int, error) {
	return thread.Depth(id, models.MaxCommentDepth, func(cur string) (string, error) {
		var c models.Comment
		err := db.Select("id", "parent_id").First(&c, "id = ?", cur).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		if err != nil {
			return "", err
		}
		if c.ParentID == nil {
			return "", nil
		}
		return *c.ParentID, nil
	})
}

func (s *CommentService) Create(ctx context.Context, in CreateCommentInput) (*CommentView, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, newError(ErrValidation, "Comment content is required")
	}
	if utf8.RuneCountInString(content) > models.CommentContentMax {
		return nil, newError(ErrValidation, "Comment cannot be more than 200 characters")
	}
	opinionID := strings.TrimSpace(in.OpinionID)
	if opinionID == "" {
		return nil, newError(ErrValidation, "Opinion id is required")
	}

	db := withDB(ctx, s.db)

	var opinion models.Opinion
	if err := db.First(&opinion, "id = ?", opinionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(ErrNotFound, "Opinion not found")
		}
		return nil, err
	}

	depth := 0
	var parent *models.Comment
	if parentID := strings.TrimSpace(in.ParentID); parentID != "" {
		parent = &models.Comment{}
		if err := db.First(parent, "id = ?", parentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, newError(ErrNotFound, "Parent comment not found")
			}
			return nil, err
		}
		if parent.OpinionID != opinion.ID {
			return nil, newError(ErrValidation, "Parent comment belongs to another opinion")
		}

		parentDepth, err := depthOf(db, parent.ID)
		if err != nil {
			return nil, err
		}
		if parentDepth >= models.MaxCommentDepth {
			return nil, newError(ErrDepthExceeded, "Maximum reply depth reached")
		}
		depth = parentDepth + 1
	}

	comment := models.Comment{
		Content:     content,
		OpinionID:   opinion.ID,
		UserID:      in.UserID,
		IsAnonymous: in.IsAnonymous,
		CreatedAt:   s.now(),
	}
	if parent != nil {
		comment.ParentID = &parent.ID
	}

	if err := db.First(&comment.User, "id = ?", in.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(ErrAuth, "User not found")
		}
		return nil, err
	}
	if err := db.Omit("User", "Opinion").Create(&comment).Error; err != nil {
		return nil, err
	}

	metrics.CommentsCreatedTotal.WithLabelValues(strconv.Itoa(depth), strconv.FormatBool(in.IsAnonymous)).Inc()

	if s.notifications != nil {
		if err := s.notifications.NotifyComment(ctx, &comment, &opinion, parent); err != nil {
			slog.WarnContext(ctx, "failed to record comment notification", "comment_id", comment.ID, "error", err)
		}
	}

	view := s.sanitize(&comment)
	return &view, nil
}

// List 按创建时间正序
func (s *CommentService) List(ctx context.Context, opinionID string) ([]CommentView, error) {
	var comments []models.Comment
	if err := withDB(ctx, s.db).Preload("User").
		Where("opinion_id = ?", opinionID).
		Order("created_at ASC").Order("id ASC").
		Find(&comments).Error; err != nil {
		return nil, err
	}

	views := make([]CommentView, len(comments))
	for i := range comments {
		views[i] = s.sanitize(&comments[i])
	}
	return views, nil
}

func (s *CommentService) Thread(ctx context.Context, opinionID string) ([]*ThreadedComment, error) {
	views, err := s.List(ctx, opinionID)
	if err != nil {
		return nil, err
	}
	return toThreaded(thread.Assemble(views)), nil
}

// Delete 只有作者本人可以删除；回复保留，之后显示为顶层评论
func (s *CommentService) Delete(ctx context.Context, id, userID string) error {
	return withDB(ctx, s.db).Transaction(func(tx *gorm.DB) error {
		var comment models.Comment
		if err := tx.First(&comment, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return newError(ErrNotFound, "Comment not found")
			}
			return err
		}
		if comment.UserID != userID {
			return newError(ErrForbidden, "User not authorized")
		}

		if err := tx.Where("comment_id = ?", comment.ID).Delete(&models.Notification{}).Error; err != nil {
			return err
		}
		return tx.Delete(&comment).Error
	})
}
