package services

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"opinions/internal/anon"
	"opinions/internal/models"
	"opinions/internal/observability/metrics"
	"opinions/internal/utils"

	"gorm.io/gorm"
)

const FeedPageSize = 20

// 排序方式
const (
	SortLatest  = "latest"
	SortPopular = "popular"
	SortHelpful = "helpful"
)

// 互动类型
const (
	InteractHelpful    = "helpful"
	InteractNotHelpful = "notHelpful"
)

// OpinionView 对外返回的观点，匿名时 userId 为 null
type OpinionView struct {
	ID            string       `json:"_id"`
	Title         string       `json:"title"`
	Content       string       `json:"content"`
	ContentHTML   string       `json:"contentHtml"`
	Topic         string       `json:"topic"`
	UserID        *anon.Author `json:"userId"`
	IsAnonymous   bool         `json:"isAnonymous"`
	Views         int          `json:"views"`
	Helpful       int          `json:"helpful"`
	NotHelpful    int          `json:"notHelpful"`
	CommentsCount int          `json:"commentsCount"`
	CreatedAt     time.Time    `json:"createdAt"`
}

func newOpinionView(o *models.Opinion) OpinionView {
	v := OpinionView{
		ID:            o.ID,
		Title:         o.Title,
		Content:       o.Content,
		ContentHTML:   utils.RenderMarkdown(o.Content),
		Topic:         o.Topic,
		IsAnonymous:   o.IsAnonymous,
		Views:         o.Views,
		Helpful:       o.Helpful,
		NotHelpful:    o.NotHelpful,
		CommentsCount: o.CommentsCount,
		CreatedAt:     o.CreatedAt,
	}
	if !o.IsAnonymous {
		v.UserID = &anon.Author{ID: o.UserID, Username: o.User.Username}
	}
	return v
}

type CreateOpinionInput struct {
	Title       string
	Content     string
	Topic       string
	IsAnonymous bool
	UserID      string
	IP          string
}

// FeedQuery 列表筛选；ViewerID 为当前登录用户，可为空
type FeedQuery struct {
	Topic    string
	Sort     string
	UserID   string
	ViewerID string
	Page     int
}

type OpinionService struct {
	db     *gorm.DB
	topics *TopicService
	now    func() time.Time
}

func NewOpinionService(db *gorm.DB, topics *TopicService) *OpinionService {
	return &OpinionService{db: db, topics: topics, now: time.Now}
}

func validateOpinion(in *CreateOpinionInput) error {
	in.Title = strings.TrimSpace(in.Title)
	in.Content = strings.TrimSpace(in.Content)
	in.Topic = strings.TrimSpace(in.Topic)

	switch {
	case in.Title == "" || in.Content == "" || in.Topic == "":
		return newError(ErrValidation, "Title, content and topic are required")
	case utf8.RuneCountInString(in.Title) > models.OpinionTitleMax:
		return newError(ErrValidation, "Title cannot be more than 100 characters")
	case utf8.RuneCountInString(in.Content) > models.OpinionContentMax:
		return newError(ErrValidation, "Content cannot be more than 2000 characters")
	}
	return nil
}

func (s *OpinionService) Create(ctx context.Context, in CreateOpinionInput) (*OpinionView, error) {
	if err := validateOpinion(&in); err != nil {
		return nil, err
	}

	opinion := models.Opinion{
		Title:       in.Title,
		Content:     in.Content,
		Topic:       in.Topic,
		UserID:      in.UserID,
		IsAnonymous: in.IsAnonymous,
		IP:          in.IP,
		CreatedAt:   s.now(),
	}

	topicCreated := false
	err := withDB(ctx, s.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&opinion.User, "id = ?", in.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return newError(ErrAuth, "User not found")
			}
			return err
		}

		created, err := s.topics.ensure(tx, in.Topic)
		if err != nil {
			return err
		}
		topicCreated = created

		return tx.Omit("User").Create(&opinion).Error
	})
	if err != nil {
		return nil, err
	}
	if topicCreated {
		s.topics.invalidate()
	}

	metrics.OpinionsCreatedTotal.Inc()
	view := newOpinionView(&opinion)
	return &view, nil
}

// List 首页 feed，每页 20 条
func (s *OpinionService) List(ctx context.Context, q FeedQuery) ([]OpinionView, error) {
	page := q.Page
	if page < 1 {
		page = 1
	}

	query := withDB(ctx, s.db).Preload("User")
	if topic := strings.TrimSpace(q.Topic); topic != "" {
		query = query.Where("topic = ?", topic)
	}
	if q.UserID != "" {
		query = query.Where("user_id = ?", q.UserID)
		// 别人看不到作者的匿名观点
		if q.ViewerID != q.UserID {
			query = query.Where("is_anonymous = ?", false)
		}
	}

	switch q.Sort {
	case SortPopular:
		query = query.Order("views DESC")
	case SortHelpful:
		query = query.Order("helpful DESC")
	}
	query = query.Order("created_at DESC").Order("id DESC")

	var opinions []models.Opinion
	if err := query.Limit(FeedPageSize).Offset((page - 1) * FeedPageSize).Find(&opinions).Error; err != nil {
		return nil, err
	}
	if err := s.fillCommentCounts(ctx, opinions); err != nil {
		return nil, err
	}

	views := make([]OpinionView, len(opinions))
	for i := range opinions {
		views[i] = newOpinionView(&opinions[i])
	}
	return views, nil
}

// fillCommentCounts 批量查询评论数
func (s *OpinionService) fillCommentCounts(ctx context.Context, opinions []models.Opinion) error {
	if len(opinions) == 0 {
		return nil
	}

	ids := make([]string, len(opinions))
	for i, o := range opinions {
		ids[i] = o.ID
	}

	type countResult struct {
		OpinionID string
		Count     int
	}
	var results []countResult
	if err := withDB(ctx, s.db).Model(&models.Comment{}).
		Select("opinion_id, COUNT(*) as count").
		Where("opinion_id IN ?", ids).
		Group("opinion_id").
		Scan(&results).Error; err != nil {
		return err
	}

	countMap := make(map[string]int, len(results))
	for _, r := range results {
		countMap[r.OpinionID] = r.Count
	}
	for i := range opinions {
		opinions[i].CommentsCount = countMap[opinions[i].ID]
	}
	return nil
}

func (s *OpinionService) load(ctx context.Context, id string) (*OpinionView, error) {
	var opinion models.Opinion
	if err := withDB(ctx, s.db).Preload("User").First(&opinion, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(ErrNotFound, "Opinion not found")
		}
		return nil, err
	}
	list := []models.Opinion{opinion}
	if err := s.fillCommentCounts(ctx, list); err != nil {
		return nil, err
	}
	view := newOpinionView(&list[0])
	return &view, nil
}

// increment 单条 UPDATE 自增，并发丢失更新可以接受
func (s *OpinionService) increment(ctx context.Context, id, column string) error {
	res := withDB(ctx, s.db).Model(&models.Opinion{}).
		Where("id = ?", id).
		UpdateColumn(column, gorm.Expr(column+" + ?", 1))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return newError(ErrNotFound, "Opinion not found")
	}
	return nil
}

// Get 详情页，浏览数 +1
func (s *OpinionService) Get(ctx context.Context, id string) (*OpinionView, error) {
	if err := s.increment(ctx, id, "views"); err != nil {
		return nil, err
	}
	return s.load(ctx, id)
}

func (s *OpinionService) Interact(ctx context.Context, id, kind string) (*OpinionView, error) {
	var column string
	switch kind {
	case InteractHelpful:
		column = "helpful"
	case InteractNotHelpful:
		column = "not_helpful"
	default:
		return nil, newError(ErrValidation, "Invalid interaction type")
	}

	if err := s.increment(ctx, id, column); err != nil {
		return nil, err
	}
	return s.load(ctx, id)
}

// Latest 用于 RSS，不计浏览数
func (s *OpinionService) Latest(ctx context.Context, limit int) ([]models.Opinion, error) {
	var opinions []models.Opinion
	err := withDB(ctx, s.db).Preload("User").
		Order("created_at DESC").
		Limit(limit).
		Find(&opinions).Error
	return opinions, err
}
