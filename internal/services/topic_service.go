package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"opinions/internal/models"
	"opinions/internal/utils"

	"gorm.io/gorm"
)

const (
	topicListKey = "topics:all"
	topicListTTL = time.Minute
	topicNameMax = 50
)

// DefaultTopics 初始话题
var DefaultTopics = []string{"Technology", "Politics", "Entertainment", "Sports", "Science"}

type TopicService struct {
	db    *gorm.DB
	cache *utils.Cache[[]models.Topic]
}

func NewTopicService(db *gorm.DB) *TopicService {
	cache, err := utils.NewCache[[]models.Topic](8)
	if err != nil {
		panic(err)
	}
	return &TopicService{db: db, cache: cache}
}

func topicDescription(name string) string {
	return "Opinions about " + name
}

// List 按名称排序，带一分钟本地缓存
func (s *TopicService) List(ctx context.Context) ([]models.Topic, error) {
	if topics, ok := s.cache.Get(topicListKey); ok {
		return topics, nil
	}

	topics := make([]models.Topic, 0)
	if err := withDB(ctx, s.db).Order("name ASC").Find(&topics).Error; err != nil {
		return nil, err
	}
	s.cache.Set(topicListKey, topics, topicListTTL)
	return topics, nil
}

func (s *TopicService) Create(ctx context.Context, name, description string) (*models.Topic, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, newError(ErrValidation, "Topic name is required")
	}
	if len([]rune(name)) > topicNameMax {
		return nil, newError(ErrValidation, "Topic name is too long")
	}

	db := withDB(ctx, s.db)
	if _, found, err := findTopic(db, name); err != nil {
		return nil, err
	} else if found {
		return nil, newError(ErrValidation, "Topic already exists")
	}

	description = strings.TrimSpace(description)
	if description == "" {
		description = topicDescription(name)
	}
	topic := models.Topic{Name: name, Description: description}
	if err := db.Create(&topic).Error; err != nil {
		return nil, err
	}
	s.cache.Delete(topicListKey)
	return &topic, nil
}

// ensure 话题不存在时自动创建 (忽略大小写)，返回是否新建
func (s *TopicService) ensure(tx *gorm.DB, name string) (bool, error) {
	if _, found, err := findTopic(tx, name); err != nil || found {
		return false, err
	}
	topic := models.Topic{Name: name, Description: topicDescription(name)}
	if err := tx.Create(&topic).Error; err != nil {
		return false, err
	}
	return true, nil
}

// invalidate 在事务提交后调用
func (s *TopicService) invalidate() {
	s.cache.Delete(topicListKey)
}

func findTopic(db *gorm.DB, name string) (*models.Topic, bool, error) {
	var topic models.Topic
	err := db.Where("LOWER(name) = LOWER(?)", name).First(&topic).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &topic, true, nil
}

// Seed 写入默认话题，已存在的跳过
func (s *TopicService) Seed(ctx context.Context) (int, error) {
	db := withDB(ctx, s.db)
	created := 0
	for _, name := range DefaultTopics {
		ok, err := s.ensure(db, name)
		if err != nil {
			return created, err
		}
		if ok {
			created++
		}
	}
	if created > 0 {
		s.invalidate()
	}
	return created, nil
}
