package services

import (
	"context"
	"errors"
	"time"

	"opinions/internal/models"

	"gorm.io/gorm"
)

// Profile 公开主页，不含邮箱
type Profile struct {
	ID            string    `json:"_id"`
	Username      string    `json:"username"`
	CreatedAt     time.Time `json:"createdAt"`
	OpinionsCount int64     `json:"opinionsCount"`
}

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// Profile 只统计非匿名观点
func (s *UserService) Profile(ctx context.Context, id string) (*Profile, error) {
	db := withDB(ctx, s.db)

	var user models.User
	if err := db.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(ErrNotFound, "User not found")
		}
		return nil, err
	}

	p := &Profile{ID: user.ID, Username: user.Username, CreatedAt: user.CreatedAt}
	if err := db.Model(&models.Opinion{}).
		Where("user_id = ? AND is_anonymous = ?", user.ID, false).
		Count(&p.OpinionsCount).Error; err != nil {
		return nil, err
	}
	return p, nil
}
