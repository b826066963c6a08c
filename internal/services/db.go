package services

import (
	"context"

	"gorm.io/gorm"
)

// withDB 写操作一旦开始就执行完，不随请求取消
func withDB(ctx context.Context, db *gorm.DB) *gorm.DB {
	return db.WithContext(context.WithoutCancel(ctx))
}
