package services

import (
	"context"
	"log"
	"sync"

	"sufganiot/internal/models"

	"gorm.io/gorm"
)

const (
	DefaultActivityLimit = 20
	MaxActivityLimit     = 100

	ActorAdmin = "admin"
)

// ActivityService 审计日志。写入失败只记日志，不影响主流程。
type ActivityService struct {
	db *gorm.DB
	wg sync.WaitGroup
}

func NewActivityService(db *gorm.DB) *ActivityService {
	return &ActivityService{db: db}
}

// Record 同步写入一条活动记录
func (s *ActivityService) Record(ctx context.Context, typ models.ActivityType, actor, details string) error {
	activity := models.Activity{
		Type:    typ,
		Actor:   actor,
		Details: details,
	}
	return s.db.WithContext(ctx).Create(&activity).Error
}

// Log 异步写入（fire-and-forget）
func (s *ActivityService) Log(typ models.ActivityType, actor, details string) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.Record(context.Background(), typ, actor, details); err != nil {
			log.Printf("Failed to log activity %s: %v", typ, err)
		}
	}()
}

// Wait 等待所有异步写入完成（关闭服务前调用）
func (s *ActivityService) Wait() {
	s.wg.Wait()
}

// Recent 最近 limit 条记录，按时间倒序
func (s *ActivityService) Recent(ctx context.Context, limit int) ([]models.Activity, error) {
	if limit <= 0 {
		limit = DefaultActivityLimit
	}
	if limit > MaxActivityLimit {
		limit = MaxActivityLimit
	}

	var activities []models.Activity
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&activities).Error
	return activities, err
}
