package services

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"sufganiot/internal/metrics"
	"sufganiot/internal/models"
	"sufganiot/internal/utils"

	"gorm.io/gorm"
)

const snapshotCacheKey = "results:snapshot"

// Statistics 投票概况
type Statistics struct {
	TotalCouples     int64   `json:"totalCouples"`
	VotedCouples     int64   `json:"votedCouples"`
	VotingPercentage float64 `json:"votingPercentage"` // 保留一位小数
	TotalSufganiot   int64   `json:"totalSufganiot"`
	TotalVotes       int64   `json:"totalVotes"`
	TotalComments    int64   `json:"totalComments"`
}

// Results 管理端完整结果
type Results struct {
	Rankings         []utils.EntryResult                     `json:"rankings"`
	CategoryRankings map[models.Category][]utils.EntryResult `json:"categoryRankings"`
	Statistics       Statistics                              `json:"statistics"`
}

// RankingService 加载数据快照并调用纯函数计分；快照短期缓存，任何写入后失效
type RankingService struct {
	db    *gorm.DB
	cache *utils.TTLCache
	ttl   time.Duration

	mu  sync.Mutex
	gen uint64 // Invalidate 时递增，加载期间变化的快照不写入缓存
}

func NewRankingService(db *gorm.DB, ttl time.Duration) (*RankingService, error) {
	cache, err := utils.NewTTLCache(8)
	if err != nil {
		return nil, err
	}
	return &RankingService{db: db, cache: cache, ttl: ttl}, nil
}

// Invalidate 清空缓存的快照
func (s *RankingService) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.cache.Purge()
}

func (s *RankingService) generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

// store 仅当加载开始后没有发生 Invalidate 时才缓存快照
func (s *RankingService) store(gen uint64, snap *utils.Snapshot) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ttl <= 0 || gen != s.gen {
		return false
	}
	s.cache.Set(snapshotCacheKey, snap, s.ttl)
	return true
}

// Snapshot 一次性读取计分所需全部数据（不要求时间点一致性）
func (s *RankingService) Snapshot(ctx context.Context) (*utils.Snapshot, error) {
	if cached, ok := s.cache.Get(snapshotCacheKey).(*utils.Snapshot); ok {
		metrics.ResultsCacheHits.WithLabelValues("hit").Inc()
		return cached, nil
	}
	metrics.ResultsCacheHits.WithLabelValues("miss").Inc()

	gen := s.generation()
	start := time.Now()
	defer metrics.RecordDBOperation("snapshot", "votes", start)

	conn := s.db.WithContext(ctx)
	snap := &utils.Snapshot{}
	if err := conn.Order("name ASC, id ASC").Find(&snap.Entries).Error; err != nil {
		return nil, err
	}
	if err := conn.Find(&snap.Couples).Error; err != nil {
		return nil, err
	}
	if err := conn.Find(&snap.Votes).Error; err != nil {
		return nil, err
	}
	if err := conn.Order("created_at ASC").Find(&snap.Comments).Error; err != nil {
		return nil, err
	}

	s.store(gen, snap)
	return snap, nil
}

// Rankings 总榜
func (s *RankingService) Rankings(ctx context.Context) ([]utils.EntryResult, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return utils.ComputeRankings(*snap), nil
}

// CategoryRankings 单类别榜单，CategoryRank 为类别名次
func (s *RankingService) CategoryRankings(ctx context.Context, category models.Category) ([]utils.EntryResult, error) {
	if !category.Valid() {
		return nil, fmt.Errorf("%w %q", ErrInvalidCategory, category)
	}
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return utils.ComputeCategoryRankings(*snap, category), nil
}

// Statistics 统计参与情况
func (s *RankingService) Statistics(ctx context.Context) (*Statistics, error) {
	conn := s.db.WithContext(ctx)
	stats := &Statistics{}

	if err := conn.Model(&models.Couple{}).Count(&stats.TotalCouples).Error; err != nil {
		return nil, err
	}
	if err := conn.Model(&models.Couple{}).Where("has_voted = ?", true).Count(&stats.VotedCouples).Error; err != nil {
		return nil, err
	}
	if err := conn.Model(&models.Sufgania{}).Count(&stats.TotalSufganiot).Error; err != nil {
		return nil, err
	}
	if err := conn.Model(&models.Vote{}).Count(&stats.TotalVotes).Error; err != nil {
		return nil, err
	}
	if err := conn.Model(&models.Comment{}).Count(&stats.TotalComments).Error; err != nil {
		return nil, err
	}

	if stats.TotalCouples > 0 {
		pct := float64(stats.VotedCouples) / float64(stats.TotalCouples) * 100
		stats.VotingPercentage = math.Round(pct*10) / 10
	}
	return stats, nil
}

// Results 管理端：总榜 + 三个类别榜 + 统计
func (s *RankingService) Results(ctx context.Context) (*Results, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	stats, err := s.Statistics(ctx)
	if err != nil {
		return nil, err
	}

	results := &Results{
		Rankings:         utils.ComputeRankings(*snap),
		CategoryRankings: make(map[models.Category][]utils.EntryResult, len(models.Categories)),
		Statistics:       *stats,
	}
	for _, c := range models.Categories {
		results.CategoryRankings[c] = utils.ComputeCategoryRankings(*snap, c)
	}
	return results, nil
}
