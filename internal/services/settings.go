package services

import (
	"context"
	"fmt"
	"time"

	"sufganiot/internal/db"
	"sufganiot/internal/models"

	"gorm.io/gorm"
)

// MinParticipation 低于该投票率时发布会给出警告
const MinParticipation = 50.0

// SettingsService 投票阶段控制：votingOpen / resultsPublished 两个独立开关 + 可选截止时间
type SettingsService struct {
	db       *gorm.DB
	rankings *RankingService
	activity *ActivityService
}

func NewSettingsService(db *gorm.DB, rankings *RankingService, activity *ActivityService) *SettingsService {
	return &SettingsService{db: db, rankings: rankings, activity: activity}
}

// Get 读取单例，不存在则创建（默认全部关闭）
func (s *SettingsService) Get(ctx context.Context) (*models.Settings, error) {
	return db.EnsureSettings(s.db.WithContext(ctx))
}

func (s *SettingsService) update(ctx context.Context, column string, value interface{}) (*models.Settings, error) {
	if _, err := s.Get(ctx); err != nil {
		return nil, err
	}
	err := s.db.WithContext(ctx).
		Model(&models.Settings{}).
		Where("id = ?", models.SettingsID).
		Update(column, value).Error
	if err != nil {
		return nil, err
	}
	return s.Get(ctx)
}

func (s *SettingsService) OpenVoting(ctx context.Context) (*models.Settings, error) {
	settings, err := s.update(ctx, "voting_open", true)
	if err == nil {
		s.activity.Log(models.ActivityVotingOpened, ActorAdmin, "Voting opened")
	}
	return settings, err
}

// CloseVoting 已有投票保留，只阻止新的提交
func (s *SettingsService) CloseVoting(ctx context.Context) (*models.Settings, error) {
	settings, err := s.update(ctx, "voting_open", false)
	if err == nil {
		s.activity.Log(models.ActivityVotingClosed, ActorAdmin, "Voting closed")
	}
	return settings, err
}

func (s *SettingsService) PublishResults(ctx context.Context) (*models.Settings, error) {
	settings, err := s.update(ctx, "results_published", true)
	if err == nil {
		s.activity.Log(models.ActivityResultsPublished, ActorAdmin, "Results published")
	}
	return settings, err
}

func (s *SettingsService) UnpublishResults(ctx context.Context) (*models.Settings, error) {
	settings, err := s.update(ctx, "results_published", false)
	if err == nil {
		s.activity.Log(models.ActivityResultsUnpublished, ActorAdmin, "Results unpublished")
	}
	return settings, err
}

// SetVotingEndsAt 只做展示用，不会到点自动关闭；传 nil 清除
func (s *SettingsService) SetVotingEndsAt(ctx context.Context, endsAt *time.Time) (*models.Settings, error) {
	settings, err := s.update(ctx, "voting_ends_at", endsAt)
	if err != nil {
		return nil, err
	}
	details := "Voting end time cleared"
	if endsAt != nil {
		details = "Voting end time set to " + endsAt.UTC().Format(time.RFC3339)
	}
	s.activity.Log(models.ActivityVotingEndTimeSet, ActorAdmin, details)
	return settings, nil
}

// PublishReport 发布前检查结果
type PublishReport struct {
	CanPublish bool       `json:"canPublish"`
	Issues     []string   `json:"issues"`
	Warnings   []string   `json:"warnings"`
	Statistics Statistics `json:"statistics"`
}

// PublishChecks 列出阻止发布的问题和警告；PublishResults 本身不做限制
func (s *SettingsService) PublishChecks(ctx context.Context) (*PublishReport, error) {
	settings, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	stats, err := s.rankings.Statistics(ctx)
	if err != nil {
		return nil, err
	}

	report := &PublishReport{
		Issues:     []string{},
		Warnings:   []string{},
		Statistics: *stats,
	}
	if settings.VotingOpen {
		report.Issues = append(report.Issues, "Voting is still open")
	}
	if stats.TotalCouples == 0 {
		report.Issues = append(report.Issues, "No couples registered")
	}
	if stats.TotalSufganiot == 0 {
		report.Issues = append(report.Issues, "No sufganiot registered")
	}
	if stats.TotalVotes == 0 {
		report.Issues = append(report.Issues, "No votes have been cast")
	}
	if stats.TotalCouples > 0 && stats.VotingPercentage < MinParticipation {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("Only %.1f%% of couples have voted", stats.VotingPercentage))
	}
	report.CanPublish = len(report.Issues) == 0
	return report, nil
}
