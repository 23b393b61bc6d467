package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"sufganiot/internal/metrics"
	"sufganiot/internal/models"

	"gorm.io/gorm"
)

// RankingInput 一个类别中对单个作品的名次
type RankingInput struct {
	SufganiaID string `json:"sufganiaId"`
	Rank       int    `json:"rank"`
}

// MyVote 投票者视角下的一条投票
type MyVote struct {
	SufganiaID   string `json:"sufganiaId"`
	SufganiaName string `json:"sufganiaName"`
	PhotoURL     string `json:"photoUrl"`
	CoupleName   string `json:"coupleName"`
	Rank         int    `json:"rank"`
}

// VotingService 投票资格判断 + 排名提交
type VotingService struct {
	db       *gorm.DB
	settings *SettingsService
	rankings *RankingService
	activity *ActivityService
	locks    *keyedMutex
}

func NewVotingService(db *gorm.DB, settings *SettingsService, rankings *RankingService, activity *ActivityService) *VotingService {
	return &VotingService{
		db:       db,
		settings: settings,
		rankings: rankings,
		activity: activity,
		locks:    newKeyedMutex(),
	}
}

// IsVotingOpen 设置不存在时按关闭处理（并懒创建）
func (s *VotingService) IsVotingOpen(ctx context.Context) (bool, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return false, err
	}
	return settings.VotingOpen, nil
}

// AssertVotingOpen 任何投票/评论写入前调用
func (s *VotingService) AssertVotingOpen(ctx context.Context) error {
	open, err := s.IsVotingOpen(ctx)
	if err != nil {
		return err
	}
	if !open {
		return ErrVotingClosed
	}
	return nil
}

// VotableEntries 除自己作品外的全部作品，按名称、ID 升序
func (s *VotingService) VotableEntries(ctx context.Context, voterID string) ([]models.Sufgania, error) {
	entries := []models.Sufgania{}
	err := s.db.WithContext(ctx).
		Where("couple_id <> ?", voterID).
		Order("name ASC, id ASC").
		Find(&entries).Error
	return entries, err
}

// AssertCanVoteFor 作品必须存在且不属于投票者
func (s *VotingService) AssertCanVoteFor(ctx context.Context, voterID, entryID string) error {
	return assertCanVoteFor(s.db.WithContext(ctx), voterID, entryID)
}

func assertCanVoteFor(tx *gorm.DB, voterID, entryID string) error {
	var entry models.Sufgania
	if err := tx.Select("id", "couple_id").First(&entry, "id = ?", entryID).Error; err != nil {
		return notFound(err, "sufgania "+entryID)
	}
	if entry.CoupleID == voterID {
		return ErrSelfVote
	}
	return nil
}

// validateRankings 检查顺序：非空 -> 名次/作品重复 -> 名次须为 1..k 的排列
func validateRankings(rankings []RankingInput) error {
	if len(rankings) == 0 {
		return fmt.Errorf("%w: rankings must be a non-empty list", ErrInvalidInput)
	}
	for _, r := range rankings {
		if strings.TrimSpace(r.SufganiaID) == "" {
			return fmt.Errorf("%w: sufganiaId is required", ErrInvalidInput)
		}
		if r.Rank < 1 {
			return fmt.Errorf("%w: rank must be a positive integer", ErrInvalidInput)
		}
	}

	ranks := make(map[int]bool, len(rankings))
	entries := make(map[string]bool, len(rankings))
	for _, r := range rankings {
		if ranks[r.Rank] || entries[r.SufganiaID] {
			return ErrDuplicateRank
		}
		ranks[r.Rank] = true
		entries[r.SufganiaID] = true
	}

	for _, r := range rankings {
		if r.Rank > len(rankings) {
			return fmt.Errorf("%w: ranks must run from 1 to %d", ErrInvalidInput, len(rankings))
		}
	}
	return nil
}

// SubmitCategoryRanking 用本次提交完整替换 (投票者, 类别) 的排名集合。
// 全部校验在写入前完成；写入在同一事务中，同一投票者的提交串行执行。
func (s *VotingService) SubmitCategoryRanking(ctx context.Context, voterID string, category models.Category, rankings []RankingInput) ([]models.Vote, error) {
	if err := s.AssertVotingOpen(ctx); err != nil {
		return nil, err
	}
	if !category.Valid() {
		return nil, fmt.Errorf("%w %q", ErrInvalidCategory, category)
	}
	if err := validateRankings(rankings); err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(voterID)
	defer unlock()

	var voter models.Couple
	if err := s.db.WithContext(ctx).First(&voter, "id = ?", voterID).Error; err != nil {
		return nil, notFound(err, "couple")
	}

	votes := make([]models.Vote, 0, len(rankings))
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		keep := make([]string, 0, len(rankings))
		for _, r := range rankings {
			if err := assertCanVoteFor(tx, voterID, r.SufganiaID); err != nil {
				return err
			}
			keep = append(keep, r.SufganiaID)
		}

		// 删除本次提交中不再出现的旧排名
		if err := tx.
			Where("couple_id = ? AND category = ? AND sufgania_id NOT IN ?", voterID, category, keep).
			Delete(&models.Vote{}).Error; err != nil {
			return err
		}

		for _, r := range rankings {
			var vote models.Vote
			err := tx.Where("couple_id = ? AND sufgania_id = ? AND category = ?", voterID, r.SufganiaID, category).
				First(&vote).Error
			switch {
			case err == nil:
				if vote.Rank != r.Rank {
					if err := tx.Model(&vote).Update("rank", r.Rank).Error; err != nil {
						return err
					}
					vote.Rank = r.Rank
				}
			case errors.Is(err, gorm.ErrRecordNotFound):
				vote = models.Vote{
					CoupleID:   voterID,
					SufganiaID: r.SufganiaID,
					Category:   category,
					Rank:       r.Rank,
				}
				if err := tx.Create(&vote).Error; err != nil {
					return conflict(err, "vote")
				}
			default:
				return err
			}
			votes = append(votes, vote)
		}

		return tx.Model(&models.Couple{}).Where("id = ?", voterID).Update("has_voted", true).Error
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(votes, func(i, j int) bool { return votes[i].Rank < votes[j].Rank })

	s.rankings.Invalidate()
	metrics.VotesSubmitted.WithLabelValues(string(category)).Inc()
	s.activity.Log(models.ActivityVote, voter.Name, fmt.Sprintf("Submitted %s rankings (%d sufganiot)", category, len(votes)))
	return votes, nil
}

// MyVotes 按类别分组，组内按名次升序
func (s *VotingService) MyVotes(ctx context.Context, voterID string) (map[models.Category][]MyVote, error) {
	var votes []models.Vote
	err := s.db.WithContext(ctx).
		Preload("Sufgania.Couple").
		Where("couple_id = ?", voterID).
		Find(&votes).Error
	if err != nil {
		return nil, err
	}

	grouped := make(map[models.Category][]MyVote, len(models.Categories))
	for _, c := range models.Categories {
		grouped[c] = []MyVote{}
	}
	for _, v := range votes {
		mv := MyVote{SufganiaID: v.SufganiaID, Rank: v.Rank}
		if v.Sufgania != nil {
			mv.SufganiaName = v.Sufgania.Name
			mv.PhotoURL = v.Sufgania.PhotoURL
			if v.Sufgania.Couple != nil {
				mv.CoupleName = v.Sufgania.Couple.Name
			}
		}
		grouped[v.Category] = append(grouped[v.Category], mv)
	}
	for _, c := range models.Categories {
		list := grouped[c]
		sort.Slice(list, func(i, j int) bool { return list[i].Rank < list[j].Rank })
	}
	return grouped, nil
}
