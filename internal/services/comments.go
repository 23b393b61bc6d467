package services

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"sufganiot/internal/metrics"
	"sufganiot/internal/models"
	"sufganiot/internal/utils"

	"gorm.io/gorm"
)

// PublicComment 对参赛者展示的评论，不含投票者身份
type PublicComment struct {
	Text      string    `json:"commentText"`
	CreatedAt time.Time `json:"createdAt"`
}

// CommentService 每个 (投票者, 作品) 一条评论，重复提交覆盖
type CommentService struct {
	db       *gorm.DB
	voting   *VotingService
	rankings *RankingService
	activity *ActivityService
}

func NewCommentService(db *gorm.DB, voting *VotingService, rankings *RankingService, activity *ActivityService) *CommentService {
	return &CommentService{db: db, voting: voting, rankings: rankings, activity: activity}
}

// normalizeComment 去标签、去首尾空白后长度须在 1..500
func normalizeComment(text string) (string, error) {
	text = utils.StripTags(text)
	n := utf8.RuneCountInString(text)
	if n == 0 {
		return "", fmt.Errorf("%w: comment must not be empty", ErrValidation)
	}
	if n > models.CommentMaxLength {
		return "", fmt.Errorf("%w: comment must be at most %d characters", ErrValidation, models.CommentMaxLength)
	}
	return text, nil
}

// SubmitComment 新建或更新评论，created 表示是否新建
func (s *CommentService) SubmitComment(ctx context.Context, voterID, sufganiaID, text string) (comment *models.Comment, created bool, err error) {
	if err := s.voting.AssertVotingOpen(ctx); err != nil {
		return nil, false, err
	}
	text, err = normalizeComment(text)
	if err != nil {
		return nil, false, err
	}

	unlock := s.voting.locks.Lock(voterID)
	defer unlock()

	var voter models.Couple
	if err := s.db.WithContext(ctx).First(&voter, "id = ?", voterID).Error; err != nil {
		return nil, false, notFound(err, "couple")
	}
	if err := s.voting.AssertCanVoteFor(ctx, voterID, sufganiaID); err != nil {
		return nil, false, err
	}

	var existing models.Comment
	err = s.db.WithContext(ctx).
		Where("couple_id = ? AND sufgania_id = ?", voterID, sufganiaID).
		First(&existing).Error
	switch {
	case err == nil:
		if err := s.db.WithContext(ctx).Model(&existing).Update("text", text).Error; err != nil {
			return nil, false, err
		}
		existing.Text = text
		comment = &existing
	case errors.Is(err, gorm.ErrRecordNotFound):
		comment = &models.Comment{CoupleID: voterID, SufganiaID: sufganiaID, Text: text}
		if err := s.db.WithContext(ctx).Create(comment).Error; err != nil {
			return nil, false, conflict(err, "comment")
		}
		created = true
	default:
		return nil, false, err
	}

	s.rankings.Invalidate()
	metrics.CommentsSubmitted.Inc()
	s.activity.Log(models.ActivityComment, voter.Name, "Commented on sufgania "+sufganiaID)
	return comment, created, nil
}

// ForSufgania 某作品的评论，最新在前，不暴露投票者
func (s *CommentService) ForSufgania(ctx context.Context, sufganiaID string) ([]PublicComment, error) {
	var comments []models.Comment
	err := s.db.WithContext(ctx).
		Where("sufgania_id = ?", sufganiaID).
		Order("created_at DESC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}

	out := make([]PublicComment, 0, len(comments))
	for _, c := range comments {
		out = append(out, PublicComment{Text: c.Text, CreatedAt: c.CreatedAt})
	}
	return out, nil
}

// All 管理端查看全部评论（含投票者和作品）
func (s *CommentService) All(ctx context.Context) ([]models.Comment, error) {
	comments := []models.Comment{}
	err := s.db.WithContext(ctx).
		Preload("Couple").
		Preload("Sufgania").
		Order("created_at DESC").
		Find(&comments).Error
	return comments, err
}
