package services

import (
	"sufganiot/internal/config"

	"gorm.io/gorm"
)

// Services 组装全部服务，依赖显式传递
type Services struct {
	Activity  *ActivityService
	Rankings  *RankingService
	Settings  *SettingsService
	Voting    *VotingService
	Comments  *CommentService
	Couples   *CoupleService
	Sufganiot *SufganiaService
	Photos    *PhotoStorage
	Tokens    *TokenService
	Auth      *AuthService
}

func New(db *gorm.DB, cfg *config.Config) (*Services, error) {
	activity := NewActivityService(db)
	rankings, err := NewRankingService(db, cfg.CacheTTL)
	if err != nil {
		return nil, err
	}
	settings := NewSettingsService(db, rankings, activity)
	voting := NewVotingService(db, settings, rankings, activity)
	photos := NewPhotoStorage(cfg.UploadDir, cfg.MaxFileSize)
	couples := NewCoupleService(db, photos, rankings, activity)
	tokens := NewTokenService(cfg.JWTSecret, cfg.TokenTTL)

	auth, err := NewAuthService(tokens, couples, cfg.AdminPassword, cfg.AdminPasswordHash)
	if err != nil {
		return nil, err
	}

	return &Services{
		Activity:  activity,
		Rankings:  rankings,
		Settings:  settings,
		Voting:    voting,
		Comments:  NewCommentService(db, voting, rankings, activity),
		Couples:   couples,
		Sufganiot: NewSufganiaService(db, photos, rankings, activity),
		Photos:    photos,
		Tokens:    tokens,
		Auth:      auth,
	}, nil
}
