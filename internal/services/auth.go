package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sufganiot/internal/models"
	"sufganiot/internal/utils"

	"golang.org/x/crypto/bcrypt"
)

// Session 登录成功返回
type Session struct {
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expiresAt"`
	Role      Role           `json:"role"`
	Couple    *models.Couple `json:"couple,omitempty"`
}

// AuthService 管理员密码登录 / 情侣登录码登录
type AuthService struct {
	tokens    *TokenService
	couples   *CoupleService
	adminHash []byte
}

// NewAuthService passwordHash 优先；否则对明文密码做 bcrypt，后续只比较哈希
func NewAuthService(tokens *TokenService, couples *CoupleService, password, passwordHash string) (*AuthService, error) {
	hash := []byte(passwordHash)
	if passwordHash == "" {
		if password == "" {
			return nil, errors.New("admin password is not configured")
		}
		var err error
		hash, err = bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
	}
	return &AuthService{tokens: tokens, couples: couples, adminHash: hash}, nil
}

func (a *AuthService) AdminLogin(ctx context.Context, password string) (*Session, error) {
	if password == "" {
		return nil, fmt.Errorf("%w: password is required", ErrValidation)
	}
	if err := bcrypt.CompareHashAndPassword(a.adminHash, []byte(password)); err != nil {
		return nil, fmt.Errorf("%w: invalid password", ErrUnauthorized)
	}

	token, expiresAt, err := a.tokens.Issue(RoleAdmin, "", "")
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, ExpiresAt: expiresAt, Role: RoleAdmin}, nil
}

func (a *AuthService) CoupleLogin(ctx context.Context, code string) (*Session, error) {
	code = utils.NormalizeCode(code)
	if len(code) < utils.MinLoginCodeLength || len(code) > utils.MaxLoginCodeLength {
		return nil, fmt.Errorf("%w: invalid login code format", ErrValidation)
	}

	couple, err := a.couples.FindByLoginCode(ctx, code)
	if errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("%w: invalid login code", ErrUnauthorized)
	}
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := a.tokens.Issue(RoleCouple, couple.ID, couple.Name)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, ExpiresAt: expiresAt, Role: RoleCouple, Couple: couple}, nil
}
