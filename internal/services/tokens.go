package services

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleCouple Role = "couple"
)

// Claims JWT 载荷
type Claims struct {
	Role       Role   `json:"role"`
	CoupleID   string `json:"coupleId,omitempty"`
	CoupleName string `json:"coupleName,omitempty"`
	jwt.RegisteredClaims
}

// TokenService 签发/校验 HS256 令牌
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenService(secret string, ttl time.Duration) *TokenService {
	return &TokenService{secret: []byte(secret), ttl: ttl}
}

// Issue 签发令牌，返回过期时间
func (t *TokenService) Issue(role Role, coupleID, coupleName string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(t.ttl)
	subject := coupleID
	if role == RoleAdmin {
		subject = string(RoleAdmin)
	}

	claims := Claims{
		Role:       role,
		CoupleID:   coupleID,
		CoupleName: coupleName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Parse 校验签名和过期时间
func (t *TokenService) Parse(token string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	if claims.Role != RoleAdmin && claims.Role != RoleCouple {
		return nil, fmt.Errorf("%w: unknown role %q", ErrUnauthorized, claims.Role)
	}
	return claims, nil
}
