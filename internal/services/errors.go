package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// 业务错误。调用处用 %w 包装补充上下文，handler 用 errors.Is 映射 HTTP 状态码。
var (
	ErrValidation      = errors.New("validation failed")
	ErrInvalidCategory = fmt.Errorf("%w: invalid category", ErrValidation)
	ErrInvalidInput    = fmt.Errorf("%w: invalid input", ErrValidation)
	ErrDuplicateRank   = fmt.Errorf("%w: duplicate ranks are not allowed", ErrValidation)
	ErrNotFound        = errors.New("not found")
	ErrSelfVote        = errors.New("cannot vote for or comment on your own sufgania")
	ErrVotingClosed    = errors.New("voting is currently closed")
	ErrConflict        = errors.New("conflict")
	ErrUnauthorized    = errors.New("unauthorized")
)

// notFound 把 gorm.ErrRecordNotFound 转成 ErrNotFound，其余错误原样返回
func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %w", what, ErrNotFound)
	}
	return err
}

// conflict 唯一约束冲突转成 ErrConflict
func conflict(err error, what string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%s: %w", what, ErrConflict)
	}
	return err
}
