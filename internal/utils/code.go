package utils

import (
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
)

// CodeAlphabet 去掉了易混淆字符 (I, O, 0, 1)
const CodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const (
	CodeLength         = 6
	MaxCodeAttempts    = 100
	MinLoginCodeLength = 4
	MaxLoginCodeLength = 10
)

var ErrCodeExhausted = errors.New("could not generate unique code after maximum attempts")

// GenerateCode 生成指定长度的随机登录码
func GenerateCode(length int) (string, error) {
	max := big.NewInt(int64(len(CodeAlphabet)))
	var sb strings.Builder
	sb.Grow(length)
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		sb.WriteByte(CodeAlphabet[n.Int64()])
	}
	return sb.String(), nil
}

// GenerateUniqueCode 反复生成直到 taken 返回 false，最多尝试 MaxCodeAttempts 次
func GenerateUniqueCode(taken func(code string) (bool, error)) (string, error) {
	for attempt := 0; attempt < MaxCodeAttempts; attempt++ {
		code, err := GenerateCode(CodeLength)
		if err != nil {
			return "", err
		}
		exists, err := taken(code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", ErrCodeExhausted
}

// NormalizeCode 登录码大小写不敏感
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
