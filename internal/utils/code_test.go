package utils

import (
	"errors"
	"strings"
	"testing"
)

func TestGenerateCode(t *testing.T) {
	code, err := GenerateCode(CodeLength)
	if err != nil {
		t.Fatalf("GenerateCode: %v", err)
	}
	if len(code) != CodeLength {
		t.Errorf("len = %d, want %d", len(code), CodeLength)
	}
	for _, r := range code {
		if !strings.ContainsRune(CodeAlphabet, r) {
			t.Errorf("unexpected character %q in %s", r, code)
		}
	}
}

func TestGenerateUniqueCodeRetries(t *testing.T) {
	calls := 0
	code, err := GenerateUniqueCode(func(string) (bool, error) {
		calls++
		return calls < 3, nil
	})
	if err != nil {
		t.Fatalf("GenerateUniqueCode: %v", err)
	}
	if calls != 3 || code == "" {
		t.Errorf("calls = %d, code = %q", calls, code)
	}
}

func TestGenerateUniqueCodeGivesUp(t *testing.T) {
	calls := 0
	_, err := GenerateUniqueCode(func(string) (bool, error) {
		calls++
		return true, nil
	})
	if !errors.Is(err, ErrCodeExhausted) {
		t.Fatalf("err = %v, want ErrCodeExhausted", err)
	}
	if calls != MaxCodeAttempts {
		t.Errorf("calls = %d, want %d", calls, MaxCodeAttempts)
	}
}

func TestNormalizeCode(t *testing.T) {
	if got := NormalizeCode("  ab3xyz "); got != "AB3XYZ" {
		t.Errorf("NormalizeCode = %q", got)
	}
}
