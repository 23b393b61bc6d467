package models

import "github.com/google/uuid"

// newID 生成主键 (UUID v4 字符串)
func newID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}
