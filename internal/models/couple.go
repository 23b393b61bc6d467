package models

import (
	"time"

	"gorm.io/gorm"
)

// Couple 参赛情侣 - 凭登录码投票，最多拥有一个作品
type Couple struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name      string    `gorm:"size:100;not null;uniqueIndex" json:"coupleName"`
	LoginCode string    `gorm:"size:10;not null;uniqueIndex" json:"loginCode"` // 始终大写
	HasVoted  bool      `gorm:"default:false;not null" json:"hasVoted"`        // 提交过任意类别后置 true，不会回退
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Sufgania *Sufgania `gorm:"-" json:"sufgania,omitempty"`
}

func (c *Couple) BeforeCreate(tx *gorm.DB) error {
	newID(&c.ID)
	return nil
}
