package models

import "time"

// SettingsID 单例行的固定主键
const SettingsID = 1

// Settings 全局投票阶段开关（单例，由 store 层 get-or-create）
type Settings struct {
	ID               uint       `gorm:"primaryKey" json:"-"`
	VotingOpen       bool       `gorm:"default:false;not null" json:"votingOpen"`
	ResultsPublished bool       `gorm:"default:false;not null" json:"resultsPublished"`
	VotingEndsAt     *time.Time `json:"votingEndsAt"` // 仅提示，不会自动关闭
	UpdatedAt        time.Time  `json:"updatedAt"`
}

func (Settings) TableName() string {
	return "settings"
}
