package models

import (
	"time"

	"gorm.io/gorm"
)

// Category 评分类别
type Category string

const (
	CategoryTaste        Category = "taste"
	CategoryCreativity   Category = "creativity"
	CategoryPresentation Category = "presentation"
)

// Categories 固定顺序，导出/展示时按此顺序
var Categories = []Category{CategoryTaste, CategoryCreativity, CategoryPresentation}

func (c Category) Valid() bool {
	switch c {
	case CategoryTaste, CategoryCreativity, CategoryPresentation:
		return true
	}
	return false
}

// Vote 一条排名记录：(投票者, 作品, 类别) 唯一
type Vote struct {
	ID         string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	CoupleID   string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_vote_voter_sufgania_category" json:"voterCoupleId"`
	Couple     *Couple   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	SufganiaID string    `gorm:"type:varchar(36);not null;index;uniqueIndex:idx_vote_voter_sufgania_category" json:"sufganiaId"`
	Sufgania   *Sufgania `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"sufgania,omitempty"`
	Category   Category  `gorm:"type:varchar(20);not null;index;uniqueIndex:idx_vote_voter_sufgania_category" json:"category"`
	Rank       int       `gorm:"not null" json:"rank"` // 1 = 最好
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (v *Vote) BeforeCreate(tx *gorm.DB) error {
	newID(&v.ID)
	return nil
}
