package models

import (
	"time"

	"gorm.io/gorm"
)

// CommentMaxLength 评论最大字符数 (trim 之后)
const CommentMaxLength = 500

// Comment 每个 (投票者, 作品) 只保留一条，重复提交即覆盖
type Comment struct {
	ID         string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	CoupleID   string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_comment_voter_sufgania" json:"voterCoupleId"`
	Couple     *Couple   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"voter,omitempty"`
	SufganiaID string    `gorm:"type:varchar(36);not null;index;uniqueIndex:idx_comment_voter_sufgania" json:"sufganiaId"`
	Sufgania   *Sufgania `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"sufgania,omitempty"`
	Text       string    `gorm:"type:text;not null" json:"commentText"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	newID(&c.ID)
	return nil
}
