package models

import (
	"time"

	"gorm.io/gorm"
)

type ActivityType string

const (
	ActivityVote               ActivityType = "vote"
	ActivityComment            ActivityType = "comment"
	ActivityCoupleCreated      ActivityType = "couple_created"
	ActivityCoupleUpdated      ActivityType = "couple_updated"
	ActivityCoupleDeleted      ActivityType = "couple_deleted"
	ActivityCodeRegenerated    ActivityType = "code_regenerated"
	ActivitySufganiaCreated    ActivityType = "sufgania_created"
	ActivitySufganiaUpdated    ActivityType = "sufgania_updated"
	ActivitySufganiaDeleted    ActivityType = "sufgania_deleted"
	ActivityPhotoUploaded      ActivityType = "photo_uploaded"
	ActivityVotingOpened       ActivityType = "voting_opened"
	ActivityVotingClosed       ActivityType = "voting_closed"
	ActivityVotingEndTimeSet   ActivityType = "voting_end_time_set"
	ActivityResultsPublished   ActivityType = "results_published"
	ActivityResultsUnpublished ActivityType = "results_unpublished"
)

// Activity 审计日志，只追加
type Activity struct {
	ID        string       `gorm:"type:varchar(36);primaryKey" json:"id"`
	Type      ActivityType `gorm:"type:varchar(40);not null;index" json:"type"`
	Actor     string       `gorm:"size:100" json:"actor"` // "admin" 或情侣名称
	Details   string       `gorm:"type:text" json:"details"`
	CreatedAt time.Time    `gorm:"index" json:"createdAt"`
}

func (a *Activity) BeforeCreate(tx *gorm.DB) error {
	newID(&a.ID)
	return nil
}
