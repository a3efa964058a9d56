package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BugReport 用户提交的问题反馈，创建后不可修改
type BugReport struct {
	ID          uint      `json:"report_id" gorm:"primaryKey"`
	PublicID    string    `json:"id" gorm:"size:36;uniqueIndex"`
	UserID      *string   `json:"user_id" gorm:"size:128;index"`
	Subject     string    `json:"subject" gorm:"size:255;not null"`
	Description string    `json:"description" gorm:"type:text;not null"`
	CreatedAt   time.Time `json:"created_at" gorm:"index"`
}

func (BugReport) TableName() string {
	return "bug_reports"
}

func (r *BugReport) BeforeCreate(tx *gorm.DB) error {
	if r.PublicID == "" {
		r.PublicID = uuid.NewString()
	}
	return nil
}
