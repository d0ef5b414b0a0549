package model

import (
	"time"
)

// SubmissionModel 赏金提交记录
type SubmissionModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	BountyId   int64  `json:"bounty_id" gorm:"not null;index"`
	HunterId   int64  `json:"hunter_id" gorm:"not null"`
	HunterName string `json:"hunter_name" gorm:"size:100"`
	Status     string `json:"status" gorm:"size:20;default:'submitted'"` // submitted, accepted, rejected

	// issue 线程里对应的提交评论，资金托管后需要改写措辞
	IssueCommentId int64 `json:"issue_comment_id"`
}

// TableName 自定义表名
func (SubmissionModel) TableName() string {
	return "submission"
}
