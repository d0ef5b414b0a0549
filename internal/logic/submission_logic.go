package logic

import (
	"fmt"

	"github.com/bountydotnew/bounty.new-sub002/internal/model"
	"gorm.io/gorm"
)

// SubmissionLogic 提交记录业务逻辑
type SubmissionLogic struct {
	db *gorm.DB
}

// NewSubmissionLogic 创建提交记录业务逻辑
func NewSubmissionLogic(db *gorm.DB) *SubmissionLogic {
	return &SubmissionLogic{db: db}
}

// CountForBounty 统计赏金的提交数量
func (s *SubmissionLogic) CountForBounty(bountyId int64) (int64, error) {
	var count int64
	if err := s.db.Model(&model.SubmissionModel{}).Where("bounty_id = ?", bountyId).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("统计提交数量失败: %w", err)
	}
	return count, nil
}

// ListWithIssueComments 查询带有 issue 评论的提交记录
func (s *SubmissionLogic) ListWithIssueComments(bountyId int64) ([]model.SubmissionModel, error) {
	var submissions []model.SubmissionModel
	if err := s.db.Where("bounty_id = ? AND issue_comment_id > 0", bountyId).
		Order("created_at ASC").
		Find(&submissions).Error; err != nil {
		return nil, fmt.Errorf("查询提交记录失败: %w", err)
	}
	return submissions, nil
}
