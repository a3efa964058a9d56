package repository

import (
	"context"

	"github.com/user/nextflix/internal/model"
	"gorm.io/gorm"
)

type ReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// Create 创建问题反馈
func (r *ReportRepository) Create(ctx context.Context, report *model.BugReport) error {
	return r.db.WithContext(ctx).Create(report).Error
}

// List 获取反馈列表，最新的在前
func (r *ReportRepository) List(ctx context.Context, limit, offset int) ([]model.BugReport, error) {
	q := r.db.WithContext(ctx).Order("created_at DESC").Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}
	var reports []model.BugReport
	if err := q.Find(&reports).Error; err != nil {
		return nil, err
	}
	return reports, nil
}

// Delete 删除反馈，返回是否存在
func (r *ReportRepository) Delete(ctx context.Context, id uint) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&model.BugReport{}, id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
