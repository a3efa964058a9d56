package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/user/nextflix/internal/events"
	"github.com/user/nextflix/internal/logger"
	"github.com/user/nextflix/internal/model"
	"github.com/user/nextflix/internal/repository"
)

// ReportInput 问题反馈
type ReportInput struct {
	UserID      string `json:"user_id" binding:"max=128"`
	Subject     string `json:"subject" binding:"required,notblank,max=255"`
	Description string `json:"description" binding:"required,notblank,max=5000"`
}

type ReportService struct {
	reports *repository.ReportRepository
	events  events.Publisher
	log     *logger.Logger
}

func NewReportService(reports *repository.ReportRepository, pub events.Publisher, log *logger.Logger) *ReportService {
	return &ReportService{reports: reports, events: pub, log: log}
}

func (s *ReportService) Create(ctx context.Context, in ReportInput) (*model.BugReport, error) {
	subject := strings.TrimSpace(in.Subject)
	description := strings.TrimSpace(in.Description)
	if subject == "" || description == "" {
		return nil, fmt.Errorf("%w: subject and description are required", ErrInvalidRequest)
	}

	report := &model.BugReport{Subject: subject, Description: description}
	if uid := strings.TrimSpace(in.UserID); uid != "" {
		report.UserID = &uid
	}
	if err := s.reports.Create(ctx, report); err != nil {
		return nil, err
	}

	s.log.Info("收到问题反馈", "report_id", report.ID, "subject", subject)
	s.events.Publish(ctx, events.TopicReportCreated, report)
	return report, nil
}

// List 按创建时间倒序
func (s *ReportService) List(ctx context.Context, limit, offset int) ([]model.BugReport, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.reports.List(ctx, limit, offset)
}

func (s *ReportService) Delete(ctx context.Context, id uint) error {
	ok, err := s.reports.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}
