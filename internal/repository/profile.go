package repository

import (
	"context"
	"errors"
	"sync"

	"github.com/user/nextflix/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProfileStore 用户资料存储
//
// Get 对不存在的用户返回 nil, nil；Update 在用户不存在时隐式创建，
// 并保证 fn 对同一用户串行执行。
type ProfileStore interface {
	Get(ctx context.Context, userID string) (*model.Profile, error)
	Update(ctx context.Context, userID string, fn func(p *model.Profile) error) (*model.Profile, error)
}

// SQLProfileStore 基于 gorm 的实现，列表字段以 JSON 列存储
type SQLProfileStore struct {
	db *gorm.DB
}

func NewSQLProfileStore(db *gorm.DB) *SQLProfileStore {
	return &SQLProfileStore{db: db}
}

func (s *SQLProfileStore) Get(ctx context.Context, userID string) (*model.Profile, error) {
	var p model.Profile
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Take(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	p.EnsureLists()
	return &p, nil
}

func (s *SQLProfileStore) Update(ctx context.Context, userID string, fn func(p *model.Profile) error) (*model.Profile, error) {
	var out model.Profile
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 先占位，避免并发首次写入时主键冲突
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(model.NewProfile(userID)).Error; err != nil {
			return err
		}

		q := tx
		if tx.Dialector.Name() == "postgres" {
			q = q.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		if err := q.Where("user_id = ?", userID).Take(&out).Error; err != nil {
			return err
		}
		out.EnsureLists()
		if err := fn(&out); err != nil {
			return err
		}
		return tx.Save(&out).Error
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// MemoryProfileStore 进程内实现，重启后数据丢失
type MemoryProfileStore struct {
	mu       sync.Mutex
	profiles map[string]*model.Profile
}

func NewMemoryProfileStore() *MemoryProfileStore {
	return &MemoryProfileStore{profiles: make(map[string]*model.Profile)}
}

func (s *MemoryProfileStore) Get(ctx context.Context, userID string) (*model.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[userID]
	if !ok {
		return nil, nil
	}
	return p.Clone(), nil
}

func (s *MemoryProfileStore) Update(ctx context.Context, userID string, fn func(p *model.Profile) error) (*model.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var p *model.Profile
	if existing, ok := s.profiles[userID]; ok {
		p = existing.Clone()
	} else {
		p = model.NewProfile(userID)
		p.CreatedAt = timeNow()
	}
	if err := fn(p); err != nil {
		return nil, err
	}
	p.UpdatedAt = timeNow()
	s.profiles[userID] = p
	return p.Clone(), nil
}
