package repository

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/user/nextflix/internal/config"
	"github.com/user/nextflix/internal/model"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// InitDB 初始化数据库连接并同步表结构
func InitDB(cfg *config.Config) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	}

	var db *gorm.DB
	switch cfg.DBDriver {
	case "sqlite":
		var err error
		db, err = gorm.Open(sqlite.Open(cfg.SQLitePath), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("无法打开 sqlite 数据库: %w", err)
		}
	case "postgres", "":
		sqlDB, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("无法连接数据库: %w", err)
		}

		// 测试连接
		if err := sqlDB.Ping(); err != nil {
			return nil, fmt.Errorf("数据库 ping 失败: %w", err)
		}

		// 设置连接池
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)

		db, err = gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("gorm 初始化失败: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate 自动建表
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&model.Movie{}, &model.Profile{}, &model.BugReport{}); err != nil {
		return fmt.Errorf("数据库迁移失败: %w", err)
	}
	if err := backfillLowerColumns(db); err != nil {
		return fmt.Errorf("回填小写列失败: %w", err)
	}
	return nil
}

// backfillLowerColumns 为新增小写列之前写入的旧数据补齐取值
func backfillLowerColumns(db *gorm.DB) error {
	var batch []model.Movie
	return db.Where("genres_lower IS NULL").FindInBatches(&batch, insertBatchSize, func(tx *gorm.DB, _ int) error {
		for i := range batch {
			m := &batch[i]
			m.Prepare()
			err := db.Model(&model.Movie{}).Where("id = ?", m.ID).UpdateColumns(map[string]interface{}{
				"director_lower": m.DirectorLower,
				"actor_1_lower":  m.Actor1Lower,
				"actor_2_lower":  m.Actor2Lower,
				"actor_3_lower":  m.Actor3Lower,
				"genres_lower":   m.GenresLower,
				"tags_lower":     m.TagsLower,
			}).Error
			if err != nil {
				return err
			}
		}
		return nil
	}).Error
}

// Repositories 仓库集合
type Repositories struct {
	DB       *gorm.DB
	Movie    *MovieRepository
	Report   *ReportRepository
	Profiles ProfileStore
}

// NewRepositories 创建仓库集合
func NewRepositories(db *gorm.DB, profiles ProfileStore) *Repositories {
	if profiles == nil {
		profiles = NewSQLProfileStore(db)
	}
	return &Repositories{
		DB:       db,
		Movie:    NewMovieRepository(db),
		Report:   NewReportRepository(db),
		Profiles: profiles,
	}
}
