package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
	_ "time/tzdata" // 确保在精简镜像中也能识别时区

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/user/nextflix/internal/config"
	"github.com/user/nextflix/internal/events"
	"github.com/user/nextflix/internal/handler"
	"github.com/user/nextflix/internal/logger"
	"github.com/user/nextflix/internal/middleware"
	"github.com/user/nextflix/internal/repository"
	"github.com/user/nextflix/internal/router"
	"github.com/user/nextflix/internal/service"
	"github.com/user/nextflix/internal/utils"
	"gorm.io/gorm"
)

func main() {
	// 加载环境变量
	if err := godotenv.Load(); err != nil {
		log.Println("未找到 .env 文件，使用系统环境变量")
	}

	// 加载配置
	cfg := config.Load()

	appLog, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("日志初始化失败: %v", err)
	}
	defer appLog.Sync()

	if err := run(cfg, appLog); err != nil {
		appLog.Fatal("服务异常退出", "error", err)
	}
}

func run(cfg *config.Config, appLog *logger.Logger) error {
	// 初始化数据库
	db, err := repository.InitDB(cfg)
	if err != nil {
		return fmt.Errorf("数据库连接失败: %w", err)
	}
	sqlDB, _ := db.DB()
	defer sqlDB.Close()

	if err := repository.Migrate(db); err != nil {
		return fmt.Errorf("数据库迁移失败: %w", err)
	}

	profiles, closeProfiles, err := newProfileStore(cfg, db)
	if err != nil {
		return err
	}
	defer closeProfiles()

	// 初始化仓库
	repos := repository.NewRepositories(db, profiles)

	// 初始化缓存
	utils.InitCache()

	bus, err := events.NewBus(cfg.NatsURL, appLog.With("component", "events"))
	if err != nil {
		return fmt.Errorf("消息总线初始化失败: %w", err)
	}
	defer bus.Close()

	enricher := service.NewEnricherFromConfig(cfg, appLog.With("component", "enrich"))

	// 初始化 Gin
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	defer limiter.Stop()

	h := handler.NewHandler(cfg, repos, enricher, bus, appLog)
	if !h.Auth.Enabled() {
		appLog.Warn("未配置 ADMIN_PASSWORD_HASH，管理后台登录已禁用")
	}
	r := router.New(h, limiter)

	// 配置 HTTP 服务器
	srv := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   30 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	// 在 goroutine 中启动服务器，这样我们就可以监听信号
	errCh := make(chan error, 1)
	go func() {
		appLog.Info("服务器启动", "addr", "http://localhost:"+cfg.Port, "db", cfg.DBDriver, "profiles", cfg.ProfileStore)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// 等待中断信号以优雅地关闭服务器
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		return fmt.Errorf("服务器启动失败: %w", err)
	}
	appLog.Info("正在关闭服务器...")

	// 5 秒超时上下文用于关闭过程
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("服务器强制关闭: %w", err)
	}

	appLog.Info("服务器已退出")
	return nil
}

// newProfileStore 按 PROFILE_STORE 选择用户资料存储
func newProfileStore(cfg *config.Config, db *gorm.DB) (repository.ProfileStore, func(), error) {
	switch strings.ToLower(cfg.ProfileStore) {
	case "", "sql":
		return repository.NewSQLProfileStore(db), func() {}, nil
	case "memory":
		return repository.NewMemoryProfileStore(), func() {}, nil
	case "redis":
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		client, err := repository.NewRedis(ctx, cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("redis 连接失败: %w", err)
		}
		return repository.NewRedisProfileStore(client), func() { client.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown PROFILE_STORE %q", cfg.ProfileStore)
	}
}
