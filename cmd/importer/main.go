package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/user/nextflix/internal/config"
	"github.com/user/nextflix/internal/events"
	"github.com/user/nextflix/internal/logger"
	"github.com/user/nextflix/internal/repository"
	"github.com/user/nextflix/internal/service"
)

func main() {
	file := flag.String("file", "", "CSV 文件路径（必须包含 movie_title 等列）")
	driver := flag.String("driver", "", "覆盖 DB_DRIVER（postgres | sqlite）")
	flag.Parse()

	if *file == "" {
		fmt.Fprintln(os.Stderr, "usage: importer -file movies.csv [-driver sqlite]")
		os.Exit(2)
	}

	if err := godotenv.Load(); err != nil {
		log.Println("未找到 .env 文件，使用系统环境变量")
	}
	cfg := config.Load()
	if *driver != "" {
		cfg.DBDriver = *driver
	}

	appLog, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("日志初始化失败: %v", err)
	}
	defer appLog.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	res, err := importFile(ctx, cfg, appLog, *file)
	if err != nil {
		appLog.Fatal("导入失败", "file", *file, "error", err)
	}
	for _, e := range res.Errors {
		fmt.Fprintln(os.Stderr, e)
	}
	fmt.Printf("inserted=%d skipped=%d errors=%d\n", res.Inserted, res.Skipped, len(res.Errors))
}

func importFile(ctx context.Context, cfg *config.Config, appLog *logger.Logger, path string) (*service.ImportResult, error) {
	db, err := repository.InitDB(cfg)
	if err != nil {
		return nil, fmt.Errorf("数据库连接失败: %w", err)
	}
	sqlDB, _ := db.DB()
	defer sqlDB.Close()

	if err := repository.Migrate(db); err != nil {
		return nil, err
	}

	bus, err := events.NewBus(cfg.NatsURL, appLog.With("component", "events"))
	if err != nil {
		return nil, err
	}
	defer bus.Close()

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	movies := repository.NewMovieRepository(db)
	im := service.NewImporter(movies, service.NewCatalogService(movies), bus, appLog)
	return im.Import(ctx, f)
}
