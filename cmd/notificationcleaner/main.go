// NotificationCleaner 主程序
// 功能：一次性清理超过保留期的已读站内通知，由定时任务调度
package main

import (
	"context"
	"fmt"
	"os"

	notifapp "github.com/wyfcoding/storefront/internal/notification/application"
	notifpersistence "github.com/wyfcoding/storefront/internal/notification/infrastructure/persistence"
	"github.com/wyfcoding/storefront/pkg/config"
	"github.com/wyfcoding/storefront/pkg/db"
	"github.com/wyfcoding/storefront/pkg/logger"
)

func main() {
	configPath := "configs/storefront/config.toml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(logger.Config{
		Level:      cfg.Logger.Level,
		Format:     cfg.Logger.Format,
		Output:     cfg.Logger.Output,
		FilePath:   cfg.Logger.FilePath,
		MaxSize:    cfg.Logger.MaxSize,
		MaxBackups: cfg.Logger.MaxBackups,
		MaxAge:     cfg.Logger.MaxAge,
		Compress:   cfg.Logger.Compress,
		WithCaller: cfg.Logger.WithCaller,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	logger.Info(ctx, "Starting NotificationCleaner", "retention_days", cfg.Notification.RetentionDays)

	database, err := db.Init(db.Config{
		Driver:             cfg.Database.Driver,
		DSN:                cfg.Database.DSN,
		MaxOpenConns:       cfg.Database.MaxOpenConns,
		MaxIdleConns:       cfg.Database.MaxIdleConns,
		ConnMaxLifetime:    cfg.Database.ConnMaxLifetime,
		LogEnabled:         cfg.Database.LogEnabled,
		SlowQueryThreshold: cfg.Database.SlowQueryThreshold,
	})
	if err != nil {
		logger.Fatal(ctx, "Failed to initialize database", "error", err)
	}
	defer database.Close()

	repo := notifpersistence.NewNotificationRepository(database.DB)
	commands := notifapp.NewCommandService(repo)

	deleted, err := commands.PurgeRead(ctx, cfg.Notification.RetentionDays)
	if err != nil {
		logger.Fatal(ctx, "Notification purge failed", "error", err)
	}

	logger.Info(ctx, "NotificationCleaner finished", "deleted", deleted)
}
