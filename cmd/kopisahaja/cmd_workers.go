package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kopisahaja/kopisahaja/config"
	"github.com/kopisahaja/kopisahaja/pkg/cache"
	"github.com/kopisahaja/kopisahaja/pkg/database"
	"github.com/kopisahaja/kopisahaja/pkg/logger"
	"github.com/kopisahaja/kopisahaja/pkg/notification"
	"github.com/kopisahaja/kopisahaja/pkg/queue"
	"github.com/kopisahaja/kopisahaja/pkg/telegram"

	// Jobs register themselves with the queue via init().
	_ "github.com/kopisahaja/kopisahaja/app/jobs"
)

var queueWorkersFlag int

// kopisahaja queue:work — process jobs outside the main server process.
// Only useful with the redis queue driver; the memory driver is
// per-process.
var queueWorkCmd = &cobra.Command{
	Use:   "queue:work",
	Short: "Start standalone queue workers",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bootDB(); err != nil {
			return err
		}
		if err := cache.Connect(); err != nil {
			return fmt.Errorf("queue:work needs redis: %w", err)
		}

		queue.UseDB(database.DB)
		queue.SetDriver(queue.NewRedisDriver(cache.RDB))
		notification.SetTelegramBot(telegram.New(config.TelegramBotToken()))

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		workers := queueWorkersFlag
		if workers < 1 {
			workers = config.QueueWorkers()
		}

		fmt.Printf("Queue workers started (%d). Press Ctrl+C to stop.\n", workers)
		queue.StartWorkers(ctx, workers)

		<-ctx.Done()
		logger.Info("queue: workers stopped")
		return nil
	},
}

func init() {
	queueWorkCmd.Flags().IntVarP(&queueWorkersFlag, "workers", "w", 0, "Number of concurrent workers")
}
