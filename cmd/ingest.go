package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/e-dream-ai/dreamstream/config"
	"github.com/e-dream-ai/dreamstream/core/ingest"
	"github.com/e-dream-ai/dreamstream/db"
	"github.com/e-dream-ai/dreamstream/logger"
	"github.com/e-dream-ai/dreamstream/repository"
	"github.com/e-dream-ai/dreamstream/storage"

	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Watch the media drop directory and register new dreams",
	Long:  `Watches the configured drop directory, uploads new media files to MinIO and registers them as dreams.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()
		logger.InitLogger(logger.Config{
			Level:      logger.LogLevel(cfg.LogLevel),
			OutputPath: cfg.LogPath,
			MaxSize:    100,
			MaxBackups: 3,
			MaxAge:     28,
			Compress:   true,
		})

		if err := storage.InitMinio(cfg); err != nil {
			log.Fatalf("Failed to initialize MinIO: %v", err)
		}
		if err := db.ConnectGormDB(cfg); err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.CloseGormDB()

		dreamRepo := repository.NewGormDreamRepository(db.GormDB)
		watcher := ingest.NewWatcher(cfg, dreamRepo)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		go func() {
			<-stop
			cancel()
		}()

		if err := watcher.Run(ctx); err != nil {
			log.Fatalf("Ingest watcher failed: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}
