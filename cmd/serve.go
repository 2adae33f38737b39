package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-attendance/internal/attendance"
	"github.com/kozaktomas/face-attendance/internal/config"
	"github.com/kozaktomas/face-attendance/internal/database"
	"github.com/kozaktomas/face-attendance/internal/insight"
	"github.com/kozaktomas/face-attendance/internal/storage"
	"github.com/kozaktomas/face-attendance/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the attendance HTTP API server",
	Run: func(cmd *cobra.Command, args []string) {
		port := mustGetInt(cmd, "port")
		host := mustGetString(cmd, "host")

		cfg := config.Load()

		engine, frames, err := buildEngine(cfg)
		if err != nil {
			log.Fatalf("could not initialize recognition engine: %v", err)
		}

		var records database.RecordStore
		if cfg.Database.URL != "" {
			pool, err := database.NewPool(&cfg.Database)
			if err != nil {
				log.Fatalf("could not connect to database: %v", err)
			}
			defer func() {
				if err := pool.Close(); err != nil {
					log.Printf("could not close database pool: %v", err)
				}
			}()

			if err := pool.Migrate(cmd.Context()); err != nil {
				log.Fatalf("could not run database migrations: %v", err)
			}
			records = database.NewRecordRepository(pool)
			log.Printf("attendance history enabled")
		} else {
			log.Printf("DATABASE_URL not set, attendance history disabled")
		}

		server := web.NewServer(cfg, engine, frames, records, port, host)

		go func() {
			log.Printf("starting attendance server on %s:%d", host, port)
			if err := server.Start(); err != nil {
				log.Printf("server stopped: %v", err)
			}
		}()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		log.Println("shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			log.Printf("server shutdown failed: %v", err)
		}
		log.Println("server stopped")
	},
}

// buildEngine wires the embedding client and storage sources from config.
// The second return value is the classroom frames bucket source.
func buildEngine(cfg *config.Config) (*attendance.Engine, *storage.BucketSource, error) {
	detector := insight.New(cfg.Embedding.URL, cfg.Embedding.UseGPU, cfg.Engine.MaxFrameSize)

	store, err := storage.New(cfg.Storage.URL, cfg.Storage.Key)
	if err != nil {
		return nil, nil, fmt.Errorf("could not create storage client: %w", err)
	}
	source := storage.NewBucketSource(store, cfg.Storage.StudentBucket)
	frames := storage.NewBucketSource(store, cfg.Storage.FramesBucket)

	engineCfg := attendance.Config{
		SimilarityThreshold: cfg.Engine.SimilarityThreshold,
		DetConfThreshold:    cfg.Engine.DetConfThreshold,
		EmbeddingDim:        cfg.Embedding.Dim,
		BuildWorkers:        cfg.Engine.BuildWorkers,
	}
	return attendance.NewEngine(engineCfg, detector, source), frames, nil
}

func init() {
	serveCmd.Flags().IntP("port", "p", 8080, "port to listen on")
	serveCmd.Flags().String("host", "0.0.0.0", "host address to bind to")
	rootCmd.AddCommand(serveCmd)
}
