package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"vidscribe/internal/api"
	"vidscribe/internal/config"
	"vidscribe/internal/media"
	"vidscribe/internal/pipeline"
	"vidscribe/internal/repository"
	"vidscribe/internal/storage"
	"vidscribe/internal/stt"
)

func main() {
	configPath := flag.String("config", os.Getenv("VIDSCRIBE_CONFIG"), "path to the YAML config file")
	flag.Parse()

	// Load .env file if it exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set Gin mode (default to release mode)
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	provider, err := stt.CreateProvider(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to create STT provider: %v", err)
	}
	log.Printf("STT provider initialized: %s", provider.Name())

	transcriber := pipeline.New(
		media.New(cfg.FFmpegPath, cfg.FFprobePath),
		provider,
		pipeline.WithChunkLength(cfg.ChunkLength),
		pipeline.WithParallel(cfg.Parallel),
		pipeline.WithWorkRoot(cfg.WorkDir),
	)

	uploads, err := storage.NewUploads(cfg.UploadDir)
	if err != nil {
		log.Fatalf("Failed to prepare upload directory: %v", err)
	}

	// Use SQLite history if a database path is configured
	var repo repository.TranscriptionRepository
	if cfg.DatabasePath != "" {
		log.Printf("Opening SQLite database at %s...", cfg.DatabasePath)
		sqliteRepo, err := repository.NewSQLiteRepository(cfg.DatabasePath)
		if err != nil {
			log.Printf("Warning: Failed to open database: %v. Continuing with in-memory history.", err)
			repo = repository.NewMemoryRepository()
		} else {
			defer sqliteRepo.Close()
			repo = sqliteRepo
		}
	} else {
		log.Println("DATABASE_PATH not set, keeping transcription history in memory")
		repo = repository.NewMemoryRepository()
	}

	h := api.NewHandler(transcriber, uploads, repo,
		api.WithDefaultLanguage(cfg.DefaultLanguage),
		api.WithMaxUploadBytes(cfg.MaxUploadBytes()),
		api.WithDownloadTimeout(cfg.DownloadTimeout),
		api.WithWorkRoot(cfg.WorkDir),
	)

	r := gin.Default()
	r.MaxMultipartMemory = 32 << 20

	// Add CORS middleware
	r.Use(corsMiddleware())

	// Register routes
	h.RegisterRoutes(r)

	log.Printf("vidscribe running on :%s (chunk length %ds, parallel %d)", cfg.Port, cfg.ChunkLength, cfg.Parallel)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// corsMiddleware adds CORS headers for browser clients of the JSON API
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
