package config

import (
	"os"
	"strconv"

	"github.com/kozaktomas/face-attendance/internal/constants"
)

type Config struct {
	Storage   StorageConfig
	Embedding EmbeddingConfig
	Engine    EngineConfig
	Database  DatabaseConfig
}

type StorageConfig struct {
	URL           string // storage API base URL
	Key           string // storage API key
	StudentBucket string // bucket with enrollment photos (one folder per subject)
	FramesBucket  string // bucket with captured classroom frames
}

type EmbeddingConfig struct {
	URL    string // face embedding server base URL, defaults to http://localhost:8000
	Dim    int    // embedding dimensionality, defaults to 512
	UseGPU bool   // request accelerated inference
}

type EngineConfig struct {
	SimilarityThreshold float64 // inclusive presence boundary (default 0.55)
	DetConfThreshold    float64 // minimum detection confidence (default 0.25)
	MaxFrameSize        int     // resize bound before inference (default 1024)
	BuildWorkers        int     // parallel enrollment photo workers (default 4)
}

type DatabaseConfig struct {
	URL          string // PostgreSQL connection URL; empty disables attendance history
	MaxOpenConns int    // Maximum open connections (default 25)
	MaxIdleConns int    // Maximum idle connections (default 5)
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envFloat reads an environment variable and parses it as a float.
// Returns the default value if the env var is unset, empty, or invalid.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return defaultVal
}

// envBool reads an environment variable as a boolean flag.
func envBool(key string) bool {
	switch os.Getenv(key) {
	case "1", "true", "yes", "TRUE", "YES":
		return true
	}
	return false
}

// envString reads an environment variable with a fallback default.
func envString(key, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
}

func Load() *Config {
	return &Config{
		Storage: StorageConfig{
			URL:           os.Getenv("STORAGE_URL"),
			Key:           os.Getenv("STORAGE_KEY"),
			StudentBucket: envString("STUDENT_IMAGES_BUCKET", constants.DefaultStudentBucket),
			FramesBucket:  envString("CLASSROOM_FRAMES_BUCKET", constants.DefaultFramesBucket),
		},
		Embedding: EmbeddingConfig{
			URL:    os.Getenv("EMBEDDING_URL"),
			Dim:    envInt("EMBEDDING_DIM", constants.DefaultEmbeddingDim),
			UseGPU: envBool("USE_GPU"),
		},
		Engine: EngineConfig{
			SimilarityThreshold: envFloat("SIMILARITY_THRESHOLD", constants.DefaultSimilarityThreshold),
			DetConfThreshold:    envFloat("DET_CONF_THRESHOLD", constants.DefaultDetConfThreshold),
			MaxFrameSize:        envInt("MAX_FRAME_SIZE", constants.MaxFrameSize),
			BuildWorkers:        envInt("BUILD_WORKERS", constants.DefaultBuildWorkers),
		},
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 5),
		},
	}
}
