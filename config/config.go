package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

var (
	Port     string
	MongoURI string

	GeminiAPIKey  string
	OpenAIAPIKey  string
	DefaultStyler string

	JWTSecret string

	AWSRegion     string
	AWSBucketName string

	DataDirectory string

	TargetWidth  int
	TargetHeight int
	JPEGQuality  int
	MaxFileSize  int64
	MaxBatchSize int

	RetryMaxAttempts int
	RetryBaseDelay   time.Duration
)

// LoadConfig loads environment variables from .env file
func LoadConfig() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using default values or system environment variables")
	}

	Port = getEnv("PORT", "8080")

	MongoURI = getEnv("MONGO_URI", "mongodb://localhost:27017/")

	GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	DefaultStyler = getEnv("DEFAULT_STYLER", "gemini")

	JWTSecret = os.Getenv("JWT_SECRET")

	AWSRegion = getEnv("AWS_REGION", "us-east-1")
	AWSBucketName = getEnv("AWS_BUCKET_NAME", "fitly-closet-images")

	DataDirectory = getEnv("DATA_DIRECTORY", "user_data")

	TargetWidth = getEnvInt("TARGET_WIDTH", 512)
	TargetHeight = getEnvInt("TARGET_HEIGHT", 512)
	JPEGQuality = getEnvInt("JPEG_QUALITY", 85)
	MaxFileSize = int64(getEnvInt("MAX_FILE_SIZE", 10*1024*1024))
	MaxBatchSize = getEnvInt("MAX_BATCH_SIZE", 10)

	RetryMaxAttempts = getEnvInt("RETRY_MAX_ATTEMPTS", 3)
	RetryBaseDelay = time.Duration(getEnvInt("RETRY_BASE_DELAY_MS", 2000)) * time.Millisecond
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("Invalid value for %s (%q), using default %d", key, v, fallback)
		return fallback
	}
	return n
}
