package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/raushankrgupta/fitly-closet/api"
	"github.com/raushankrgupta/fitly-closet/attributor"
	"github.com/raushankrgupta/fitly-closet/blob"
	"github.com/raushankrgupta/fitly-closet/config"
	"github.com/raushankrgupta/fitly-closet/imaging"
	"github.com/raushankrgupta/fitly-closet/retry"
	"github.com/raushankrgupta/fitly-closet/services"
	"github.com/raushankrgupta/fitly-closet/store"
	"github.com/raushankrgupta/fitly-closet/styler"
	"github.com/raushankrgupta/fitly-closet/utils"
)

func main() {
	config.LoadConfig()

	// Initialize MongoDB
	if err := utils.ConnectMongo(config.MongoURI); err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}

	ctx := context.Background()

	blobStore, err := blob.NewS3Store(ctx, config.AWSRegion, config.AWSBucketName)
	if err != nil {
		log.Fatalf("Failed to initialize S3 store: %v", err)
	}

	itemStore, err := store.Open(config.DataDirectory)
	if err != nil {
		log.Fatalf("Failed to open item store: %v", err)
	}

	attr, err := attributor.New(ctx, config.DefaultStyler)
	if err != nil {
		log.Fatalf("Failed to initialize attributor: %v", err)
	}

	sty, err := styler.New(ctx, config.DefaultStyler)
	if err != nil {
		log.Fatalf("Failed to initialize styler: %v", err)
	}

	policy := retry.Policy{
		MaxAttempts: config.RetryMaxAttempts,
		BaseDelay:   config.RetryBaseDelay,
		MaxDelay:    60 * time.Second,
		Multiplier:  2,
		Jitter:      true,
		Retryable:   attributor.IsRetryable,
	}

	attributionService := services.NewAttributionService(itemStore, blobStore, attr, policy, imaging.Options{
		TargetWidth:  config.TargetWidth,
		TargetHeight: config.TargetHeight,
		JPEGQuality:  config.JPEGQuality,
	}, config.MaxFileSize)

	stylerService := services.NewStylerService(itemStore, blobStore, sty, policy)

	api.Setup(attributionService, stylerService, itemStore, blobStore)

	// CORS Middleware
	corsMiddleware := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS, PUT, DELETE")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}
			next(w, r)
		}
	}

	http.HandleFunc("/health", corsMiddleware(api.HealthHandler))
	http.HandleFunc("/attribute-clothes", corsMiddleware(api.AttributeClothesHandler))
	http.HandleFunc("/style-me", corsMiddleware(api.StyleMeHandler))
	http.HandleFunc("/closet", corsMiddleware(api.ClosetHandler))

	// Generic Auth Routes
	http.HandleFunc("/auth/signup", corsMiddleware(api.SignupHandler))
	http.HandleFunc("/auth/verify-otp", corsMiddleware(api.VerifyOTPHandler))
	http.HandleFunc("/auth/login", corsMiddleware(api.LoginHandler))

	port := config.Port
	fmt.Printf("Server starting on port %s...\n", port)
	if err := http.ListenAndServe(":"+port, utils.LatencyMiddleware(http.DefaultServeMux)); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
